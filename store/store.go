/*
 * ontograph
 *
 * Copyright 2026 The ontograph Authors. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

/*
Package store contains the abstract storage contracts which are consumed by
the ontology and graph layers. A Server hands out Databases, a Database holds
document Collections, a GraphStore and a Sequencer.

Documents

Documents are plain maps. The primary key of a document is stored under the
field FieldID. Documents can be handed to a collection either as plain maps
or as objects implementing the Document interface. Collections can hydrate
results into objects through a Hydrator.

Graph store

The graph store holds vertices (plain maps keyed by an integer id) and edges
(subject - predicate - object triples). Edges are keyed by the concatenation
of their triple and can only connect existing vertices.

Sequences

A Sequencer hands out monotonically increasing numbers per selector. An
unseen selector starts at 1.

There are two implementations: memstore keeps everything in memory and
provides error simulation facilities, sqlstore persists into a SQLite
database file.
*/
package store

import (
	"context"
	"fmt"
)

/*
FieldID is the primary key field of a document.
*/
const FieldID = "_id"

/*
VertexSequence is the sequence which provides the ids of new vertices.
*/
const VertexSequence = "nodes"

/*
EdgeSeparator separates the components of an edge key.
*/
const EdgeSeparator = "/"

/*
EdgeKey returns the key of an edge with a given triple.
*/
func EdgeKey(subject uint64, predicate string, object uint64) string {
	return fmt.Sprint(subject, EdgeSeparator, predicate, EdgeSeparator, object)
}

/*
ResultMode selects the form of query results.
*/
type ResultMode int

/*
Result modes - ResultAssert can be combined with any of the other modes
*/
const (
	ResultObject ResultMode = 1 << iota // Hydrated object
	ResultRaw                           // Plain document map
	ResultID                            // Primary key only
	ResultAssert                        // Fail with ErrNotFound on empty results
)

/*
Is checks if a result mode contains a given flag.
*/
func (m ResultMode) Is(flag ResultMode) bool {
	return m&flag != 0
}

/*
DeleteResult is the outcome of a delete operation.
*/
type DeleteResult int

/*
Possible delete results
*/
const (
	NotFound DeleteResult = iota
	Deleted
)

/*
String returns a string representation of a delete result.
*/
func (r DeleteResult) String() string {
	if r == Deleted {
		return "Deleted"
	}
	return "NotFound"
}

/*
Direction selects edges of a vertex.
*/
type Direction int

/*
Edge directions
*/
const (
	DirIn  Direction = iota // Edges where the vertex is the object
	DirOut                  // Edges where the vertex is the subject
	DirAll                  // All edges of the vertex
)

/*
String returns a string representation of a direction.
*/
func (d Direction) String() string {
	switch d {
	case DirIn:
		return "in"
	case DirOut:
		return "out"
	}
	return "all"
}

/*
Document is an object which can be stored in a collection.
*/
type Document interface {

	/*
		Flatten returns the document as a plain (nested) map.
	*/
	Flatten() map[string]interface{}
}

/*
Hydrator turns a plain document into an object.
*/
type Hydrator func(data map[string]interface{}) (interface{}, error)

/*
Server models a connection to a storage server.
*/
type Server interface {

	/*
		Name returns the name of the server.
	*/
	Name() string

	/*
		Open opens the connection.
	*/
	Open(ctx context.Context) error

	/*
		IsOpen checks if the connection is open.
	*/
	IsOpen() bool

	/*
		Database returns a database. A non-existing database is not created
		if the create flag is false, nil is returned instead.
	*/
	Database(ctx context.Context, name string, create bool) (Database, error)

	/*
		Close closes the connection.
	*/
	Close() error
}

/*
Database models a database on a server.
*/
type Database interface {

	/*
		Name returns the name of the database.
	*/
	Name() string

	/*
		Collection returns a document collection. A non-existing collection
		is not created if the create flag is false, nil is returned instead.
	*/
	Collection(ctx context.Context, name string, create bool) (Collection, error)

	/*
		Graph returns the graph store of the database.
	*/
	Graph(ctx context.Context) (GraphStore, error)

	/*
		Sequencer returns the sequence allocator of the database.
	*/
	Sequencer() Sequencer
}

/*
Collection models a collection of documents.
*/
type Collection interface {

	/*
		Name returns the name of the collection.
	*/
	Name() string

	/*
		SetHydrator sets the function which produces objects for ResultObject
		queries. Without a hydrator plain maps are returned.
	*/
	SetHydrator(h Hydrator)

	/*
		MatchOne returns the first document matching the given criteria in
		the form selected by mode. Returns nil if nothing was found unless
		mode contains ResultAssert. The fields parameter restricts the
		returned fields (nil for all fields).
	*/
	MatchOne(ctx context.Context, crit Criteria, mode ResultMode, fields []string) (interface{}, error)

	/*
		MatchAll returns a cursor over all matching documents. The keyField
		selects the field which is used as cursor key (FieldID if empty).
	*/
	MatchAll(ctx context.Context, crit Criteria, mode ResultMode, fields []string,
		keyField string) (Cursor, error)

	/*
		Count returns the number of matching documents.
	*/
	Count(ctx context.Context, crit Criteria) (int, error)

	/*
		Commit inserts a document and returns its primary key. A document
		without a primary key gets the next value of the sequence named after
		the collection.
	*/
	Commit(ctx context.Context, doc interface{}) (interface{}, error)

	/*
		Save inserts or replaces a document by its primary key.
	*/
	Save(ctx context.Context, doc interface{}) (interface{}, error)

	/*
		Delete removes a document by its primary key.
	*/
	Delete(ctx context.Context, id interface{}) (DeleteResult, error)
}

/*
EdgeRecord is an edge as stored in a graph store.
*/
type EdgeRecord struct {
	Key       string                 // Edge key (subject / predicate / object)
	Subject   uint64                 // Subject vertex
	Predicate string                 // Predicate
	Object    uint64                 // Object vertex
	Props     map[string]interface{} // Additional properties
}

/*
GraphStore models a store of vertices and edges.
*/
type GraphStore interface {

	/*
		SetVertex stores a vertex. If the properties contain a FieldID value
		the vertex with this id is replaced (or created), otherwise a new id
		is allocated.
	*/
	SetVertex(ctx context.Context, props map[string]interface{}, labels []string) (uint64, error)

	/*
		Vertex returns the properties of a vertex. Returns nil if the vertex
		does not exist unless assert is set.
	*/
	Vertex(ctx context.Context, id uint64, assert bool) (map[string]interface{}, error)

	/*
		DeleteVertex removes a vertex.
	*/
	DeleteVertex(ctx context.Context, id uint64) (DeleteResult, error)

	/*
		SetEdge stores an edge between two existing vertices and returns its key.
	*/
	SetEdge(ctx context.Context, subject uint64, predicate string, object uint64,
		props map[string]interface{}) (string, error)

	/*
		Edge returns an edge. Returns nil if the edge does not exist unless
		assert is set.
	*/
	Edge(ctx context.Context, key string, assert bool) (*EdgeRecord, error)

	/*
		DeleteEdge removes an edge.
	*/
	DeleteEdge(ctx context.Context, key string) (DeleteResult, error)

	/*
		VertexEdges returns a cursor over the edges (*EdgeRecord values) of a
		vertex in a given direction. A nil predicate list selects all edges.
	*/
	VertexEdges(ctx context.Context, vertex uint64, predicates []string, dir Direction) (Cursor, error)
}

/*
Sequencer allocates sequence numbers.
*/
type Sequencer interface {

	/*
		NextSequence returns the next number of a sequence. An unseen
		sequence starts at 1.
	*/
	NextSequence(ctx context.Context, selector string) (uint64, error)

	/*
		ResetSequence sets the next number which a sequence returns.
	*/
	ResetSequence(ctx context.Context, selector string, start uint64) error
}
