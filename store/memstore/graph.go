/*
 * ontograph
 *
 * Copyright 2026 The ontograph Authors. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package memstore

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"devt.de/krotik/common/sortutil"
	"github.com/milko/ontograph/store"
)

/*
EdgeQuery is a recorded edge query of a MemoryGraphStore.
*/
type EdgeQuery struct {
	Vertex     uint64          // Queried vertex
	Predicates []string        // Requested predicates (nil for all)
	Direction  store.Direction // Requested direction
}

/*
String returns a string representation of an edge query.
*/
func (q EdgeQuery) String() string {
	if q.Predicates == nil {
		return fmt.Sprintf("%v %v *", q.Vertex, q.Direction)
	}
	return fmt.Sprintf("%v %v %v", q.Vertex, q.Direction, q.Predicates)
}

/*
MemoryGraphStore data structure
*/
type MemoryGraphStore struct {
	db        *MemoryDatabase                   // Database of this graph store
	vertices  map[uint64]map[string]interface{} // Vertex properties
	labels    map[uint64][]string               // Vertex labels
	edges     map[string]*store.EdgeRecord      // Edges by key
	edgeOrder []string                          // Edge keys in insertion order

	AccessMap  map[string]int // Special map to simulate access issues
	QueryDelay time.Duration  // Delay of each edge query
	Queries    []EdgeQuery    // All edge queries which have been issued
}

/*
CallNumVertexEdges returns the number of edge queries which have been issued.
*/
func (mgs *MemoryGraphStore) CallNumVertexEdges() int {
	mgs.db.server.mutex.Lock()
	defer mgs.db.server.mutex.Unlock()

	return len(mgs.Queries)
}

/*
LastQuery returns the last edge query which has been issued.
*/
func (mgs *MemoryGraphStore) LastQuery() (EdgeQuery, bool) {
	mgs.db.server.mutex.Lock()
	defer mgs.db.server.mutex.Unlock()

	if len(mgs.Queries) == 0 {
		return EdgeQuery{}, false
	}

	return mgs.Queries[len(mgs.Queries)-1], true
}

/*
SetVertex stores a vertex.
*/
func (mgs *MemoryGraphStore) SetVertex(ctx context.Context, props map[string]interface{},
	labels []string) (uint64, error) {

	mgs.db.server.mutex.Lock()
	defer mgs.db.server.mutex.Unlock()

	if err := mgs.db.checkOpen(ctx, store.ErrWriting); err != nil {
		return 0, err
	}

	props = store.CopyDocument(props)
	if props == nil {
		props = make(map[string]interface{})
	}

	var id uint64

	if val, ok := props[store.FieldID]; ok && val != nil {
		if id, ok = store.AsUint64(val); !ok || id == 0 {
			return 0, store.NewStoreError(store.ErrInvalidData,
				fmt.Sprint("Invalid vertex id:", val), mgs.db.name)
		}
	} else {
		var err error

		if id, err = mgs.db.seq.nextValue(store.VertexSequence); err != nil {
			return 0, err
		}
	}

	if mgs.AccessMap[strconv.FormatUint(id, 10)] == AccessWriteError {
		return 0, store.NewStoreError(store.ErrWriting, fmt.Sprint("Vertex:", id), mgs.db.name)
	}

	props[store.FieldID] = id

	mgs.vertices[id] = props
	mgs.labels[id] = append([]string(nil), labels...)

	return id, nil
}

/*
Vertex returns the properties of a vertex.
*/
func (mgs *MemoryGraphStore) Vertex(ctx context.Context, id uint64, assert bool) (map[string]interface{}, error) {
	mgs.db.server.mutex.Lock()
	defer mgs.db.server.mutex.Unlock()

	if err := mgs.db.checkOpen(ctx, store.ErrReading); err != nil {
		return nil, err
	} else if mgs.AccessMap[strconv.FormatUint(id, 10)] == AccessReadError {
		return nil, store.NewStoreError(store.ErrReading, fmt.Sprint("Vertex:", id), mgs.db.name)
	}

	props, ok := mgs.vertices[id]
	if !ok {
		if assert {
			return nil, store.NewStoreError(store.ErrNotFound, fmt.Sprint("Vertex:", id), mgs.db.name)
		}
		return nil, nil
	}

	return store.CopyDocument(props), nil
}

/*
Labels returns the labels of a vertex.
*/
func (mgs *MemoryGraphStore) Labels(id uint64) []string {
	mgs.db.server.mutex.Lock()
	defer mgs.db.server.mutex.Unlock()

	return append([]string(nil), mgs.labels[id]...)
}

/*
DeleteVertex removes a vertex and all its edges.
*/
func (mgs *MemoryGraphStore) DeleteVertex(ctx context.Context, id uint64) (store.DeleteResult, error) {
	mgs.db.server.mutex.Lock()
	defer mgs.db.server.mutex.Unlock()

	if err := mgs.db.checkOpen(ctx, store.ErrWriting); err != nil {
		return store.NotFound, err
	} else if mgs.AccessMap[strconv.FormatUint(id, 10)] == AccessWriteError {
		return store.NotFound, store.NewStoreError(store.ErrWriting, fmt.Sprint("Vertex:", id), mgs.db.name)
	}

	if _, ok := mgs.vertices[id]; !ok {
		return store.NotFound, nil
	}

	var keys []string

	for _, key := range mgs.edgeOrder {
		if e := mgs.edges[key]; e.Subject == id || e.Object == id {
			keys = append(keys, key)
		}
	}

	for _, key := range keys {
		mgs.removeEdge(key)
	}

	delete(mgs.vertices, id)
	delete(mgs.labels, id)

	return store.Deleted, nil
}

/*
SetEdge stores an edge between two existing vertices.
*/
func (mgs *MemoryGraphStore) SetEdge(ctx context.Context, subject uint64, predicate string,
	object uint64, props map[string]interface{}) (string, error) {

	mgs.db.server.mutex.Lock()
	defer mgs.db.server.mutex.Unlock()

	if err := mgs.db.checkOpen(ctx, store.ErrWriting); err != nil {
		return "", err
	}

	for _, v := range []uint64{subject, object} {
		if _, ok := mgs.vertices[v]; !ok {
			return "", store.NewStoreError(store.ErrInvalidData,
				fmt.Sprint("Unknown vertex:", v), mgs.db.name)
		}
	}

	key := store.EdgeKey(subject, predicate, object)

	if mgs.AccessMap[key] == AccessWriteError {
		return "", store.NewStoreError(store.ErrWriting, fmt.Sprint("Edge:", key), mgs.db.name)
	}

	if _, ok := mgs.edges[key]; !ok {
		mgs.edgeOrder = append(mgs.edgeOrder, key)
	}

	mgs.edges[key] = &store.EdgeRecord{Key: key, Subject: subject, Predicate: predicate,
		Object: object, Props: store.CopyDocument(props)}

	return key, nil
}

/*
Edge returns an edge.
*/
func (mgs *MemoryGraphStore) Edge(ctx context.Context, key string, assert bool) (*store.EdgeRecord, error) {
	mgs.db.server.mutex.Lock()
	defer mgs.db.server.mutex.Unlock()

	if err := mgs.db.checkOpen(ctx, store.ErrReading); err != nil {
		return nil, err
	}

	return mgs.fetchEdge(key, assert)
}

/*
fetchEdge returns a copy of an edge. The caller must hold the server lock.
*/
func (mgs *MemoryGraphStore) fetchEdge(key string, assert bool) (*store.EdgeRecord, error) {
	if mgs.AccessMap[key] == AccessReadError {
		return nil, store.NewStoreError(store.ErrReading, fmt.Sprint("Edge:", key), mgs.db.name)
	}

	e, ok := mgs.edges[key]
	if !ok {
		if assert {
			return nil, store.NewStoreError(store.ErrNotFound, fmt.Sprint("Edge:", key), mgs.db.name)
		}
		return nil, nil
	}

	ret := *e
	ret.Props = store.CopyDocument(e.Props)

	return &ret, nil
}

/*
DeleteEdge removes an edge.
*/
func (mgs *MemoryGraphStore) DeleteEdge(ctx context.Context, key string) (store.DeleteResult, error) {
	mgs.db.server.mutex.Lock()
	defer mgs.db.server.mutex.Unlock()

	if err := mgs.db.checkOpen(ctx, store.ErrWriting); err != nil {
		return store.NotFound, err
	} else if mgs.AccessMap[key] == AccessWriteError {
		return store.NotFound, store.NewStoreError(store.ErrWriting, fmt.Sprint("Edge:", key), mgs.db.name)
	}

	if _, ok := mgs.edges[key]; !ok {
		return store.NotFound, nil
	}

	mgs.removeEdge(key)

	return store.Deleted, nil
}

/*
removeEdge removes an edge. The caller must hold the server lock.
*/
func (mgs *MemoryGraphStore) removeEdge(key string) {
	delete(mgs.edges, key)

	order := mgs.edgeOrder[:0]
	for _, k := range mgs.edgeOrder {
		if k != key {
			order = append(order, k)
		}
	}
	mgs.edgeOrder = order
}

/*
VertexEdges returns a cursor over the edges of a vertex. Every call is
recorded in the Queries list.
*/
func (mgs *MemoryGraphStore) VertexEdges(ctx context.Context, vertex uint64, predicates []string,
	dir store.Direction) (store.Cursor, error) {

	mgs.db.server.mutex.Lock()

	query := EdgeQuery{vertex, nil, dir}
	if predicates != nil {
		query.Predicates = append([]string{}, predicates...)
	}
	mgs.Queries = append(mgs.Queries, query)

	delay := mgs.QueryDelay

	mgs.db.server.mutex.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
		}
	}

	mgs.db.server.mutex.Lock()
	defer mgs.db.server.mutex.Unlock()

	if err := mgs.db.checkOpen(ctx, store.ErrReading); err != nil {
		return nil, err
	} else if mgs.AccessMap[strconv.FormatUint(vertex, 10)] == AccessQueryError {
		return nil, store.NewStoreError(store.ErrReading, fmt.Sprint("Edges of vertex:", vertex), mgs.db.name)
	}

	var predSet map[string]bool
	if predicates != nil {
		predSet = make(map[string]bool, len(predicates))
		for _, p := range predicates {
			predSet[p] = true
		}
	}

	var refs []interface{}

	for _, key := range mgs.edgeOrder {
		e := mgs.edges[key]

		if predSet != nil && !predSet[e.Predicate] {
			continue
		}

		if (dir != store.DirIn && e.Subject == vertex) || (dir != store.DirOut && e.Object == vertex) {
			refs = append(refs, key)
		}
	}

	return store.NewCursor(ctx, refs, func(ctx context.Context, ref interface{}) (interface{}, interface{}, error) {
		mgs.db.server.mutex.Lock()
		defer mgs.db.server.mutex.Unlock()

		e, err := mgs.fetchEdge(ref.(string), true)

		return ref, e, err
	}), nil
}

/*
String returns a string representation of the graph store.
*/
func (mgs *MemoryGraphStore) String() string {
	mgs.db.server.mutex.Lock()
	defer mgs.db.server.mutex.Unlock()

	buf := new(bytes.Buffer)

	buf.WriteString(fmt.Sprintf("MemoryGraphStore %v\n", mgs.db.name))

	ids := make([]uint64, 0, len(mgs.vertices))
	for id := range mgs.vertices {
		ids = append(ids, id)
	}
	sortutil.UInt64s(ids)

	for _, id := range ids {
		buf.WriteString(fmt.Sprintf("%v %v - %v\n", id, mgs.labels[id], mgs.vertices[id]))
	}

	for _, key := range mgs.edgeOrder {
		buf.WriteString(fmt.Sprintf("%v - %v\n", key, mgs.edges[key].Props))
	}

	return buf.String()
}
