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
Package graph contains the main API to the ontology graph.

Manager API

The main API is provided by a Manager object which can be created with the
NewManager() constructor function. The manager provides CRUD functionality
for nodes and edges through store, fetch and remove functions. Nodes and
edges are stored in the graph store of the database which holds the
ontology.

Traversal cache

A TraversalCache walks the graph from a root node. It remembers for each
visited node and direction which predicates were already resolved and which
neighbours were found under each predicate. A request for further predicates
queries the graph store only for the predicates which are not known yet.
Every object which is loaded during a traversal is cached together with the
objects it references.

Rules

Graph rules provide automatic operations which help to keep the graph
consistent. Rules trigger on graph events. The rules SystemRuleCheckReferences
and SystemRuleProtectNodeEdges are automatically loaded when a new Manager is
created. See the code for further details.
*/
package graph

import (
	"errors"
	"fmt"

	"devt.de/krotik/common/logutil"
)

/*
logger is the logger of the graph package
*/
var logger = logutil.GetLogger("ontograph.graph")

/*
Error is a graph related error
*/
type Error struct {
	Type   error   // Error type (to be used for equal checks)
	Detail string  // Details of this error
	Causes []error // Errors which caused this error
}

/*
Error returns a human-readable string representation of this error.
*/
func (ge *Error) Error() string {
	if ge.Detail != "" {
		return fmt.Sprintf("GraphError: %v (%v)", ge.Type, ge.Detail)
	}

	return fmt.Sprintf("GraphError: %v", ge.Type)
}

/*
Unwrap returns the error type and the causes of this error.
*/
func (ge *Error) Unwrap() []error {
	return append([]error{ge.Type}, ge.Causes...)
}

/*
Graph related error types
*/
var (
	ErrRule = errors.New("Graph rule error")
)

/*
ErrEventHandled is a special error which a rule can return to signal that
an event was fully handled and the default operation should be skipped.
*/
var ErrEventHandled = errors.New("Event handled upstream")

// Graph events
//=============

/*
EventNodeStore is thrown before a node gets stored.

Parameters: node to store
*/
const EventNodeStore = 0x01

/*
EventNodeStored is thrown when a node was stored.

Parameters: stored node
*/
const EventNodeStored = 0x02

/*
EventNodeDelete is thrown before a node gets deleted.

Parameters: node to delete
*/
const EventNodeDelete = 0x03

/*
EventNodeDeleted is thrown when a node was deleted.

Parameters: deleted node
*/
const EventNodeDeleted = 0x04

/*
EventEdgeStore is thrown before an edge gets stored.

Parameters: edge to store
*/
const EventEdgeStore = 0x05

/*
EventEdgeStored is thrown when an edge was stored.

Parameters: stored edge
*/
const EventEdgeStored = 0x06

/*
EventEdgeDeleted is thrown when an edge was deleted.

Parameters: deleted edge
*/
const EventEdgeDeleted = 0x07
