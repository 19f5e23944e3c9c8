/*
 * ontograph
 *
 * Copyright 2026 The ontograph Authors. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package graph

import (
	"context"
	"fmt"
	"sync"

	"github.com/milko/ontograph/graph/data"
	"github.com/milko/ontograph/ontology"
	"github.com/milko/ontograph/store"
)

/*
Manager data structure
*/
type Manager struct {
	onto  *ontology.Ontology // Ontology which is referenced by the graph
	gs    store.GraphStore   // Graph store of the ontology database
	gr    *graphRulesManager // Manager for graph rules
	mutex *sync.RWMutex      // Mutex to protect atomic graph operations
}

/*
NewManager returns a new Manager instance for the graph of a given ontology.
*/
func NewManager(ctx context.Context, onto *ontology.Ontology) (*Manager, error) {
	gm, err := newManagerNoRules(ctx, onto)

	if err == nil {
		gm.SetGraphRule(&SystemRuleCheckReferences{})
		gm.SetGraphRule(&SystemRuleProtectNodeEdges{})
	}

	return gm, err
}

/*
newManagerNoRules returns a new Manager instance without loading rules.
*/
func newManagerNoRules(ctx context.Context, onto *ontology.Ontology) (*Manager, error) {
	gs, err := onto.Database().Graph(ctx)
	if err != nil {
		return nil, err
	}

	gm := &Manager{onto, gs, &graphRulesManager{nil, make(map[string]Rule),
		make(map[int]map[string]Rule)}, &sync.RWMutex{}}

	gm.gr.gm = gm

	return gm, nil
}

/*
Ontology returns the ontology of this manager.
*/
func (gm *Manager) Ontology() *ontology.Ontology {
	return gm.onto
}

/*
SetGraphRule sets a GraphRule.
*/
func (gm *Manager) SetGraphRule(rule Rule) {
	gm.gr.SetGraphRule(rule)
}

/*
GraphRules returns a list of all available graph rules.
*/
func (gm *Manager) GraphRules() []string {
	return gm.gr.GraphRules()
}

/*
StoreNode stores a node and returns its native identifier. A node without
identifier gets a new identifier. The reference of an existing node cannot
be changed.
*/
func (gm *Manager) StoreNode(ctx context.Context, node *data.Node) (uint64, error) {
	gm.mutex.Lock()
	defer gm.mutex.Unlock()

	if id := node.ID(); id != 0 {
		props, err := gm.gs.Vertex(ctx, id, false)
		if err != nil {
			return 0, err
		}

		if props != nil {
			old := data.NewNodeFromMap(gm.onto.Identifiers(), props)

			if old.Reference() != node.Reference() {
				return 0, ontology.NewError(ontology.ErrInvalidData,
					fmt.Sprintf("Reference of stored node %v cannot be changed from %v to %v",
						id, old.Reference(), node.Reference()))
			}
		}
	}

	if err := gm.gr.graphEvent(ctx, EventNodeStore, node); err != nil {
		if err == ErrEventHandled {
			err = nil
		}
		return node.ID(), err
	}

	id, err := gm.gs.SetVertex(ctx, node.Flatten(), []string{node.Reference().Kind.String()})
	if err != nil {
		return 0, err
	}

	node.SetID(id)

	logger.Debug("Stored node ", id, " referencing ", node.Reference())

	return id, gm.gr.graphEvent(ctx, EventNodeStored, node)
}

/*
FetchNode fetches a single node. Returns nil if the node does not exist
unless assert is set.
*/
func (gm *Manager) FetchNode(ctx context.Context, id uint64, assert bool) (*data.Node, error) {
	gm.mutex.RLock()
	defer gm.mutex.RUnlock()

	return gm.fetchNode(ctx, id, assert)
}

/*
fetchNode fetches a single node. The caller must hold a lock.
*/
func (gm *Manager) fetchNode(ctx context.Context, id uint64, assert bool) (*data.Node, error) {
	props, err := gm.gs.Vertex(ctx, id, false)

	if err == nil && props == nil && assert {
		err = ontology.NewError(ontology.ErrResolution, fmt.Sprint("Unknown node: ", id))
	}

	if err != nil || props == nil {
		return nil, err
	}

	return data.NewNodeFromMap(gm.onto.Identifiers(), props), nil
}

/*
RemoveNode removes a single node.
*/
func (gm *Manager) RemoveNode(ctx context.Context, id uint64) (store.DeleteResult, error) {
	gm.mutex.Lock()
	defer gm.mutex.Unlock()

	node, err := gm.fetchNode(ctx, id, false)
	if err != nil || node == nil {
		return store.NotFound, err
	}

	if err := gm.gr.graphEvent(ctx, EventNodeDelete, node); err != nil {
		if err == ErrEventHandled {
			err = nil
		}
		return store.NotFound, err
	}

	res, err := gm.gs.DeleteVertex(ctx, id)

	if err == nil && res == store.Deleted {
		logger.Debug("Removed node ", id)

		err = gm.gr.graphEvent(ctx, EventNodeDeleted, node)
	}

	return res, err
}

/*
StoreEdge stores an edge and returns its identifier. The predicate must be
a known term and both nodes must exist.
*/
func (gm *Manager) StoreEdge(ctx context.Context, edge *data.Edge) (string, error) {
	gm.mutex.Lock()
	defer gm.mutex.Unlock()

	if edge.Identifier() == "" {
		return "", ontology.NewError(ontology.ErrInvalidData,
			"Edge needs a subject, a predicate and an object")
	}

	if err := gm.gr.graphEvent(ctx, EventEdgeStore, edge); err != nil {
		if err == ErrEventHandled {
			err = nil
		}
		return edge.ID(), err
	}

	key, err := gm.gs.SetEdge(ctx, edge.Subject(), edge.Predicate(), edge.Object(), edge.Properties())
	if err != nil {
		return "", err
	}

	logger.Debug("Stored edge ", key)

	return key, gm.gr.graphEvent(ctx, EventEdgeStored, edge)
}

/*
FetchEdge fetches a single edge. Returns nil if the edge does not exist
unless assert is set.
*/
func (gm *Manager) FetchEdge(ctx context.Context, key string, assert bool) (*data.Edge, error) {
	gm.mutex.RLock()
	defer gm.mutex.RUnlock()

	rec, err := gm.gs.Edge(ctx, key, false)

	if err == nil && rec == nil && assert {
		err = ontology.NewError(ontology.ErrResolution, fmt.Sprint("Unknown edge: ", key))
	}

	if err != nil || rec == nil {
		return nil, err
	}

	return data.NewEdgeFromRecord(gm.onto.Identifiers(), rec), nil
}

/*
RemoveEdge removes a single edge.
*/
func (gm *Manager) RemoveEdge(ctx context.Context, key string) (store.DeleteResult, error) {
	gm.mutex.Lock()
	defer gm.mutex.Unlock()

	rec, err := gm.gs.Edge(ctx, key, false)
	if err != nil || rec == nil {
		return store.NotFound, err
	}

	res, err := gm.gs.DeleteEdge(ctx, key)

	if err == nil && res == store.Deleted {
		logger.Debug("Removed edge ", key)

		err = gm.gr.graphEvent(ctx, EventEdgeDeleted, data.NewEdgeFromRecord(gm.onto.Identifiers(), rec))
	}

	return res, err
}

/*
NodeEdges returns an iterator over the edges of a node in a given
direction. A nil predicate list selects all edges.
*/
func (gm *Manager) NodeEdges(ctx context.Context, id uint64, predicates []string,
	dir store.Direction) (*EdgeIterator, error) {

	gm.mutex.RLock()
	defer gm.mutex.RUnlock()

	c, err := gm.gs.VertexEdges(ctx, id, predicates, dir)
	if err != nil {
		return nil, err
	}

	return &EdgeIterator{gm, c, nil}, nil
}
