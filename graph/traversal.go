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
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/milko/ontograph/graph/data"
	"github.com/milko/ontograph/ontology"
	"github.com/milko/ontograph/store"
)

/*
PredicateSet selects the predicates of a neighbour lookup. A filtered set
always contains the subclass predicate.
*/
type PredicateSet struct {
	all   bool     // Flag if all predicates are selected
	names []string // Selected predicates
}

/*
AllPredicates returns a predicate set which selects all predicates.
*/
func AllPredicates() PredicateSet {
	return PredicateSet{all: true}
}

/*
Predicates returns a predicate set which selects the given predicates and
the subclass predicate. Without arguments only the subclass predicate is
selected.
*/
func Predicates(names ...string) PredicateSet {
	ret := PredicateSet{names: []string{ontology.PredicateSubclassOf}}
	seen := map[string]bool{ontology.PredicateSubclassOf: true}

	for _, name := range names {
		if name != "" && !seen[name] {
			seen[name] = true
			ret.names = append(ret.names, name)
		}
	}

	return ret
}

/*
All checks if this set selects all predicates.
*/
func (ps PredicateSet) All() bool {
	return ps.all
}

/*
Names returns the selected predicates. Returns nil if all predicates are
selected.
*/
func (ps PredicateSet) Names() []string {
	if ps.all {
		return nil
	}
	return append([]string(nil), ps.names...)
}

/*
String returns a string representation of this set.
*/
func (ps PredicateSet) String() string {
	if ps.all {
		return "*"
	}

	names := ps.Names()
	sort.Strings(names)

	return fmt.Sprint(names)
}

/*
direction of a neighbour lookup
*/
type direction int

/*
Lookup directions
*/
const (
	dirChildren direction = iota // Objects of edges where the node is the subject
	dirParents                   // Subjects of edges where the node is the object
)

/*
String returns a string representation of a lookup direction.
*/
func (d direction) String() string {
	if d == dirChildren {
		return "children"
	}
	return "parents"
}

/*
edgeDirection returns the graph store direction of a lookup direction.
*/
func (d direction) edgeDirection() store.Direction {
	if d == dirChildren {
		return store.DirOut
	}
	return store.DirIn
}

/*
neighbours holds the resolved neighbourhood of a node in one direction.
*/
type neighbours struct {
	complete bool                       // Flag if all predicates were resolved
	resolved map[string]bool            // Resolved predicates
	found    map[string][]uint64        // Found neighbours per predicate
	seen     map[string]map[uint64]bool // Lookup of found neighbours
}

/*
missing returns the predicates which need to be queried for a given set. A
nil result for a non-hit means that all predicates need to be queried.
*/
func (nb *neighbours) missing(preds PredicateSet) ([]string, bool) {
	if nb == nil {
		return preds.Names(), false
	} else if nb.complete {
		return nil, true
	} else if preds.all {
		return nil, false
	}

	var ret []string

	for _, name := range preds.names {
		if !nb.resolved[name] {
			ret = append(ret, name)
		}
	}

	return ret, len(ret) == 0
}

/*
add adds a neighbour under a predicate.
*/
func (nb *neighbours) add(predicate string, node uint64) {
	seen, ok := nb.seen[predicate]
	if !ok {
		seen = make(map[uint64]bool)
		nb.seen[predicate] = seen
	}

	if !seen[node] {
		seen[node] = true
		nb.found[predicate] = append(nb.found[predicate], node)
	}
}

/*
result returns the neighbours of a given predicate set.
*/
func (nb *neighbours) result(preds PredicateSet) map[string][]uint64 {
	ret := make(map[string][]uint64)

	if preds.all {
		for name, nodes := range nb.found {
			ret[name] = append([]uint64(nil), nodes...)
		}
		return ret
	}

	for _, name := range preds.names {
		if nodes, ok := nb.found[name]; ok {
			ret[name] = append([]uint64(nil), nodes...)
		}
	}

	return ret
}

/*
nodeRecord is the arena entry of a node.
*/
type nodeRecord struct {
	node uint64        // Native identifier of the node
	dirs [2]neighbours // Neighbourhood per direction
}

/*
TraversalCache walks the graph from a root node and caches all resolved
neighbourhoods and all loaded objects. A TraversalCache is safe for
concurrent use.
*/
type TraversalCache struct {
	id      string        // Session identifier
	gm      *Manager      // Manager of the graph
	lang    string        // Display language
	root    uint64        // Root node
	timeout time.Duration // Timeout for graph store queries

	arena []nodeRecord   // Neighbourhood records
	index map[uint64]int // Arena position of each node
	mutex *sync.Mutex    // Mutex for all cache operations

	tags  map[ontology.TagID]*ontology.Tag // Cached tags
	terms map[string]*ontology.Term        // Cached terms
	nodes map[uint64]*data.Node            // Cached nodes
	edges map[string]*data.Edge            // Cached edges
}

/*
NewTraversalCache creates a new traversal cache for a given root node. The
root can be a stored node or a node identifier. Text fields of cached
objects are shown in the given language.
*/
func NewTraversalCache(ctx context.Context, gm *Manager, root interface{}, lang string) (*TraversalCache, error) {
	id, err := nodeID(root)
	if err != nil {
		return nil, err
	}

	if lang == "" {
		lang = ontology.DefaultLanguage
	}

	tc := &TraversalCache{uuid.NewString(), gm, lang, id, 0, nil,
		make(map[uint64]int), &sync.Mutex{}, make(map[ontology.TagID]*ontology.Tag),
		make(map[string]*ontology.Term), make(map[uint64]*data.Node), make(map[string]*data.Edge)}

	node, ok := root.(*data.Node)
	if !ok {
		if node, err = gm.FetchNode(ctx, id, true); err != nil {
			return nil, err
		}
	}

	if err = tc.cacheNode(ctx, node); err != nil {
		return nil, err
	}

	logger.Debug("Traversal ", tc.id, " started from node ", id)

	return tc, nil
}

/*
ID returns the session identifier of this cache.
*/
func (tc *TraversalCache) ID() string {
	return tc.id
}

/*
Language returns the display language of this cache.
*/
func (tc *TraversalCache) Language() string {
	return tc.lang
}

/*
Root returns the root node.
*/
func (tc *TraversalCache) Root() *data.Node {
	return tc.Node(tc.root)
}

/*
SetTimeout sets the timeout of graph store queries. A zero value disables
the timeout.
*/
func (tc *TraversalCache) SetTimeout(timeout time.Duration) {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	tc.timeout = timeout
}

/*
Children returns the children of a node grouped by predicate. Children are
the objects of the edges which have the node as subject.
*/
func (tc *TraversalCache) Children(ctx context.Context, node interface{},
	preds PredicateSet) (map[string][]uint64, error) {

	return tc.neighbours(ctx, node, preds, dirChildren)
}

/*
Parents returns the parents of a node grouped by predicate. Parents are the
subjects of the edges which have the node as object.
*/
func (tc *TraversalCache) Parents(ctx context.Context, node interface{},
	preds PredicateSet) (map[string][]uint64, error) {

	return tc.neighbours(ctx, node, preds, dirParents)
}

/*
ChildrenOf returns the children of a list of nodes.
*/
func (tc *TraversalCache) ChildrenOf(ctx context.Context, nodes []interface{},
	preds PredicateSet) (map[uint64]map[string][]uint64, error) {

	return tc.neighboursOf(ctx, nodes, preds, dirChildren)
}

/*
ParentsOf returns the parents of a list of nodes.
*/
func (tc *TraversalCache) ParentsOf(ctx context.Context, nodes []interface{},
	preds PredicateSet) (map[uint64]map[string][]uint64, error) {

	return tc.neighboursOf(ctx, nodes, preds, dirParents)
}

/*
neighboursOf looks up the neighbours of a list of nodes.
*/
func (tc *TraversalCache) neighboursOf(ctx context.Context, nodes []interface{},
	preds PredicateSet, dir direction) (map[uint64]map[string][]uint64, error) {

	ret := make(map[uint64]map[string][]uint64, len(nodes))

	for _, node := range nodes {
		id, err := nodeID(node)
		if err != nil {
			return nil, err
		}

		if ret[id], err = tc.neighbours(ctx, id, preds, dir); err != nil {
			return nil, err
		}
	}

	return ret, nil
}

/*
neighbours looks up the neighbours of a node. Only predicates which have not
been resolved before are queried. A failed query does not change the cache.
*/
func (tc *TraversalCache) neighbours(ctx context.Context, node interface{},
	preds PredicateSet, dir direction) (map[string][]uint64, error) {

	id, err := nodeID(node)
	if err != nil {
		return nil, err
	}

	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	var nb *neighbours
	if pos, ok := tc.index[id]; ok {
		nb = &tc.arena[pos].dirs[dir]
	}

	missing, hit := nb.missing(preds)

	if hit {
		traversalLookups.WithLabelValues(dir.String(), "hit").Inc()
		return nb.result(preds), nil
	}

	traversalLookups.WithLabelValues(dir.String(), "miss").Inc()

	edges, err := tc.fetchEdges(ctx, id, missing, dir)
	if err != nil {
		return nil, err
	}

	// Merge the query result

	nb = tc.record(id, dir)

	for _, e := range edges {
		if dir == dirChildren {
			nb.add(e.Predicate(), e.Object())
		} else {
			nb.add(e.Predicate(), e.Subject())
		}
	}

	if missing == nil {
		nb.complete = true
	} else {
		for _, name := range missing {
			nb.resolved[name] = true
		}
	}

	return nb.result(preds), nil
}

/*
record returns the neighbourhood record of a node. The record is created if
it does not exist.
*/
func (tc *TraversalCache) record(id uint64, dir direction) *neighbours {
	pos, ok := tc.index[id]

	if !ok {
		rec := nodeRecord{node: id}

		for i := range rec.dirs {
			rec.dirs[i] = neighbours{false, make(map[string]bool),
				make(map[string][]uint64), make(map[string]map[uint64]bool)}
		}

		pos = len(tc.arena)
		tc.arena = append(tc.arena, rec)
		tc.index[id] = pos
	}

	return &tc.arena[pos].dirs[dir]
}

/*
fetchEdges queries the edges of a node and caches them. A nil predicate list
queries all edges.
*/
func (tc *TraversalCache) fetchEdges(ctx context.Context, id uint64, predicates []string,
	dir direction) ([]*data.Edge, error) {

	var edges []*data.Edge

	if tc.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, tc.timeout)
		defer cancel()
	}

	logger.Debug("Traversal ", tc.id, " queries ", dir, " of node ", id, " for ", predicates)

	it, err := tc.gm.NodeEdges(ctx, id, predicates, dir.edgeDirection())

	if err == nil {
		for e := it.Next(); e != nil; e = it.Next() {
			edges = append(edges, e)
		}

		err = it.Error()
		it.Close()
	}

	for i := 0; err == nil && i < len(edges); i++ {
		err = tc.cacheEdge(ctx, edges[i])
	}

	if err != nil {
		traversalQueries.WithLabelValues(dir.String(), "error").Inc()
		return nil, err
	}

	traversalQueries.WithLabelValues(dir.String(), "ok").Inc()

	return edges, nil
}

/*
CacheObject adds a tag, a term, a node or an edge to this cache. Nodes are
cached together with the term or tag they reference, edges together with
both of their nodes.
*/
func (tc *TraversalCache) CacheObject(ctx context.Context, obj interface{}) error {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	switch o := obj.(type) {
	case *ontology.Tag:
		tc.cacheTag(o)
	case *ontology.Term:
		tc.cacheTerm(o)
	case *data.Node:
		return tc.cacheNode(ctx, o)
	case *data.Edge:
		return tc.cacheEdge(ctx, o)
	default:
		return ontology.NewError(ontology.ErrType, fmt.Sprintf("Cannot cache object of type %T", obj))
	}

	return nil
}

/*
cacheTag caches a tag.
*/
func (tc *TraversalCache) cacheTag(tag *ontology.Tag) {
	if _, ok := tc.tags[tag.NID()]; !ok {
		tag.Localize(tc.lang)
		tc.tags[tag.NID()] = tag
		traversalObjects.WithLabelValues("tag").Inc()
	}
}

/*
cacheTerm caches a term.
*/
func (tc *TraversalCache) cacheTerm(term *ontology.Term) {
	if _, ok := tc.terms[term.GlobalID()]; !ok {
		term.Localize(tc.lang)
		tc.terms[term.GlobalID()] = term
		traversalObjects.WithLabelValues("term").Inc()
	}
}

/*
cacheNode caches a node and the term or tag it references.
*/
func (tc *TraversalCache) cacheNode(ctx context.Context, node *data.Node) error {
	id := node.ID()

	if id == 0 {
		return ontology.NewError(ontology.ErrInvalidData, "Cannot cache a node which was not stored")
	} else if _, ok := tc.nodes[id]; ok {
		return nil
	}

	onto := tc.gm.Ontology()
	ref := node.Reference()

	switch ref.Kind {
	case data.RefTerm:
		if _, ok := tc.terms[ref.ID]; !ok {
			term, err := onto.Term(ctx, ref.ID, false)
			if err != nil {
				return err
			} else if term != nil {
				tc.cacheTerm(term)
			}
		}
	case data.RefTag:
		tag, err := onto.TagByGlobalID(ctx, ref.ID, false)
		if err != nil {
			return err
		} else if tag != nil {
			tc.cacheTag(tag)
		}
	}

	tc.nodes[id] = node
	traversalObjects.WithLabelValues("node").Inc()

	return nil
}

/*
cacheEdge caches an edge and both of its nodes.
*/
func (tc *TraversalCache) cacheEdge(ctx context.Context, edge *data.Edge) error {
	key := edge.Identifier()

	if key == "" {
		return ontology.NewError(ontology.ErrInvalidData, "Cannot cache an incomplete edge")
	} else if _, ok := tc.edges[key]; ok {
		return nil
	}

	for _, id := range []uint64{edge.Subject(), edge.Object()} {
		if _, ok := tc.nodes[id]; !ok {
			node, err := tc.gm.FetchNode(ctx, id, true)
			if err == nil {
				err = tc.cacheNode(ctx, node)
			}
			if err != nil {
				return err
			}
		}
	}

	tc.edges[key] = edge
	traversalObjects.WithLabelValues("edge").Inc()

	return nil
}

/*
Tag returns a cached tag.
*/
func (tc *TraversalCache) Tag(nid ontology.TagID) *ontology.Tag {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	return tc.tags[nid]
}

/*
Term returns a cached term.
*/
func (tc *TraversalCache) Term(gid string) *ontology.Term {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	return tc.terms[gid]
}

/*
Node returns a cached node.
*/
func (tc *TraversalCache) Node(id uint64) *data.Node {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	return tc.nodes[id]
}

/*
Edge returns a cached edge.
*/
func (tc *TraversalCache) Edge(key string) *data.Edge {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	return tc.edges[key]
}

/*
nodeID returns the native identifier of a node or a node identifier.
*/
func nodeID(node interface{}) (uint64, error) {
	var id uint64
	var ok bool

	switch n := node.(type) {
	case *data.Node:
		id, ok = n.ID(), true
	case string, json.Number, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		id, ok = store.AsUint64(n)
	default:
		return 0, ontology.NewError(ontology.ErrType, fmt.Sprintf("Expected a node not %T", node))
	}

	if !ok || id == 0 {
		return 0, ontology.NewError(ontology.ErrInvalidData, fmt.Sprint("Invalid node: ", node))
	}

	return id, nil
}
