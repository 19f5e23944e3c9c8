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
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"devt.de/krotik/common/errorutil"
	"github.com/milko/ontograph/graph/data"
	"github.com/milko/ontograph/ontology"
	"github.com/milko/ontograph/store"
	"github.com/milko/ontograph/store/memstore"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

/*
newTestTraversalGraph creates the following graph:

	1 -is-a-> 2
	1 -is-a-> 3
	1 -part-of-> 4
	1 -SUBCLASS-OF-> 5
	6 -is-a-> 1
*/
func newTestTraversalGraph(t *testing.T) (*Manager, *memstore.MemoryGraphStore) {
	gm, gs := newTestManager(t)

	for _, lid := range []string{"root", "b", "c", "d", "e", "f", "is-a", "part-of"} {
		addTestTerm(gm, lid)
	}

	for _, lid := range []string{"root", "b", "c", "d", "e", "f"} {
		addTestNode(gm, lid)
	}

	addTestEdge(gm, 1, "is-a", 2)
	addTestEdge(gm, 1, "is-a", 3)
	addTestEdge(gm, 1, "part-of", 4)
	addTestEdge(gm, 1, ontology.PredicateSubclassOf, 5)
	addTestEdge(gm, 6, "is-a", 1)

	return gm, gs
}

/*
lastQuery returns the last edge query as a string.
*/
func lastQuery(gs *memstore.MemoryGraphStore) string {
	q, _ := gs.LastQuery()
	return q.String()
}

func TestPredicateSet(t *testing.T) {
	if res := AllPredicates(); !res.All() || res.Names() != nil || res.String() != "*" {
		t.Error("Unexpected result:", res)
		return
	}

	if res := Predicates(); res.All() || fmt.Sprint(res.Names()) != "[:predicate:SUBCLASS-OF]" {
		t.Error("Unexpected result:", res)
		return
	}

	if res := Predicates("is-a", "", ontology.PredicateSubclassOf, "is-a", "part-of"); res.String() !=
		"[:predicate:SUBCLASS-OF is-a part-of]" {
		t.Error("Unexpected result:", res)
		return
	}
}

func TestTraversalScenario(t *testing.T) {
	ctx := context.Background()
	gm, gs := newTestTraversalGraph(t)

	tc, err := NewTraversalCache(ctx, gm, 1, "de")
	errorutil.AssertOk(err)

	if tc.Root().ID() != 1 || tc.Language() != "de" || tc.ID() == "" {
		t.Error("Unexpected result:", tc.Root(), tc.Language(), tc.ID())
		return
	}

	// The root and its term are cached but no neighbours are loaded

	if term := tc.Term("root"); term == nil || term.Attr(ontology.TagLabel) != "Etikett root" {
		t.Error("Unexpected result:", term)
		return
	}

	if tc.Node(2) != nil {
		t.Error("Neighbours should not be loaded")
		return
	}

	queries := gs.CallNumVertexEdges()
	hits := testutil.ToFloat64(traversalLookups.WithLabelValues("children", "hit"))

	res, err := tc.Children(ctx, 1, Predicates("is-a"))

	if fmt.Sprint(res) != "map[:predicate:SUBCLASS-OF:[5] is-a:[2 3]]" || err != nil {
		t.Error("Unexpected result:", res, err)
		return
	}

	if gs.CallNumVertexEdges() != queries+1 || lastQuery(gs) != "1 out [:predicate:SUBCLASS-OF is-a]" {
		t.Error("Unexpected queries:", gs.Queries)
		return
	}

	// Edges are cached with their nodes and the nodes with their terms

	for _, key := range []string{"1/is-a/2", "1/is-a/3", "1/:predicate:SUBCLASS-OF/5"} {
		if tc.Edge(key) == nil {
			t.Error("Edge should be cached:", key)
			return
		}
	}

	if tc.Node(2) == nil || tc.Node(3) == nil || tc.Node(4) != nil {
		t.Error("Unexpected cached nodes")
		return
	}

	if term := tc.Term("c"); term == nil || term.Attr(ontology.TagLabel) != "Etikett c" {
		t.Error("Unexpected result:", term)
		return
	}

	// A second identical call is answered from the cache

	res2, err := tc.Children(ctx, tc.Root(), Predicates("is-a"))

	if fmt.Sprint(res2) != fmt.Sprint(res) || err != nil || gs.CallNumVertexEdges() != queries+1 {
		t.Error("Unexpected result:", res2, err, gs.CallNumVertexEdges())
		return
	}

	if res := testutil.ToFloat64(traversalLookups.WithLabelValues("children", "hit")); res != hits+1 {
		t.Error("Unexpected number of cache hits:", res-hits)
		return
	}

	// Results are copies

	res2["is-a"][0] = 99

	if res3, _ := tc.Children(ctx, 1, Predicates("is-a")); res3["is-a"][0] != 2 {
		t.Error("Unexpected result:", res3)
		return
	}
}

func TestTraversalIncremental(t *testing.T) {
	ctx := context.Background()
	gm, gs := newTestTraversalGraph(t)

	tc, err := NewTraversalCache(ctx, gm, 1, "")
	errorutil.AssertOk(err)

	queries := gs.CallNumVertexEdges()

	res1, err := tc.Children(ctx, 1, Predicates("is-a"))
	errorutil.AssertOk(err)

	// Only the new predicate is queried

	res2, err := tc.Children(ctx, 1, Predicates("is-a", "part-of"))

	if fmt.Sprint(res2) != "map[:predicate:SUBCLASS-OF:[5] is-a:[2 3] part-of:[4]]" || err != nil {
		t.Error("Unexpected result:", res2, err)
		return
	}

	if gs.CallNumVertexEdges() != queries+2 || lastQuery(gs) != "1 out [part-of]" {
		t.Error("Unexpected queries:", gs.Queries)
		return
	}

	if fmt.Sprint(res1["is-a"]) != fmt.Sprint(res2["is-a"]) {
		t.Error("Known predicates should be unchanged:", res1, res2)
		return
	}

	// Subsets of known predicates are answered from the cache

	if res, _ := tc.Children(ctx, 1, Predicates("part-of")); fmt.Sprint(res) !=
		"map[:predicate:SUBCLASS-OF:[5] part-of:[4]]" {
		t.Error("Unexpected result:", res)
		return
	}

	if res, _ := tc.Children(ctx, 1, Predicates()); fmt.Sprint(res) != "map[:predicate:SUBCLASS-OF:[5]]" {
		t.Error("Unexpected result:", res)
		return
	}

	if gs.CallNumVertexEdges() != queries+2 {
		t.Error("Unexpected queries:", gs.Queries)
		return
	}

	// Unknown predicates need a query even if nothing is found

	if res, _ := tc.Children(ctx, 1, Predicates("unknown")); fmt.Sprint(res) != "map[:predicate:SUBCLASS-OF:[5]]" ||
		lastQuery(gs) != "1 out [unknown]" {
		t.Error("Unexpected result:", res, lastQuery(gs))
		return
	}

	// Requesting all predicates queries all edges once

	res3, err := tc.Children(ctx, 1, AllPredicates())

	if fmt.Sprint(res3) != "map[:predicate:SUBCLASS-OF:[5] is-a:[2 3] part-of:[4]]" || err != nil ||
		lastQuery(gs) != "1 out *" {
		t.Error("Unexpected result:", res3, err, lastQuery(gs))
		return
	}

	queries = gs.CallNumVertexEdges()

	tc.Children(ctx, 1, AllPredicates())
	tc.Children(ctx, 1, Predicates("other"))

	if gs.CallNumVertexEdges() != queries {
		t.Error("Complete neighbourhoods should not be queried again")
		return
	}
}

func TestTraversalAllThenSubset(t *testing.T) {
	ctx := context.Background()
	gm, gs := newTestTraversalGraph(t)

	tc, err := NewTraversalCache(ctx, gm, 1, "")
	errorutil.AssertOk(err)

	queries := gs.CallNumVertexEdges()

	all, err := tc.Children(ctx, 1, AllPredicates())
	errorutil.AssertOk(err)

	sub, err := tc.Children(ctx, 1, Predicates("is-a"))
	errorutil.AssertOk(err)

	if fmt.Sprint(sub["is-a"]) != fmt.Sprint(all["is-a"]) || len(sub) != 2 {
		t.Error("Unexpected result:", all, sub)
		return
	}

	if gs.CallNumVertexEdges() != queries+1 {
		t.Error("Unexpected queries:", gs.Queries)
		return
	}
}

func TestTraversalEmptyPredicates(t *testing.T) {
	ctx := context.Background()
	gm, gs := newTestTraversalGraph(t)

	tc, err := NewTraversalCache(ctx, gm, 1, "")
	errorutil.AssertOk(err)

	// An empty filter selects only the subclass predicate

	if res, _ := tc.Children(ctx, 1, Predicates()); fmt.Sprint(res) != "map[:predicate:SUBCLASS-OF:[5]]" ||
		lastQuery(gs) != "1 out [:predicate:SUBCLASS-OF]" {
		t.Error("Unexpected result:", res, lastQuery(gs))
		return
	}

	// A partial load does not answer other predicates

	if res, _ := tc.Children(ctx, 1, Predicates("is-a")); fmt.Sprint(res) != "map[:predicate:SUBCLASS-OF:[5] is-a:[2 3]]" ||
		lastQuery(gs) != "1 out [is-a]" {
		t.Error("Unexpected result:", res, lastQuery(gs))
		return
	}
}

func TestTraversalParents(t *testing.T) {
	ctx := context.Background()
	gm, gs := newTestTraversalGraph(t)

	tc, err := NewTraversalCache(ctx, gm, 1, "")
	errorutil.AssertOk(err)

	res, err := tc.Parents(ctx, 1, Predicates("is-a"))

	if fmt.Sprint(res) != "map[is-a:[6]]" || err != nil || lastQuery(gs) != "1 in [:predicate:SUBCLASS-OF is-a]" {
		t.Error("Unexpected result:", res, err, lastQuery(gs))
		return
	}

	// Both directions are resolved independently

	queries := gs.CallNumVertexEdges()

	if res, _ := tc.Children(ctx, 1, Predicates("is-a")); fmt.Sprint(res) != "map[:predicate:SUBCLASS-OF:[5] is-a:[2 3]]" ||
		gs.CallNumVertexEdges() != queries+1 {
		t.Error("Unexpected result:", res)
		return
	}

	// Lists of nodes

	lres, err := tc.ParentsOf(ctx, []interface{}{tc.Node(2), 3, "1"}, Predicates("is-a"))

	if fmt.Sprint(lres) != "map[1:map[is-a:[6]] 2:map[is-a:[1]] 3:map[is-a:[1]]]" || err != nil {
		t.Error("Unexpected result:", lres, err)
		return
	}

	lres, err = tc.ChildrenOf(ctx, []interface{}{1, 6}, AllPredicates())

	if fmt.Sprint(lres) != "map[1:map[:predicate:SUBCLASS-OF:[5] is-a:[2 3] part-of:[4]] 6:map[is-a:[1]]]" || err != nil {
		t.Error("Unexpected result:", lres, err)
		return
	}

	if _, err := tc.ChildrenOf(ctx, []interface{}{1, []string{"x"}}, AllPredicates()); !errors.Is(err, ontology.ErrType) {
		t.Error("Unexpected result:", err)
		return
	}
}

func TestTraversalFailures(t *testing.T) {
	ctx := context.Background()
	gm, gs := newTestTraversalGraph(t)

	tc, err := NewTraversalCache(ctx, gm, 1, "")
	errorutil.AssertOk(err)

	// A query which times out is not recorded

	gs.QueryDelay = 100 * time.Millisecond
	tc.SetTimeout(5 * time.Millisecond)

	if _, err := tc.Children(ctx, 1, Predicates("is-a")); !errors.Is(err, store.ErrReading) {
		t.Error("Unexpected result:", err)
		return
	}

	gs.QueryDelay = 0
	tc.SetTimeout(time.Second)

	queries := gs.CallNumVertexEdges()

	if res, err := tc.Children(ctx, 1, Predicates("is-a")); fmt.Sprint(res) != "map[:predicate:SUBCLASS-OF:[5] is-a:[2 3]]" ||
		err != nil || gs.CallNumVertexEdges() != queries+1 {
		t.Error("Unexpected result:", res, err)
		return
	}

	// A failing query is not recorded

	gs.AccessMap["1"] = memstore.AccessQueryError

	if _, err := tc.Children(ctx, 1, Predicates("part-of")); !errors.Is(err, store.ErrReading) {
		t.Error("Unexpected result:", err)
		return
	}

	delete(gs.AccessMap, "1")

	// A failure while caching the found objects is not recorded

	gs.AccessMap["4"] = memstore.AccessReadError

	if _, err := tc.Children(ctx, 1, Predicates("part-of")); !errors.Is(err, store.ErrReading) {
		t.Error("Unexpected result:", err)
		return
	}

	delete(gs.AccessMap, "4")

	if res, err := tc.Children(ctx, 1, Predicates("part-of")); fmt.Sprint(res) != "map[:predicate:SUBCLASS-OF:[5] part-of:[4]]" ||
		err != nil || lastQuery(gs) != "1 out [part-of]" {
		t.Error("Unexpected result:", res, err, lastQuery(gs))
		return
	}

	// Invalid input

	if _, err := tc.Children(ctx, 0, AllPredicates()); !errors.Is(err, ontology.ErrInvalidData) {
		t.Error("Unexpected result:", err)
		return
	}

	if _, err := NewTraversalCache(ctx, gm, 99, ""); !errors.Is(err, ontology.ErrResolution) {
		t.Error("Unexpected result:", err)
		return
	}

	if _, err := NewTraversalCache(ctx, gm, data.NewNode(nil), ""); !errors.Is(err, ontology.ErrInvalidData) {
		t.Error("Unexpected result:", err)
		return
	}

	if err := tc.CacheObject(ctx, "x"); !errors.Is(err, ontology.ErrType) {
		t.Error("Unexpected result:", err)
		return
	}
}

func TestTraversalCacheObject(t *testing.T) {
	ctx := context.Background()
	gm, _ := newTestTraversalGraph(t)

	tc, err := NewTraversalCache(ctx, gm, 1, "de")
	errorutil.AssertOk(err)

	tag, err := gm.Ontology().TagByGlobalID(ctx, ":label", true)
	errorutil.AssertOk(err)

	errorutil.AssertOk(tc.CacheObject(ctx, tag))

	if res := tc.Tag(ontology.TagLabel); res == nil || res.GlobalID() != ":label" {
		t.Error("Unexpected result:", res)
		return
	}

	edge, err := gm.FetchEdge(ctx, "6/is-a/1", true)
	errorutil.AssertOk(err)

	errorutil.AssertOk(tc.CacheObject(ctx, edge))

	if tc.Node(6) == nil || tc.Term("f") == nil || tc.Edge("6/is-a/1") == nil {
		t.Error("Edge should be cached with its nodes")
		return
	}

	if err := tc.CacheObject(ctx, data.NewEdge(nil)); !errors.Is(err, ontology.ErrInvalidData) {
		t.Error("Unexpected result:", err)
		return
	}
}

func TestTraversalConcurrency(t *testing.T) {
	ctx := context.Background()
	gm, gs := newTestTraversalGraph(t)

	tc, err := NewTraversalCache(ctx, gm, 1, "")
	errorutil.AssertOk(err)

	queries := gs.CallNumVertexEdges()

	var wg sync.WaitGroup
	errs := make(chan error, 20)

	for i := 0; i < 20; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			res, err := tc.Children(ctx, 1, Predicates("is-a"))
			if err == nil && fmt.Sprint(res["is-a"]) != "[2 3]" {
				err = fmt.Errorf("Unexpected result: %v", res)
			}
			if err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
		return
	}

	if gs.CallNumVertexEdges() != queries+1 {
		t.Error("Unexpected number of queries:", gs.CallNumVertexEdges()-queries)
		return
	}
}
