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
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"devt.de/krotik/common/errorutil"
	"github.com/milko/ontograph/store"
)

type testDoc map[string]interface{}

func (d testDoc) Flatten() map[string]interface{} {
	return store.CopyDocument(d)
}

func openTestDatabase(t *testing.T) (*MemoryServer, *MemoryDatabase) {
	ctx := context.Background()
	ms := NewMemoryServer("test")

	if _, err := ms.Database(ctx, "db", true); !errors.Is(err, store.ErrConnection) {
		t.Fatal("Unexpected result:", err)
	}

	errorutil.AssertOk(ms.Open(ctx))

	db, err := ms.Database(ctx, "db", true)
	errorutil.AssertOk(err)

	return ms, db.(*MemoryDatabase)
}

func TestMemoryServer(t *testing.T) {
	ctx := context.Background()
	ms, db := openTestDatabase(t)

	if ms.Name() != "test" || db.Name() != "db" || !ms.IsOpen() {
		t.Error("Unexpected server state")
		return
	}

	if res, err := ms.Database(ctx, "other", false); res != nil || err != nil {
		t.Error("Unexpected result:", res, err)
		return
	}

	if res, err := db.Collection(ctx, "other", false); res != nil || err != nil {
		t.Error("Unexpected result:", res, err)
		return
	}

	if res, _ := ms.Database(ctx, "db", false); res != db {
		t.Error("Database should be returned again")
		return
	}

	seq := db.Sequencer()

	for i := uint64(1); i < 4; i++ {
		if res, err := seq.NextSequence(ctx, "tags"); res != i || err != nil {
			t.Error("Unexpected result:", res, err)
			return
		}
	}

	if res, _ := seq.NextSequence(ctx, "terms"); res != 1 {
		t.Error("Unexpected result:", res)
		return
	}

	errorutil.AssertOk(seq.ResetSequence(ctx, "tags", 100))

	if res, _ := seq.NextSequence(ctx, "tags"); res != 100 {
		t.Error("Unexpected result:", res)
		return
	}

	db.seq.AccessMap["tags"] = AccessWriteError

	if _, err := seq.NextSequence(ctx, "tags"); !errors.Is(err, store.ErrWriting) {
		t.Error("Unexpected result:", err)
		return
	}

	if err := seq.ResetSequence(ctx, "tags", 1); !errors.Is(err, store.ErrWriting) {
		t.Error("Unexpected result:", err)
		return
	}

	errorutil.AssertOk(ms.Close())

	if _, err := db.Collection(ctx, "coll", true); !errors.Is(err, store.ErrConnection) {
		t.Error("Unexpected result:", err)
		return
	}

	if _, err := db.Graph(ctx); !errors.Is(err, store.ErrConnection) {
		t.Error("Unexpected result:", err)
		return
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()

	if err := ms.Open(cctx); !errors.Is(err, store.ErrConnection) {
		t.Error("Unexpected result:", err)
		return
	}
}

func TestMemoryCollection(t *testing.T) {
	ctx := context.Background()
	ms, db := openTestDatabase(t)

	c, err := db.Collection(ctx, "terms", true)
	errorutil.AssertOk(err)

	if c.Name() != "terms" {
		t.Error("Unexpected name:", c.Name())
		return
	}

	id, err := c.Commit(ctx, map[string]interface{}{"9": "a"})
	if id != uint64(1) || err != nil {
		t.Error("Unexpected result:", id, err)
		return
	}

	if id, err = c.Commit(ctx, testDoc{"_id": "ns:b", "9": "b"}); id != "ns:b" || err != nil {
		t.Error("Unexpected result:", id, err)
		return
	}

	if _, err = c.Commit(ctx, testDoc{"_id": "ns:b"}); !errors.Is(err, store.ErrCommit) {
		t.Error("Duplicate keys should be rejected:", err)
		return
	}

	if _, err = c.Commit(ctx, "foo"); !errors.Is(err, store.ErrCommit) ||
		err.Error() != "StoreError: Could not commit document (terms - Unsupported document type: string)" {
		t.Error("Unexpected result:", err)
		return
	}

	if id, err = c.Save(ctx, testDoc{"_id": "ns:b", "9": "c", "7": "ns"}); id != "ns:b" || err != nil {
		t.Error("Unexpected result:", id, err)
		return
	}

	if res, _ := c.Count(ctx, nil); res != 2 {
		t.Error("Unexpected result:", res)
		return
	}

	// Result modes

	if res, _ := c.MatchOne(ctx, store.Criteria{store.Eq("_id", "ns:b")}, store.ResultID, nil); res != "ns:b" {
		t.Error("Unexpected result:", res)
		return
	}

	if res, _ := c.MatchOne(ctx, store.Criteria{store.Eq("9", "c")}, store.ResultRaw, []string{"7"}); fmt.Sprint(res) != "map[7:ns _id:ns:b]" {
		t.Error("Unexpected result:", res)
		return
	}

	c.SetHydrator(func(data map[string]interface{}) (interface{}, error) {
		return fmt.Sprint("obj:", data["9"]), nil
	})

	if res, _ := c.MatchOne(ctx, store.Criteria{store.Eq("_id", 1)}, store.ResultObject, nil); res != "obj:a" {
		t.Error("Unexpected result:", res)
		return
	}

	if res, err := c.MatchOne(ctx, store.Criteria{store.Eq("9", "x")}, store.ResultObject, nil); res != nil || err != nil {
		t.Error("Unexpected result:", res, err)
		return
	}

	if _, err := c.MatchOne(ctx, store.Criteria{store.Eq("9", "x")}, store.ResultObject|store.ResultAssert, nil); !errors.Is(err, store.ErrNotFound) {
		t.Error("Unexpected result:", err)
		return
	}

	// Cursors

	cur, err := c.MatchAll(ctx, nil, store.ResultObject, nil, "9")
	errorutil.AssertOk(err)

	var res []string
	for cur.Next() {
		res = append(res, fmt.Sprint(cur.Key(), "=", cur.Value()))
	}

	if cur.Err() != nil || cur.Count() != 2 || fmt.Sprint(res) != "[a=obj:a c=obj:c]" {
		t.Error("Unexpected result:", res, cur.Err())
		return
	}

	if _, err := c.MatchAll(ctx, store.Criteria{store.In("9")}, store.ResultAssert, nil, ""); !errors.Is(err, store.ErrNotFound) {
		t.Error("Unexpected result:", err)
		return
	}

	cur, _ = c.MatchAll(ctx, nil, store.ResultID, nil, "")

	c.Delete(ctx, "ns:b")

	cur.Next()
	if cur.Next() || !errors.Is(cur.Err(), store.ErrNotFound) {
		t.Error("Deleted document should not be loaded:", cur.Err())
		return
	}

	if res, err := c.Delete(ctx, "ns:b"); res != store.NotFound || err != nil {
		t.Error("Unexpected result:", res, err)
		return
	}

	if res, err := c.Delete(ctx, 1.0); res != store.Deleted || err != nil {
		t.Error("Unexpected result:", res, err)
		return
	}

	// Error simulation

	mc := c.(*MemoryCollection)
	mc.AccessMap["5"] = AccessWriteError

	if _, err := c.Commit(ctx, testDoc{"_id": 5}); !errors.Is(err, store.ErrCommit) {
		t.Error("Unexpected result:", err)
		return
	}

	if _, err := c.Delete(ctx, 5); !errors.Is(err, store.ErrWriting) {
		t.Error("Unexpected result:", err)
		return
	}

	c.Commit(ctx, testDoc{"_id": 6})
	mc.AccessMap["6"] = AccessReadError

	if _, err := c.MatchOne(ctx, nil, store.ResultRaw, nil); !errors.Is(err, store.ErrReading) {
		t.Error("Unexpected result:", err)
		return
	}

	if _, err := c.Count(ctx, nil); !errors.Is(err, store.ErrReading) {
		t.Error("Unexpected result:", err)
		return
	}

	if res := mc.String(); res != "MemoryCollection terms\n6 - map[_id:6]\n" {
		t.Error("Unexpected result:", res)
		return
	}

	ms.Close()

	if _, err := c.Commit(ctx, testDoc{"_id": 7}); !errors.Is(err, store.ErrCommit) {
		t.Error("Commit on a closed connection should fail:", err)
		return
	}

	if _, err := c.MatchOne(ctx, nil, store.ResultRaw, nil); !errors.Is(err, store.ErrConnection) {
		t.Error("Unexpected result:", err)
		return
	}
}

func TestMemoryGraphStore(t *testing.T) {
	ctx := context.Background()
	_, db := openTestDatabase(t)

	g, err := db.Graph(ctx)
	errorutil.AssertOk(err)

	mgs := g.(*MemoryGraphStore)

	for i := 1; i < 4; i++ {
		if id, err := g.SetVertex(ctx, map[string]interface{}{"9": fmt.Sprint("t", i)}, []string{"node"}); id != uint64(i) || err != nil {
			t.Error("Unexpected result:", id, err)
			return
		}
	}

	if id, err := g.SetVertex(ctx, map[string]interface{}{"_id": 10}, nil); id != 10 || err != nil {
		t.Error("Unexpected result:", id, err)
		return
	}

	if _, err := g.SetVertex(ctx, map[string]interface{}{"_id": "x"}, nil); !errors.Is(err, store.ErrInvalidData) {
		t.Error("Unexpected result:", err)
		return
	}

	if res, _ := g.Vertex(ctx, 2, false); fmt.Sprint(res) != "map[9:t2 _id:2]" {
		t.Error("Unexpected result:", res)
		return
	}

	if fmt.Sprint(mgs.Labels(2)) != "[node]" {
		t.Error("Unexpected labels:", mgs.Labels(2))
		return
	}

	if res, err := g.Vertex(ctx, 5, false); res != nil || err != nil {
		t.Error("Unexpected result:", res, err)
		return
	}

	if _, err := g.Vertex(ctx, 5, true); !errors.Is(err, store.ErrNotFound) {
		t.Error("Unexpected result:", err)
		return
	}

	if _, err := g.SetEdge(ctx, 1, "is-a", 5, nil); !errors.Is(err, store.ErrInvalidData) {
		t.Error("Edges need existing vertices:", err)
		return
	}

	for _, e := range [][]interface{}{{1, "is-a", 2}, {1, "is-a", 3}, {1, "part-of", 10}, {2, "is-a", 1}} {
		key, err := g.SetEdge(ctx, uint64(e[0].(int)), e[1].(string), uint64(e[2].(int)), map[string]interface{}{"w": 1})
		if key != store.EdgeKey(uint64(e[0].(int)), e[1].(string), uint64(e[2].(int))) || err != nil {
			t.Error("Unexpected result:", key, err)
			return
		}
	}

	edgeKeys := func(cur store.Cursor, err error) string {
		errorutil.AssertOk(err)
		var keys []string
		for cur.Next() {
			keys = append(keys, cur.Value().(*store.EdgeRecord).Key)
		}
		errorutil.AssertOk(cur.Err())
		return fmt.Sprint(keys)
	}

	if res := edgeKeys(g.VertexEdges(ctx, 1, nil, store.DirOut)); res != "[1/is-a/2 1/is-a/3 1/part-of/10]" {
		t.Error("Unexpected result:", res)
		return
	}

	if res := edgeKeys(g.VertexEdges(ctx, 1, []string{"is-a"}, store.DirIn)); res != "[2/is-a/1]" {
		t.Error("Unexpected result:", res)
		return
	}

	if res := edgeKeys(g.VertexEdges(ctx, 1, []string{"is-a"}, store.DirAll)); res != "[1/is-a/2 1/is-a/3 2/is-a/1]" {
		t.Error("Unexpected result:", res)
		return
	}

	if res := edgeKeys(g.VertexEdges(ctx, 1, []string{}, store.DirAll)); res != "[]" {
		t.Error("Unexpected result:", res)
		return
	}

	if mgs.CallNumVertexEdges() != 4 {
		t.Error("Unexpected number of queries:", mgs.Queries)
		return
	}

	if q, _ := mgs.LastQuery(); q.String() != "1 all []" {
		t.Error("Unexpected result:", q)
		return
	}

	if fmt.Sprint(mgs.Queries[0], mgs.Queries[1]) != "1 out * 1 in [is-a]" {
		t.Error("Unexpected result:", mgs.Queries)
		return
	}

	if res, _ := g.Edge(ctx, "1/is-a/2", true); res.Subject != 1 || res.Object != 2 || res.Predicate != "is-a" || res.Props["w"] != 1 {
		t.Error("Unexpected result:", res)
		return
	}

	if _, err := g.Edge(ctx, "1/is-a/5", true); !errors.Is(err, store.ErrNotFound) {
		t.Error("Unexpected result:", err)
		return
	}

	if res, _ := g.DeleteEdge(ctx, "1/is-a/3"); res != store.Deleted {
		t.Error("Unexpected result:", res)
		return
	}

	if res, _ := g.DeleteEdge(ctx, "1/is-a/3"); res != store.NotFound {
		t.Error("Unexpected result:", res)
		return
	}

	if res, _ := g.DeleteVertex(ctx, 2); res != store.Deleted {
		t.Error("Unexpected result:", res)
		return
	}

	if res, _ := g.DeleteVertex(ctx, 2); res != store.NotFound {
		t.Error("Unexpected result:", res)
		return
	}

	if res := mgs.String(); res != `MemoryGraphStore db
1 [node] - map[9:t1 _id:1]
3 [node] - map[9:t3 _id:3]
10 [] - map[_id:10]
1/part-of/10 - map[w:1]
` {
		t.Error("Unexpected result:", res)
		return
	}

	// Error simulation

	mgs.AccessMap["1"] = AccessQueryError

	if _, err := g.VertexEdges(ctx, 1, nil, store.DirOut); !errors.Is(err, store.ErrReading) {
		t.Error("Unexpected result:", err)
		return
	}

	delete(mgs.AccessMap, "1")
	mgs.AccessMap["1/part-of/10"] = AccessReadError

	cur, _ := g.VertexEdges(ctx, 1, nil, store.DirOut)
	if cur.Next() || !errors.Is(cur.Err(), store.ErrReading) {
		t.Error("Unexpected result:", cur.Err())
		return
	}

	mgs.QueryDelay = time.Second

	tctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()

	if _, err := g.VertexEdges(tctx, 3, nil, store.DirOut); !errors.Is(err, store.ErrReading) {
		t.Error("Timed out query should fail:", err)
		return
	}
}
