/*
 * ontograph
 *
 * Copyright 2026 The ontograph Authors. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"devt.de/krotik/common/errorutil"
	"github.com/milko/ontograph/graph"
	"github.com/milko/ontograph/kvcache"
	"github.com/milko/ontograph/ontology"
	"github.com/milko/ontograph/store/memstore"
)

const testCatalog = `
tags:
  - gid: ":weight"
    label: {en: Weight, de: Gewicht}
    type: ":type:float"
    kind: [":kind:quantitative"]
terms:
  - lid: fruit
    label: {en: Fruit}
  - namespace: fruit
    lid: apple
    label: {en: Apple, de: Apfel}
    synonyms: [Malus]
  - lid: part-of
    label: {en: Part of}
  - lid: core
    label: {en: Core}
nodes:
  - key: fruit
    term: fruit
  - key: apple
    term: "fruit:apple"
  - key: core
    term: core
  - key: weight
    tag: ":weight"
edges:
  - subject: apple
    predicate: ":predicate:SUBCLASS-OF"
    object: fruit
  - subject: core
    predicate: part-of
    object: apple
`

func newTestManager() (*ontology.Ontology, *graph.Manager) {
	ctx := context.Background()

	ms := memstore.NewMemoryServer("test")
	errorutil.AssertOk(ms.Open(ctx))

	db, err := ms.Database(ctx, "catalog", true)
	errorutil.AssertOk(err)

	onto, err := ontology.New(ctx, db, kvcache.NewMemoryCache("test", 0, 0))
	errorutil.AssertOk(err)

	gm, err := graph.NewManager(ctx, onto)
	errorutil.AssertOk(err)

	return onto, gm
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	onto, gm := newTestManager()

	res, err := Load(ctx, onto, gm, strings.NewReader(testCatalog))
	if err != nil {
		t.Error(err)
		return
	}

	if res.String() != "1 tags, 4 terms, 4 nodes, 2 edges" {
		t.Error("Unexpected result:", res)
		return
	}

	if fmt.Sprint(res.Tags, res.Terms, res.Edges) != "[15] [fruit fruit:apple part-of core] [2/:predicate:SUBCLASS-OF/1 3/part-of/2]" {
		t.Error("Unexpected result:", res.Tags, res.Terms, res.Edges)
		return
	}

	if fmt.Sprint(res.NodeKeys()) != "[apple core fruit weight]" || res.Nodes["weight"] != 4 {
		t.Error("Unexpected result:", res.Nodes)
		return
	}

	// Builtin tags and terms were written first

	if tag, err := onto.TagByGlobalID(ctx, ":label", true); err != nil || tag.NID() != ontology.TagLabel {
		t.Error("Unexpected result:", tag, err)
		return
	}

	term, err := onto.Term(ctx, "fruit:apple", true)
	if err != nil || term.Label("de") != "Apfel" || fmt.Sprint(term.Synonyms()) != "[Malus]" {
		t.Error("Unexpected result:", term, err)
		return
	}

	// The loaded graph can be traversed

	tc, err := graph.NewTraversalCache(ctx, gm, res.Nodes["apple"], "en")
	errorutil.AssertOk(err)

	if children, err := tc.Children(ctx, res.Nodes["apple"], graph.Predicates()); err != nil ||
		fmt.Sprint(children) != "map[:predicate:SUBCLASS-OF:[1]]" {
		t.Error("Unexpected result:", children, err)
		return
	}

	if parents, err := tc.Parents(ctx, res.Nodes["apple"], graph.AllPredicates()); err != nil ||
		fmt.Sprint(parents) != "map[part-of:[3]]" {
		t.Error("Unexpected result:", parents, err)
		return
	}

	// Edges can refer to nodes of earlier loads by their native id

	res, err = Load(ctx, onto, gm, strings.NewReader(`
edges:
  - subject: 3
    predicate: ":predicate:SUBCLASS-OF"
    object: 1
`))

	if err != nil || fmt.Sprint(res.Edges) != "[3/:predicate:SUBCLASS-OF/1]" {
		t.Error("Unexpected result:", res, err)
		return
	}
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()
	onto, gm := newTestManager()

	res, err := Load(ctx, onto, gm, strings.NewReader(`
tags:
  - gid: ":broken"
    label: {en: Broken}
    type: ":type:unknown"
terms:
  - namespace: vegetable
    lid: carrot
    label: {en: Carrot}
  - lid: fruit
    label: {en: Fruit}
nodes:
  - key: fruit
    term: fruit
  - key: fruit
    term: fruit
  - key: carrot
    term: "vegetable:carrot"
  - key: both
    term: fruit
    tag: ":label"
edges:
  - subject: fruit
    predicate: ":predicate:SUBCLASS-OF"
    object: carrot
`))

	var cerr *errorutil.CompositeError

	if !errors.As(err, &cerr) || len(cerr.Errors) != 6 {
		t.Error("Unexpected result:", err)
		return
	}

	for i, prefix := range []string{"Tag :broken:", "Term carrot:", "Node fruit: Duplicate",
		"Node carrot:", "Node both:", "Edge fruit"} {

		if !strings.HasPrefix(cerr.Errors[i].Error(), prefix) {
			t.Error("Unexpected error:", i, cerr.Errors[i])
			return
		}
	}

	// Correct entries were stored regardless

	if res.String() != "0 tags, 1 terms, 1 nodes, 0 edges" || res.Nodes["fruit"] != 1 {
		t.Error("Unexpected result:", res)
		return
	}

	if _, err := Load(ctx, onto, gm, strings.NewReader("nodes: [")); !errors.Is(err, ontology.ErrInvalidData) {
		t.Error("Unexpected result:", err)
		return
	}

	if _, err := Load(ctx, onto, gm, strings.NewReader("unknown: 1")); !errors.Is(err, ontology.ErrInvalidData) {
		t.Error("Unexpected result:", err)
		return
	}

	if res, err := Load(ctx, onto, gm, strings.NewReader("")); err != nil || res.String() != "0 tags, 0 terms, 0 nodes, 0 edges" {
		t.Error("Unexpected result:", res, err)
		return
	}
}
