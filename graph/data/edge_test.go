/*
 * ontograph
 *
 * Copyright 2026 The ontograph Authors. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package data

import (
	"errors"
	"fmt"
	"testing"

	"devt.de/krotik/common/errorutil"
	"github.com/milko/ontograph/ontology"
	"github.com/milko/ontograph/store"
)

func TestEdgeIdentifier(t *testing.T) {
	pred := ontology.NewTerm(nil)
	pred.SetNamespace(ontology.NamespacePredicate)
	pred.SetLocalID("IS-A")

	n1 := NewNode(nil)
	n1.SetID(1)

	e := NewEdge(nil)

	errorutil.AssertOk(e.SetSubject(n1))
	errorutil.AssertOk(e.SetPredicate(pred))

	if e.ID() != "" || e.Identifier() != "" {
		t.Error("Incomplete edges should have no identifier:", e)
		return
	}

	errorutil.AssertOk(e.SetObject("2"))

	if res := e.ID(); res != "1/:predicate:IS-A/2" || res != e.Identifier() {
		t.Error("Unexpected result:", res)
		return
	}

	// The identifier follows every component

	errorutil.AssertOk(e.SetSubject(uint64(7)))

	if res := e.ID(); res != "7/:predicate:IS-A/2" {
		t.Error("Unexpected result:", res)
		return
	}

	errorutil.AssertOk(e.SetPredicate("is-a"))

	if res := e.ID(); res != "7/is-a/2" {
		t.Error("Unexpected result:", res)
		return
	}

	errorutil.AssertOk(e.SetObject(3.0))

	if res := e.ID(); res != store.EdgeKey(7, "is-a", 3) || e.OtherEnd(7) != 3 || e.OtherEnd(3) != 7 {
		t.Error("Unexpected result:", res)
		return
	}

	errorutil.AssertOk(e.SetObject(nil))

	if e.ID() != "" || e.HasAttr(ontology.NativeIdentifier) {
		t.Error("Unexpected result:", e)
		return
	}
}

func TestEdgeErrors(t *testing.T) {
	e := NewEdge(nil)

	if err := e.SetSubject(NewNode(nil)); !errors.Is(err, ontology.ErrInvalidData) {
		t.Error("Unstored nodes should be rejected:", err)
		return
	}

	if err := e.SetSubject("abc"); !errors.Is(err, ontology.ErrInvalidData) {
		t.Error("Unexpected result:", err)
		return
	}

	if err := e.SetObject(-1); !errors.Is(err, ontology.ErrInvalidData) {
		t.Error("Unexpected result:", err)
		return
	}

	if err := e.SetObject(ontology.NewTerm(nil)); !errors.Is(err, ontology.ErrType) {
		t.Error("Unexpected result:", err)
		return
	}

	if err := e.SetPredicate(ontology.NewTag(nil)); !errors.Is(err, ontology.ErrType) ||
		err.Error() != "OntologyError: Unexpected object type (Edge predicate must be a term not *ontology.Tag)" {
		t.Error("Unexpected result:", err)
		return
	}

	if len(e.Data()) != 0 {
		t.Error("Failed updates should not change the edge:", e)
		return
	}
}

func TestEdgeFromRecord(t *testing.T) {
	rec := &store.EdgeRecord{
		Key:       "1/is-a/2",
		Subject:   1,
		Predicate: "is-a",
		Object:    2,
		Props:     map[string]interface{}{"4": "an edge"},
	}

	e := NewEdgeFromRecord(nil, rec)

	if e.ID() != rec.Key || e.Subject() != 1 || e.Object() != 2 || e.Predicate() != "is-a" {
		t.Error("Unexpected result:", e)
		return
	}

	if res := fmt.Sprint(e.Properties()); res != "map[4:an edge]" {
		t.Error("Unexpected result:", res)
		return
	}

	// The record is not changed by the edge

	e.SetAttr(ontology.TagDescription, "changed")

	if rec.Props["4"] != "an edge" {
		t.Error("Unexpected result:", rec.Props)
		return
	}

	if res := e.String(); res != `Edge:
    _id : 1/is-a/2
      4 : changed
     11 : 1
     12 : is-a
     13 : 2
` {
		t.Error("Unexpected result:", res)
		return
	}
}
