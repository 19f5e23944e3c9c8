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
	"fmt"

	"github.com/milko/ontograph/ontology"
	"github.com/milko/ontograph/store"
)

/*
Edge is a directed, predicate labelled relationship between two nodes.
*/
type Edge struct {
	*ontology.Record
}

/*
NewEdge creates a new Edge instance.
*/
func NewEdge(resolver ontology.Resolver) *Edge {
	return &Edge{ontology.NewRecord(resolver)}
}

/*
NewEdgeFromMap creates a new Edge instance from a plain document.
*/
func NewEdgeFromMap(resolver ontology.Resolver, data map[string]interface{}) *Edge {
	e := &Edge{ontology.NewRecordFromMap(resolver, data)}
	e.updateID()
	return e
}

/*
NewEdgeFromRecord creates a new Edge instance from a stored edge.
*/
func NewEdgeFromRecord(resolver ontology.Resolver, rec *store.EdgeRecord) *Edge {
	data := store.CopyDocument(rec.Props)
	if data == nil {
		data = make(map[string]interface{})
	}

	data[ontology.TagSubject.String()] = rec.Subject
	data[ontology.TagPredicate.String()] = rec.Predicate
	data[ontology.TagObject.String()] = rec.Object

	return NewEdgeFromMap(resolver, data)
}

/*
ID returns the stored identifier of this edge.
*/
func (e *Edge) ID() string {
	return e.StringAttr(ontology.NativeIdentifier)
}

/*
Identifier returns the identifier of this edge which is computed from its
triple. Returns an empty string if the triple is incomplete.
*/
func (e *Edge) Identifier() string {
	s, p, o := e.Subject(), e.Predicate(), e.Object()

	if s == 0 || p == "" || o == 0 {
		return ""
	}

	return store.EdgeKey(s, p, o)
}

/*
Subject returns the native identifier of the subject node.
*/
func (e *Edge) Subject() uint64 {
	id, _ := store.AsUint64(e.Attr(ontology.TagSubject))
	return id
}

/*
Object returns the native identifier of the object node.
*/
func (e *Edge) Object() uint64 {
	id, _ := store.AsUint64(e.Attr(ontology.TagObject))
	return id
}

/*
Predicate returns the global identifier of the predicate term.
*/
func (e *Edge) Predicate() string {
	return e.StringAttr(ontology.TagPredicate)
}

/*
OtherEnd returns the node at the other end of this edge from the view of a
given node.
*/
func (e *Edge) OtherEnd(node uint64) uint64 {
	if e.Subject() == node {
		return e.Object()
	}
	return e.Subject()
}

/*
SetSubject sets the subject node. Accepts a stored Node or a node identifier.
*/
func (e *Edge) SetSubject(v interface{}) error {
	return e.setVertex(ontology.TagSubject, v)
}

/*
SetObject sets the object node. Accepts a stored Node or a node identifier.
*/
func (e *Edge) SetObject(v interface{}) error {
	return e.setVertex(ontology.TagObject, v)
}

/*
setVertex sets an end of this edge.
*/
func (e *Edge) setVertex(end ontology.TagID, v interface{}) error {
	var id uint64

	switch val := v.(type) {
	case nil:
	case *Node:
		if id = val.ID(); id == 0 {
			return ontology.NewError(ontology.ErrInvalidData, "Edge end node was not stored")
		}
	default:
		if !isScalar(v) {
			return ontology.NewError(ontology.ErrType,
				fmt.Sprintf("Edge end must be a node not %T", v))
		}

		var ok bool
		if id, ok = store.AsUint64(val); !ok || id == 0 {
			return ontology.NewError(ontology.ErrInvalidData,
				fmt.Sprint("Invalid node identifier:", val))
		}
	}

	if id == 0 {
		e.SetAttr(end, nil)
	} else {
		e.SetAttr(end, id)
	}

	e.updateID()

	return nil
}

/*
SetPredicate sets the predicate. Accepts a Term or the global identifier of
a term.
*/
func (e *Edge) SetPredicate(v interface{}) error {
	var gid string

	switch val := v.(type) {
	case nil:
	case *ontology.Term:
		gid = val.GlobalID()
	default:
		if !isScalar(v) {
			return ontology.NewError(ontology.ErrType,
				fmt.Sprintf("Edge predicate must be a term not %T", v))
		}
		gid = fmt.Sprint(val)
	}

	if gid == "" {
		e.SetAttr(ontology.TagPredicate, nil)
	} else {
		e.SetAttr(ontology.TagPredicate, gid)
	}

	e.updateID()

	return nil
}

/*
updateID recomputes the stored identifier of this edge.
*/
func (e *Edge) updateID() {
	if id := e.Identifier(); id != "" {
		e.SetAttr(ontology.NativeIdentifier, id)
	} else {
		e.SetAttr(ontology.NativeIdentifier, nil)
	}
}

/*
Properties returns all fields of this edge except its identifier and its
triple.
*/
func (e *Edge) Properties() map[string]interface{} {
	props := e.Flatten()

	for _, id := range []ontology.TagID{ontology.NativeIdentifier, ontology.TagSubject,
		ontology.TagPredicate, ontology.TagObject} {
		delete(props, id.String())
	}

	return props
}

/*
String returns a string representation of this edge.
*/
func (e *Edge) String() string {
	return e.Describe("Edge")
}
