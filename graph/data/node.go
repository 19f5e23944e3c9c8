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
Package data contains the entities which are stored in the graph.

Nodes

Nodes are the vertices of the graph. A node wraps either a term or a tag, the
reference is modelled as a Reference value which holds at most one of the
two. Once a node was stored its reference cannot be changed, a node with a
different reference must be created instead.

Edges

Edges connect nodes. An edge is a subject - predicate - object triple where
the predicate is a term. The identifier of an edge is derived from the triple
and is recomputed whenever one of its components changes.
*/
package data

import (
	"encoding/json"
	"fmt"

	"github.com/milko/ontograph/ontology"
	"github.com/milko/ontograph/store"
)

/*
RefKind is the kind of a node reference.
*/
type RefKind int

/*
Reference kinds
*/
const (
	RefNone RefKind = iota // Node references nothing
	RefTerm                // Node references a term
	RefTag                 // Node references a tag
)

/*
String returns a string representation of a reference kind.
*/
func (k RefKind) String() string {
	switch k {
	case RefTerm:
		return "term"
	case RefTag:
		return "tag"
	}
	return "none"
}

/*
Reference is the reference of a node. ID holds the global identifier of the
referenced term or tag.
*/
type Reference struct {
	Kind RefKind // Kind of the reference
	ID   string  // Global identifier of the referenced object
}

/*
TermRef returns a term reference.
*/
func TermRef(gid string) Reference {
	return Reference{RefTerm, gid}
}

/*
TagRef returns a tag reference.
*/
func TagRef(gid string) Reference {
	return Reference{RefTag, gid}
}

/*
IsEmpty checks if the reference references nothing.
*/
func (r Reference) IsEmpty() bool {
	return r.Kind == RefNone
}

/*
String returns a string representation of a reference.
*/
func (r Reference) String() string {
	if r.Kind == RefNone {
		return "none"
	}
	return fmt.Sprintf("%v(%v)", r.Kind, r.ID)
}

/*
Node is a vertex of the graph.
*/
type Node struct {
	*ontology.Record
}

/*
NewNode creates a new Node instance.
*/
func NewNode(resolver ontology.Resolver) *Node {
	return &Node{ontology.NewRecord(resolver)}
}

/*
NewNodeFromMap creates a new Node instance from a plain document.
*/
func NewNodeFromMap(resolver ontology.Resolver, data map[string]interface{}) *Node {
	return &Node{ontology.NewRecordFromMap(resolver, data)}
}

/*
ID returns the native identifier of this node. Returns 0 if the node was not
stored yet.
*/
func (n *Node) ID() uint64 {
	id, _ := store.AsUint64(n.Attr(ontology.NativeIdentifier))
	return id
}

/*
SetID sets the native identifier of this node.
*/
func (n *Node) SetID(id uint64) {
	if id == 0 {
		n.SetAttr(ontology.NativeIdentifier, nil)
	} else {
		n.SetAttr(ontology.NativeIdentifier, id)
	}
}

/*
Reference returns the reference of this node.
*/
func (n *Node) Reference() Reference {
	if gid := n.StringAttr(ontology.TagTerm); gid != "" {
		return TermRef(gid)
	} else if gid := n.StringAttr(ontology.TagTag); gid != "" {
		return TagRef(gid)
	}
	return Reference{}
}

/*
Term returns the global identifier of the referenced term.
*/
func (n *Node) Term() string {
	return n.StringAttr(ontology.TagTerm)
}

/*
Tag returns the global identifier of the referenced tag.
*/
func (n *Node) Tag() string {
	return n.StringAttr(ontology.TagTag)
}

/*
Identifier returns the global identifier of the referenced term or tag.
*/
func (n *Node) Identifier() string {
	return n.Reference().ID
}

/*
SetReference sets the reference of this node. Accepted are terms, tags and
Reference values. Scalar values are treated as global identifiers of terms.
Setting a reference replaces any previous reference.
*/
func (n *Node) SetReference(v interface{}) error {
	var ref Reference

	switch val := v.(type) {
	case nil:
	case Reference:
		ref = val
	case *ontology.Term:
		ref = TermRef(val.GlobalID())
	case *ontology.Tag:
		ref = TagRef(val.GlobalID())
	default:
		if !isScalar(v) {
			return ontology.NewError(ontology.ErrType,
				fmt.Sprintf("Node reference must be a term or a tag not %T", v))
		}
		ref = TermRef(fmt.Sprint(val))
	}

	return n.setReference(ref)
}

/*
SetTerm sets a term reference.
*/
func (n *Node) SetTerm(gid string) error {
	return n.setReference(TermRef(gid))
}

/*
SetTag sets a tag reference.
*/
func (n *Node) SetTag(gid string) error {
	return n.setReference(TagRef(gid))
}

/*
setReference sets the reference fields of this node.
*/
func (n *Node) setReference(ref Reference) error {
	if ref.Kind != RefNone && ref.ID == "" {
		return ontology.NewError(ontology.ErrInvalidData, "Node reference has no identifier")
	}

	if current := n.Reference(); n.ID() != 0 && !current.IsEmpty() && current != ref {
		return ontology.NewError(ontology.ErrInvalidData,
			fmt.Sprintf("Reference of stored node %v cannot be changed from %v to %v", n.ID(), current, ref))
	}

	n.SetAttr(ontology.TagTerm, nil)
	n.SetAttr(ontology.TagTag, nil)

	switch ref.Kind {
	case RefTerm:
		n.SetAttr(ontology.TagTerm, ref.ID)
	case RefTag:
		n.SetAttr(ontology.TagTag, ref.ID)
	}

	return nil
}

/*
String returns a string representation of this node.
*/
func (n *Node) String() string {
	return n.Describe("Node")
}

/*
isScalar checks if a value is a plain scalar.
*/
func isScalar(v interface{}) bool {
	switch v.(type) {
	case string, bool, json.Number, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}
