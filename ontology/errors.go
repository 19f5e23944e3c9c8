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
Package ontology contains the ontology data model and the identifier cache.

Tags

A tag is a property definition. Each tag has a global identifier (a readable
string like ":label") and a native identifier (TagID) which is used as field
key in all records. The native identifier of a tag never changes once it was
assigned.

Terms

A term is a vocabulary concept. The global identifier of a term is its
namespace and its local identifier joined by TermSeparator. Terms without
namespace use the local identifier alone.

Records

Records are documents whose field keys are tag native identifiers. Callers
may use global identifiers as field keys, these are resolved through a
Resolver. Setting a nil value removes a field.

IdentifierCache

Maps global identifiers to native identifiers and native identifiers to full
tag records. The cache is backed by a kvcache.Cache and is shared by all
sessions of a process.
*/
package ontology

import (
	"errors"
	"fmt"
)

/*
Error is an ontology related error
*/
type Error struct {
	Type   error  // Error type (to be used for equal checks)
	Detail string // Details of this error
}

/*
Error returns a human-readable string representation of this error.
*/
func (oe *Error) Error() string {
	if oe.Detail != "" {
		return fmt.Sprintf("OntologyError: %v (%v)", oe.Type, oe.Detail)
	}

	return fmt.Sprintf("OntologyError: %v", oe.Type)
}

/*
Unwrap returns the error type so errors.Is can be used.
*/
func (oe *Error) Unwrap() error {
	return oe.Type
}

/*
Ontology related error types
*/
var (
	ErrResolution  = errors.New("Could not resolve identifier")
	ErrType        = errors.New("Unexpected object type")
	ErrInvalidData = errors.New("Invalid data")
	ErrReferential = errors.New("Referenced object does not exist")
)

/*
NewError returns a new ontology specific error.
*/
func NewError(errType error, detail string) *Error {
	return &Error{errType, detail}
}
