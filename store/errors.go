/*
 * ontograph
 *
 * Copyright 2026 The ontograph Authors. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package store

import (
	"errors"
	"fmt"
)

/*
Store related error types
*/
var (
	ErrCommit      = errors.New("Could not commit document")
	ErrConnection  = errors.New("Connection is not open")
	ErrNotFound    = errors.New("Entry not found")
	ErrInvalidData = errors.New("Invalid data")
	ErrReading     = errors.New("Could not read data")
	ErrWriting     = errors.New("Could not write data")
)

/*
StoreError is a store related error.
*/
type StoreError struct {
	Type   error  // Error type (to be used for equal checks)
	Detail string // Details of this error
	Source string // Name of the component which produced the error
}

/*
NewStoreError returns a new store specific error.
*/
func NewStoreError(errType error, detail string, source string) *StoreError {
	return &StoreError{errType, detail, source}
}

/*
Error returns a human-readable string representation of this error.
*/
func (se *StoreError) Error() string {
	if se.Detail != "" {
		return fmt.Sprintf("StoreError: %v (%v - %v)", se.Type, se.Source, se.Detail)
	}
	return fmt.Sprintf("StoreError: %v (%v)", se.Type, se.Source)
}

/*
Unwrap returns the error type so errors.Is can be used.
*/
func (se *StoreError) Unwrap() error {
	return se.Type
}
