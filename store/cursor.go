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
	"context"
	"fmt"
)

/*
Cursor is a lazy, countable and seekable sequence of query results.

	for cur.Next() {
		key, val := cur.Key(), cur.Value()
	}
	if err := cur.Err(); err != nil {
		...
	}
*/
type Cursor interface {

	/*
		Count returns the total number of results.
	*/
	Count() int

	/*
		Seek moves the cursor so the next call to Next loads the result at a
		given position.
	*/
	Seek(pos int) error

	/*
		Next loads the next result. Returns false if there are no more results
		or an error occurred.
	*/
	Next() bool

	/*
		Key returns the key of the current result.
	*/
	Key() interface{}

	/*
		Value returns the current result.
	*/
	Value() interface{}

	/*
		Err returns the error which stopped the iteration.
	*/
	Err() error

	/*
		Close releases the cursor.
	*/
	Close() error
}

/*
LoadFunc loads a single result of a cursor. It returns the key and the value
of the result.
*/
type LoadFunc func(ctx context.Context, ref interface{}) (interface{}, interface{}, error)

/*
refCursor is a cursor over a list of references which are loaded on demand.
*/
type refCursor struct {
	ctx   context.Context // Context of the query
	refs  []interface{}   // References of all results
	load  LoadFunc        // Function to load a reference
	pos   int             // Position of the next result
	key   interface{}     // Current key
	value interface{}     // Current value
	err   error           // Error which stopped the iteration
}

/*
NewCursor creates a cursor over a list of references. A result is only
loaded when the cursor reaches it.
*/
func NewCursor(ctx context.Context, refs []interface{}, load LoadFunc) Cursor {
	return &refCursor{ctx: ctx, refs: refs, load: load}
}

/*
Count returns the total number of results.
*/
func (rc *refCursor) Count() int {
	return len(rc.refs)
}

/*
Seek moves the cursor to a given position.
*/
func (rc *refCursor) Seek(pos int) error {
	if pos < 0 || pos > len(rc.refs) {
		return NewStoreError(ErrInvalidData, fmt.Sprint("Invalid cursor position:", pos), "cursor")
	}

	rc.pos = pos
	rc.key = nil
	rc.value = nil

	return nil
}

/*
Next loads the next result.
*/
func (rc *refCursor) Next() bool {
	if rc.err != nil || rc.pos >= len(rc.refs) {
		return false
	}

	if err := rc.ctx.Err(); err != nil {
		rc.err = NewStoreError(ErrReading, err.Error(), "cursor")
		return false
	}

	key, value, err := rc.load(rc.ctx, rc.refs[rc.pos])
	if err != nil {
		rc.err = err
		return false
	}

	rc.pos++
	rc.key = key
	rc.value = value

	return true
}

/*
Key returns the key of the current result.
*/
func (rc *refCursor) Key() interface{} {
	return rc.key
}

/*
Value returns the current result.
*/
func (rc *refCursor) Value() interface{} {
	return rc.value
}

/*
Err returns the error which stopped the iteration.
*/
func (rc *refCursor) Err() error {
	return rc.err
}

/*
Close releases the cursor.
*/
func (rc *refCursor) Close() error {
	rc.refs = nil
	rc.key = nil
	rc.value = nil
	return nil
}
