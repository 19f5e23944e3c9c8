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
	"fmt"

	"github.com/milko/ontograph/graph/data"
	"github.com/milko/ontograph/store"
)

/*
EdgeIterator can be used to iterate the edges of a node.
*/
type EdgeIterator struct {
	gm        *Manager     // Manager which created the iterator
	c         store.Cursor // Cursor of the graph store
	LastError error        // Last encountered error
}

/*
Count returns the number of edges of this iterator.
*/
func (it *EdgeIterator) Count() int {
	return it.c.Count()
}

/*
Next returns the next edge. Returns nil if there are no more edges or if an
error occurred. Sets the LastError attribute if an error occurs.
*/
func (it *EdgeIterator) Next() *data.Edge {
	if it.LastError != nil || !it.c.Next() {
		if it.LastError == nil {
			it.LastError = it.c.Err()
		}
		return nil
	}

	rec, ok := it.c.Value().(*store.EdgeRecord)
	if !ok {
		it.LastError = store.NewStoreError(store.ErrInvalidData,
			fmt.Sprintf("Unexpected edge value: %T", it.c.Value()), "")
		return nil
	}

	return data.NewEdgeFromRecord(it.gm.onto.Identifiers(), rec)
}

/*
Error returns the last encountered error.
*/
func (it *EdgeIterator) Error() error {
	return it.LastError
}

/*
Close closes this iterator.
*/
func (it *EdgeIterator) Close() error {
	return it.c.Close()
}
