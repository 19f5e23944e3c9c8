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
	"bytes"
	"context"
	"fmt"

	"github.com/milko/ontograph/store"
)

/*
MemoryCollection data structure
*/
type MemoryCollection struct {
	db       *MemoryDatabase                   // Database of this collection
	name     string                            // Name of the collection
	docs     map[string]map[string]interface{} // Documents by primary key
	hydrator store.Hydrator                    // Hydrator for object results

	AccessMap map[string]int // Special map to simulate access issues
}

/*
Name returns the name of the collection.
*/
func (mc *MemoryCollection) Name() string {
	return mc.name
}

/*
SetHydrator sets the function which produces objects for object results.
*/
func (mc *MemoryCollection) SetHydrator(h store.Hydrator) {
	mc.db.server.mutex.Lock()
	defer mc.db.server.mutex.Unlock()

	mc.hydrator = h
}

/*
MatchOne returns the first document matching the given criteria.
*/
func (mc *MemoryCollection) MatchOne(ctx context.Context, crit store.Criteria,
	mode store.ResultMode, fields []string) (interface{}, error) {

	mc.db.server.mutex.Lock()

	if err := mc.db.checkOpen(ctx, store.ErrConnection); err != nil {
		mc.db.server.mutex.Unlock()
		return nil, err
	}

	keys, err := mc.match(crit, 1)

	var doc map[string]interface{}
	if err == nil && len(keys) > 0 {
		doc = store.CopyDocument(mc.docs[keys[0]])
	}

	hydrator := mc.hydrator

	mc.db.server.mutex.Unlock()

	if err != nil {
		return nil, err
	}

	if doc == nil {
		if mode.Is(store.ResultAssert) {
			return nil, store.NewStoreError(store.ErrNotFound, crit.String(), mc.name)
		}
		return nil, nil
	}

	return store.Result(doc, mode, fields, hydrator)
}

/*
MatchAll returns a cursor over all matching documents.
*/
func (mc *MemoryCollection) MatchAll(ctx context.Context, crit store.Criteria,
	mode store.ResultMode, fields []string, keyField string) (store.Cursor, error) {

	mc.db.server.mutex.Lock()
	defer mc.db.server.mutex.Unlock()

	if err := mc.db.checkOpen(ctx, store.ErrConnection); err != nil {
		return nil, err
	}

	keys, err := mc.match(crit, -1)
	if err != nil {
		return nil, err
	}

	if len(keys) == 0 && mode.Is(store.ResultAssert) {
		return nil, store.NewStoreError(store.ErrNotFound, crit.String(), mc.name)
	}

	if keyField == "" {
		keyField = store.FieldID
	}

	refs := make([]interface{}, len(keys))
	for i, k := range keys {
		refs[i] = k
	}

	return store.NewCursor(ctx, refs, func(ctx context.Context, ref interface{}) (interface{}, interface{}, error) {
		mc.db.server.mutex.Lock()

		doc, ok := mc.docs[ref.(string)]
		doc = store.CopyDocument(doc)
		hydrator := mc.hydrator

		mc.db.server.mutex.Unlock()

		if !ok {
			return nil, nil, store.NewStoreError(store.ErrNotFound, fmt.Sprint("Key:", ref), mc.name)
		}

		val, err := store.Result(doc, mode, fields, hydrator)

		return doc[keyField], val, err
	}), nil
}

/*
Count returns the number of matching documents.
*/
func (mc *MemoryCollection) Count(ctx context.Context, crit store.Criteria) (int, error) {
	mc.db.server.mutex.Lock()
	defer mc.db.server.mutex.Unlock()

	if err := mc.db.checkOpen(ctx, store.ErrConnection); err != nil {
		return 0, err
	}

	keys, err := mc.match(crit, -1)

	return len(keys), err
}

/*
match returns the sorted keys of matching documents. A negative limit
returns all keys. The caller must hold the server lock.
*/
func (mc *MemoryCollection) match(crit store.Criteria, limit int) ([]string, error) {
	var keys []string

	// Lookups by primary key don't need a scan

	if len(crit) > 0 && crit[0].Field == store.FieldID && crit[0].Op == store.OpEq {
		k := store.KeyString(crit[0].Value)
		if _, ok := mc.docs[k]; ok {
			keys = append(keys, k)
		}
	} else {
		for k := range mc.docs {
			keys = append(keys, k)
		}
		store.SortKeys(keys)
	}

	res := make([]string, 0, len(keys))

	for _, k := range keys {
		if mc.AccessMap[k] == AccessReadError {
			return nil, store.NewStoreError(store.ErrReading, fmt.Sprint("Key:", k), mc.name)
		}

		if crit.Match(mc.docs[k]) {
			if res = append(res, k); len(res) == limit {
				break
			}
		}
	}

	return res, nil
}

/*
Commit inserts a document and returns its primary key.
*/
func (mc *MemoryCollection) Commit(ctx context.Context, obj interface{}) (interface{}, error) {
	return mc.write(ctx, obj, false)
}

/*
Save inserts or replaces a document by its primary key.
*/
func (mc *MemoryCollection) Save(ctx context.Context, obj interface{}) (interface{}, error) {
	return mc.write(ctx, obj, true)
}

/*
write stores a document.
*/
func (mc *MemoryCollection) write(ctx context.Context, obj interface{}, replace bool) (interface{}, error) {
	mc.db.server.mutex.Lock()
	defer mc.db.server.mutex.Unlock()

	if err := mc.db.checkOpen(ctx, store.ErrCommit); err != nil {
		return nil, err
	}

	doc, ok := store.ToDocument(obj)
	if !ok {
		return nil, store.NewStoreError(store.ErrCommit,
			fmt.Sprintf("Unsupported document type: %T", obj), mc.name)
	}

	id, ok := doc[store.FieldID]

	if !ok || id == nil {
		nid, err := mc.db.seq.nextValue(mc.name)
		if err != nil {
			return nil, store.NewStoreError(store.ErrCommit, err.Error(), mc.name)
		}

		id = nid
		doc[store.FieldID] = id
	}

	key := store.KeyString(id)

	if mc.AccessMap[key] == AccessWriteError {
		return nil, store.NewStoreError(store.ErrCommit, fmt.Sprint("Key:", key), mc.name)
	} else if _, ok := mc.docs[key]; ok && !replace {
		return nil, store.NewStoreError(store.ErrCommit, fmt.Sprint("Duplicate key:", key), mc.name)
	}

	mc.docs[key] = doc

	return id, nil
}

/*
Delete removes a document by its primary key.
*/
func (mc *MemoryCollection) Delete(ctx context.Context, id interface{}) (store.DeleteResult, error) {
	mc.db.server.mutex.Lock()
	defer mc.db.server.mutex.Unlock()

	if err := mc.db.checkOpen(ctx, store.ErrWriting); err != nil {
		return store.NotFound, err
	}

	key := store.KeyString(id)

	if mc.AccessMap[key] == AccessWriteError {
		return store.NotFound, store.NewStoreError(store.ErrWriting, fmt.Sprint("Key:", key), mc.name)
	}

	if _, ok := mc.docs[key]; !ok {
		return store.NotFound, nil
	}

	delete(mc.docs, key)

	return store.Deleted, nil
}

/*
String returns a string representation of the collection.
*/
func (mc *MemoryCollection) String() string {
	mc.db.server.mutex.Lock()
	defer mc.db.server.mutex.Unlock()

	buf := new(bytes.Buffer)

	buf.WriteString(fmt.Sprintf("MemoryCollection %v\n", mc.name))

	keys := make([]string, 0, len(mc.docs))
	for k := range mc.docs {
		keys = append(keys, k)
	}
	store.SortKeys(keys)

	for _, k := range keys {
		buf.WriteString(fmt.Sprintf("%v - %v\n", k, mc.docs[k]))
	}

	return buf.String()
}
