/*
 * ontograph
 *
 * Copyright 2026 The ontograph Authors. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/milko/ontograph/store"
)

/*
SQLCollection data structure
*/
type SQLCollection struct {
	db       *SQLDatabase   // Database of this collection
	name     string         // Name of the collection
	hydrator store.Hydrator // Hydrator for object results
}

/*
Name returns the name of the collection.
*/
func (sc *SQLCollection) Name() string {
	return sc.name
}

/*
SetHydrator sets the function which produces objects for object results.
*/
func (sc *SQLCollection) SetHydrator(h store.Hydrator) {
	sc.db.server.mutex.Lock()
	defer sc.db.server.mutex.Unlock()

	sc.hydrator = h
}

/*
currentHydrator returns the current hydrator.
*/
func (sc *SQLCollection) currentHydrator() store.Hydrator {
	sc.db.server.mutex.Lock()
	defer sc.db.server.mutex.Unlock()

	return sc.hydrator
}

/*
MatchOne returns the first document matching the given criteria.
*/
func (sc *SQLCollection) MatchOne(ctx context.Context, crit store.Criteria,
	mode store.ResultMode, fields []string) (interface{}, error) {

	conn, err := sc.db.server.connection(store.ErrConnection)
	if err != nil {
		return nil, err
	}

	keys, docs, err := sc.match(ctx, conn, crit, 1)
	if err != nil {
		return nil, err
	}

	if len(keys) == 0 {
		if mode.Is(store.ResultAssert) {
			return nil, store.NewStoreError(store.ErrNotFound, crit.String(), sc.name)
		}
		return nil, nil
	}

	return store.Result(docs[keys[0]], mode, fields, sc.currentHydrator())
}

/*
MatchAll returns a cursor over all matching documents. Documents are loaded
when the cursor reaches them.
*/
func (sc *SQLCollection) MatchAll(ctx context.Context, crit store.Criteria,
	mode store.ResultMode, fields []string, keyField string) (store.Cursor, error) {

	conn, err := sc.db.server.connection(store.ErrConnection)
	if err != nil {
		return nil, err
	}

	keys, _, err := sc.match(ctx, conn, crit, -1)
	if err != nil {
		return nil, err
	}

	if len(keys) == 0 && mode.Is(store.ResultAssert) {
		return nil, store.NewStoreError(store.ErrNotFound, crit.String(), sc.name)
	}

	if keyField == "" {
		keyField = store.FieldID
	}

	refs := make([]interface{}, len(keys))
	for i, k := range keys {
		refs[i] = k
	}

	return store.NewCursor(ctx, refs, func(ctx context.Context, ref interface{}) (interface{}, interface{}, error) {
		conn, err := sc.db.server.connection(store.ErrReading)
		if err != nil {
			return nil, nil, err
		}

		doc, err := sc.load(ctx, conn, ref.(string))
		if err == nil && doc == nil {
			err = store.NewStoreError(store.ErrNotFound, fmt.Sprint("Key:", ref), sc.name)
		}

		if err != nil {
			return nil, nil, err
		}

		val, err := store.Result(doc, mode, fields, sc.currentHydrator())

		return doc[keyField], val, err
	}), nil
}

/*
Count returns the number of matching documents.
*/
func (sc *SQLCollection) Count(ctx context.Context, crit store.Criteria) (int, error) {
	conn, err := sc.db.server.connection(store.ErrConnection)
	if err != nil {
		return 0, err
	}

	keys, _, err := sc.match(ctx, conn, crit, -1)

	return len(keys), err
}

/*
match returns the sorted keys of matching documents together with the
decoded documents. A negative limit returns all keys. Lookups by primary key
are done by the database, all other criteria are evaluated on the decoded
documents.
*/
func (sc *SQLCollection) match(ctx context.Context, conn *sql.DB, crit store.Criteria,
	limit int) ([]string, map[string]map[string]interface{}, error) {

	query := "SELECT key, doc FROM documents WHERE db = ? AND coll = ?"
	args := []interface{}{sc.db.name, sc.name}

	if len(crit) > 0 && crit[0].Field == store.FieldID && crit[0].Op == store.OpEq {
		query += " AND key = ?"
		args = append(args, store.KeyString(crit[0].Value))
	}

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, store.NewStoreError(store.ErrReading, err.Error(), sc.name)
	}

	var keys []string
	docs := make(map[string]map[string]interface{})

	for rows.Next() {
		var key, text string

		if err = rows.Scan(&key, &text); err == nil {
			var doc map[string]interface{}

			if doc, err = decodeDocument(text); err == nil {
				keys = append(keys, key)
				docs[key] = doc
			}
		}

		if err != nil {
			break
		}
	}

	if err == nil {
		err = rows.Err()
	}

	rows.Close()

	if err != nil {
		return nil, nil, store.NewStoreError(store.ErrReading, err.Error(), sc.name)
	}

	store.SortKeys(keys)

	res := make([]string, 0, len(keys))

	for _, k := range keys {
		if crit.Match(docs[k]) {
			if res = append(res, k); len(res) == limit {
				break
			}
		}
	}

	return res, docs, nil
}

/*
load loads a single document. Returns nil if the document does not exist.
*/
func (sc *SQLCollection) load(ctx context.Context, conn *sql.DB, key string) (map[string]interface{}, error) {
	var text string

	err := conn.QueryRowContext(ctx, "SELECT doc FROM documents WHERE db = ? AND coll = ? AND key = ?",
		sc.db.name, sc.name, key).Scan(&text)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	var doc map[string]interface{}

	if err == nil {
		doc, err = decodeDocument(text)
	}

	if err != nil {
		return nil, store.NewStoreError(store.ErrReading, err.Error(), sc.name)
	}

	return doc, nil
}

/*
Commit inserts a document and returns its primary key.
*/
func (sc *SQLCollection) Commit(ctx context.Context, obj interface{}) (interface{}, error) {
	return sc.write(ctx, obj, false)
}

/*
Save inserts or replaces a document by its primary key.
*/
func (sc *SQLCollection) Save(ctx context.Context, obj interface{}) (interface{}, error) {
	return sc.write(ctx, obj, true)
}

/*
write stores a document within a transaction.
*/
func (sc *SQLCollection) write(ctx context.Context, obj interface{}, replace bool) (interface{}, error) {
	conn, err := sc.db.server.connection(store.ErrCommit)
	if err != nil {
		return nil, err
	}

	doc, ok := store.ToDocument(obj)
	if !ok {
		return nil, store.NewStoreError(store.ErrCommit,
			fmt.Sprintf("Unsupported document type: %T", obj), sc.name)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, store.NewStoreError(store.ErrCommit, err.Error(), sc.name)
	}
	defer tx.Rollback()

	id, ok := doc[store.FieldID]

	if !ok || id == nil {
		nid, err := nextValue(ctx, tx, sc.db.name, sc.name)
		if err != nil {
			return nil, store.NewStoreError(store.ErrCommit, err.Error(), sc.name)
		}

		id = nid
		doc[store.FieldID] = id
	}

	key := store.KeyString(id)

	if !replace {
		var found int

		err = tx.QueryRowContext(ctx, "SELECT 1 FROM documents WHERE db = ? AND coll = ? AND key = ?",
			sc.db.name, sc.name, key).Scan(&found)

		if err == nil {
			return nil, store.NewStoreError(store.ErrCommit, fmt.Sprint("Duplicate key:", key), sc.name)
		} else if err != sql.ErrNoRows {
			return nil, store.NewStoreError(store.ErrCommit, err.Error(), sc.name)
		}
	}

	text, err := encodeJSON(doc)

	if err == nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO documents (db, coll, key, doc) VALUES (?, ?, ?, ?)
			ON CONFLICT (db, coll, key) DO UPDATE SET doc = excluded.doc`,
			sc.db.name, sc.name, key, text)
	}

	if err == nil {
		err = tx.Commit()
	}

	if err != nil {
		return nil, store.NewStoreError(store.ErrCommit, err.Error(), sc.name)
	}

	return id, nil
}

/*
Delete removes a document by its primary key.
*/
func (sc *SQLCollection) Delete(ctx context.Context, id interface{}) (store.DeleteResult, error) {
	conn, err := sc.db.server.connection(store.ErrWriting)
	if err != nil {
		return store.NotFound, err
	}

	res, err := conn.ExecContext(ctx, "DELETE FROM documents WHERE db = ? AND coll = ? AND key = ?",
		sc.db.name, sc.name, store.KeyString(id))

	return deleteResult(res, err, sc.name)
}

/*
deleteResult converts the result of a delete statement.
*/
func deleteResult(res sql.Result, err error, source string) (store.DeleteResult, error) {
	var n int64

	if err == nil {
		n, err = res.RowsAffected()
	}

	if err != nil {
		return store.NotFound, store.NewStoreError(store.ErrWriting, err.Error(), source)
	} else if n == 0 {
		return store.NotFound, nil
	}

	return store.Deleted, nil
}
