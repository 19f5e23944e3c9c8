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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/milko/ontograph/store"
)

/*
SQLGraphStore data structure
*/
type SQLGraphStore struct {
	db *SQLDatabase // Database of this graph store
}

/*
SetVertex stores a vertex.
*/
func (sgs *SQLGraphStore) SetVertex(ctx context.Context, props map[string]interface{},
	labels []string) (uint64, error) {

	conn, err := sgs.db.server.connection(store.ErrWriting)
	if err != nil {
		return 0, err
	}

	props = store.CopyDocument(props)
	if props == nil {
		props = make(map[string]interface{})
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, store.NewStoreError(store.ErrWriting, err.Error(), sgs.db.name)
	}
	defer tx.Rollback()

	var id uint64

	if val, ok := props[store.FieldID]; ok && val != nil {
		if id, ok = store.AsUint64(val); !ok || id == 0 {
			return 0, store.NewStoreError(store.ErrInvalidData,
				fmt.Sprint("Invalid vertex id:", val), sgs.db.name)
		}
	} else if id, err = nextValue(ctx, tx, sgs.db.name, store.VertexSequence); err != nil {
		return 0, store.NewStoreError(store.ErrWriting, err.Error(), sgs.db.name)
	}

	props[store.FieldID] = id

	if labels == nil {
		labels = []string{}
	}

	text, err := encodeJSON(props)

	var labelText string
	if err == nil {
		labelText, err = encodeJSON(labels)
	}

	if err == nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO vertices (db, id, props, labels) VALUES (?, ?, ?, ?)
			ON CONFLICT (db, id) DO UPDATE SET props = excluded.props, labels = excluded.labels`,
			sgs.db.name, id, text, labelText)
	}

	if err == nil {
		err = tx.Commit()
	}

	if err != nil {
		return 0, store.NewStoreError(store.ErrWriting, err.Error(), sgs.db.name)
	}

	return id, nil
}

/*
Vertex returns the properties of a vertex.
*/
func (sgs *SQLGraphStore) Vertex(ctx context.Context, id uint64, assert bool) (map[string]interface{}, error) {
	conn, err := sgs.db.server.connection(store.ErrReading)
	if err != nil {
		return nil, err
	}

	var text string

	err = conn.QueryRowContext(ctx, "SELECT props FROM vertices WHERE db = ? AND id = ?",
		sgs.db.name, id).Scan(&text)

	if err == sql.ErrNoRows {
		if assert {
			return nil, store.NewStoreError(store.ErrNotFound, fmt.Sprint("Vertex:", id), sgs.db.name)
		}
		return nil, nil
	}

	var props map[string]interface{}

	if err == nil {
		props, err = decodeDocument(text)
	}

	if err != nil {
		return nil, store.NewStoreError(store.ErrReading, err.Error(), sgs.db.name)
	}

	if props == nil {
		props = make(map[string]interface{})
	}

	props[store.FieldID] = id

	return props, nil
}

/*
Labels returns the labels of a vertex.
*/
func (sgs *SQLGraphStore) Labels(ctx context.Context, id uint64) ([]string, error) {
	conn, err := sgs.db.server.connection(store.ErrReading)
	if err != nil {
		return nil, err
	}

	var text string
	var labels []string

	err = conn.QueryRowContext(ctx, "SELECT labels FROM vertices WHERE db = ? AND id = ?",
		sgs.db.name, id).Scan(&text)

	if err == sql.ErrNoRows {
		return nil, nil
	} else if err == nil {
		err = json.Unmarshal([]byte(text), &labels)
	}

	if err != nil {
		return nil, store.NewStoreError(store.ErrReading, err.Error(), sgs.db.name)
	}

	return labels, nil
}

/*
DeleteVertex removes a vertex and all its edges.
*/
func (sgs *SQLGraphStore) DeleteVertex(ctx context.Context, id uint64) (store.DeleteResult, error) {
	conn, err := sgs.db.server.connection(store.ErrWriting)
	if err != nil {
		return store.NotFound, err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return store.NotFound, store.NewStoreError(store.ErrWriting, err.Error(), sgs.db.name)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, "DELETE FROM edges WHERE db = ? AND (subject = ? OR object = ?)",
		sgs.db.name, id, id); err != nil {

		return store.NotFound, store.NewStoreError(store.ErrWriting, err.Error(), sgs.db.name)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM vertices WHERE db = ? AND id = ?", sgs.db.name, id)

	dr, err := deleteResult(res, err, sgs.db.name)

	if err == nil {
		if err = tx.Commit(); err != nil {
			return store.NotFound, store.NewStoreError(store.ErrWriting, err.Error(), sgs.db.name)
		}
	}

	return dr, err
}

/*
SetEdge stores an edge between two existing vertices.
*/
func (sgs *SQLGraphStore) SetEdge(ctx context.Context, subject uint64, predicate string,
	object uint64, props map[string]interface{}) (string, error) {

	conn, err := sgs.db.server.connection(store.ErrWriting)
	if err != nil {
		return "", err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return "", store.NewStoreError(store.ErrWriting, err.Error(), sgs.db.name)
	}
	defer tx.Rollback()

	for _, v := range []uint64{subject, object} {
		var found int

		err = tx.QueryRowContext(ctx, "SELECT 1 FROM vertices WHERE db = ? AND id = ?",
			sgs.db.name, v).Scan(&found)

		if err == sql.ErrNoRows {
			return "", store.NewStoreError(store.ErrInvalidData,
				fmt.Sprint("Unknown vertex:", v), sgs.db.name)
		} else if err != nil {
			return "", store.NewStoreError(store.ErrWriting, err.Error(), sgs.db.name)
		}
	}

	key := store.EdgeKey(subject, predicate, object)

	text, err := encodeJSON(store.CopyDocument(props))

	if err == nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO edges (db, key, subject, predicate, object, props) VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (db, key) DO UPDATE SET props = excluded.props`,
			sgs.db.name, key, subject, predicate, object, text)
	}

	if err == nil {
		err = tx.Commit()
	}

	if err != nil {
		return "", store.NewStoreError(store.ErrWriting, err.Error(), sgs.db.name)
	}

	return key, nil
}

/*
Edge returns an edge.
*/
func (sgs *SQLGraphStore) Edge(ctx context.Context, key string, assert bool) (*store.EdgeRecord, error) {
	conn, err := sgs.db.server.connection(store.ErrReading)
	if err != nil {
		return nil, err
	}

	var text string

	e := &store.EdgeRecord{Key: key}

	err = conn.QueryRowContext(ctx,
		"SELECT subject, predicate, object, props FROM edges WHERE db = ? AND key = ?",
		sgs.db.name, key).Scan(&e.Subject, &e.Predicate, &e.Object, &text)

	if err == sql.ErrNoRows {
		if assert {
			return nil, store.NewStoreError(store.ErrNotFound, fmt.Sprint("Edge:", key), sgs.db.name)
		}
		return nil, nil
	}

	if err == nil {
		e.Props, err = decodeDocument(text)
	}

	if err != nil {
		return nil, store.NewStoreError(store.ErrReading, err.Error(), sgs.db.name)
	}

	return e, nil
}

/*
DeleteEdge removes an edge.
*/
func (sgs *SQLGraphStore) DeleteEdge(ctx context.Context, key string) (store.DeleteResult, error) {
	conn, err := sgs.db.server.connection(store.ErrWriting)
	if err != nil {
		return store.NotFound, err
	}

	res, err := conn.ExecContext(ctx, "DELETE FROM edges WHERE db = ? AND key = ?", sgs.db.name, key)

	return deleteResult(res, err, sgs.db.name)
}

/*
VertexEdges returns a cursor over the edges of a vertex. Edges are returned
in the order in which they were first stored.
*/
func (sgs *SQLGraphStore) VertexEdges(ctx context.Context, vertex uint64, predicates []string,
	dir store.Direction) (store.Cursor, error) {

	conn, err := sgs.db.server.connection(store.ErrReading)
	if err != nil {
		return nil, err
	}

	load := func(ctx context.Context, ref interface{}) (interface{}, interface{}, error) {
		e, err := sgs.Edge(ctx, ref.(string), true)
		return ref, e, err
	}

	if predicates != nil && len(predicates) == 0 {
		return store.NewCursor(ctx, nil, load), nil
	}

	query := "SELECT key FROM edges WHERE db = ?"
	args := []interface{}{sgs.db.name}

	switch dir {
	case store.DirIn:
		query += " AND object = ?"
		args = append(args, vertex)
	case store.DirOut:
		query += " AND subject = ?"
		args = append(args, vertex)
	default:
		query += " AND (subject = ? OR object = ?)"
		args = append(args, vertex, vertex)
	}

	if predicates != nil {
		query += " AND predicate IN (?" + strings.Repeat(", ?", len(predicates)-1) + ")"
		for _, p := range predicates {
			args = append(args, p)
		}
	}

	rows, err := conn.QueryContext(ctx, query+" ORDER BY pos", args...)
	if err != nil {
		return nil, store.NewStoreError(store.ErrReading, err.Error(), sgs.db.name)
	}

	var refs []interface{}

	for rows.Next() {
		var key string

		if err = rows.Scan(&key); err != nil {
			break
		}

		refs = append(refs, key)
	}

	if err == nil {
		err = rows.Err()
	}

	rows.Close()

	if err != nil {
		return nil, store.NewStoreError(store.ErrReading, err.Error(), sgs.db.name)
	}

	return store.NewCursor(ctx, refs, load), nil
}
