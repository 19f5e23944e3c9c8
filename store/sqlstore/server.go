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
Package sqlstore contains a store backend which persists all data in a
SQLite database file.

All databases of a server share one SQLite file. Each row carries the name
of the database it belongs to. Documents, vertex properties and edge
properties are stored as JSON text. Numbers in stored documents are read
back as json.Number values.
*/
package sqlstore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"devt.de/krotik/common/logutil"
	"github.com/milko/ontograph/store"
	_ "modernc.org/sqlite"
)

/*
logger is the logger of the SQLite backend
*/
var logger = logutil.GetLogger("ontograph.sqlstore")

/*
MemoryLocation is the location of a private in-memory database.
*/
const MemoryLocation = ":memory:"

/*
schema of the SQLite file
*/
const schema = `
CREATE TABLE IF NOT EXISTS databases (
	name TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS collections (
	db   TEXT NOT NULL,
	name TEXT NOT NULL,
	PRIMARY KEY (db, name)
);
CREATE TABLE IF NOT EXISTS documents (
	db   TEXT NOT NULL,
	coll TEXT NOT NULL,
	key  TEXT NOT NULL,
	doc  TEXT NOT NULL,
	PRIMARY KEY (db, coll, key)
);
CREATE TABLE IF NOT EXISTS vertices (
	db     TEXT NOT NULL,
	id     INTEGER NOT NULL,
	props  TEXT NOT NULL,
	labels TEXT NOT NULL,
	PRIMARY KEY (db, id)
);
CREATE TABLE IF NOT EXISTS edges (
	pos       INTEGER PRIMARY KEY AUTOINCREMENT,
	db        TEXT NOT NULL,
	key       TEXT NOT NULL,
	subject   INTEGER NOT NULL,
	predicate TEXT NOT NULL,
	object    INTEGER NOT NULL,
	props     TEXT NOT NULL,
	UNIQUE (db, key)
);
CREATE INDEX IF NOT EXISTS edges_subject ON edges (db, subject, predicate);
CREATE INDEX IF NOT EXISTS edges_object ON edges (db, object, predicate);
CREATE TABLE IF NOT EXISTS sequences (
	db   TEXT NOT NULL,
	name TEXT NOT NULL,
	next INTEGER NOT NULL,
	PRIMARY KEY (db, name)
);
`

/*
SQLServer data structure
*/
type SQLServer struct {
	name     string                  // Name of the server
	location string                  // Location of the SQLite file
	conn     *sql.DB                 // Connection pool (nil if closed)
	dbs      map[string]*SQLDatabase // Known databases
	mutex    *sync.Mutex             // Mutex to protect the server state
}

/*
NewSQLServer creates a new SQLServer instance for a given SQLite file. The
connection is initially closed.
*/
func NewSQLServer(name string, location string) *SQLServer {
	return &SQLServer{name, location, nil, make(map[string]*SQLDatabase), &sync.Mutex{}}
}

/*
Name returns the name of the server.
*/
func (ss *SQLServer) Name() string {
	return ss.name
}

/*
Open opens the connection and creates the schema if necessary.
*/
func (ss *SQLServer) Open(ctx context.Context) error {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	if ss.conn != nil {
		return nil
	}

	conn, err := sql.Open("sqlite", ss.location)
	if err != nil {
		return store.NewStoreError(store.ErrConnection, err.Error(), ss.name)
	}

	// All statements share one connection so private in-memory databases
	// work and writers never compete for the file lock

	conn.SetMaxOpenConns(1)

	if err = conn.PingContext(ctx); err == nil {
		pragmas := []string{"PRAGMA busy_timeout=5000", "PRAGMA foreign_keys=ON"}

		if ss.location != MemoryLocation {
			pragmas = append(pragmas, "PRAGMA journal_mode=WAL")
		}

		for i := 0; err == nil && i < len(pragmas); i++ {
			_, err = conn.ExecContext(ctx, pragmas[i])
		}
	}

	if err == nil {
		_, err = conn.ExecContext(ctx, schema)
	}

	if err != nil {
		conn.Close()
		return store.NewStoreError(store.ErrConnection, err.Error(), ss.name)
	}

	logger.Info("Opened SQLite store ", ss.location)

	ss.conn = conn

	return nil
}

/*
IsOpen checks if the connection is open.
*/
func (ss *SQLServer) IsOpen() bool {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	return ss.conn != nil
}

/*
Database returns a database.
*/
func (ss *SQLServer) Database(ctx context.Context, name string, create bool) (store.Database, error) {
	conn, err := ss.connection(store.ErrConnection)
	if err != nil {
		return nil, err
	}

	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	if db, ok := ss.dbs[name]; ok {
		return db, nil
	}

	var found string

	err = conn.QueryRowContext(ctx, "SELECT name FROM databases WHERE name = ?", name).Scan(&found)

	if err == sql.ErrNoRows {
		if !create {
			return nil, nil
		}

		_, err = conn.ExecContext(ctx, "INSERT INTO databases (name) VALUES (?)", name)
	}

	if err != nil {
		return nil, store.NewStoreError(store.ErrConnection, err.Error(), ss.name)
	}

	db := &SQLDatabase{server: ss, name: name, collections: make(map[string]*SQLCollection)}
	db.graph = &SQLGraphStore{db}
	db.seq = &SQLSequencer{db}

	ss.dbs[name] = db

	return db, nil
}

/*
Close closes the connection.
*/
func (ss *SQLServer) Close() error {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	if ss.conn == nil {
		return nil
	}

	err := ss.conn.Close()

	ss.conn = nil
	ss.dbs = make(map[string]*SQLDatabase)

	if err != nil {
		return store.NewStoreError(store.ErrConnection, err.Error(), ss.name)
	}

	return nil
}

/*
connection returns the connection pool. Returns an error of the given type
if the connection is closed.
*/
func (ss *SQLServer) connection(errType error) (*sql.DB, error) {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	if ss.conn == nil {
		return nil, store.NewStoreError(errType, store.ErrConnection.Error(), ss.name)
	}

	return ss.conn, nil
}

/*
SQLDatabase data structure
*/
type SQLDatabase struct {
	server      *SQLServer                // Server of this database
	name        string                    // Name of the database
	collections map[string]*SQLCollection // Known collections
	graph       *SQLGraphStore            // Graph store
	seq         *SQLSequencer             // Sequence allocator
}

/*
Name returns the name of the database.
*/
func (db *SQLDatabase) Name() string {
	return db.name
}

/*
Collection returns a document collection.
*/
func (db *SQLDatabase) Collection(ctx context.Context, name string, create bool) (store.Collection, error) {
	conn, err := db.server.connection(store.ErrConnection)
	if err != nil {
		return nil, err
	}

	db.server.mutex.Lock()
	defer db.server.mutex.Unlock()

	if coll, ok := db.collections[name]; ok {
		return coll, nil
	}

	var found string

	err = conn.QueryRowContext(ctx, "SELECT name FROM collections WHERE db = ? AND name = ?",
		db.name, name).Scan(&found)

	if err == sql.ErrNoRows {
		if !create {
			return nil, nil
		}

		_, err = conn.ExecContext(ctx, "INSERT INTO collections (db, name) VALUES (?, ?)", db.name, name)
	}

	if err != nil {
		return nil, store.NewStoreError(store.ErrConnection, err.Error(), db.name)
	}

	coll := &SQLCollection{db: db, name: name}
	db.collections[name] = coll

	return coll, nil
}

/*
Graph returns the graph store of the database.
*/
func (db *SQLDatabase) Graph(ctx context.Context) (store.GraphStore, error) {
	if _, err := db.server.connection(store.ErrConnection); err != nil {
		return nil, err
	}

	return db.graph, nil
}

/*
Sequencer returns the sequence allocator of the database.
*/
func (db *SQLDatabase) Sequencer() store.Sequencer {
	return db.seq
}

/*
SQLSequencer data structure
*/
type SQLSequencer struct {
	db *SQLDatabase // Database of this sequencer
}

/*
NextSequence returns the next number of a sequence.
*/
func (seq *SQLSequencer) NextSequence(ctx context.Context, selector string) (uint64, error) {
	conn, err := seq.db.server.connection(store.ErrWriting)
	if err != nil {
		return 0, err
	}

	val, err := nextValue(ctx, conn, seq.db.name, selector)
	if err != nil {
		return 0, store.NewStoreError(store.ErrWriting, err.Error(), seq.db.name)
	}

	return val, nil
}

/*
execer is implemented by connections and transactions.
*/
type execer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

/*
nextValue allocates the next number of a sequence.
*/
func nextValue(ctx context.Context, ex execer, db string, selector string) (uint64, error) {
	var val uint64

	err := ex.QueryRowContext(ctx, `
		INSERT INTO sequences (db, name, next) VALUES (?, ?, 2)
		ON CONFLICT (db, name) DO UPDATE SET next = next + 1
		RETURNING next - 1`, db, selector).Scan(&val)

	return val, err
}

/*
ResetSequence sets the next number which a sequence returns.
*/
func (seq *SQLSequencer) ResetSequence(ctx context.Context, selector string, start uint64) error {
	conn, err := seq.db.server.connection(store.ErrWriting)
	if err != nil {
		return err
	}

	if start == 0 {
		start = 1
	}

	if _, err = conn.ExecContext(ctx, `
		INSERT INTO sequences (db, name, next) VALUES (?, ?, ?)
		ON CONFLICT (db, name) DO UPDATE SET next = excluded.next`,
		seq.db.name, selector, start); err != nil {

		return store.NewStoreError(store.ErrWriting, err.Error(), seq.db.name)
	}

	return nil
}

/*
encodeJSON encodes a value as JSON text.
*/
func encodeJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	return string(data), err
}

/*
decodeDocument decodes a JSON document. Numbers are decoded as json.Number.
*/
func decodeDocument(text string) (map[string]interface{}, error) {
	var doc map[string]interface{}

	dec := json.NewDecoder(bytes.NewBufferString(text))
	dec.UseNumber()

	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("Could not decode document: %v", err)
	}

	return doc, nil
}
