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
Package memstore contains a store backend which keeps all its data in memory
and provides several error simulation facilities.

Each component has an AccessMap which can be used to let operations on
specific keys fail. The graph store additionally counts and records all
edge queries so callers can verify how often the backend was hit.
*/
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/milko/ontograph/store"
)

/*
Access codes for the AccessMap of the memory components
*/
const (
	AccessWriteError = 1 // Writes of the key fail
	AccessReadError  = 2 // Reads of the key fail
	AccessQueryError = 3 // Queries which start from the key fail
)

/*
MemoryServer data structure
*/
type MemoryServer struct {
	name  string                     // Name of the server
	open  bool                       // Flag if the connection is open
	dbs   map[string]*MemoryDatabase // Databases of this server
	mutex *sync.Mutex                // Mutex to protect all data of this server
}

/*
NewMemoryServer creates a new MemoryServer instance. The connection is
initially closed.
*/
func NewMemoryServer(name string) *MemoryServer {
	return &MemoryServer{name, false, make(map[string]*MemoryDatabase), &sync.Mutex{}}
}

/*
Name returns the name of the server.
*/
func (ms *MemoryServer) Name() string {
	return ms.name
}

/*
Open opens the connection.
*/
func (ms *MemoryServer) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return store.NewStoreError(store.ErrConnection, err.Error(), ms.name)
	}

	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	ms.open = true

	return nil
}

/*
IsOpen checks if the connection is open.
*/
func (ms *MemoryServer) IsOpen() bool {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	return ms.open
}

/*
Database returns a database of this server.
*/
func (ms *MemoryServer) Database(ctx context.Context, name string, create bool) (store.Database, error) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	if !ms.open {
		return nil, store.NewStoreError(store.ErrConnection, "", ms.name)
	} else if err := ctx.Err(); err != nil {
		return nil, store.NewStoreError(store.ErrReading, err.Error(), ms.name)
	}

	db, ok := ms.dbs[name]

	if !ok {
		if !create {
			return nil, nil
		}

		db = newMemoryDatabase(ms, name)
		ms.dbs[name] = db
	}

	return db, nil
}

/*
Close closes the connection. The data of the server is kept.
*/
func (ms *MemoryServer) Close() error {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	ms.open = false

	return nil
}

/*
MemoryDatabase data structure
*/
type MemoryDatabase struct {
	server      *MemoryServer                // Server of this database
	name        string                       // Name of the database
	collections map[string]*MemoryCollection // Document collections
	graph       *MemoryGraphStore            // Graph store
	seq         *MemorySequencer             // Sequence allocator
}

/*
newMemoryDatabase creates a new MemoryDatabase instance.
*/
func newMemoryDatabase(server *MemoryServer, name string) *MemoryDatabase {
	db := &MemoryDatabase{server, name, make(map[string]*MemoryCollection), nil, nil}

	db.seq = &MemorySequencer{db, make(map[string]uint64), make(map[string]int)}
	db.graph = &MemoryGraphStore{db: db,
		vertices:  make(map[uint64]map[string]interface{}),
		labels:    make(map[uint64][]string),
		edges:     make(map[string]*store.EdgeRecord),
		AccessMap: make(map[string]int)}

	return db
}

/*
Name returns the name of the database.
*/
func (db *MemoryDatabase) Name() string {
	return db.name
}

/*
Collection returns a document collection.
*/
func (db *MemoryDatabase) Collection(ctx context.Context, name string, create bool) (store.Collection, error) {
	db.server.mutex.Lock()
	defer db.server.mutex.Unlock()

	if err := db.checkOpen(ctx, store.ErrConnection); err != nil {
		return nil, err
	}

	coll, ok := db.collections[name]

	if !ok {
		if !create {
			return nil, nil
		}

		coll = &MemoryCollection{db: db, name: name,
			docs: make(map[string]map[string]interface{}), AccessMap: make(map[string]int)}
		db.collections[name] = coll
	}

	return coll, nil
}

/*
Graph returns the graph store of the database.
*/
func (db *MemoryDatabase) Graph(ctx context.Context) (store.GraphStore, error) {
	db.server.mutex.Lock()
	defer db.server.mutex.Unlock()

	if err := db.checkOpen(ctx, store.ErrConnection); err != nil {
		return nil, err
	}

	return db.graph, nil
}

/*
Sequencer returns the sequence allocator of the database.
*/
func (db *MemoryDatabase) Sequencer() store.Sequencer {
	return db.seq
}

/*
checkOpen checks that the server connection is open and the context is not
done. The caller must hold the server lock.
*/
func (db *MemoryDatabase) checkOpen(ctx context.Context, errType error) error {
	if !db.server.open {
		return store.NewStoreError(errType, store.ErrConnection.Error(), db.name)
	} else if err := ctx.Err(); err != nil {
		return store.NewStoreError(errType, err.Error(), db.name)
	}
	return nil
}

/*
MemorySequencer data structure
*/
type MemorySequencer struct {
	db   *MemoryDatabase   // Database of this sequencer
	next map[string]uint64 // Next values of all sequences

	AccessMap map[string]int // Special map to simulate access issues
}

/*
NextSequence returns the next number of a sequence.
*/
func (seq *MemorySequencer) NextSequence(ctx context.Context, selector string) (uint64, error) {
	seq.db.server.mutex.Lock()
	defer seq.db.server.mutex.Unlock()

	if err := seq.db.checkOpen(ctx, store.ErrWriting); err != nil {
		return 0, err
	}

	return seq.nextValue(selector)
}

/*
nextValue allocates the next number of a sequence. The caller must hold the
server lock.
*/
func (seq *MemorySequencer) nextValue(selector string) (uint64, error) {
	if seq.AccessMap[selector] == AccessWriteError {
		return 0, store.NewStoreError(store.ErrWriting, fmt.Sprint("Sequence:", selector), seq.db.name)
	}

	val := seq.next[selector]
	if val == 0 {
		val = 1
	}

	seq.next[selector] = val + 1

	return val, nil
}

/*
ResetSequence sets the next number which a sequence returns.
*/
func (seq *MemorySequencer) ResetSequence(ctx context.Context, selector string, start uint64) error {
	seq.db.server.mutex.Lock()
	defer seq.db.server.mutex.Unlock()

	if err := seq.db.checkOpen(ctx, store.ErrWriting); err != nil {
		return err
	} else if seq.AccessMap[selector] == AccessWriteError {
		return store.NewStoreError(store.ErrWriting, fmt.Sprint("Sequence:", selector), seq.db.name)
	}

	seq.next[selector] = start

	return nil
}
