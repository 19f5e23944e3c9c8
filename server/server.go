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
Package server contains the code which assembles an ontograph instance from
the configuration. An instance consists of a store backend, an identifier
cache backend, the ontology and the graph manager.
*/
package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"devt.de/krotik/common/fileutil"
	"devt.de/krotik/common/logutil"
	"github.com/milko/ontograph/catalog"
	"github.com/milko/ontograph/config"
	"github.com/milko/ontograph/graph"
	"github.com/milko/ontograph/kvcache"
	"github.com/milko/ontograph/ontology"
	"github.com/milko/ontograph/store"
	"github.com/milko/ontograph/store/memstore"
	"github.com/milko/ontograph/store/sqlstore"
)

/*
logger is the logger of the server
*/
var logger = logutil.GetLogger("ontograph.server")

/*
Base path for all files (used by unit tests)
*/
var basepath = ""

/*
Instance is a running ontograph instance.
*/
type Instance struct {
	Server  store.Server       // Store backend
	Cache   kvcache.Cache      // Identifier cache backend
	Onto    *ontology.Ontology // Ontology
	Manager *graph.Manager     // Graph manager
	Catalog *catalog.Result    // Result of the startup catalog load (if any)
}

/*
StartInstance creates an instance from the current configuration. The
default configuration is used if no configuration was loaded.
*/
func StartInstance(ctx context.Context) (*Instance, error) {
	var err error

	// Ensure we have a configuration - use the default configuration if nothing was set

	if config.Config == nil {
		config.LoadDefaultConfig()
	}

	inst := &Instance{}

	if inst.Server, err = newStoreServer(); err != nil {
		return nil, err
	}

	if err = inst.Server.Open(ctx); err != nil {
		return nil, err
	}

	if inst.Cache, err = newCache(ctx); err != nil {
		inst.Close()
		return nil, err
	}

	err = inst.start(ctx)

	if err != nil {
		inst.Close()
		return nil, err
	}

	return inst, nil
}

/*
start creates the ontology and the graph manager.
*/
func (inst *Instance) start(ctx context.Context) error {
	db, err := inst.Server.Database(ctx, config.Str(config.DatabaseName), true)
	if err != nil {
		return err
	}

	if inst.Onto, err = ontology.New(ctx, db, inst.Cache); err != nil {
		return err
	}

	logger.Info("Creating graph manager for database ", db.Name())

	if inst.Manager, err = graph.NewManager(ctx, inst.Onto); err != nil {
		return err
	}

	if err = inst.Onto.Bootstrap(ctx); err != nil {
		return err
	}

	if catfile := config.Str(config.CatalogFile); catfile != "" {
		var f *os.File

		logger.Info("Loading catalog ", catfile)

		if f, err = os.Open(filepath.Join(basepath, catfile)); err != nil {
			return err
		}
		defer f.Close()

		inst.Catalog, err = catalog.Load(ctx, inst.Onto, inst.Manager, f)
	}

	return err
}

/*
NewTraversalCache creates a traversal cache with the configured display
language and query timeout.
*/
func (inst *Instance) NewTraversalCache(ctx context.Context, root interface{}) (*graph.TraversalCache, error) {
	tc, err := graph.NewTraversalCache(ctx, inst.Manager, root, config.Str(config.DisplayLanguage))

	if err == nil {
		tc.SetTimeout(config.Seconds(config.QueryTimeoutSeconds))
	}

	return tc, err
}

/*
Close closes the cache and the store backend of the instance.
*/
func (inst *Instance) Close() error {
	var err error

	if inst.Cache != nil {
		err = inst.Cache.Close()
	}

	if serr := inst.Server.Close(); err == nil {
		err = serr
	}

	return err
}

/*
newStoreServer creates the configured store backend.
*/
func newStoreServer() (store.Server, error) {
	switch backend := config.Str(config.StoreBackend); backend {

	case config.BackendMemory:
		logger.Info("Starting memory only datastore")

		return memstore.NewMemoryServer("ontograph"), nil

	case config.BackendSQLite:
		loc := filepath.Join(basepath, config.Str(config.LocationDatastore))

		logger.Info("Starting datastore in ", loc)

		// Ensure path for database exists

		if err := ensurePath(filepath.Dir(loc)); err != nil {
			return nil, err
		}

		return sqlstore.NewSQLServer("ontograph", loc), nil

	default:
		return nil, fmt.Errorf("Unknown store backend: %v", backend)
	}
}

/*
newCache creates the configured identifier cache backend.
*/
func newCache(ctx context.Context) (kvcache.Cache, error) {
	switch backend := config.Str(config.CacheBackend); backend {

	case config.BackendMemory:
		return kvcache.NewMemoryCache("ontograph-ids", uint64(config.Int(config.CacheMaxSize)),
			config.Int(config.CacheMaxAgeSeconds)), nil

	case config.BackendNats:
		logger.Info("Connecting to identifier cache ", config.Str(config.NatsBucket),
			" at ", config.Str(config.NatsURL))

		nc, err := kvcache.ConnectNatsCache(ctx, config.Str(config.NatsURL), config.Str(config.NatsBucket))
		if err != nil {
			return nil, err
		}

		return nc, nil

	default:
		return nil, fmt.Errorf("Unknown cache backend: %v", backend)
	}
}

/*
ensurePath ensures that a given relative path exists.
*/
func ensurePath(path string) error {
	if res, _ := fileutil.PathExists(path); !res {
		if err := os.MkdirAll(path, 0770); err != nil {
			return fmt.Errorf("Could not create directory: %v", err)
		}
	}

	return nil
}
