/*
 * ontograph
 *
 * Copyright 2026 The ontograph Authors. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"devt.de/krotik/common/errorutil"
	"github.com/milko/ontograph/config"
	"github.com/milko/ontograph/graph"
)

const testCatalog = `
terms:
  - lid: fruit
    label: {en: Fruit, de: Obst}
  - lid: apple
    label: {en: Apple, de: Apfel}
nodes:
  - key: fruit
    term: fruit
  - key: apple
    term: apple
edges:
  - subject: apple
    predicate: ":predicate:SUBCLASS-OF"
    object: fruit
`

func setupTestConfig(t *testing.T) {
	basepath = t.TempDir()

	errorutil.AssertOk(os.WriteFile(filepath.Join(basepath, "catalog.yaml"), []byte(testCatalog), 0644))

	config.LoadDefaultConfig()
	config.Config[config.CatalogFile] = "catalog.yaml"

	t.Cleanup(func() {
		basepath = ""
		config.Config = nil
	})
}

func TestStartInstanceMemory(t *testing.T) {
	ctx := context.Background()
	setupTestConfig(t)

	config.Config[config.DisplayLanguage] = "de"

	inst, err := StartInstance(ctx)
	if err != nil {
		t.Error(err)
		return
	}
	defer inst.Close()

	if inst.Catalog == nil || inst.Catalog.String() != "0 tags, 2 terms, 2 nodes, 1 edges" {
		t.Error("Unexpected result:", inst.Catalog)
		return
	}

	tc, err := inst.NewTraversalCache(ctx, inst.Catalog.Nodes["apple"])
	errorutil.AssertOk(err)

	if tc.Language() != "de" {
		t.Error("Unexpected result:", tc.Language())
		return
	}

	if res, err := tc.Children(ctx, tc.Root(), graph.Predicates()); err != nil ||
		fmt.Sprint(res) != "map[:predicate:SUBCLASS-OF:[1]]" {
		t.Error("Unexpected result:", res, err)
		return
	}

	if term := tc.Term("fruit"); term == nil || term.Label("xx") != "Obst" {
		t.Error("Unexpected result:", term)
		return
	}
}

func TestStartInstanceSQLite(t *testing.T) {
	ctx := context.Background()
	setupTestConfig(t)

	config.Config[config.StoreBackend] = config.BackendSQLite
	config.Config[config.LocationDatastore] = filepath.Join("data", "test.db")

	inst, err := StartInstance(ctx)
	if err != nil {
		t.Error(err)
		return
	}

	apple := inst.Catalog.Nodes["apple"]

	errorutil.AssertOk(inst.Close())

	// Stored data is available after a restart

	config.Config[config.CatalogFile] = ""

	inst, err = StartInstance(ctx)
	if err != nil {
		t.Error(err)
		return
	}
	defer inst.Close()

	if inst.Catalog != nil {
		t.Error("No catalog should have been loaded")
		return
	}

	node, err := inst.Manager.FetchNode(ctx, apple, true)
	if err != nil || node.Term() != "apple" {
		t.Error("Unexpected result:", node, err)
		return
	}

	if tag, err := inst.Onto.TagByGlobalID(ctx, ":label", true); err != nil || tag == nil {
		t.Error("Unexpected result:", tag, err)
		return
	}
}

func TestStartInstanceErrors(t *testing.T) {
	ctx := context.Background()
	setupTestConfig(t)

	config.Config[config.StoreBackend] = "foo"

	if _, err := StartInstance(ctx); err == nil || err.Error() != "Unknown store backend: foo" {
		t.Error("Unexpected result:", err)
		return
	}

	config.Config[config.StoreBackend] = config.BackendMemory
	config.Config[config.CacheBackend] = "bar"

	if _, err := StartInstance(ctx); err == nil || err.Error() != "Unknown cache backend: bar" {
		t.Error("Unexpected result:", err)
		return
	}

	config.Config[config.CacheBackend] = config.BackendMemory
	config.Config[config.CatalogFile] = "missing.yaml"

	if _, err := StartInstance(ctx); err == nil {
		t.Error("Missing catalog file should be reported")
		return
	}
}
