/*
 * ontograph
 *
 * Copyright 2026 The ontograph Authors. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"devt.de/krotik/common/errorutil"
	"github.com/milko/ontograph/config"
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

/*
execute runs the command line tool with a given configuration file.
*/
func execute(conf string, args ...string) (string, error) {
	var out, logs bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&logs)
	cmd.SetArgs(append([]string{"--config", conf}, args...))

	err := cmd.Execute()

	return out.String(), err
}

func setupTestFiles(t *testing.T) (string, string) {
	dir := t.TempDir()

	conf := filepath.Join(dir, "ontograph.config.json")
	cat := filepath.Join(dir, "catalog.yaml")

	errorutil.AssertOk(os.WriteFile(conf, []byte(fmt.Sprintf(`{
    "StoreBackend": "sqlite",
    "LocationDatastore": %q,
    "LogLevel": "error"
}`, filepath.Join(dir, "data", "test.db"))), 0644))

	errorutil.AssertOk(os.WriteFile(cat, []byte(testCatalog), 0644))

	t.Cleanup(func() {
		config.Config = nil
	})

	return conf, cat
}

func TestCommands(t *testing.T) {
	conf, cat := setupTestFiles(t)

	out, err := execute(conf, "load", cat)
	if err != nil || out != `Loaded 0 tags, 2 terms, 2 nodes, 1 edges
    apple : 2
    fruit : 1
` {
		t.Error("Unexpected result:", out, err)
		return
	}

	out, err = execute(conf, "children", "2")
	if err != nil || out != `:predicate:SUBCLASS-OF
    1 term(fruit) Fruit
` {
		t.Error("Unexpected result:", out, err)
		return
	}

	out, err = execute(conf, "parents", "1", "--all")
	if err != nil || out != `:predicate:SUBCLASS-OF
    2 term(apple) Apple
` {
		t.Error("Unexpected result:", out, err)
		return
	}

	// Unrelated predicates are not followed

	out, err = execute(conf, "parents", "1", "part-of")
	if err != nil || out != `:predicate:SUBCLASS-OF
    2 term(apple) Apple
` {
		t.Error("Unexpected result:", out, err)
		return
	}

	// Nodes which reference tags are labelled with the tag label

	extra := filepath.Join(filepath.Dir(cat), "extra.yaml")
	errorutil.AssertOk(os.WriteFile(extra, []byte(`
tags:
  - gid: ":weight"
    label: {en: Weight}
    type: ":type:float"
nodes:
  - key: weight
    tag: ":weight"
edges:
  - subject: weight
    predicate: ":predicate:SUBCLASS-OF"
    object: 1
`), 0644))

	if _, err = execute(conf, "load", extra); err != nil {
		t.Error(err)
		return
	}

	out, err = execute(conf, "parents", "1")
	if err != nil || out != `:predicate:SUBCLASS-OF
    2 term(apple) Apple
    3 tag(:weight) Weight
` {
		t.Error("Unexpected result:", out, err)
		return
	}

	out, err = execute(conf, "resolve", "apple")
	if err != nil || !strings.HasPrefix(out, "Term:") || !strings.Contains(out, "Apple") {
		t.Error("Unexpected result:", out, err)
		return
	}

	out, err = execute(conf, "resolve", ":label")
	if err != nil || !strings.HasPrefix(out, "Tag:") {
		t.Error("Unexpected result:", out, err)
		return
	}

	out, err = execute(conf, "tag", "2")
	if err != nil || !strings.HasPrefix(out, "Tag:") || !strings.Contains(out, ":label") {
		t.Error("Unexpected result:", out, err)
		return
	}
}

func TestRootHelp(t *testing.T) {
	conf, _ := setupTestFiles(t)

	out, err := execute(conf, "--help")
	if err != nil || !strings.Contains(out, "memory") || !strings.Contains(out, "sqlite") {
		t.Error("Unexpected result:", out, err)
		return
	}
}

func TestCommandErrors(t *testing.T) {
	conf, _ := setupTestFiles(t)

	if _, err := execute(conf, "children", "foo"); err == nil || err.Error() != "Invalid node id: foo" {
		t.Error("Unexpected result:", err)
		return
	}

	if _, err := execute(conf, "tag", "x"); err == nil || err.Error() != "Invalid native identifier: x" {
		t.Error("Unexpected result:", err)
		return
	}

	if _, err := execute(conf, "resolve", "unknown"); err == nil {
		t.Error("Unknown identifiers should be reported")
		return
	}

	if _, err := execute(conf, "load", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Missing catalog should be reported")
		return
	}

	if _, err := execute(conf, "children"); err == nil {
		t.Error("Missing argument should be reported")
		return
	}
}
