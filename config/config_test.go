/*
 * ontograph
 *
 * Copyright 2026 The ontograph Authors. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	testconf := filepath.Join(t.TempDir(), "testconfig")

	Config = nil

	os.WriteFile(testconf, []byte(`{
    "StoreBackend": "sqlite",
    "QueryTimeoutSeconds": 3
}`), 0644)

	if err := LoadConfigFile(testconf); err != nil {
		t.Error(err)
		return
	}

	if res := Str(StoreBackend); res != BackendSQLite {
		t.Error("Unexpected result:", res)
		return
	}

	if res := Seconds(QueryTimeoutSeconds); res != 3*time.Second {
		t.Error("Unexpected result:", res)
		return
	}

	if res := Int(CacheMaxSize); fmt.Sprint(res) != fmt.Sprint(DefaultConfig[CacheMaxSize]) {
		t.Error("Unexpected result:", res)
		return
	}

	LoadDefaultConfig()

	if res := Str(StoreBackend); res != BackendMemory {
		t.Error("Unexpected result:", res)
		return
	}

	Config[CacheMaxSize] = "123"

	if res := Int(CacheMaxSize); res != 123 {
		t.Error("Unexpected result:", res)
		return
	}

	Config[LogLevel] = "true"

	if res := Bool(LogLevel); !res {
		t.Error("Unexpected result:", res)
		return
	}

	// A missing config file is written with the default values

	newconf := filepath.Join(t.TempDir(), "newconfig")

	if err := LoadConfigFile(newconf); err != nil {
		t.Error(err)
		return
	}

	if _, err := os.Stat(newconf); err != nil {
		t.Error("Config file should have been written:", err)
		return
	}

	if res := Str(DisplayLanguage); res != "en" {
		t.Error("Unexpected result:", res)
		return
	}
}
