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
Package config contains the configuration of ontograph. The configuration
is a JSON file. Missing values are taken from the default configuration.
*/
package config

import (
	"fmt"
	"strconv"
	"time"

	"devt.de/krotik/common/errorutil"
	"devt.de/krotik/common/fileutil"
)

// Global variables
// ================

/*
DefaultConfigFile is the default config file which will be used to configure ontograph
*/
var DefaultConfigFile = "ontograph.config.json"

/*
Known configuration options for ontograph
*/
const (
	StoreBackend        = "StoreBackend"
	LocationDatastore   = "LocationDatastore"
	DatabaseName        = "DatabaseName"
	CacheBackend        = "CacheBackend"
	CacheMaxSize        = "CacheMaxSize"
	CacheMaxAgeSeconds  = "CacheMaxAgeSeconds"
	NatsURL             = "NatsURL"
	NatsBucket          = "NatsBucket"
	DisplayLanguage     = "DisplayLanguage"
	QueryTimeoutSeconds = "QueryTimeoutSeconds"
	CatalogFile         = "CatalogFile"
	LogLevel            = "LogLevel"
)

/*
Known backends
*/
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendNats   = "nats"
)

/*
DefaultConfig is the defaut configuration
*/
var DefaultConfig = map[string]interface{}{
	StoreBackend:        BackendMemory,
	LocationDatastore:   "ontograph.db",
	DatabaseName:        "ontology",
	CacheBackend:        BackendMemory,
	CacheMaxSize:        0,
	CacheMaxAgeSeconds:  0,
	NatsURL:             "nats://127.0.0.1:4222",
	NatsBucket:          "ontograph-ids",
	DisplayLanguage:     "en",
	QueryTimeoutSeconds: 10,
	CatalogFile:         "",
	LogLevel:            "info",
}

/*
Config is the actual config which is used
*/
var Config map[string]interface{}

/*
LoadConfigFile loads a given config file. If the config file does not exist it is
created with the default options.
*/
func LoadConfigFile(configfile string) error {
	var err error

	Config, err = fileutil.LoadConfig(configfile, DefaultConfig)

	return err
}

/*
LoadDefaultConfig loads the default configuration.
*/
func LoadDefaultConfig() {
	data := make(map[string]interface{})
	for k, v := range DefaultConfig {
		data[k] = v
	}

	Config = data
}

// Helper functions
// ================

/*
Str reads a config value as a string value.
*/
func Str(key string) string {
	return fmt.Sprint(Config[key])
}

/*
Int reads a config value as an int value.
*/
func Int(key string) int64 {
	ret, err := strconv.ParseInt(fmt.Sprint(Config[key]), 10, 64)

	errorutil.AssertTrue(err == nil,
		fmt.Sprintf("Could not parse config key %v: %v", key, err))

	return ret
}

/*
Bool reads a config value as a boolean value.
*/
func Bool(key string) bool {
	ret, err := strconv.ParseBool(fmt.Sprint(Config[key]))

	errorutil.AssertTrue(err == nil,
		fmt.Sprintf("Could not parse config key %v: %v", key, err))

	return ret
}

/*
Seconds reads a config value as a duration in seconds.
*/
func Seconds(key string) time.Duration {
	return time.Duration(Int(key)) * time.Second
}
