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
Package kvcache contains the key/value cache contract which is used to hold
process-wide lookup data such as identifier mappings. Keys are opaque strings,
values are opaque byte blobs. A TTL of 0 seconds means that an entry never
expires.

MemoryCache

A cache which keeps its data in memory. It is based on a datautil.MapCache and
tracks a separate expiry time for each entry. It provides error simulation
facilities for testing.

NatsCache

A cache which stores its data in a NATS JetStream key/value bucket. Entries
are wrapped in an envelope carrying their expiry time so per-entry TTLs work
independently of the bucket configuration.
*/
package kvcache

import (
	"context"
	"errors"
	"fmt"

	"devt.de/krotik/common/logutil"
)

/*
logger is the logger of the kvcache package
*/
var logger = logutil.GetLogger("ontograph.kvcache")

/*
DeleteResult is the outcome of a delete operation.
*/
type DeleteResult int

/*
Possible delete results
*/
const (
	NotFound DeleteResult = iota
	Deleted
)

/*
String returns a string representation of a delete result.
*/
func (r DeleteResult) String() string {
	if r == Deleted {
		return "Deleted"
	}
	return "NotFound"
}

/*
Cache models a key/value cache. No ordering or atomicity guarantees are
given beyond per-key consistency. Concurrent writers to the same key may
interleave, the last write wins.
*/
type Cache interface {

	/*
		Set inserts or replaces a value. A ttl of 0 means no expiry.
	*/
	Set(ctx context.Context, key string, value []byte, ttl int64) error

	/*
		Get returns a value and a flag if it was found. A missing key is
		never an error.
	*/
	Get(ctx context.Context, key string) ([]byte, bool, error)

	/*
		Delete removes a value.
	*/
	Delete(ctx context.Context, key string) (DeleteResult, error)

	/*
		Flush invalidates all entries.
	*/
	Flush(ctx context.Context) error

	/*
		Close releases the resources of the cache.
	*/
	Close() error
}

/*
Cache related error types
*/
var (
	ErrCacheWrite  = errors.New("Could not write to cache")
	ErrCacheRead   = errors.New("Could not read from cache")
	ErrCacheClosed = errors.New("Cache is closed")
)

/*
CacheError is a cache related error.
*/
type CacheError struct {
	Type   error  // Error type (to be used for equal checks)
	Detail string // Details of this error
	Cache  string // Name of the cache
}

/*
newCacheError returns a new cache specific error.
*/
func newCacheError(errType error, detail string, cache string) *CacheError {
	return &CacheError{errType, detail, cache}
}

/*
Error returns a human-readable string representation of this error.
*/
func (ce *CacheError) Error() string {
	if ce.Detail != "" {
		return fmt.Sprintf("CacheError: %v (%v - %v)", ce.Type, ce.Cache, ce.Detail)
	}
	return fmt.Sprintf("CacheError: %v (%v)", ce.Type, ce.Cache)
}

/*
Unwrap returns the error type so errors.Is can be used.
*/
func (ce *CacheError) Unwrap() error {
	return ce.Type
}
