/*
 * ontograph
 *
 * Copyright 2026 The ontograph Authors. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package kvcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"devt.de/krotik/common/datautil"
)

/*
AccessWriteError makes Set and Delete fail for a key.
*/
const AccessWriteError = 1

/*
AccessReadError makes Get fail for a key.
*/
const AccessReadError = 2

/*
memoryEntry is a value stored in the MemoryCache.
*/
type memoryEntry struct {
	value   []byte // Stored value
	expires int64  // Expiry time in unix nanoseconds (0 means no expiry)
}

/*
MemoryCache data structure
*/
type MemoryCache struct {
	name    string             // Name of the cache
	maxsize uint64             // Max number of entries (0 means no limit)
	maxage  int64              // Max age of any entry in seconds (0 means no limit)
	data    *datautil.MapCache // Cached entries
	mutex   *sync.RWMutex      // Mutex to protect the data reference and the access map
	closed  bool               // Flag if the cache was closed

	AccessMap map[string]int // Special map to simulate access issues

	CallNumGet   int // Number of Get calls
	CallNumSet   int // Number of Set calls
	CallNumFlush int // Number of Flush calls
}

/*
NewMemoryCache creates a new MemoryCache. The maxsize and maxage values limit
the overall size and the maximum age (in seconds) of all entries. A value of 0
means no limit.
*/
func NewMemoryCache(name string, maxsize uint64, maxage int64) *MemoryCache {
	return &MemoryCache{name, maxsize, maxage, datautil.NewMapCache(maxsize, maxage),
		&sync.RWMutex{}, false, make(map[string]int), 0, 0, 0}
}

/*
Name returns the name of this cache.
*/
func (mc *MemoryCache) Name() string {
	return mc.name
}

/*
Set inserts or replaces a value. A ttl of 0 means no expiry.
*/
func (mc *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl int64) error {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	mc.CallNumSet++

	if err := mc.checkAccess(ctx, key, AccessWriteError, ErrCacheWrite); err != nil {
		return err
	}

	entry := &memoryEntry{append([]byte(nil), value...), 0}
	if ttl > 0 {
		entry.expires = time.Now().Add(time.Duration(ttl) * time.Second).UnixNano()
	}

	mc.data.Put(key, entry)

	return nil
}

/*
Get returns a value and a flag if it was found.
*/
func (mc *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	mc.CallNumGet++

	if err := mc.checkAccess(ctx, key, AccessReadError, ErrCacheRead); err != nil {
		return nil, false, err
	}

	obj, ok := mc.data.Get(key)
	if !ok {
		return nil, false, nil
	}

	entry := obj.(*memoryEntry)

	if entry.expires != 0 && time.Now().UnixNano() >= entry.expires {
		mc.data.Remove(key)
		return nil, false, nil
	}

	return append([]byte(nil), entry.value...), true, nil
}

/*
Delete removes a value.
*/
func (mc *MemoryCache) Delete(ctx context.Context, key string) (DeleteResult, error) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	if err := mc.checkAccess(ctx, key, AccessWriteError, ErrCacheWrite); err != nil {
		return NotFound, err
	}

	obj, ok := mc.data.Get(key)
	if !ok {
		return NotFound, nil
	}

	mc.data.Remove(key)

	// An expired entry counts as not found

	if entry := obj.(*memoryEntry); entry.expires != 0 && time.Now().UnixNano() >= entry.expires {
		return NotFound, nil
	}

	return Deleted, nil
}

/*
Flush invalidates all entries.
*/
func (mc *MemoryCache) Flush(ctx context.Context) error {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	mc.CallNumFlush++

	if err := mc.checkAccess(ctx, "", AccessWriteError, ErrCacheWrite); err != nil {
		return err
	}

	mc.data = datautil.NewMapCache(mc.maxsize, mc.maxage)

	return nil
}

/*
Close closes the cache. All further operations will fail.
*/
func (mc *MemoryCache) Close() error {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	mc.closed = true

	return nil
}

/*
checkAccess checks if an operation on a given key is allowed. The empty key
in the access map applies to all keys.
*/
func (mc *MemoryCache) checkAccess(ctx context.Context, key string, access int, errType error) error {
	if mc.closed {
		return newCacheError(ErrCacheClosed, key, mc.name)
	}

	if err := ctx.Err(); err != nil {
		return newCacheError(errType, err.Error(), mc.name)
	}

	if mc.AccessMap[key] == access || mc.AccessMap[""] == access {
		return newCacheError(errType, fmt.Sprint("Key:", key), mc.name)
	}

	return nil
}

/*
String returns a string representation of this cache.
*/
func (mc *MemoryCache) String() string {
	mc.mutex.RLock()
	defer mc.mutex.RUnlock()

	return fmt.Sprintf("MemoryCache %v\n%v", mc.name, mc.data.String())
}
