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
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

/*
natsEnvelope is the stored form of a cache value.
*/
type natsEnvelope struct {
	Value   []byte `json:"v"`
	Expires int64  `json:"e,omitempty"` // Expiry time in unix nanoseconds
}

/*
NatsCache data structure
*/
type NatsCache struct {
	name string             // Name of the cache (bucket name)
	conn *nats.Conn         // Owned connection (nil if the connection is external)
	kv   jetstream.KeyValue // Key/value bucket
}

/*
ConnectNatsCache connects to a NATS server and opens (or creates) a key/value
bucket. The returned cache owns the connection.
*/
func ConnectNatsCache(ctx context.Context, url string, bucket string) (*NatsCache, error) {
	nc, err := nats.Connect(url, nats.Name("ontograph-kvcache"))
	if err != nil {
		return nil, newCacheError(ErrCacheClosed, err.Error(), bucket)
	}

	nc2, err := NewNatsCache(ctx, nc, bucket)
	if err != nil {
		nc.Close()
		return nil, err
	}

	nc2.conn = nc

	return nc2, nil
}

/*
NewNatsCache opens (or creates) a key/value bucket on an existing connection.
*/
func NewNatsCache(ctx context.Context, nc *nats.Conn, bucket string) (*NatsCache, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, newCacheError(ErrCacheClosed, err.Error(), bucket)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "ontograph identifier cache",
		History:     1,
	})
	if err != nil {
		return nil, newCacheError(ErrCacheClosed, err.Error(), bucket)
	}

	return &NatsCache{bucket, nil, kv}, nil
}

/*
Name returns the name of this cache.
*/
func (nc *NatsCache) Name() string {
	return nc.name
}

/*
Set inserts or replaces a value. A ttl of 0 means no expiry.
*/
func (nc *NatsCache) Set(ctx context.Context, key string, value []byte, ttl int64) error {
	env := natsEnvelope{Value: value}
	if ttl > 0 {
		env.Expires = time.Now().Add(time.Duration(ttl) * time.Second).UnixNano()
	}

	data, err := json.Marshal(&env)
	if err == nil {
		_, err = nc.kv.Put(ctx, natsKey(key), data)
	}

	if err != nil {
		return newCacheError(ErrCacheWrite, err.Error(), nc.name)
	}

	return nil
}

/*
Get returns a value and a flag if it was found.
*/
func (nc *NatsCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	env, err := nc.fetch(ctx, key)
	if err != nil || env == nil {
		return nil, false, err
	}

	if env.expired(time.Now()) {

		// An expired entry is absent even if it cannot be removed

		if err := nc.kv.Delete(ctx, natsKey(key)); err != nil {
			logger.Warning("Could not remove expired entry ", key, " from ", nc.name, ": ", err)
		}

		return nil, false, nil
	}

	return env.Value, true, nil
}

/*
Delete removes a value.
*/
func (nc *NatsCache) Delete(ctx context.Context, key string) (DeleteResult, error) {
	env, err := nc.fetch(ctx, key)
	if err != nil {
		return NotFound, err
	} else if env == nil {
		return NotFound, nil
	}

	if err := nc.kv.Delete(ctx, natsKey(key)); err != nil {
		return NotFound, newCacheError(ErrCacheWrite, err.Error(), nc.name)
	}

	if env.expired(time.Now()) {
		return NotFound, nil
	}

	return Deleted, nil
}

/*
Flush invalidates all entries.
*/
func (nc *NatsCache) Flush(ctx context.Context) error {
	lister, err := nc.kv.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil
		}
		return newCacheError(ErrCacheWrite, err.Error(), nc.name)
	}

	var keys []string

	for k := range lister.Keys() {
		keys = append(keys, k)
	}

	lister.Stop()

	for _, k := range keys {
		if err := nc.kv.Purge(ctx, k); err != nil {
			return newCacheError(ErrCacheWrite, err.Error(), nc.name)
		}
	}

	return nil
}

/*
Close closes the cache and the owned connection.
*/
func (nc *NatsCache) Close() error {
	if nc.conn != nil {
		return nc.conn.Drain()
	}
	return nil
}

/*
fetch reads the envelope of a key. Returns nil if the key does not exist.
*/
func (nc *NatsCache) fetch(ctx context.Context, key string) (*natsEnvelope, error) {
	entry, err := nc.kv.Get(ctx, natsKey(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
			return nil, nil
		}
		return nil, newCacheError(ErrCacheRead, err.Error(), nc.name)
	}

	return decodeNatsEnvelope(entry.Value())
}

/*
decodeNatsEnvelope decodes a stored value.
*/
func decodeNatsEnvelope(data []byte) (*natsEnvelope, error) {
	var env natsEnvelope

	if err := json.Unmarshal(data, &env); err != nil {
		return nil, newCacheError(ErrCacheRead, "Invalid envelope: "+err.Error(), "")
	}

	return &env, nil
}

/*
expired checks if an envelope has expired at a given time.
*/
func (env *natsEnvelope) expired(now time.Time) bool {
	return env.Expires != 0 && now.UnixNano() >= env.Expires
}

/*
natsKey converts an arbitrary cache key into a valid bucket key. Bucket keys
are restricted to [-/_=.a-zA-Z0-9].
*/
func natsKey(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}
