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
	"encoding/json"
	"errors"
	"testing"
	"time"

	"devt.de/krotik/common/errorutil"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

/*
startTestServer starts an embedded NATS server with JetStream.
*/
func startTestServer(t *testing.T) *server.Server {
	ns, err := server.NewServer(&server.Options{
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
		NoLog:     true,
		NoSigs:    true,
	})
	errorutil.AssertOk(err)

	go ns.Start()

	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		t.Fatal("Embedded NATS server did not start")
	}

	t.Cleanup(ns.Shutdown)

	return ns
}

func newTestNatsCache(t *testing.T, bucket string) *NatsCache {
	ns := startTestServer(t)

	conn, err := nats.Connect(ns.ClientURL())
	errorutil.AssertOk(err)

	t.Cleanup(conn.Close)

	nc, err := NewNatsCache(context.Background(), conn, bucket)
	errorutil.AssertOk(err)

	return nc
}

func TestNatsCache(t *testing.T) {
	ctx := context.Background()

	nc := newTestNatsCache(t, "test")

	if nc.Name() != "test" {
		t.Error("Unexpected name:", nc.Name())
		return
	}

	// Flushing an empty bucket is fine

	if err := nc.Flush(ctx); err != nil {
		t.Error(err)
		return
	}

	if val, ok, err := nc.Get(ctx, "foo"); val != nil || ok || err != nil {
		t.Error("Unexpected result:", val, ok, err)
		return
	}

	errorutil.AssertOk(nc.Set(ctx, "foo", []byte("bar"), 0))

	if val, ok, err := nc.Get(ctx, "foo"); string(val) != "bar" || !ok || err != nil {
		t.Error("Unexpected result:", val, ok, err)
		return
	}

	// Keys outside of the bucket key alphabet

	for _, k := range []string{"tag.id::label", "with space", "tag.rec:15", "a/b*c>"} {
		errorutil.AssertOk(nc.Set(ctx, k, []byte(k), 0))
	}

	for _, k := range []string{"tag.id::label", "with space", "tag.rec:15", "a/b*c>"} {
		if val, ok, err := nc.Get(ctx, k); string(val) != k || !ok || err != nil {
			t.Error("Unexpected result:", k, string(val), ok, err)
			return
		}
	}

	// Replace

	errorutil.AssertOk(nc.Set(ctx, "foo", []byte("baz"), 0))

	if val, _, _ := nc.Get(ctx, "foo"); string(val) != "baz" {
		t.Error("Unexpected result:", string(val))
		return
	}

	if res, err := nc.Delete(ctx, "foo"); res != Deleted || err != nil {
		t.Error("Unexpected result:", res, err)
		return
	}

	if res, err := nc.Delete(ctx, "foo"); res != NotFound || err != nil {
		t.Error("Unexpected result:", res, err)
		return
	}

	if _, ok, err := nc.Get(ctx, "foo"); ok || err != nil {
		t.Error("Deleted entry should be absent:", ok, err)
		return
	}

	// A deleted key can be set again

	errorutil.AssertOk(nc.Set(ctx, "foo", []byte("again"), 0))

	if val, _, _ := nc.Get(ctx, "foo"); string(val) != "again" {
		t.Error("Unexpected result:", string(val))
		return
	}

	errorutil.AssertOk(nc.Flush(ctx))

	for _, k := range []string{"foo", "tag.id::label", "with space"} {
		if _, ok, err := nc.Get(ctx, k); ok || err != nil {
			t.Error("Flush should have removed all entries:", k, ok, err)
			return
		}
	}

	// Closing a cache on an external connection leaves the connection open

	if err := nc.Close(); err != nil {
		t.Error(err)
		return
	}

	if err := nc.Set(ctx, "foo", []byte("bar"), 0); err != nil {
		t.Error(err)
		return
	}
}

func TestNatsCacheTTL(t *testing.T) {
	ctx := context.Background()

	nc := newTestNatsCache(t, "ttl")

	errorutil.AssertOk(nc.Set(ctx, "short", []byte("1"), 1))
	errorutil.AssertOk(nc.Set(ctx, "forever", []byte("2"), 0))

	if _, ok, _ := nc.Get(ctx, "short"); !ok {
		t.Error("Entry should still be there")
		return
	}

	// Move the expiry into the past

	expire := func(key string) {
		data, err := json.Marshal(&natsEnvelope{Value: []byte("1"),
			Expires: time.Now().Add(-time.Second).UnixNano()})
		errorutil.AssertOk(err)

		_, err = nc.kv.Put(ctx, natsKey(key), data)
		errorutil.AssertOk(err)
	}

	expire("short")

	if _, ok, err := nc.Get(ctx, "short"); ok || err != nil {
		t.Error("Entry should have expired:", ok, err)
		return
	}

	// The expired entry was removed from the bucket

	if _, err := nc.kv.Get(ctx, natsKey("short")); err == nil {
		t.Error("Expired entry should have been removed")
		return
	}

	if _, ok, _ := nc.Get(ctx, "forever"); !ok {
		t.Error("Entry should still be there")
		return
	}

	expire("short")

	if res, err := nc.Delete(ctx, "short"); res != NotFound || err != nil {
		t.Error("Expired entry should not be reported as deleted:", res, err)
		return
	}

	// Corrupt entries are read errors

	_, err := nc.kv.Put(ctx, natsKey("corrupt"), []byte("{"))
	errorutil.AssertOk(err)

	if _, _, err := nc.Get(ctx, "corrupt"); !errors.Is(err, ErrCacheRead) {
		t.Error("Unexpected result:", err)
		return
	}
}

func TestConnectNatsCache(t *testing.T) {
	ctx := context.Background()

	ns := startTestServer(t)

	nc, err := ConnectNatsCache(ctx, ns.ClientURL(), "owned")
	if err != nil {
		t.Error(err)
		return
	}

	errorutil.AssertOk(nc.Set(ctx, "foo", []byte("bar"), 0))

	// A second cache on the same bucket sees the same entries

	nc2, err := ConnectNatsCache(ctx, ns.ClientURL(), "owned")
	errorutil.AssertOk(err)

	if val, ok, err := nc2.Get(ctx, "foo"); string(val) != "bar" || !ok || err != nil {
		t.Error("Unexpected result:", val, ok, err)
		return
	}

	errorutil.AssertOk(nc2.Close())
	errorutil.AssertOk(nc.Close())

	if _, err := ConnectNatsCache(ctx, "nats://127.0.0.1:1", "owned"); !errors.Is(err, ErrCacheClosed) {
		t.Error("Unexpected result:", err)
		return
	}
}
