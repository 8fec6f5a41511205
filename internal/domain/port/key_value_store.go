// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package port defines the interfaces between the engine and its external
// collaborators: the key-value store, the host framework, and the cross-node
// notification bus.
package port

import (
	"context"
	"time"
)

// KeyValueStore is the single-key storage contract the engine is built on.
// The store offers no multi-key transactions; the engine provides set
// semantics on top of it through idempotent read-modify-write sequences.
//
// Implementations translate their backend errors into the pkg/errors
// taxonomy: NotFound for absent keys, Conflict for a lost fail-if-exists
// insert, ServiceUnavailable or Unexpected for everything else.
type KeyValueStore interface {
	// Get returns the value stored at key, or a NotFound error.
	Get(ctx context.Context, key string) ([]byte, error)

	// Insert stores value at key only if the key does not exist yet, with
	// the given time-to-live. Returns a Conflict error when the key exists.
	Insert(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Upsert stores value at key unconditionally with the given
	// time-to-live, refreshing the TTL of an existing key.
	Upsert(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Remove deletes the key. Removing an absent key is a success.
	Remove(ctx context.Context, key string) error

	// MultiGet reads all keys in one batched operation. Absent keys are
	// omitted from the result; a single failing key never fails the batch.
	MultiGet(ctx context.Context, keys []string) (map[string][]byte, error)
}
