// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package mock provides in-memory implementations of the engine's ports for
// testing: a key-value store with real TTL bookkeeping, a recording host,
// and a recording notification bus.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/errors"
)

// kvEntry is one stored value with its expiry deadline (zero = no expiry).
type kvEntry struct {
	value     []byte
	expiresAt time.Time
}

// KVStore is an in-memory port.KeyValueStore. TTLs are honored against the
// injectable clock so tests can cover expiry without sleeping. Per-operation
// errors can be injected to exercise the guard's degradation paths.
type KVStore struct {
	mu      sync.RWMutex
	entries map[string]kvEntry
	now     func() time.Time

	failures map[string]error // "op key" -> error
	getCalls int
}

// Ensure KVStore implements the KeyValueStore interface
var _ port.KeyValueStore = (*KVStore)(nil)

// NewKVStore creates an empty in-memory store.
func NewKVStore() *KVStore {
	return &KVStore{
		entries:  make(map[string]kvEntry),
		now:      time.Now,
		failures: make(map[string]error),
	}
}

// SetClock replaces the store clock, letting tests advance time explicitly.
func (s *KVStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// FailWith injects an error for every future call of op ("get", "insert",
// "upsert", "remove") on key. An empty key applies to all keys.
func (s *KVStore) FailWith(op, key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op+" "+key] = err
}

// ClearFailures removes all injected errors.
func (s *KVStore) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]error)
}

// GetCalls reports how many Get operations were issued, including failed
// ones. Used to assert that gated operations skip the store entirely.
func (s *KVStore) GetCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getCalls
}

// Keys returns all live (unexpired) keys.
func (s *KVStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for key, entry := range s.entries {
		if !s.expired(entry) {
			keys = append(keys, key)
		}
	}
	return keys
}

func (s *KVStore) failure(op, key string) error {
	if err, ok := s.failures[op+" "+key]; ok {
		return err
	}
	if err, ok := s.failures[op+" "]; ok {
		return err
	}
	return nil
}

func (s *KVStore) expired(entry kvEntry) bool {
	return !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt)
}

func (s *KVStore) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}

// Get returns the live value at key or a NotFound error.
func (s *KVStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	if err := s.failure("get", key); err != nil {
		return nil, err
	}
	entry, ok := s.entries[key]
	if !ok || s.expired(entry) {
		return nil, errors.NewNotFound("key not found")
	}
	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, nil
}

// Insert stores the value only if the key holds no live entry.
func (s *KVStore) Insert(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("insert", key); err != nil {
		return err
	}
	if entry, ok := s.entries[key]; ok && !s.expired(entry) {
		return errors.NewConflict("key already exists")
	}
	s.entries[key] = kvEntry{value: append([]byte(nil), value...), expiresAt: s.deadline(ttl)}
	return nil
}

// Upsert stores the value unconditionally, refreshing the TTL.
func (s *KVStore) Upsert(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("upsert", key); err != nil {
		return err
	}
	s.entries[key] = kvEntry{value: append([]byte(nil), value...), expiresAt: s.deadline(ttl)}
	return nil
}

// Remove deletes the key; removing an absent key succeeds.
func (s *KVStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("remove", key); err != nil {
		return err
	}
	delete(s.entries, key)
	return nil
}

// MultiGet reads all keys, omitting absent ones.
func (s *KVStore) MultiGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	values := make(map[string][]byte, len(keys))
	for _, key := range keys {
		value, err := s.Get(ctx, key)
		if err != nil {
			continue
		}
		values[key] = value
	}
	return values, nil
}
