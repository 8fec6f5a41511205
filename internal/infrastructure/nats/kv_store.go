// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package nats

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"golang.org/x/sync/errgroup"

	"github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/constants"
	errs "github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/errors"
)

// kvStore implements port.KeyValueStore on JetStream KV. Keys route to one
// of two buckets by shape: bare session markers (clients/{id}) live in the
// sessions bucket, membership sets and mailboxes in the state bucket. TTLs
// are enforced by the buckets themselves, which were provisioned with the
// session expiry and the GC interval respectively; the per-call ttl argument
// is part of the port contract and names the same deadline, but the bucket
// is the enforcer here (JetStream KV expires a key that is not rewritten
// within the bucket TTL, which is exactly refresh-on-ping semantics).
type kvStore struct {
	client    *NATSClient
	namespace string
}

// NewKeyValueStore returns the JetStream-backed store adapter. The
// namespace must match the engine's configured key namespace so that bucket
// routing can strip it.
func NewKeyValueStore(client *NATSClient, namespace string) port.KeyValueStore {
	return &kvStore{
		client:    client,
		namespace: strings.Trim(namespace, "/"),
	}
}

// bucketFor routes a key to its bucket by key shape.
func (s *kvStore) bucketFor(key string) jetstream.KeyValue {
	rest := key
	if s.namespace != "" {
		rest = strings.TrimPrefix(rest, s.namespace+"/")
	}
	if suffix, ok := strings.CutPrefix(rest, "clients/"); ok && !strings.Contains(suffix, "/") {
		return s.client.sessions
	}
	return s.client.state
}

// Get returns the value stored at key, or a NotFound error.
func (s *kvStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errs.NewValidation("key cannot be empty")
	}
	entry, err := s.bucketFor(key).Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, errs.NewNotFound("key not found", err)
		}
		return nil, errs.NewServiceUnavailable("failed to get key", err)
	}
	return entry.Value(), nil
}

// Insert stores value at key only if no live entry exists.
func (s *kvStore) Insert(ctx context.Context, key string, value []byte, _ time.Duration) error {
	if key == "" {
		return errs.NewValidation("key cannot be empty")
	}
	_, err := s.bucketFor(key).Create(ctx, key, value)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			return errs.NewConflict("key already exists", err)
		}
		return errs.NewServiceUnavailable("failed to insert key", err)
	}
	return nil
}

// Upsert stores value at key unconditionally, refreshing the bucket TTL.
func (s *kvStore) Upsert(ctx context.Context, key string, value []byte, _ time.Duration) error {
	if key == "" {
		return errs.NewValidation("key cannot be empty")
	}
	if _, err := s.bucketFor(key).Put(ctx, key, value); err != nil {
		return errs.NewServiceUnavailable("failed to upsert key", err)
	}
	return nil
}

// Remove deletes the key. A missing key counts as success for idempotency.
func (s *kvStore) Remove(ctx context.Context, key string) error {
	if key == "" {
		return errs.NewValidation("key cannot be empty")
	}
	err := s.bucketFor(key).Delete(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			slog.DebugContext(ctx, "key not found during deletion", "key", key)
			return nil
		}
		return errs.NewServiceUnavailable("failed to delete key", err)
	}
	return nil
}

// MultiGet reads all keys with bounded parallelism. Absent keys are omitted
// and a single failing key never fails the batch; per-key failures are
// logged and treated as absent.
func (s *kvStore) MultiGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	values := make(map[string][]byte, len(keys))
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(constants.MultiGetConcurrency)
	for _, key := range keys {
		key := key
		group.Go(func() error {
			value, err := s.Get(groupCtx, key)
			if err != nil {
				var notFound errs.NotFound
				if !errors.As(err, &notFound) {
					slog.WarnContext(groupCtx, "multi-get: treating unreadable key as absent",
						"error", err,
						"key", key,
					)
				}
				return nil
			}
			mu.Lock()
			values[key] = value
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()
	return values, nil
}
