// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/domain/port"
	errs "github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/errors"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/utils"
)

// storeGuard is the single classification boundary around every store call.
// It decides, uniformly for the whole engine, which errors are retried,
// which are surfaced, and which degrade to a safe empty default:
//
//   - NotFound: not an error. Absent keys are the steady state for unused
//     records; reads report absent, removes report success.
//   - Conflict / Validation: terminal, returned to the caller unretried.
//     Only client creation reacts to Conflict (ID collision retry).
//   - Everything else (transient store trouble): one bounded backoff cycle,
//     then log and fall back to the empty default. Message loss is the
//     accepted failure mode; aborting mid-sequence is not.
type storeGuard struct {
	store port.KeyValueStore
	retry utils.RetryConfig
}

func newStoreGuard(store port.KeyValueStore) *storeGuard {
	return &storeGuard{
		store: store,
		retry: utils.NewRetryConfig(2, 50*time.Millisecond, 250*time.Millisecond),
	}
}

// terminal reports whether the error must not be retried.
func terminal(err error) bool {
	var notFound errs.NotFound
	var conflict errs.Conflict
	var validation errs.Validation
	return stderrors.As(err, &notFound) || stderrors.As(err, &conflict) || stderrors.As(err, &validation)
}

// do runs fn under the retry policy, short-circuiting terminal errors.
func (g *storeGuard) do(ctx context.Context, fn func() error) error {
	var terminalErr error
	err := utils.RetryWithExponentialBackoff(ctx, g.retry, func() error {
		err := fn()
		if err != nil && terminal(err) {
			terminalErr = err
			return nil
		}
		return err
	})
	if terminalErr != nil {
		return terminalErr
	}
	return err
}

// get reads key and reports whether a value was present. Transient errors
// degrade to absent.
func (g *storeGuard) get(ctx context.Context, key string) ([]byte, bool) {
	var value []byte
	err := g.do(ctx, func() error {
		var errGet error
		value, errGet = g.store.Get(ctx, key)
		return errGet
	})
	if err == nil {
		return value, true
	}
	var notFound errs.NotFound
	if !stderrors.As(err, &notFound) {
		slog.WarnContext(ctx, "store get failed, treating key as absent",
			"error", err,
			"key", key,
		)
	}
	return nil, false
}

// getJSON reads and decodes a JSON record into out. A missing or undecodable
// record reports false and leaves out untouched beyond partial decoding.
func (g *storeGuard) getJSON(ctx context.Context, key string, out any) bool {
	value, ok := g.get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(value, out); err != nil {
		slog.WarnContext(ctx, "store record is not valid JSON, treating key as absent",
			"error", err,
			"key", key,
		)
		return false
	}
	return true
}

// insert performs a fail-if-exists insert. Conflict is returned to the
// caller; transient errors exhaust the retry cycle and are returned.
func (g *storeGuard) insert(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return g.do(ctx, func() error {
		return g.store.Insert(ctx, key, value, ttl)
	})
}

// upsert writes key unconditionally and reports success. Failures are logged
// here so call sites stay best-effort.
func (g *storeGuard) upsert(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	err := g.do(ctx, func() error {
		return g.store.Upsert(ctx, key, value, ttl)
	})
	if err != nil {
		slog.ErrorContext(ctx, "store upsert failed",
			"error", err,
			"key", key,
		)
		return false
	}
	return true
}

// upsertJSON marshals v and upserts it, reporting success.
func (g *storeGuard) upsertJSON(ctx context.Context, key string, v any, ttl time.Duration) bool {
	value, err := json.Marshal(v)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal store record",
			"error", err,
			"key", key,
		)
		return false
	}
	return g.upsert(ctx, key, value, ttl)
}

// remove deletes key, reporting success. Removing an absent key succeeds.
func (g *storeGuard) remove(ctx context.Context, key string) bool {
	err := g.do(ctx, func() error {
		return g.store.Remove(ctx, key)
	})
	if err != nil {
		var notFound errs.NotFound
		if stderrors.As(err, &notFound) {
			return true
		}
		slog.ErrorContext(ctx, "store remove failed",
			"error", err,
			"key", key,
		)
		return false
	}
	return true
}

// multiGet batch-reads keys. A failed batch degrades to an empty result.
func (g *storeGuard) multiGet(ctx context.Context, keys []string) map[string][]byte {
	if len(keys) == 0 {
		return map[string][]byte{}
	}
	var values map[string][]byte
	err := g.do(ctx, func() error {
		var errGet error
		values, errGet = g.store.MultiGet(ctx, keys)
		return errGet
	})
	if err != nil {
		slog.ErrorContext(ctx, "store multi-get failed, treating all keys as absent",
			"error", err,
			"keys", len(keys),
		)
		return map[string][]byte{}
	}
	return values
}
