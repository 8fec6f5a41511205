// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package service implements the pubsub engine: session tracking, the
// mirrored membership index, per-client mailboxes, publish fan-out, and
// client lifecycle cleanup, all on top of a single-key key-value store.
package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/constants"
	errs "github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/errors"
)

// engineOption defines a function type for setting options on the engine
type engineOption func(*Engine)

// WithKeyValueStore sets the backing key-value store
func WithKeyValueStore(store port.KeyValueStore) engineOption {
	return func(e *Engine) {
		e.store = store
	}
}

// WithHost sets the host framework adapter
func WithHost(host port.Host) engineOption {
	return func(e *Engine) {
		e.host = host
	}
}

// WithNotifier sets the cross-node notification bus
func WithNotifier(notifier port.Notifier) engineOption {
	return func(e *Engine) {
		e.notifier = notifier
	}
}

// WithConfig sets the engine configuration
func WithConfig(config Config) engineOption {
	return func(e *Engine) {
		e.config = config
	}
}

// Engine is the storage-backed pub/sub backend handed to the host
// framework. All operations are safe for concurrent use; consistency across
// keys relies on idempotent re-application and short TTLs, not locks.
type Engine struct {
	store    port.KeyValueStore
	host     port.Host
	notifier port.Notifier
	config   Config

	sessions   *sessionTracker
	membership *membershipIndex
	mailbox    *mailboxStore
	publisher  *publisher
	lifecycle  *lifecycleController
}

// NewEngine builds an engine instance. A store and a host are required; the
// notifier is optional and defaults to a no-op bus for single-node use.
func NewEngine(opts ...engineOption) (*Engine, error) {
	engine := &Engine{}
	for _, opt := range opts {
		opt(engine)
	}

	if engine.store == nil {
		return nil, errs.NewValidation("a key-value store is required")
	}
	if engine.host == nil {
		return nil, errs.NewValidation("a host adapter is required")
	}
	if engine.notifier == nil {
		engine.notifier = noopNotifier{}
	}

	guard := newStoreGuard(engine.store)
	keys := newKeyBuilder(engine.config.Namespace)
	gcTTL := engine.config.gcInterval()

	engine.sessions = &sessionTracker{guard: guard, host: engine.host, keys: keys}
	engine.mailbox = &mailboxStore{guard: guard, host: engine.host, keys: keys, gcTTL: gcTTL}
	engine.membership = &membershipIndex{guard: guard, host: engine.host, keys: keys, gcTTL: gcTTL}
	engine.publisher = &publisher{
		guard:    guard,
		host:     engine.host,
		notifier: engine.notifier,
		sessions: engine.sessions,
		mailbox:  engine.mailbox,
		keys:     keys,
	}
	engine.lifecycle = &lifecycleController{
		guard:    guard,
		host:     engine.host,
		notifier: engine.notifier,
		keys:     keys,
		gcTTL:    gcTTL,
	}

	return engine, nil
}

// CreateClient allocates a new client session and returns its ID.
func (e *Engine) CreateClient(ctx context.Context) (string, error) {
	return e.sessions.CreateClient(ctx)
}

// ClientExists reports whether the client's session is live.
func (e *Engine) ClientExists(ctx context.Context, clientID string) bool {
	return e.sessions.ClientExists(ctx, clientID)
}

// Ping refreshes the client's session TTL.
func (e *Engine) Ping(ctx context.Context, clientID string) {
	e.sessions.Ping(ctx, clientID)
}

// Subscribe adds the client to the channel.
func (e *Engine) Subscribe(ctx context.Context, clientID, channel string) error {
	return e.membership.Subscribe(ctx, clientID, channel)
}

// Unsubscribe removes the client from the channel.
func (e *Engine) Unsubscribe(ctx context.Context, clientID, channel string) error {
	return e.membership.Unsubscribe(ctx, clientID, channel)
}

// Publish fans the message out to all subscribers of the target channels.
func (e *Engine) Publish(ctx context.Context, message model.Message, channels []string) error {
	return e.publisher.Publish(ctx, message, channels)
}

// EmptyQueue drains the client's mailbox into the host delivery hook.
func (e *Engine) EmptyQueue(ctx context.Context, clientID string) {
	e.mailbox.Drain(ctx, clientID)
}

// DestroyClient tears down all of the client's records and memberships.
func (e *Engine) DestroyClient(ctx context.Context, clientID string) error {
	return e.lifecycle.DestroyClient(ctx, clientID)
}

// HandleQueuedMessage reacts to a cross-node queued-message notification by
// attempting a local drain. Nodes without a connection for the client no-op.
func (e *Engine) HandleQueuedMessage(ctx context.Context, clientID string) {
	e.mailbox.Drain(ctx, clientID)
}

// HandleClose reacts to a cross-node close notification.
func (e *Engine) HandleClose(ctx context.Context, clientID string) {
	e.host.Trigger(ctx, constants.EventClose, clientID)
}

// Close releases the engine's hold on its collaborators. Store adapters and
// notifiers that own connections implement io.Closer; everything else is
// left alone.
func (e *Engine) Close() error {
	var lastErr error
	for _, collaborator := range []any{e.notifier, e.store} {
		if closer, ok := collaborator.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				slog.Error("failed to close engine collaborator", "error", err)
				lastErr = err
			}
		}
	}
	return lastErr
}

// noopNotifier is the single-node default: notifications go nowhere.
type noopNotifier struct{}

func (noopNotifier) PublishMessage(context.Context, string) error { return nil }
func (noopNotifier) PublishClose(context.Context, string) error   { return nil }

// Engine consumes bus notifications on the subscribing side.
var _ port.NotificationHandler = (*Engine)(nil)
