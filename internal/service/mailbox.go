// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/domain/port"
)

// mailboxStore manages the per-client queues of pending messages. Queues are
// unbounded in size; the GC TTL is the only cap, so an abandoned mailbox
// self-expires instead of growing forever.
type mailboxStore struct {
	guard *storeGuard
	host  port.Host
	keys  keyBuilder
	gcTTL time.Duration
}

// Enqueue appends the message to the client's mailbox, preserving arrival
// order, and refreshes the mailbox TTL.
func (m *mailboxStore) Enqueue(ctx context.Context, clientID string, message model.Message) {
	key := m.keys.clientMessages(clientID)

	var queue model.MessageQueue
	m.guard.getJSON(ctx, key, &queue)
	queue.Messages = append(queue.Messages, message)

	slog.DebugContext(ctx, "queueing message for client",
		"client_id", clientID,
		"channel", message.Channel,
		"pending", len(queue.Messages),
	)
	m.guard.upsertJSON(ctx, key, &queue, m.gcTTL)
}

// Drain hands the client's pending messages to the host in enqueue order and
// clears the mailbox. When the host holds no connection for the client the
// store is not even read; another node (or a later reconnect) will drain.
// The mailbox is removed only after the delivery hand-off returns, so a
// store failure costs redelivery, never silent loss.
func (m *mailboxStore) Drain(ctx context.Context, clientID string) {
	if !m.host.HasConnection(clientID) {
		return
	}

	key := m.keys.clientMessages(clientID)
	var queue model.MessageQueue
	if !m.guard.getJSON(ctx, key, &queue) || len(queue.Messages) == 0 {
		return
	}

	m.host.Deliver(ctx, clientID, queue.Messages)
	m.guard.remove(ctx, key)
}

// Purge drops the client's mailbox without delivering it. Used when the
// recipient's session is gone and on client destruction.
func (m *mailboxStore) Purge(ctx context.Context, clientID string) {
	m.guard.remove(ctx, m.keys.clientMessages(clientID))
}
