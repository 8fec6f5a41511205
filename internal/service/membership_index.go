// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/constants"
	errs "github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/errors"
)

// membershipIndex maintains the two mirrored membership sets: the
// client->channels record and the channel->clients record. The two halves
// are stored independently and updated by separate read-modify-write
// sequences; an operation only returns once both halves were attempted, but
// a failure on one half never aborts the other. Set semantics (no
// duplicates, no empty channel records) are enforced here, not by the store.
type membershipIndex struct {
	guard *storeGuard
	host  port.Host
	keys  keyBuilder
	gcTTL time.Duration
}

// Subscribe adds the (client, channel) pair to both halves of the index.
// Re-subscribing an existing pair is an idempotent success: the host still
// receives a subscribe event, nothing is rewritten.
func (m *membershipIndex) Subscribe(ctx context.Context, clientID, channel string) error {
	if clientID == "" || channel == "" {
		return errs.NewValidation("client ID and channel are required")
	}

	// Client half first; the subscribe event fires as soon as this half is
	// settled, before the channel half is attempted.
	var channels model.ClientChannels
	m.guard.getJSON(ctx, m.keys.clientChannels(clientID), &channels)
	if channels.Add(channel) {
		if m.guard.upsertJSON(ctx, m.keys.clientChannels(clientID), &channels, m.gcTTL) {
			m.host.Trigger(ctx, constants.EventSubscribe, clientID, channel)
		}
	} else {
		m.host.Trigger(ctx, constants.EventSubscribe, clientID, channel)
	}

	// Channel half.
	var subscribers model.ChannelSubscribers
	m.guard.getJSON(ctx, m.keys.channel(channel), &subscribers)
	if subscribers.Add(clientID) {
		m.guard.upsertJSON(ctx, m.keys.channel(channel), &subscribers, m.gcTTL)
	}

	slog.DebugContext(ctx, "subscribed client to channel",
		"client_id", clientID,
		"channel", channel,
	)
	return nil
}

// Unsubscribe removes the (client, channel) pair from both halves of the
// index. Unsubscribing a pair that is not subscribed is an idempotent
// success. A channel record left without subscribers is removed entirely;
// an empty set is never persisted.
func (m *membershipIndex) Unsubscribe(ctx context.Context, clientID, channel string) error {
	if clientID == "" || channel == "" {
		return errs.NewValidation("client ID and channel are required")
	}

	var channels model.ClientChannels
	m.guard.getJSON(ctx, m.keys.clientChannels(clientID), &channels)
	if channels.Remove(channel) {
		if m.guard.upsertJSON(ctx, m.keys.clientChannels(clientID), &channels, m.gcTTL) {
			m.host.Trigger(ctx, constants.EventUnsubscribe, clientID, channel)
		}
	} else {
		m.host.Trigger(ctx, constants.EventUnsubscribe, clientID, channel)
	}

	var subscribers model.ChannelSubscribers
	m.guard.getJSON(ctx, m.keys.channel(channel), &subscribers)
	if subscribers.Remove(clientID) {
		if subscribers.Empty() {
			m.guard.remove(ctx, m.keys.channel(channel))
		} else {
			m.guard.upsertJSON(ctx, m.keys.channel(channel), &subscribers, m.gcTTL)
		}
	}

	slog.DebugContext(ctx, "unsubscribed client from channel",
		"client_id", clientID,
		"channel", channel,
	)
	return nil
}
