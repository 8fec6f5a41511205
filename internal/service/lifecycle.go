// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/constants"
	errs "github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/errors"
)

// lifecycleController tears down client state on disconnect.
type lifecycleController struct {
	guard    *storeGuard
	host     port.Host
	notifier port.Notifier
	keys     keyBuilder
	gcTTL    time.Duration
}

// DestroyClient removes every trace of a client: its membership in each
// joined channel (deleting channels it leaves empty), its channel-set
// record, its mailbox, and its session marker. Per-channel cleanup runs
// with bounded concurrency and is best-effort; the client's own records are
// removed unconditionally afterwards, so a failed channel update can at
// worst leave a dangling subscriber entry until the channel record's TTL
// corrects it. Returns only after the disconnect event was emitted.
func (l *lifecycleController) DestroyClient(ctx context.Context, clientID string) error {
	if clientID == "" {
		return errs.NewValidation("client ID is required")
	}

	var channels model.ClientChannels
	l.guard.getJSON(ctx, l.keys.clientChannels(clientID), &channels)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(constants.CleanupConcurrency)
	for _, channel := range channels.Channels {
		channel := channel
		group.Go(func() error {
			l.leaveChannel(groupCtx, clientID, channel)
			return nil
		})
	}
	_ = group.Wait()

	l.guard.remove(ctx, l.keys.clientChannels(clientID))
	l.guard.remove(ctx, l.keys.clientMessages(clientID))
	l.guard.remove(ctx, l.keys.client(clientID))

	slog.DebugContext(ctx, "destroyed client", "client_id", clientID)
	l.host.Trigger(ctx, constants.EventDisconnect, clientID)

	if err := l.notifier.PublishClose(ctx, clientID); err != nil {
		slog.WarnContext(ctx, "failed to publish close notification",
			"error", err,
			"client_id", clientID,
		)
	}
	return nil
}

// leaveChannel removes the client from one channel's subscriber set,
// deleting the record entirely when the set empties.
func (l *lifecycleController) leaveChannel(ctx context.Context, clientID, channel string) {
	key := l.keys.channel(channel)

	var subscribers model.ChannelSubscribers
	if !l.guard.getJSON(ctx, key, &subscribers) {
		return
	}

	if subscribers.Remove(clientID) {
		if subscribers.Empty() {
			l.guard.remove(ctx, key)
		} else {
			l.guard.upsertJSON(ctx, key, &subscribers, l.gcTTL)
		}
		l.host.Trigger(ctx, constants.EventUnsubscribe, clientID, channel)
		slog.DebugContext(ctx, "unsubscribed client from channel",
			"client_id", clientID,
			"channel", channel,
		)
		return
	}

	// The client was not listed but the record may still be an empty husk
	// left behind by a concurrent unsubscribe; clean it up.
	if subscribers.Empty() {
		l.guard.remove(ctx, key)
	}
}
