// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/constants"
	errs "github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/errors"
)

// publisher resolves recipients for a published message and drives the
// fan-out into their mailboxes.
type publisher struct {
	guard    *storeGuard
	host     port.Host
	notifier port.Notifier
	sessions *sessionTracker
	mailbox  *mailboxStore
	keys     keyBuilder
}

// Publish fans the message out to every client subscribed to any of the
// target channels. Channel records are resolved in one batched read; each
// recipient is then processed with bounded concurrency: enqueue, liveness
// check, then drain (live client) or mailbox purge (dead client). A client
// subscribed to several target channels receives the message once. The
// publish event fires exactly once per call, recipients or not.
func (p *publisher) Publish(ctx context.Context, message model.Message, channels []string) error {
	if len(channels) == 0 {
		return errs.NewValidation("at least one target channel is required")
	}

	slog.DebugContext(ctx, "publishing message",
		"client_id", message.ClientID,
		"channel", message.Channel,
		"targets", len(channels),
	)

	recipients := p.resolveRecipients(ctx, channels)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(constants.FanOutConcurrency)
	for _, clientID := range recipients {
		clientID := clientID
		group.Go(func() error {
			p.deliverToRecipient(groupCtx, clientID, message)
			return nil
		})
	}
	_ = group.Wait()

	p.host.Trigger(ctx, constants.EventPublish, message.ClientID, message.Channel, message.Data)
	return nil
}

// resolveRecipients batch-reads the target channel records and unions their
// subscriber sets, deduplicated in first-seen order.
func (p *publisher) resolveRecipients(ctx context.Context, channels []string) []string {
	keys := make([]string, 0, len(channels))
	for _, channel := range channels {
		keys = append(keys, p.keys.channel(channel))
	}

	values := p.guard.multiGet(ctx, keys)

	var recipients []string
	seen := make(map[string]struct{})
	for _, key := range keys {
		value, ok := values[key]
		if !ok {
			continue
		}
		var subscribers model.ChannelSubscribers
		if err := json.Unmarshal(value, &subscribers); err != nil {
			slog.WarnContext(ctx, "channel record is not valid JSON, skipping",
				"error", err,
				"key", key,
			)
			continue
		}
		for _, clientID := range subscribers.Clients {
			if _, dup := seen[clientID]; dup {
				continue
			}
			seen[clientID] = struct{}{}
			recipients = append(recipients, clientID)
		}
	}
	return recipients
}

// deliverToRecipient enqueues the message for one recipient and follows up:
// a recipient whose session expired has its mailbox purged instead of
// drained, everyone else gets a drain attempt plus a cross-node nudge.
func (p *publisher) deliverToRecipient(ctx context.Context, clientID string, message model.Message) {
	p.mailbox.Enqueue(ctx, clientID, message)

	if !p.sessions.ClientExists(ctx, clientID) {
		slog.DebugContext(ctx, "recipient session is gone, purging mailbox",
			"client_id", clientID,
		)
		p.mailbox.Purge(ctx, clientID)
		return
	}

	if err := p.notifier.PublishMessage(ctx, clientID); err != nil {
		slog.WarnContext(ctx, "failed to publish queued-message notification",
			"error", err,
			"client_id", clientID,
		)
	}
	p.mailbox.Drain(ctx, clientID)
}
