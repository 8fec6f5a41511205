// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package nats

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/errors"
)

// notification is the bus payload for both subjects.
type notification struct {
	ClientID string `msgpack:"client_id"`
}

// notificationBus implements port.Notifier over core NATS subjects. Every
// engine node sees every notification; nodes without a connection for the
// client no-op on the handler side, so plain (non-queue) subscriptions are
// the point, not an oversight.
type notificationBus struct {
	client *NATSClient
	subs   []*nats.Subscription
}

// NewNotificationBus creates the cross-node notifier.
func NewNotificationBus(client *NATSClient) *notificationBus {
	return &notificationBus{client: client}
}

// Ensure notificationBus implements the Notifier interface
var _ port.Notifier = (*notificationBus)(nil)

func (n *notificationBus) publish(ctx context.Context, subject, clientID string) error {
	if err := n.client.IsReady(ctx); err != nil {
		return errors.NewServiceUnavailable("NATS client is not ready", err)
	}

	data, err := msgpack.Marshal(notification{ClientID: clientID})
	if err != nil {
		return errors.NewUnexpected("failed to marshal notification", err)
	}

	if err := n.client.conn.Publish(subject, data); err != nil {
		return errors.NewServiceUnavailable("failed to publish notification", err)
	}

	slog.DebugContext(ctx, "notification published",
		"subject", subject,
		"client_id", clientID,
	)
	return nil
}

// PublishMessage announces queued messages for the client.
func (n *notificationBus) PublishMessage(ctx context.Context, clientID string) error {
	return n.publish(ctx, constants.NotifyMessageSubject, clientID)
}

// PublishClose announces the client's session destruction.
func (n *notificationBus) PublishClose(ctx context.Context, clientID string) error {
	return n.publish(ctx, constants.NotifyCloseSubject, clientID)
}

// Listen subscribes to both notification subjects and routes them into the
// handler. Undecodable payloads are logged and dropped.
func (n *notificationBus) Listen(ctx context.Context, handler port.NotificationHandler) error {
	route := func(subject string, deliver func(context.Context, string)) (*nats.Subscription, error) {
		return n.client.Subscribe(subject, func(msg *nats.Msg) {
			var note notification
			if err := msgpack.Unmarshal(msg.Data, &note); err != nil {
				slog.WarnContext(ctx, "dropping undecodable notification",
					"error", err,
					"subject", subject,
				)
				return
			}
			deliver(ctx, note.ClientID)
		})
	}

	messageSub, err := route(constants.NotifyMessageSubject, handler.HandleQueuedMessage)
	if err != nil {
		return errors.NewServiceUnavailable("failed to subscribe to message notifications", err)
	}
	n.subs = append(n.subs, messageSub)

	closeSub, err := route(constants.NotifyCloseSubject, handler.HandleClose)
	if err != nil {
		return errors.NewServiceUnavailable("failed to subscribe to close notifications", err)
	}
	n.subs = append(n.subs, closeSub)

	return nil
}

// Close drains the bus subscriptions.
func (n *notificationBus) Close() error {
	var lastErr error
	for _, sub := range n.subs {
		if err := sub.Unsubscribe(); err != nil {
			lastErr = err
		}
	}
	n.subs = nil
	return lastErr
}
