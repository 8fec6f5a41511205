// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package port

import "context"

// Notifier is the cross-node notification bus. When several engine nodes
// share one store, the node that enqueues a message is not necessarily the
// node holding the recipient's connection; the bus tells every node to
// attempt a drain. Notifications are best-effort: a publish failure is
// logged by the caller and never fails the triggering operation.
type Notifier interface {
	// PublishMessage announces that clientID's mailbox has pending messages.
	PublishMessage(ctx context.Context, clientID string) error

	// PublishClose announces that clientID's session was destroyed.
	PublishClose(ctx context.Context, clientID string) error
}

// NotificationHandler consumes bus notifications on the subscribing side.
// The engine implements it: queued-message notifications route to a mailbox
// drain, close notifications to the host's close event.
type NotificationHandler interface {
	HandleQueuedMessage(ctx context.Context, clientID string)
	HandleClose(ctx context.Context, clientID string)
}
