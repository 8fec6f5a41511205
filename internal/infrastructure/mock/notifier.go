// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mock

import (
	"context"
	"sync"

	"github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/domain/port"
)

// Notifier is a recording port.Notifier for asserting cross-node
// notification traffic without a bus.
type Notifier struct {
	mu       sync.Mutex
	messages []string
	closes   []string
	err      error
}

// Ensure Notifier implements the Notifier interface
var _ port.Notifier = (*Notifier)(nil)

// NewNotifier creates a recording notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// FailWith makes every future publish return err.
func (n *Notifier) FailWith(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.err = err
}

// MessageNotifications returns the client IDs announced as having queued
// messages, in order.
func (n *Notifier) MessageNotifications() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

// CloseNotifications returns the client IDs announced as closed, in order.
func (n *Notifier) CloseNotifications() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.closes...)
}

// PublishMessage records the queued-message notification.
func (n *Notifier) PublishMessage(_ context.Context, clientID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.messages = append(n.messages, clientID)
	return nil
}

// PublishClose records the close notification.
func (n *Notifier) PublishClose(_ context.Context, clientID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.closes = append(n.closes, clientID)
	return nil
}
