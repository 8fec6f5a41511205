// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/domain/port"
)

// HostEvent is one recorded Trigger invocation.
type HostEvent struct {
	Name string
	Args []any
}

// Host is a recording port.Host: it generates UUID client IDs (optionally
// from a rigged queue), tracks which clients count as connected, and records
// every delivery and event for assertions.
type Host struct {
	mu         sync.Mutex
	nextIDs    []string
	timeout    time.Duration
	hasTimeout bool
	connected  map[string]bool
	deliveries map[string][][]model.Message
	events     []HostEvent
}

// Ensure Host implements the Host interface
var _ port.Host = (*Host)(nil)

// NewHost creates a recording host with the given session timeout.
func NewHost(timeout time.Duration) *Host {
	return &Host{
		timeout:    timeout,
		hasTimeout: timeout > 0,
		connected:  make(map[string]bool),
		deliveries: make(map[string][][]model.Message),
	}
}

// NewHostWithoutTimeout creates a recording host with no session timeout,
// making engine pings a no-op.
func NewHostWithoutTimeout() *Host {
	return &Host{
		connected:  make(map[string]bool),
		deliveries: make(map[string][][]model.Message),
	}
}

// QueueIDs rigs the next GenerateID results, ahead of the UUID fallback.
func (h *Host) QueueIDs(ids ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextIDs = append(h.nextIDs, ids...)
}

// SetConnected marks the client as holding (or not holding) a connection.
func (h *Host) SetConnected(clientID string, connected bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connected[clientID] = connected
}

// Deliveries returns every batch delivered to the client, in order.
func (h *Host) Deliveries(clientID string) [][]model.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([][]model.Message(nil), h.deliveries[clientID]...)
}

// Events returns all recorded events in emission order.
func (h *Host) Events() []HostEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]HostEvent(nil), h.events...)
}

// EventsNamed returns the recorded events with the given name.
func (h *Host) EventsNamed(name string) []HostEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	var matched []HostEvent
	for _, event := range h.events {
		if event.Name == name {
			matched = append(matched, event)
		}
	}
	return matched
}

// GenerateID returns the next rigged ID, or a fresh UUID.
func (h *Host) GenerateID(_ context.Context) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.nextIDs) > 0 {
		id := h.nextIDs[0]
		h.nextIDs = h.nextIDs[1:]
		return id
	}
	return uuid.New().String()
}

// Timeout returns the configured session timeout.
func (h *Host) Timeout() (time.Duration, bool) {
	return h.timeout, h.hasTimeout
}

// HasConnection reports whether the client was marked connected.
func (h *Host) HasConnection(clientID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connected[clientID]
}

// Deliver records the delivered batch.
func (h *Host) Deliver(_ context.Context, clientID string, messages []model.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	batch := append([]model.Message(nil), messages...)
	h.deliveries[clientID] = append(h.deliveries[clientID], batch)
}

// Trigger records the event.
func (h *Host) Trigger(_ context.Context, event string, args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, HostEvent{Name: event, Args: args})
}
