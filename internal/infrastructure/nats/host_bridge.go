// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package nats

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/akamensky/base58"
	"github.com/google/uuid"

	"github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/constants"
)

// HostBridgeConfig carries the bridge settings.
type HostBridgeConfig struct {
	// Timeout is the host session timeout; zero means the host framework
	// runs without one and session markers never expire.
	Timeout time.Duration

	// RequestTimeout bounds the has-connection round trip.
	RequestTimeout time.Duration
}

// hostBridge implements port.Host against a host framework process reached
// over NATS request/reply: connectivity checks are requests, deliveries and
// events are fire-and-forget publishes on per-client and per-event
// subjects. Client IDs are generated locally as base58-encoded UUIDs; the
// engine's fail-if-exists insert is what makes them authoritative.
type hostBridge struct {
	client *NATSClient
	config HostBridgeConfig
}

// NewHostBridge creates the NATS host adapter.
func NewHostBridge(client *NATSClient, config HostBridgeConfig) port.Host {
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 2 * time.Second
	}
	return &hostBridge{client: client, config: config}
}

// Ensure hostBridge implements the Host interface
var _ port.Host = (*hostBridge)(nil)

// GenerateID returns a fresh base58-encoded UUID.
func (h *hostBridge) GenerateID(_ context.Context) string {
	id := uuid.New()
	return base58.Encode(id[:])
}

// Timeout returns the configured host session timeout.
func (h *hostBridge) Timeout() (time.Duration, bool) {
	return h.config.Timeout, h.config.Timeout > 0
}

// HasConnection asks the host framework whether it holds a live connection
// for the client. Any transport failure reads as "not connected"; the
// engine treats that as a skipped drain, never an error.
func (h *hostBridge) HasConnection(clientID string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.RequestTimeout)
	defer cancel()

	msg, err := h.client.conn.RequestWithContext(ctx, constants.HostHasConnectionSubject, []byte(clientID))
	if err != nil {
		slog.DebugContext(ctx, "has-connection request failed, assuming disconnected",
			"error", err,
			"client_id", clientID,
		)
		return false
	}
	return string(msg.Data) == "true"
}

// Deliver publishes the pending messages on the client's delivery subject.
func (h *hostBridge) Deliver(ctx context.Context, clientID string, messages []model.Message) {
	data, err := json.Marshal(messages)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal delivery batch",
			"error", err,
			"client_id", clientID,
		)
		return
	}
	if err := h.client.conn.Publish(constants.HostDeliverSubjectPrefix+clientID, data); err != nil {
		slog.ErrorContext(ctx, "failed to publish delivery batch",
			"error", err,
			"client_id", clientID,
		)
	}
}

// hostEvent is the wire shape of a Trigger emission.
type hostEvent struct {
	Event string `json:"event"`
	Args  []any  `json:"args,omitempty"`
}

// Trigger publishes the event on its per-event subject.
func (h *hostBridge) Trigger(ctx context.Context, event string, args ...any) {
	data, err := json.Marshal(hostEvent{Event: event, Args: args})
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal host event",
			"error", err,
			"event", event,
		)
		return
	}
	if err := h.client.conn.Publish(constants.HostEventSubjectPrefix+event, data); err != nil {
		slog.ErrorContext(ctx, "failed to publish host event",
			"error", err,
			"event", event,
		)
	}
}
