// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package port

import (
	"context"
	"time"

	"github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/domain/model"
)

// Host is the engine's view of the pub/sub host framework. Connection
// handling, the wire protocol and handshake semantics all live on the other
// side of this interface; the engine only consumes ID generation, the
// session timeout, connectivity checks, delivery and event hooks.
type Host interface {
	// GenerateID returns a new, unique client ID candidate. Uniqueness is
	// verified by the engine with a fail-if-exists insert, so a rare
	// collision only costs a retry.
	GenerateID(ctx context.Context) string

	// Timeout returns the host session timeout. ok is false when the host
	// has no timeout configured, in which case session markers never expire
	// and ping is a no-op.
	Timeout() (timeout time.Duration, ok bool)

	// HasConnection reports whether the host currently holds a live
	// delivery connection for the client.
	HasConnection(clientID string) bool

	// Deliver hands the client's pending messages to the host for
	// transport-level delivery, in enqueue order.
	Deliver(ctx context.Context, clientID string, messages []model.Message)

	// Trigger emits a host lifecycle event (see pkg/constants events).
	Trigger(ctx context.Context, event string, args ...any)
}
