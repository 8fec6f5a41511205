// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/constants"
	errs "github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/errors"
)

// sessionMarkerValue is the existence sentinel stored at the client key.
// Presence of the key is the signal; the value carries no information.
var sessionMarkerValue = []byte("true")

// sessionTracker creates, verifies and refreshes client liveness records.
type sessionTracker struct {
	guard *storeGuard
	host  port.Host
	keys  keyBuilder
}

// sessionTTL derives the session marker TTL from the host timeout. A host
// without a timeout yields zero, meaning the marker never expires.
func (s *sessionTracker) sessionTTL() time.Duration {
	timeout, ok := s.host.Timeout()
	if !ok {
		return 0
	}
	return time.Duration(constants.SessionExpiryFactor * float64(timeout))
}

// CreateClient allocates a new client session: a host-generated ID with a
// fail-if-exists existence marker. An ID collision is expected-but-rare and
// retried silently with a fresh ID; the attempt cap only guards against a
// host handing out constant IDs.
func (s *sessionTracker) CreateClient(ctx context.Context) (string, error) {
	for attempt := 0; attempt < constants.MaxClientIDAttempts; attempt++ {
		clientID := s.host.GenerateID(ctx)
		if clientID == "" {
			return "", errs.NewValidation("host generated an empty client ID")
		}

		err := s.guard.insert(ctx, s.keys.client(clientID), sessionMarkerValue, s.sessionTTL())
		if err != nil {
			var conflict errs.Conflict
			if stderrors.As(err, &conflict) {
				slog.DebugContext(ctx, "client ID collision, retrying with a fresh ID",
					"client_id", clientID,
					"attempt", attempt+1,
				)
				continue
			}
			return "", errs.NewServiceUnavailable("failed to create client session", err)
		}

		slog.DebugContext(ctx, "created new client", "client_id", clientID)
		s.Ping(ctx, clientID)
		s.host.Trigger(ctx, constants.EventHandshake, clientID)
		return clientID, nil
	}
	return "", errs.NewConflict("exhausted client ID attempts, host keeps generating colliding IDs")
}

// ClientExists probes the existence marker. This is best-effort: any store
// error reads as "gone" and is logged by the guard, not propagated.
func (s *sessionTracker) ClientExists(ctx context.Context, clientID string) bool {
	if clientID == "" {
		return false
	}
	_, ok := s.guard.get(ctx, s.keys.client(clientID))
	return ok
}

// Ping refreshes the existence marker's TTL. A host without a configured
// timeout makes this a no-op since the marker never expires.
func (s *sessionTracker) Ping(ctx context.Context, clientID string) {
	timeout, ok := s.host.Timeout()
	if !ok {
		return
	}
	slog.DebugContext(ctx, "ping", "client_id", clientID, "timeout", timeout)
	s.guard.upsert(ctx, s.keys.client(clientID), sessionMarkerValue, s.sessionTTL())
}
