// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/infrastructure/mock"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/constants"
	errs "github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/errors"
)

func TestCreateClient(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		queuedIDs  []string
		preExists  []string
		wantID     string
		wantErrAs  any
		handshakes int
	}{
		{
			name:       "fresh ID succeeds first try",
			queuedIDs:  []string{"c1"},
			wantID:     "c1",
			handshakes: 1,
		},
		{
			name:       "collision retries with a fresh ID",
			queuedIDs:  []string{"taken", "fresh"},
			preExists:  []string{"taken"},
			wantID:     "fresh",
			handshakes: 1,
		},
		{
			name:      "empty host ID is rejected",
			queuedIDs: []string{""},
			wantErrAs: &errs.Validation{},
		},
		{
			name: "host that keeps colliding exhausts the attempt cap",
			queuedIDs: []string{
				"taken", "taken", "taken", "taken",
				"taken", "taken", "taken", "taken",
			},
			preExists: []string{"taken"},
			wantErrAs: &errs.Conflict{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			te := newTestEngine(t, mock.NewHost(30*time.Second))
			for _, id := range tc.preExists {
				require.NoError(t, te.store.Insert(ctx, "clients/"+id, []byte("true"), 0))
			}
			te.host.QueueIDs(tc.queuedIDs...)

			clientID, err := te.engine.CreateClient(ctx)

			if tc.wantErrAs != nil {
				require.Error(t, err)
				assert.ErrorAs(t, err, tc.wantErrAs)
				assert.Empty(t, clientID)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantID, clientID)
			assert.True(t, te.engine.ClientExists(ctx, clientID))

			handshakes := te.host.EventsNamed(constants.EventHandshake)
			require.Len(t, handshakes, tc.handshakes)
			assert.Equal(t, []any{clientID}, handshakes[0].Args)
		})
	}
}

func TestClientExists(t *testing.T) {
	ctx := context.Background()
	te := newTestEngine(t, mock.NewHost(30*time.Second))
	te.createClient(t, ctx, "c1")

	tests := []struct {
		name     string
		clientID string
		want     bool
	}{
		{name: "live session", clientID: "c1", want: true},
		{name: "unknown client", clientID: "nobody", want: false},
		{name: "empty ID", clientID: "", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, te.engine.ClientExists(ctx, tc.clientID))
		})
	}
}

func TestSessionExpiryAndPing(t *testing.T) {
	ctx := context.Background()
	te := newTestEngine(t, mock.NewHost(10*time.Second))

	base := time.Now()
	offset := time.Duration(0)
	te.store.SetClock(func() time.Time { return base.Add(offset) })

	te.createClient(t, ctx, "c1")

	// TTL is 1.6x the 10s host timeout: still alive at 10s...
	offset = 10 * time.Second
	assert.True(t, te.engine.ClientExists(ctx, "c1"))

	// ...a ping pushes the deadline out from here...
	te.engine.Ping(ctx, "c1")
	offset = 20 * time.Second
	assert.True(t, te.engine.ClientExists(ctx, "c1"))

	// ...and without further pings the marker expires.
	offset = 40 * time.Second
	assert.False(t, te.engine.ClientExists(ctx, "c1"))
}

func TestPingWithoutTimeoutIsNoOp(t *testing.T) {
	ctx := context.Background()
	te := newTestEngine(t, mock.NewHostWithoutTimeout())

	te.engine.Ping(ctx, "never-created")

	assert.Empty(t, te.store.Keys(), "ping must not materialize a session marker")
}
