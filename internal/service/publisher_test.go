// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/infrastructure/mock"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/constants"
	errs "github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/errors"
)

func TestPublishFanOut(t *testing.T) {
	ctx := context.Background()
	te := newTestEngine(t, mock.NewHost(30*time.Second))

	te.createClient(t, ctx, "x")
	require.NoError(t, te.engine.Subscribe(ctx, "x", "/a"))
	te.createClient(t, ctx, "y")
	require.NoError(t, te.engine.Subscribe(ctx, "y", "/a"))
	require.NoError(t, te.engine.Subscribe(ctx, "y", "/b"))

	message := model.Message{ClientID: "x", Channel: "/a", Data: rawJSON(t, map[string]string{"text": "hi"})}
	require.NoError(t, te.engine.Publish(ctx, message, []string{"/a", "/b"}))

	// y is subscribed to both target channels but receives the message once.
	for _, clientID := range []string{"x", "y"} {
		deliveries := te.host.Deliveries(clientID)
		require.Len(t, deliveries, 1, "client %s", clientID)
		require.Len(t, deliveries[0], 1, "client %s", clientID)
		assert.Equal(t, "/a", deliveries[0][0].Channel)
	}

	publishes := te.host.EventsNamed(constants.EventPublish)
	require.Len(t, publishes, 1)
	require.Len(t, publishes[0].Args, 3)
	assert.Equal(t, "x", publishes[0].Args[0])
	assert.Equal(t, "/a", publishes[0].Args[1])

	// Live recipients each got a cross-node nudge.
	assert.ElementsMatch(t, []string{"x", "y"}, te.notifier.MessageNotifications())
}

func TestPublishWithoutRecipients(t *testing.T) {
	ctx := context.Background()
	te := newTestEngine(t, mock.NewHost(30*time.Second))

	message := model.Message{ClientID: "x", Channel: "/nowhere"}
	require.NoError(t, te.engine.Publish(ctx, message, []string{"/nowhere"}))

	assert.Len(t, te.host.EventsNamed(constants.EventPublish), 1,
		"the publish event fires even with nobody subscribed")
}

func TestPublishRequiresChannels(t *testing.T) {
	ctx := context.Background()
	te := newTestEngine(t, mock.NewHost(30*time.Second))

	err := te.engine.Publish(ctx, model.Message{ClientID: "x"}, nil)

	require.Error(t, err)
	var validation errs.Validation
	assert.ErrorAs(t, err, &validation)
	assert.Empty(t, te.host.EventsNamed(constants.EventPublish))
}

func TestPublishPurgesDeadRecipient(t *testing.T) {
	ctx := context.Background()
	te := newTestEngine(t, mock.NewHost(30*time.Second))

	te.createClient(t, ctx, "dead")
	require.NoError(t, te.engine.Subscribe(ctx, "dead", "/news"))

	// Expire the session marker but leave the membership records in place.
	require.NoError(t, te.store.Remove(ctx, "clients/dead"))

	require.NoError(t, te.engine.Publish(ctx, model.Message{ClientID: "p", Channel: "/news"}, []string{"/news"}))

	assert.Empty(t, te.host.Deliveries("dead"))
	assert.NotContains(t, te.store.Keys(), "clients/dead/messages",
		"a dead recipient's mailbox is purged, not left to rot")
	assert.Empty(t, te.notifier.MessageNotifications())
}

func TestPublishQueuesForDisconnectedRecipient(t *testing.T) {
	ctx := context.Background()
	te := newTestEngine(t, mock.NewHost(30*time.Second))

	te.createClient(t, ctx, "roaming")
	require.NoError(t, te.engine.Subscribe(ctx, "roaming", "/news"))
	te.host.SetConnected("roaming", false)

	require.NoError(t, te.engine.Publish(ctx, model.Message{ClientID: "p", Channel: "/news"}, []string{"/news"}))

	assert.Empty(t, te.host.Deliveries("roaming"))
	assert.Contains(t, te.store.Keys(), "clients/roaming/messages",
		"the message stays queued for another node or a reconnect")
	assert.Equal(t, []string{"roaming"}, te.notifier.MessageNotifications())

	// The reconnect drains the queue.
	te.host.SetConnected("roaming", true)
	te.engine.EmptyQueue(ctx, "roaming")
	require.Len(t, te.host.Deliveries("roaming"), 1)
}

func TestPublishSurvivesNotifierFailure(t *testing.T) {
	ctx := context.Background()
	te := newTestEngine(t, mock.NewHost(30*time.Second))

	te.createClient(t, ctx, "c1")
	require.NoError(t, te.engine.Subscribe(ctx, "c1", "/news"))
	te.notifier.FailWith(errs.NewServiceUnavailable("bus is down"))

	require.NoError(t, te.engine.Publish(ctx, model.Message{ClientID: "p", Channel: "/news"}, []string{"/news"}))

	require.Len(t, te.host.Deliveries("c1"), 1, "local delivery does not depend on the bus")
}
