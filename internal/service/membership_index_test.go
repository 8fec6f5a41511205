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

// readChannels decodes the client's channel-set record straight from the store.
func readChannels(t *testing.T, te *testEngine, clientID string) []string {
	t.Helper()
	var record model.ClientChannels
	if !te.engine.membership.guard.getJSON(context.Background(), te.engine.membership.keys.clientChannels(clientID), &record) {
		return nil
	}
	return record.Channels
}

// readSubscribers decodes the channel's subscriber-set record straight from
// the store; ok is false when the record is absent.
func readSubscribers(t *testing.T, te *testEngine, channel string) ([]string, bool) {
	t.Helper()
	var record model.ChannelSubscribers
	ok := te.engine.membership.guard.getJSON(context.Background(), te.engine.membership.keys.channel(channel), &record)
	return record.Clients, ok
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("populates both halves of the index", func(t *testing.T) {
		te := newTestEngine(t, mock.NewHost(30*time.Second))
		te.createClient(t, ctx, "c1")

		require.NoError(t, te.engine.Subscribe(ctx, "c1", "/news"))

		assert.Equal(t, []string{"/news"}, readChannels(t, te, "c1"))
		subscribers, ok := readSubscribers(t, te, "/news")
		require.True(t, ok)
		assert.Equal(t, []string{"c1"}, subscribers)

		events := te.host.EventsNamed(constants.EventSubscribe)
		require.Len(t, events, 1)
		assert.Equal(t, []any{"c1", "/news"}, events[0].Args)
	})

	t.Run("re-subscribing is idempotent", func(t *testing.T) {
		te := newTestEngine(t, mock.NewHost(30*time.Second))
		te.createClient(t, ctx, "c1")

		require.NoError(t, te.engine.Subscribe(ctx, "c1", "/news"))
		require.NoError(t, te.engine.Subscribe(ctx, "c1", "/news"))

		assert.Equal(t, []string{"/news"}, readChannels(t, te, "c1"))
		subscribers, _ := readSubscribers(t, te, "/news")
		assert.Equal(t, []string{"c1"}, subscribers)

		// The host still hears about every attempt.
		assert.Len(t, te.host.EventsNamed(constants.EventSubscribe), 2)
	})

	t.Run("channels are shared, client sets are not", func(t *testing.T) {
		te := newTestEngine(t, mock.NewHost(30*time.Second))
		te.createClient(t, ctx, "c1")
		te.createClient(t, ctx, "c2")

		require.NoError(t, te.engine.Subscribe(ctx, "c1", "/news"))
		require.NoError(t, te.engine.Subscribe(ctx, "c2", "/news"))
		require.NoError(t, te.engine.Subscribe(ctx, "c2", "/sports"))

		subscribers, _ := readSubscribers(t, te, "/news")
		assert.Equal(t, []string{"c1", "c2"}, subscribers)
		assert.Equal(t, []string{"/news"}, readChannels(t, te, "c1"))
		assert.Equal(t, []string{"/news", "/sports"}, readChannels(t, te, "c2"))
	})

	t.Run("validates its arguments", func(t *testing.T) {
		te := newTestEngine(t, mock.NewHost(30*time.Second))

		for _, args := range [][2]string{{"", "/news"}, {"c1", ""}} {
			err := te.engine.Subscribe(ctx, args[0], args[1])
			require.Error(t, err)
			var validation errs.Validation
			assert.ErrorAs(t, err, &validation)
		}
	})
}

func TestUnsubscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("clears both halves of the index", func(t *testing.T) {
		te := newTestEngine(t, mock.NewHost(30*time.Second))
		te.createClient(t, ctx, "c1")
		te.createClient(t, ctx, "c2")
		require.NoError(t, te.engine.Subscribe(ctx, "c1", "/news"))
		require.NoError(t, te.engine.Subscribe(ctx, "c2", "/news"))

		require.NoError(t, te.engine.Unsubscribe(ctx, "c1", "/news"))

		assert.Empty(t, readChannels(t, te, "c1"))
		subscribers, ok := readSubscribers(t, te, "/news")
		require.True(t, ok)
		assert.Equal(t, []string{"c2"}, subscribers)

		events := te.host.EventsNamed(constants.EventUnsubscribe)
		require.Len(t, events, 1)
		assert.Equal(t, []any{"c1", "/news"}, events[0].Args)
	})

	t.Run("removes a channel record left empty", func(t *testing.T) {
		te := newTestEngine(t, mock.NewHost(30*time.Second))
		te.createClient(t, ctx, "c1")
		require.NoError(t, te.engine.Subscribe(ctx, "c1", "/news"))

		require.NoError(t, te.engine.Unsubscribe(ctx, "c1", "/news"))

		_, ok := readSubscribers(t, te, "/news")
		assert.False(t, ok, "an empty subscriber set must not be persisted")
	})

	t.Run("unsubscribing a pair that is not subscribed is a no-op", func(t *testing.T) {
		te := newTestEngine(t, mock.NewHost(30*time.Second))
		te.createClient(t, ctx, "c1")
		before := len(te.store.Keys())

		require.NoError(t, te.engine.Unsubscribe(ctx, "c1", "/news"))

		assert.Len(t, te.store.Keys(), before, "no records may be created")
		assert.Len(t, te.host.EventsNamed(constants.EventUnsubscribe), 1)
	})

	t.Run("validates its arguments", func(t *testing.T) {
		te := newTestEngine(t, mock.NewHost(30*time.Second))

		for _, args := range [][2]string{{"", "/news"}, {"c1", ""}} {
			err := te.engine.Unsubscribe(ctx, args[0], args[1])
			require.Error(t, err)
			var validation errs.Validation
			assert.ErrorAs(t, err, &validation)
		}
	})
}
