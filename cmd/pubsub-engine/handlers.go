// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/domain/model"
	natsinfra "github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/infrastructure/nats"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/service"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/constants"
)

// membershipRequest is the wire shape of subscribe/unsubscribe requests.
type membershipRequest struct {
	ClientID string `json:"client_id"`
	Channel  string `json:"channel"`
}

// publishRequest is the wire shape of publish requests.
type publishRequest struct {
	Message  model.Message `json:"message"`
	Channels []string      `json:"channels"`
}

// respond replies to the request, encoding failures the way the host bridge
// parses them: a JSON object with a single error field.
func respond(ctx context.Context, msg *nats.Msg, payload []byte, err error) {
	if err != nil {
		payload, _ = json.Marshal(map[string]string{"error": err.Error()})
	}
	if msg.Reply == "" {
		return
	}
	if respondErr := msg.Respond(payload); respondErr != nil {
		slog.ErrorContext(ctx, "failed to respond to engine request",
			"error", respondErr,
			"subject", msg.Subject,
		)
	}
}

// registerHandlers serves every engine operation over request/reply. Each
// NATS message is handled on its own goroutine by the client, so operations
// stay concurrent with respect to each other.
func registerHandlers(ctx context.Context, client *natsinfra.NATSClient, engine *service.Engine) error {
	handlers := map[string]nats.MsgHandler{
		constants.ClientCreateSubject: func(msg *nats.Msg) {
			clientID, err := engine.CreateClient(ctx)
			var payload []byte
			if err == nil {
				payload, _ = json.Marshal(map[string]string{"client_id": clientID})
			}
			respond(ctx, msg, payload, err)
		},

		constants.ClientExistsSubject: func(msg *nats.Msg) {
			exists := engine.ClientExists(ctx, string(msg.Data))
			if exists {
				respond(ctx, msg, []byte("true"), nil)
				return
			}
			respond(ctx, msg, []byte("false"), nil)
		},

		constants.ClientPingSubject: func(msg *nats.Msg) {
			engine.Ping(ctx, string(msg.Data))
			respond(ctx, msg, []byte("ok"), nil)
		},

		constants.ClientDestroySubject: func(msg *nats.Msg) {
			err := engine.DestroyClient(ctx, string(msg.Data))
			respond(ctx, msg, []byte("ok"), err)
		},

		constants.SubscribeSubject: func(msg *nats.Msg) {
			var request membershipRequest
			if err := json.Unmarshal(msg.Data, &request); err != nil {
				respond(ctx, msg, nil, err)
				return
			}
			err := engine.Subscribe(ctx, request.ClientID, request.Channel)
			respond(ctx, msg, []byte("ok"), err)
		},

		constants.UnsubscribeSubject: func(msg *nats.Msg) {
			var request membershipRequest
			if err := json.Unmarshal(msg.Data, &request); err != nil {
				respond(ctx, msg, nil, err)
				return
			}
			err := engine.Unsubscribe(ctx, request.ClientID, request.Channel)
			respond(ctx, msg, []byte("ok"), err)
		},

		constants.PublishSubject: func(msg *nats.Msg) {
			var request publishRequest
			if err := json.Unmarshal(msg.Data, &request); err != nil {
				respond(ctx, msg, nil, err)
				return
			}
			err := engine.Publish(ctx, request.Message, request.Channels)
			respond(ctx, msg, []byte("ok"), err)
		},
	}

	for subject, handler := range handlers {
		if _, err := client.QueueSubscribe(subject, constants.PubSubEngineQueue, handler); err != nil {
			return err
		}
		slog.InfoContext(ctx, "serving engine operation", "subject", subject)
	}
	return nil
}
