// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// The pubsub-engine daemon wires the storage-backed pub/sub engine to NATS:
// JetStream KV for persistence, request/reply subjects for engine
// operations, and core subjects for cross-node notifications and host
// framework callbacks.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsinfra "github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/infrastructure/nats"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/internal/service"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/log"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the daemon configuration file")
	flag.Parse()

	log.InitStructureLogConfig()
	ctx := context.Background()

	config, err := LoadConfig(*configPath)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load configuration", "error", err, "path", *configPath)
		os.Exit(1)
	}

	client, err := natsinfra.NewClient(ctx, natsinfra.Config{
		URL:           config.NATS.URL,
		Credential:    config.NATS.Credential,
		Timeout:       config.NATS.Timeout,
		MaxReconnect:  config.NATS.MaxReconnect,
		ReconnectWait: config.NATS.ReconnectWait,
		BucketPrefix:  config.NATS.BucketPrefix,
		SessionTTL:    time.Duration(constants.SessionExpiryFactor * float64(config.Host.Timeout)),
		StateTTL:      config.Engine.GCInterval,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create NATS client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slog.ErrorContext(ctx, "failed to close NATS client", "error", err)
		}
	}()

	store := natsinfra.NewKeyValueStore(client, config.Engine.Namespace)
	host := natsinfra.NewHostBridge(client, natsinfra.HostBridgeConfig{
		Timeout:        config.Host.Timeout,
		RequestTimeout: config.Host.RequestTimeout,
	})
	bus := natsinfra.NewNotificationBus(client)

	engine, err := service.NewEngine(
		service.WithKeyValueStore(store),
		service.WithHost(host),
		service.WithNotifier(bus),
		service.WithConfig(service.Config{
			Namespace:  config.Engine.Namespace,
			GCInterval: config.Engine.GCInterval,
		}),
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to construct engine", "error", err)
		os.Exit(1)
	}

	if err := bus.Listen(ctx, engine); err != nil {
		slog.ErrorContext(ctx, "failed to start notification bus", "error", err)
		os.Exit(1)
	}

	if err := registerHandlers(ctx, client, engine); err != nil {
		slog.ErrorContext(ctx, "failed to register engine handlers", "error", err)
		os.Exit(1)
	}

	slog.InfoContext(ctx, "pubsub engine running",
		"nats_url", config.NATS.URL,
		"namespace", config.Engine.Namespace,
		"gc_interval", config.Engine.GCInterval,
	)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.InfoContext(ctx, "shutting down")
	if err := engine.Close(); err != nil {
		slog.ErrorContext(ctx, "failed to close engine", "error", err)
	}
}
