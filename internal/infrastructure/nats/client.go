// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package nats provides the NATS-backed implementations of the engine's
// ports: the JetStream key-value store adapter, the cross-node notification
// bus, and the request/reply host bridge.
package nats

import (
	"context"
	"log/slog"
	"time"

	"github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/errors"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Config carries the NATS connection and bucket settings.
type Config struct {
	// URL is the NATS cluster address.
	URL string

	// Credential is an optional credentials file path.
	Credential string

	// Timeout bounds connection establishment.
	Timeout time.Duration

	// MaxReconnect and ReconnectWait tune the reconnect loop.
	MaxReconnect  int
	ReconnectWait time.Duration

	// BucketPrefix namespaces the KV bucket names, so several engines can
	// share one JetStream domain.
	BucketPrefix string

	// SessionTTL is the sessions bucket TTL (1.6x host timeout; zero means
	// sessions never expire).
	SessionTTL time.Duration

	// StateTTL is the state bucket TTL (the engine GC interval).
	StateTTL time.Duration
}

func (c Config) bucketName(suffix string) string {
	if c.BucketPrefix == "" {
		return suffix
	}
	return c.BucketPrefix + "-" + suffix
}

// NATSClient wraps the NATS connection and the engine's two KV buckets.
type NATSClient struct {
	conn     *nats.Conn
	config   Config
	sessions jetstream.KeyValue
	state    jetstream.KeyValue
}

// Close gracefully closes the NATS connection
func (c *NATSClient) Close() error {
	if c.conn != nil {
		c.conn.Close()
	}
	return nil
}

// IsReady checks if the NATS client is ready
func (c *NATSClient) IsReady(ctx context.Context) error {
	if c.conn == nil {
		slog.ErrorContext(ctx, "NATS client is not initialized or not connected")
		return errors.NewServiceUnavailable("NATS client is not initialized or not connected")
	}
	if !c.conn.IsConnected() || c.conn.IsDraining() {
		slog.ErrorContext(ctx, "NATS client is not ready",
			"connected", c.conn.IsConnected(),
			"draining", c.conn.IsDraining(),
		)
		return errors.NewServiceUnavailable("NATS client is not ready, connection is not established or is draining")
	}
	slog.DebugContext(ctx, "NATS client is ready", "url", c.conn.ConnectedUrl())
	return nil
}

// QueueSubscribe creates a queue subscription for load-balanced message processing
// Returns subscription handle and error
func (c *NATSClient) QueueSubscribe(subject, queue string, handler nats.MsgHandler) (*nats.Subscription, error) {
	if c.conn == nil {
		return nil, errors.NewServiceUnavailable("NATS connection not initialized")
	}
	if !c.conn.IsConnected() {
		return nil, errors.NewServiceUnavailable("NATS connection not ready")
	}
	return c.conn.QueueSubscribe(subject, queue, handler)
}

// Subscribe creates a plain subscription; every node receives every message.
func (c *NATSClient) Subscribe(subject string, handler nats.MsgHandler) (*nats.Subscription, error) {
	if c.conn == nil {
		return nil, errors.NewServiceUnavailable("NATS connection not initialized")
	}
	if !c.conn.IsConnected() {
		return nil, errors.NewServiceUnavailable("NATS connection not ready")
	}
	return c.conn.Subscribe(subject, handler)
}

// provisionBuckets creates or updates the engine's two KV buckets. TTL
// enforcement lives on the buckets: a key not rewritten within its bucket's
// TTL expires, which is exactly the refresh-on-ping and GC semantics the
// engine needs.
func (c *NATSClient) provisionBuckets(ctx context.Context) error {
	js, err := jetstream.New(c.conn)
	if err != nil {
		slog.ErrorContext(ctx, "error creating NATS JetStream client",
			"error", err,
			"nats_url", c.conn.ConnectedUrl(),
		)
		return err
	}

	buckets := []struct {
		name string
		ttl  time.Duration
		dest *jetstream.KeyValue
	}{
		{c.config.bucketName(constants.KVBucketNameSessions), c.config.SessionTTL, &c.sessions},
		{c.config.bucketName(constants.KVBucketNameState), c.config.StateTTL, &c.state},
	}

	for _, bucket := range buckets {
		kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket: bucket.name,
			TTL:    bucket.ttl,
		})
		if err != nil {
			slog.ErrorContext(ctx, "error provisioning NATS JetStream key-value bucket",
				"error", err,
				"nats_url", c.conn.ConnectedUrl(),
				"bucket", bucket.name,
			)
			return err
		}
		*bucket.dest = kv
	}
	return nil
}

// NewClient creates a new NATS client with the given configuration
func NewClient(ctx context.Context, config Config) (*NATSClient, error) {
	slog.InfoContext(ctx, "creating NATS client",
		"url", config.URL,
		"timeout", config.Timeout,
	)

	if config.URL == "" {
		return nil, errors.NewValidation("NATS URL is required")
	}

	opts := []nats.Option{
		nats.Name(constants.ServiceName),
		nats.Timeout(config.Timeout),
		nats.MaxReconnects(config.MaxReconnect),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			slog.WarnContext(ctx, "NATS disconnected",
				"error", err,
				"url", nc.ConnectedUrl(),
				"status", nc.Status(),
			)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.InfoContext(ctx, "NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(_ *nats.Conn, s *nats.Subscription, err error) {
			if s != nil {
				slog.With("error", err, "subject", s.Subject, "queue", s.Queue).Error("async NATS error")
			} else {
				slog.With("error", err).Error("async NATS error outside subscription")
			}
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			slog.InfoContext(ctx, "NATS connection closed",
				"url", nc.ConnectedUrl(),
				"status", nc.Status(),
			)
		}),
	}
	if config.Credential != "" {
		opts = append(opts, nats.UserCredentials(config.Credential))
	}

	conn, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, errors.NewServiceUnavailable("failed to connect to NATS", err)
	}

	client := &NATSClient{
		conn:   conn,
		config: config,
	}

	if err := client.provisionBuckets(ctx); err != nil {
		conn.Close()
		return nil, errors.NewServiceUnavailable("failed to provision NATS key-value buckets", err)
	}

	slog.InfoContext(ctx, "NATS client created successfully",
		"connected_url", conn.ConnectedUrl(),
		"status", conn.Status(),
	)

	return client, nil
}
