// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

import "time"

const (
	// KVBucketNameSessions is the name of the KV bucket for client session markers.
	// The bucket TTL is derived from the host timeout (SessionExpiryFactor).
	KVBucketNameSessions = "pubsub-sessions"

	// KVBucketNameState is the name of the KV bucket for membership sets and
	// mailboxes. The bucket TTL is the engine GC interval.
	KVBucketNameState = "pubsub-state"
)

// Key patterns for engine records. Every pattern takes the client ID or the
// channel name (without its leading slash) as its single argument; an optional
// namespace prefix is joined in front by the key builder.
const (
	// KeyPatternClient is the session existence marker for a client.
	KeyPatternClient = "clients/%s"

	// KeyPatternClientChannels is the set of channels a client subscribes to.
	KeyPatternClientChannels = "clients/%s/channels"

	// KeyPatternClientMessages is the ordered mailbox of pending messages.
	KeyPatternClientMessages = "clients/%s/messages"

	// KeyPatternChannel is the set of clients subscribed to a channel.
	KeyPatternChannel = "channels/%s"
)

// TTL and GC policy
const (
	// SessionExpiryFactor scales the host timeout into the session marker TTL.
	SessionExpiryFactor = 1.6

	// DefaultGCInterval is the TTL applied to membership and mailbox records
	// when no interval is configured or the configured one is out of range.
	DefaultGCInterval = 60 * time.Second

	// MaxGCInterval bounds the configurable GC interval.
	MaxGCInterval = time.Hour
)

// Concurrency bounds for multi-key operations
const (
	// FanOutConcurrency caps concurrent per-recipient work during publish.
	FanOutConcurrency = 8

	// CleanupConcurrency caps concurrent per-channel work during client destroy.
	CleanupConcurrency = 4

	// MultiGetConcurrency caps parallel reads inside a batched multi-get.
	MultiGetConcurrency = 8
)

// MaxClientIDAttempts bounds the ID collision retry loop during client creation.
const MaxClientIDAttempts = 8
