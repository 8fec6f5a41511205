// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"time"

	"github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/constants"
)

// Config carries the engine's construction-time settings. The store cluster
// address, credentials and bucket identifier belong to the store adapter's
// own config; only the settings the engine itself consumes live here.
type Config struct {
	// Namespace prefixes every store key. Empty means no prefix.
	Namespace string

	// GCInterval is the TTL applied to membership and mailbox records so
	// that orphaned data self-expires. Zero, negative, or values above one
	// hour fall back to the 60s default.
	GCInterval time.Duration
}

// gcInterval returns the effective record TTL after range validation.
func (c Config) gcInterval() time.Duration {
	if c.GCInterval <= 0 || c.GCInterval >= constants.MaxGCInterval {
		return constants.DefaultGCInterval
	}
	return c.GCInterval
}
