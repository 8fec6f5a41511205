// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package constants defines global constants used throughout the pubsub engine.
package constants

// Service constants
const (
	// ServiceName is the name of this service
	ServiceName = "lfx-v2-pubsub-engine"
)
