// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package model defines the records the engine persists in the key-value
// store and the message shape it fans out to subscribers.
package model

import "encoding/json"

// Message is one published message. ClientID identifies the publisher,
// Channel the channel the message was published on, and Data the opaque
// payload handed through to recipients.
type Message struct {
	ClientID string          `json:"clientId"`
	Channel  string          `json:"channel"`
	Data     json.RawMessage `json:"data,omitempty"`
}
