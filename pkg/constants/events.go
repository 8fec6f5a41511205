// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

// Host framework event names emitted through the host Trigger hook.
const (
	EventHandshake   = "handshake"
	EventSubscribe   = "subscribe"
	EventUnsubscribe = "unsubscribe"
	EventDisconnect  = "disconnect"
	EventPublish     = "publish"
	EventClose       = "close"
)
