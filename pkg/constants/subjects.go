// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

// NATS subject constants for the engine daemon and the cross-node
// notification bus.
const (
	// Notification bus subjects (cross-node mailbox drain and session close)
	NotifyMessageSubject = "lfx.pubsub_engine.notify.message"
	NotifyCloseSubject   = "lfx.pubsub_engine.notify.close"

	// Engine operation subjects served by the daemon over request/reply
	ClientCreateSubject  = "lfx.pubsub_engine.client.create"
	ClientExistsSubject  = "lfx.pubsub_engine.client.exists"
	ClientPingSubject    = "lfx.pubsub_engine.client.ping"
	ClientDestroySubject = "lfx.pubsub_engine.client.destroy"
	SubscribeSubject     = "lfx.pubsub_engine.subscribe"
	UnsubscribeSubject   = "lfx.pubsub_engine.unsubscribe"
	PublishSubject       = "lfx.pubsub_engine.publish"

	// Host bridge subjects (engine -> host framework)
	HostHasConnectionSubject = "lfx.pubsub_engine.host.has_connection"
	HostDeliverSubjectPrefix = "lfx.pubsub_engine.host.deliver."
	HostEventSubjectPrefix   = "lfx.pubsub_engine.host.event."
)

// PubSubEngineQueue is the NATS queue group for engine operation subscriptions
const PubSubEngineQueue = "lfx-v2-pubsub-engine"
