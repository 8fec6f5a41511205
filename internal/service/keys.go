// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"fmt"
	"strings"

	"github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/constants"
)

// keyBuilder formats store keys under an optional namespace prefix. Channel
// names keep their conventional leading slash at the API surface
// ("/news/tech"); the builder folds it into the key path so that
// "channels/news/tech" comes out rather than "channels//news/tech".
type keyBuilder struct {
	namespace string
}

func newKeyBuilder(namespace string) keyBuilder {
	return keyBuilder{namespace: strings.Trim(namespace, "/")}
}

func (k keyBuilder) join(key string) string {
	if k.namespace == "" {
		return key
	}
	return k.namespace + "/" + key
}

// client is the session existence marker key for a client.
func (k keyBuilder) client(clientID string) string {
	return k.join(fmt.Sprintf(constants.KeyPatternClient, clientID))
}

// clientChannels is the key of the client's channel-set record.
func (k keyBuilder) clientChannels(clientID string) string {
	return k.join(fmt.Sprintf(constants.KeyPatternClientChannels, clientID))
}

// clientMessages is the key of the client's mailbox record.
func (k keyBuilder) clientMessages(clientID string) string {
	return k.join(fmt.Sprintf(constants.KeyPatternClientMessages, clientID))
}

// channel is the key of a channel's subscriber-set record.
func (k keyBuilder) channel(channel string) string {
	return k.join(fmt.Sprintf(constants.KeyPatternChannel, strings.TrimPrefix(channel, "/")))
}
