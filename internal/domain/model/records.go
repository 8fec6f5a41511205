// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package model

// ClientChannels is the per-client half of the membership index: the set of
// channels one client subscribes to, stored under clients/{id}/channels.
type ClientChannels struct {
	Channels []string `json:"channels"`
}

// Add appends the channel if it is not already a member. Reports whether the
// set changed.
func (c *ClientChannels) Add(channel string) bool {
	if c.Has(channel) {
		return false
	}
	c.Channels = append(c.Channels, channel)
	return true
}

// Remove deletes the channel from the set, preserving the order of the
// remaining entries. Reports whether the set changed.
func (c *ClientChannels) Remove(channel string) bool {
	for i, ch := range c.Channels {
		if ch == channel {
			c.Channels = append(c.Channels[:i], c.Channels[i+1:]...)
			return true
		}
	}
	return false
}

// Has reports whether the channel is a member of the set.
func (c *ClientChannels) Has(channel string) bool {
	for _, ch := range c.Channels {
		if ch == channel {
			return true
		}
	}
	return false
}

// ChannelSubscribers is the per-channel half of the membership index: the set
// of client IDs subscribed to one channel, stored under channels/{name}.
type ChannelSubscribers struct {
	Clients []string `json:"clients"`
}

// Add appends the client ID if it is not already a member. Reports whether
// the set changed.
func (s *ChannelSubscribers) Add(clientID string) bool {
	if s.Has(clientID) {
		return false
	}
	s.Clients = append(s.Clients, clientID)
	return true
}

// Remove deletes the client ID from the set, preserving the order of the
// remaining entries. Reports whether the set changed.
func (s *ChannelSubscribers) Remove(clientID string) bool {
	for i, id := range s.Clients {
		if id == clientID {
			s.Clients = append(s.Clients[:i], s.Clients[i+1:]...)
			return true
		}
	}
	return false
}

// Has reports whether the client ID is a member of the set.
func (s *ChannelSubscribers) Has(clientID string) bool {
	for _, id := range s.Clients {
		if id == clientID {
			return true
		}
	}
	return false
}

// Empty reports whether no subscribers remain. An empty channel record is
// never persisted; callers remove it instead.
func (s *ChannelSubscribers) Empty() bool {
	return len(s.Clients) == 0
}

// MessageQueue is a client mailbox: pending messages in arrival order,
// stored under clients/{id}/messages.
type MessageQueue struct {
	Messages []Message `json:"messages"`
}
