/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package events

import (
	"sync"

	"github.com/friendsincode/radiostream/internal/telemetry"
)

// EventType enumerates event categories.
type EventType string

const (
	EventPlaylistGenerated EventType = "playlist.generated"
	EventPlaylistSaved     EventType = "playlist.saved"
	EventPlaylistDeleted   EventType = "playlist.deleted"
	EventTrackRated        EventType = "track.rated"
	EventTrackPlayed       EventType = "track.played"
	EventTracksImported    EventType = "track.imported"
	EventRulesUpdated      EventType = "rules.updated"
)

// Types lists every event type in publication order of the API.
func Types() []EventType {
	return []EventType{
		EventPlaylistGenerated,
		EventPlaylistSaved,
		EventPlaylistDeleted,
		EventTrackRated,
		EventTrackPlayed,
		EventTracksImported,
		EventRulesUpdated,
	}
}

// Payload generic event payload.
type Payload map[string]any

// Subscriber receives event payloads.
type Subscriber chan Payload

// Publisher is implemented by the in-process bus.
type Publisher interface {
	Publish(eventType EventType, payload Payload)
}

// Bus implements a simple in-process pubsub. Slow subscribers miss events
// rather than block publishers.
type Bus struct {
	mu   sync.RWMutex
	subs map[EventType][]Subscriber
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[EventType][]Subscriber)}
}

// Subscribe registers a subscriber for event type.
func (b *Bus) Subscribe(eventType EventType) Subscriber {
	ch := make(Subscriber, 8)
	b.mu.Lock()
	b.subs[eventType] = append(b.subs[eventType], ch)
	b.mu.Unlock()
	return ch
}

// Publish sends payload to subscribers.
func (b *Bus) Publish(eventType EventType, payload Payload) {
	telemetry.EventsPublished.WithLabelValues(string(eventType)).Inc()

	// Sends never block, so holding the read lock keeps Unsubscribe from
	// closing a channel mid-send.
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs[eventType] {
		select {
		case sub <- payload:
		default:
		}
	}
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus) Unsubscribe(eventType EventType, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[eventType]
	for i, candidate := range subs {
		if candidate == sub {
			subs = append(subs[:i], subs[i+1:]...)
			close(sub)
			break
		}
	}
	b.subs[eventType] = subs
}
