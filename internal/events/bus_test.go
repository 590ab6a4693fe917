/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package events

import "testing"

func TestBusDeliversToMatchingSubscribers(t *testing.T) {
	bus := NewBus()
	rated := bus.Subscribe(EventTrackRated)
	played := bus.Subscribe(EventTrackPlayed)

	bus.Publish(EventTrackRated, Payload{"track_id": "t1", "rating": 80})

	select {
	case got := <-rated:
		if got["track_id"] != "t1" {
			t.Fatalf("unexpected payload %v", got)
		}
	default:
		t.Fatal("rated subscriber received nothing")
	}

	select {
	case got := <-played:
		t.Fatalf("played subscriber received %v", got)
	default:
	}
}

func TestBusDropsWhenSubscriberIsFull(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(EventPlaylistGenerated)

	for i := 0; i < cap(sub)+5; i++ {
		bus.Publish(EventPlaylistGenerated, Payload{"n": i})
	}
	if len(sub) != cap(sub) {
		t.Fatalf("buffered %d events, want %d", len(sub), cap(sub))
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(EventRulesUpdated)
	bus.Unsubscribe(EventRulesUpdated, sub)

	if _, ok := <-sub; ok {
		t.Fatal("expected closed channel")
	}
	bus.Publish(EventRulesUpdated, Payload{})
}
