/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package smartblock

import (
	"errors"
	"testing"
	"time"

	"github.com/friendsincode/radiostream/internal/models"
)

func TestRuleRating(t *testing.T) {
	settings := DefaultRuleSettings()

	tests := []struct {
		rating int
		want   float64
	}{
		{models.RatingUnrated, 0},
		{models.RatingOne, 2},
		{models.RatingThree, 6},
		{models.RatingFive, 10},
	}

	for _, tt := range tests {
		got, err := ruleRating(models.Track{Rating: tt.rating}, settings, testNow)
		if err != nil {
			t.Fatalf("ruleRating(%d): %v", tt.rating, err)
		}
		if !approx(got, tt.want) {
			t.Errorf("ruleRating(%d) = %v, want %v", tt.rating, got, tt.want)
		}
	}
}

func TestRulePlayLastTime(t *testing.T) {
	settings := DefaultRuleSettings()
	tomorrow := testNow.Add(24 * time.Hour)

	tests := []struct {
		name       string
		lastPlayed *time.Time
		want       float64
	}{
		{"never played", nil, 15},
		{"played today", playedDaysAgo(0), 0},
		{"half way", playedDaysAgo(150), 7.5},
		{"at the cap", playedDaysAgo(300), 15},
		{"past the cap", playedDaysAgo(600), 15},
		{"clock skew", &tomorrow, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rulePlayLastTime(models.Track{Rating: 60, LastPlayed: tt.lastPlayed}, settings, testNow)
			if err != nil {
				t.Fatalf("rulePlayLastTime: %v", err)
			}
			if !approx(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRulePlayLastTimeIsMonotonic(t *testing.T) {
	settings := DefaultRuleSettings()
	prev := -1.0
	for days := 0; days <= settings.PlayLastTimeMaxDays+10; days++ {
		got, err := rulePlayLastTime(models.Track{LastPlayed: playedDaysAgo(days)}, settings, testNow)
		if err != nil {
			t.Fatalf("rulePlayLastTime: %v", err)
		}
		if got < prev {
			t.Fatalf("score dropped from %v to %v at %d days", prev, got, days)
		}
		prev = got
	}
}

func TestRuleNotPlayedTooEarly(t *testing.T) {
	settings := DefaultRuleSettings()

	tests := []struct {
		name       string
		rating     int
		lastPlayed *time.Time
		want       float64
	}{
		{"three stars rested too little", models.RatingThree, playedDaysAgo(10), DisqualifyPenalty},
		{"three stars rested exactly", models.RatingThree, playedDaysAgo(21), 0},
		{"one star rested too little", models.RatingOne, playedDaysAgo(83), DisqualifyPenalty},
		{"five stars rested", models.RatingFive, playedDaysAgo(14), 0},
		{"never played", models.RatingOne, nil, 0},
		{"unrated played today", models.RatingUnrated, playedDaysAgo(0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ruleNotPlayedTooEarly(models.Track{Rating: tt.rating, LastPlayed: tt.lastPlayed}, settings, testNow)
			if err != nil {
				t.Fatalf("ruleNotPlayedTooEarly: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRuleNotPlayedTooEarlyRejectsUnknownRating(t *testing.T) {
	for _, rating := range []int{-20, 1, 55, 120} {
		_, err := ruleNotPlayedTooEarly(models.Track{ID: "x", Rating: rating}, DefaultRuleSettings(), testNow)
		if !errors.Is(err, ErrInvalidRating) {
			t.Errorf("rating %d: expected ErrInvalidRating, got %v", rating, err)
		}
	}
}

func TestRulePlayCount(t *testing.T) {
	settings := DefaultRuleSettings()

	tests := []struct {
		plays int
		want  float64
	}{
		{0, 0},
		{50, -7.5},
		{100, -15},
		{250, -15},
	}

	for _, tt := range tests {
		got, err := rulePlayCount(models.Track{PlayCount: tt.plays}, settings, testNow)
		if err != nil {
			t.Fatalf("rulePlayCount(%d): %v", tt.plays, err)
		}
		if !approx(got, tt.want) {
			t.Errorf("rulePlayCount(%d) = %v, want %v", tt.plays, got, tt.want)
		}
	}
}

func TestRuleNewSong(t *testing.T) {
	settings := DefaultRuleSettings()

	got, _ := ruleNewSong(models.Track{Rating: models.RatingUnrated}, settings, testNow)
	if got != settings.NewSongPower {
		t.Errorf("unrated track scored %v, want %v", got, settings.NewSongPower)
	}
	got, _ = ruleNewSong(models.Track{Rating: models.RatingTwo}, settings, testNow)
	if got != 0 {
		t.Errorf("rated track scored %v, want 0", got)
	}
}

func TestDaysSinceFloors(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{23 * time.Hour, 0},
		{24 * time.Hour, 1},
		{47*time.Hour + 59*time.Minute, 1},
		{-time.Hour, -1},
	}

	for _, tt := range tests {
		last := testNow.Add(-tt.elapsed)
		if got := daysSince(&last, testNow); got != tt.want {
			t.Errorf("daysSince(%v) = %d, want %d", tt.elapsed, got, tt.want)
		}
	}
	if got := daysSince(nil, testNow); got != neverPlayed {
		t.Errorf("daysSince(nil) = %d, want %d", got, neverPlayed)
	}
}
