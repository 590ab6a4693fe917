/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package smartblock

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestDefaultRuleSettingsAreValid(t *testing.T) {
	if err := DefaultRuleSettings().Validate(); err != nil {
		t.Fatalf("default settings rejected: %v", err)
	}
}

func TestRuleSettingsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RuleSettings)
		field  string
	}{
		{"zero max days", func(s *RuleSettings) { s.PlayLastTimeMaxDays = 0 }, "play_last_time_max_days"},
		{"zero play count max", func(s *RuleSettings) { s.PlayCountMax = 0 }, "play_count_max"},
		{"negative rest days", func(s *RuleSettings) { s.Star2MinDays = -1 }, "star_2_min_days"},
		{"percent over 100", func(s *RuleSettings) { s.LimitArtistsPercent = 120 }, "limit_artists_percent"},
		{"negative percent", func(s *RuleSettings) { s.LimitNewSongsPercent = -5 }, "limit_new_songs_percent"},
		{"negative album count", func(s *RuleSettings) { s.LimitNewAlbumsCount = -1 }, "limit_new_albums_count"},
		{"NaN power", func(s *RuleSettings) { s.RatingPower = math.NaN() }, "rating_power"},
		{"infinite power", func(s *RuleSettings) { s.NewSongPower = math.Inf(1) }, "new_song_power"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultRuleSettings()
			tt.mutate(&s)
			err := s.Validate()
			if !errors.Is(err, ErrInvalidSettings) {
				t.Fatalf("expected ErrInvalidSettings, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name %s", err, tt.field)
			}
		})
	}
}

func TestMinRestDays(t *testing.T) {
	s := DefaultRuleSettings()
	want := map[int]int{0: 0, 20: 84, 40: 42, 60: 21, 80: 16, 100: 14}
	for rating, days := range want {
		got, ok := s.MinRestDays(rating)
		if !ok || got != days {
			t.Errorf("MinRestDays(%d) = %d, %v; want %d", rating, got, ok, days)
		}
	}
	if _, ok := s.MinRestDays(55); ok {
		t.Error("MinRestDays(55) should not be known")
	}
}

func TestRuleSettingsValuesRoundTrip(t *testing.T) {
	s := DefaultRuleSettings()
	s.RatingPower = 12.5
	s.LimitNewAlbumsCount = 3

	values := s.Values()
	if len(values) != len(SettingKeys()) {
		t.Fatalf("Values() has %d keys, want %d", len(values), len(SettingKeys()))
	}
	if values["rating_power"] != 12.5 {
		t.Fatalf("rating_power = %v", values["rating_power"])
	}

	got, err := RuleSettingsFromValues(values)
	if err != nil {
		t.Fatalf("RuleSettingsFromValues: %v", err)
	}
	if got != s {
		t.Fatalf("round trip = %+v, want %+v", got, s)
	}
}

func TestRuleSettingsFromValuesRejectsIncompleteDocuments(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		values := DefaultRuleSettings().Values()
		delete(values, "star_3_min_days")

		_, err := RuleSettingsFromValues(values)
		if !errors.Is(err, ErrInvalidSettings) {
			t.Fatalf("expected ErrInvalidSettings, got %v", err)
		}
		if !strings.Contains(err.Error(), "star_3_min_days") {
			t.Errorf("error %q does not name the missing key", err)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		values := DefaultRuleSettings().Values()
		values["tempo_power"] = 1

		if _, err := RuleSettingsFromValues(values); !errors.Is(err, ErrInvalidSettings) {
			t.Fatalf("expected ErrInvalidSettings, got %v", err)
		}
	})

	t.Run("fractional day count", func(t *testing.T) {
		values := DefaultRuleSettings().Values()
		values["star_1_min_days"] = 1.5

		if _, err := RuleSettingsFromValues(values); !errors.Is(err, ErrInvalidSettings) {
			t.Fatalf("expected ErrInvalidSettings, got %v", err)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		values := DefaultRuleSettings().Values()
		values["limit_low_rating_percent"] = 101

		if _, err := RuleSettingsFromValues(values); !errors.Is(err, ErrInvalidSettings) {
			t.Fatalf("expected ErrInvalidSettings, got %v", err)
		}
	})
}
