/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package smartblock

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/friendsincode/radiostream/internal/models"
)

// ErrInvalidRating indicates a track whose rating is outside the known buckets.
var ErrInvalidRating = errors.New("invalid rating")

// DisqualifyPenalty sinks a track to the bottom of the ranking.
const DisqualifyPenalty = -1000.0

// Score keys written by the scoring rules.
const (
	RuleRating            = "rating"
	RulePlayLastTime      = "play_last_time"
	RuleNotPlayedTooEarly = "not_played_too_early"
	RulePlayCount         = "play_count"
	RuleNewSong           = "new_song"
)

// Score keys written by the batch limiters.
const (
	RuleLimitNewSongAlbums = "limit_new_song_albums"
	RuleLimitLowRating     = "limit_low_rating"
	RuleLimitArtists       = "limit_artists"
	RuleLimitNewSongs      = "limit_new_songs"
)

// neverPlayed stands in for the day count of a track without play history.
const neverPlayed = math.MaxInt

// Rule scores one track in isolation.
type Rule struct {
	Name  string
	Score func(track models.Track, settings RuleSettings, now time.Time) (float64, error)
}

// Rules returns the scoring rules applied to every track.
func Rules() []Rule {
	return []Rule{
		{Name: RuleRating, Score: ruleRating},
		{Name: RuleNotPlayedTooEarly, Score: ruleNotPlayedTooEarly},
		{Name: RulePlayCount, Score: rulePlayCount},
		{Name: RuleNewSong, Score: ruleNewSong},
		{Name: RulePlayLastTime, Score: rulePlayLastTime},
	}
}

// scoreTrack runs every rule and keeps each contribution under its own key.
func scoreTrack(track models.Track, rules []Rule, settings RuleSettings, now time.Time) (Scores, error) {
	scores := make(Scores, len(rules))
	for _, rule := range rules {
		value, err := rule.Score(track, settings, now)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.Name, err)
		}
		scores[rule.Name] = value
	}
	return scores, nil
}

func ruleRating(track models.Track, settings RuleSettings, _ time.Time) (float64, error) {
	return float64(track.Rating) / models.MaxRating * settings.RatingPower, nil
}

// rulePlayLastTime rewards tracks that have rested longer.
func rulePlayLastTime(track models.Track, settings RuleSettings, now time.Time) (float64, error) {
	maxDays := settings.PlayLastTimeMaxDays
	days := max(0, min(daysSince(track.LastPlayed, now), maxDays))
	return float64(days) / float64(maxDays) * settings.PlayLastTimePower, nil
}

func ruleNotPlayedTooEarly(track models.Track, settings RuleSettings, now time.Time) (float64, error) {
	minDays, ok := settings.MinRestDays(track.Rating)
	if !ok {
		return 0, fmt.Errorf("%w: %d on track %s (%s)", ErrInvalidRating, track.Rating, track.ID, track)
	}
	if daysSince(track.LastPlayed, now) < minDays {
		return settings.UnratedPower, nil
	}
	return 0, nil
}

func rulePlayCount(track models.Track, settings RuleSettings, _ time.Time) (float64, error) {
	maxCount := settings.PlayCountMax
	count := min(max(track.PlayCount, 0), maxCount)
	return float64(count) / float64(maxCount) * settings.PlayCountPower, nil
}

func ruleNewSong(track models.Track, settings RuleSettings, _ time.Time) (float64, error) {
	if track.IsNew() {
		return settings.NewSongPower, nil
	}
	return 0, nil
}

// daysSince counts whole days elapsed since lastPlayed.
func daysSince(lastPlayed *time.Time, now time.Time) int {
	if lastPlayed == nil || lastPlayed.IsZero() {
		return neverPlayed
	}
	return int(math.Floor(now.Sub(*lastPlayed).Hours() / 24))
}
