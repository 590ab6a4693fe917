/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package smartblock

import (
	"math"
	"sort"

	"github.com/rs/zerolog"
)

// quota converts a percentage of the requested count into a track cap.
func quota(count int, percent float64) int {
	return int(math.Round(float64(count) * percent / 100))
}

// limitNewAlbums keeps only the most played new albums and disqualifies
// every track of the others. It looks at album membership, not at rank.
func limitNewAlbums(ranked []*ScoredTrack, settings RuleSettings, logger zerolog.Logger) int {
	type albumGroup struct {
		key       string
		order     int
		isNew     bool
		maxPlays  int
		memberIdx []int
	}

	groups := map[string]*albumGroup{}
	var ordered []*albumGroup
	for idx, st := range ranked {
		key := st.Track.AlbumKey()
		g, ok := groups[key]
		if !ok {
			g = &albumGroup{key: key, order: len(ordered), maxPlays: st.Track.PlayCount}
			groups[key] = g
			ordered = append(ordered, g)
		}
		if st.Track.IsNew() {
			g.isNew = true
		}
		if st.Track.PlayCount > g.maxPlays {
			g.maxPlays = st.Track.PlayCount
		}
		g.memberIdx = append(g.memberIdx, idx)
	}

	var newAlbums []*albumGroup
	for _, g := range ordered {
		if g.isNew {
			newAlbums = append(newAlbums, g)
		}
	}
	if len(newAlbums) <= settings.LimitNewAlbumsCount {
		return 0
	}

	sort.SliceStable(newAlbums, func(i, j int) bool {
		return newAlbums[i].maxPlays > newAlbums[j].maxPlays
	})

	penalized := 0
	for _, g := range newAlbums[settings.LimitNewAlbumsCount:] {
		for _, idx := range g.memberIdx {
			ranked[idx].Scores[RuleLimitNewSongAlbums] = DisqualifyPenalty
			penalized++
		}
		logger.Debug().Str("album", g.key).Int("tracks", len(g.memberIdx)).Msg("new album held back")
	}
	return penalized
}

// postFilter walks the current ranking and penalizes tracks past a quota.
// Each value is used for exactly one pass.
type postFilter interface {
	name() string
	apply(ranked []*ScoredTrack, settings RuleSettings, count int, logger zerolog.Logger) int
}

// newPostFilters returns fresh filters in application order.
func newPostFilters() []postFilter {
	return []postFilter{
		&lowRatingLimit{},
		&artistLimit{counts: map[string]int{}},
		&newSongLimit{},
	}
}

// lowRatingLimit caps rated tracks at or below the low-rating threshold.
// Unrated tracks are left to newSongLimit.
type lowRatingLimit struct {
	seen int
}

func (f *lowRatingLimit) name() string { return RuleLimitLowRating }

func (f *lowRatingLimit) apply(ranked []*ScoredTrack, settings RuleSettings, count int, logger zerolog.Logger) int {
	maxCount := quota(count, settings.LimitLowRatingPercent)
	penalized := 0
	for _, st := range ranked {
		rating := st.Track.Rating
		if rating <= 0 || rating > settings.LimitLowRatingFrom {
			continue
		}
		f.seen++
		if f.seen > maxCount {
			st.Scores[f.name()] = DisqualifyPenalty
			penalized++
			logger.Debug().Str("rule", f.name()).Str("track", st.Track.String()).Msg("penalty applied")
		}
	}
	return penalized
}

// artistLimit caps repeats of one artist. The first appearance is free and
// the same quota applies to every artist separately.
type artistLimit struct {
	counts map[string]int
}

func (f *artistLimit) name() string { return RuleLimitArtists }

func (f *artistLimit) apply(ranked []*ScoredTrack, settings RuleSettings, count int, logger zerolog.Logger) int {
	maxCount := quota(count, settings.LimitArtistsPercent)
	penalized := 0
	for _, st := range ranked {
		artist := st.Track.Artist
		if _, ok := f.counts[artist]; !ok {
			f.counts[artist] = 1
			continue
		}
		f.counts[artist]++
		if f.counts[artist] > maxCount {
			st.Scores[f.name()] = DisqualifyPenalty
			penalized++
			logger.Debug().Str("rule", f.name()).Str("track", st.Track.String()).Msg("penalty applied")
		}
	}
	return penalized
}

// newSongLimit caps unrated tracks.
type newSongLimit struct {
	seen int
}

func (f *newSongLimit) name() string { return RuleLimitNewSongs }

func (f *newSongLimit) apply(ranked []*ScoredTrack, settings RuleSettings, count int, logger zerolog.Logger) int {
	maxCount := quota(count, settings.LimitNewSongsPercent)
	penalized := 0
	for _, st := range ranked {
		if !st.Track.IsNew() {
			continue
		}
		f.seen++
		if f.seen > maxCount {
			st.Scores[f.name()] = DisqualifyPenalty
			penalized++
			logger.Debug().Str("rule", f.name()).Str("track", st.Track.String()).Msg("penalty applied")
		}
	}
	return penalized
}
