/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package smartblock

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/radiostream/internal/models"
	"github.com/friendsincode/radiostream/internal/telemetry"
)

// ErrInvalidCount indicates a negative requested playlist length.
var ErrInvalidCount = errors.New("playlist count must not be negative")

// TrackSource resolves a catalog query into candidate tracks. The query
// text is opaque to the engine.
type TrackSource interface {
	Tracks(ctx context.Context, query string) ([]models.Track, error)
}

// Scores maps a rule name to its contribution.
type Scores map[string]float64

// Names returns the rule names in sorted order.
func (s Scores) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Total sums every contribution. Keys are visited in sorted order so the
// float result does not depend on map iteration.
func (s Scores) Total() float64 {
	total := 0.0
	for _, name := range s.Names() {
		total += s[name]
	}
	return total
}

// ScoredTrack pairs a catalog track with the scores of one run.
type ScoredTrack struct {
	Track  models.Track `json:"track"`
	Scores Scores       `json:"scores"`
}

// Engine generates smart playlists from a track source.
type Engine struct {
	source TrackSource
	logger zerolog.Logger
	now    func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for day arithmetic and seeding.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates a smart playlist engine instance.
func New(source TrackSource, logger zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		source: source,
		logger: logger.With().Str("component", "smartblock").Logger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GenerateRequest describes one playlist run.
type GenerateRequest struct {
	Settings RuleSettings
	Count    int
	Shuffle  bool
	Query    string
	Seed     int64 // shuffle seed; zero seeds from the clock
}

// GenerateResult returns the selected tracks in presentation order.
type GenerateResult struct {
	Tracks     []ScoredTrack
	Candidates int
	Penalties  map[string]int
}

// Generate fetches candidates, ranks them and selects the playlist.
func (e *Engine) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "smartblock", "smartblock.Generate")
	defer span.End()

	start := time.Now()
	result, err := e.generate(ctx, req)
	telemetry.PlaylistGenerationDuration.Observe(time.Since(start).Seconds())
	telemetry.PlaylistGenerations.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		telemetry.RecordError(span, err)
		return GenerateResult{}, err
	}

	telemetry.AddSpanAttributes(span, map[string]any{
		"playlist.query":      req.Query,
		"playlist.count":      req.Count,
		"playlist.candidates": result.Candidates,
		"playlist.selected":   len(result.Tracks),
	})
	return result, nil
}

func (e *Engine) generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	if req.Count < 0 {
		return GenerateResult{}, ErrInvalidCount
	}
	if err := req.Settings.Validate(); err != nil {
		return GenerateResult{}, err
	}

	e.logger.Debug().Str("query", req.Query).Msg("fetching tracks")
	tracks, err := e.source.Tracks(ctx, req.Query)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("fetch tracks: %w", err)
	}
	telemetry.PlaylistCandidates.Observe(float64(len(tracks)))

	now := e.now()
	p := newPipeline(req.Settings, req.Count, now, e.logger)
	ranked, err := p.run(tracks)
	if err != nil {
		return GenerateResult{}, err
	}
	for rule, n := range p.penalties {
		telemetry.PlaylistPenalties.WithLabelValues(rule).Add(float64(n))
	}

	seed := req.Seed
	if seed == 0 {
		seed = now.UnixNano()
	}
	selected := selectTracks(ranked, req.Count, req.Shuffle, rand.New(rand.NewSource(seed)))

	e.logger.Info().
		Str("query", req.Query).
		Int("candidates", len(tracks)).
		Int("selected", len(selected)).
		Bool("shuffle", req.Shuffle).
		Msg("playlist generated")

	return GenerateResult{
		Tracks:     selected,
		Candidates: len(tracks),
		Penalties:  p.penalties,
	}, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidRating):
		return "invalid_rating"
	case errors.Is(err, ErrInvalidSettings), errors.Is(err, ErrInvalidCount):
		return "invalid_settings"
	default:
		return "error"
	}
}

// Rank scores tracks and returns the complete ranking after every limiter
// has run. The input slice is not modified.
func Rank(tracks []models.Track, settings RuleSettings, count int, now time.Time) ([]ScoredTrack, error) {
	if count < 0 {
		return nil, ErrInvalidCount
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return newPipeline(settings, count, now, zerolog.Nop()).run(tracks)
}

// pipeline holds the scratch state of a single run.
type pipeline struct {
	settings  RuleSettings
	count     int
	now       time.Time
	logger    zerolog.Logger
	penalties map[string]int
}

func newPipeline(settings RuleSettings, count int, now time.Time, logger zerolog.Logger) *pipeline {
	return &pipeline{
		settings:  settings,
		count:     count,
		now:       now,
		logger:    logger,
		penalties: map[string]int{},
	}
}

func (p *pipeline) run(tracks []models.Track) ([]ScoredTrack, error) {
	rules := Rules()
	ranked := make([]*ScoredTrack, 0, len(tracks))
	for _, track := range tracks {
		scores, err := scoreTrack(track, rules, p.settings, p.now)
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, &ScoredTrack{Track: track, Scores: scores})
	}

	if n := limitNewAlbums(ranked, p.settings, p.logger); n > 0 {
		p.penalties[RuleLimitNewSongAlbums] = n
	}
	rank(ranked)

	for _, filter := range newPostFilters() {
		if n := filter.apply(ranked, p.settings, p.count, p.logger); n > 0 {
			p.penalties[filter.name()] = n
		}
		rank(ranked)
	}

	out := make([]ScoredTrack, len(ranked))
	for i, st := range ranked {
		out[i] = *st
	}
	return out, nil
}

// rank orders tracks by descending total, keeping the current order of
// equal totals.
func rank(ranked []*ScoredTrack) {
	totals := make(map[*ScoredTrack]float64, len(ranked))
	for _, st := range ranked {
		totals[st] = st.Scores.Total()
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return totals[ranked[i]] > totals[ranked[j]]
	})
}

// selectTracks keeps the first count tracks. Shuffling only changes the
// order of the kept tracks.
func selectTracks(ranked []ScoredTrack, count int, shuffle bool, rng *rand.Rand) []ScoredTrack {
	if count > len(ranked) {
		count = len(ranked)
	}
	selected := make([]ScoredTrack, count)
	copy(selected, ranked[:count])
	if shuffle {
		rng.Shuffle(len(selected), func(i, j int) {
			selected[i], selected[j] = selected[j], selected[i]
		})
	}
	return selected
}
