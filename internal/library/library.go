/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package library stores the track catalog and resolves playlist queries
// against it.
package library

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/friendsincode/radiostream/internal/models"
)

var (
	// ErrTrackNotFound indicates an unknown track id.
	ErrTrackNotFound = errors.New("track not found")

	// ErrInvalidRating indicates a rating outside the rating buckets.
	ErrInvalidRating = errors.New("rating must be one of 0, 20, 40, 60, 80, 100")
)

const importBatchSize = 100

// Library is the gorm-backed track catalog.
type Library struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// New creates a catalog over an already migrated database.
func New(db *gorm.DB, logger zerolog.Logger) *Library {
	return &Library{
		db:     db,
		logger: logger.With().Str("component", "library").Logger(),
	}
}

// Tracks returns the tracks matching a playlist query in a fixed order.
// An empty query selects the whole catalog.
func (l *Library) Tracks(ctx context.Context, query string) ([]models.Track, error) {
	terms, err := ParseQuery(query)
	if err != nil {
		return nil, err
	}

	q := l.db.WithContext(ctx).Model(&models.Track{})
	for _, t := range terms {
		q = applyTerm(q, t)
	}

	var tracks []models.Track
	if err := q.Order("artist").Order("album").Order("title").Order("id").Find(&tracks).Error; err != nil {
		return nil, fmt.Errorf("query tracks: %w", err)
	}

	l.logger.Debug().Str("query", query).Int("terms", len(terms)).Int("tracks", len(tracks)).Msg("catalog queried")
	return tracks, nil
}

// Track loads one track by id.
func (l *Library) Track(ctx context.Context, id string) (models.Track, error) {
	var track models.Track
	err := l.db.WithContext(ctx).First(&track, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Track{}, ErrTrackNotFound
	}
	if err != nil {
		return models.Track{}, fmt.Errorf("load track: %w", err)
	}
	return track, nil
}

// SetRating stores a new rating for a track.
func (l *Library) SetRating(ctx context.Context, id string, rating int) (models.Track, error) {
	if !models.IsValidRating(rating) {
		return models.Track{}, fmt.Errorf("%w: got %d", ErrInvalidRating, rating)
	}

	res := l.db.WithContext(ctx).Model(&models.Track{}).Where("id = ?", id).Update("rating", rating)
	if res.Error != nil {
		return models.Track{}, fmt.Errorf("update rating: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.Track{}, ErrTrackNotFound
	}

	l.logger.Info().Str("track_id", id).Int("rating", rating).Msg("track rated")
	return l.Track(ctx, id)
}

// MarkPlayed records a play at the given time and bumps the play count.
func (l *Library) MarkPlayed(ctx context.Context, id string, at time.Time) (models.Track, error) {
	at = at.UTC()
	res := l.db.WithContext(ctx).Model(&models.Track{}).Where("id = ?", id).Updates(map[string]any{
		"play_count":  gorm.Expr("play_count + ?", 1),
		"last_played": at,
	})
	if res.Error != nil {
		return models.Track{}, fmt.Errorf("mark played: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.Track{}, ErrTrackNotFound
	}

	l.logger.Debug().Str("track_id", id).Time("at", at).Msg("track played")
	return l.Track(ctx, id)
}

// Upsert inserts or replaces tracks. Tracks without an id get a fresh
// uuid. The whole batch is rejected if any rating is invalid.
func (l *Library) Upsert(ctx context.Context, tracks []models.Track) ([]models.Track, error) {
	if len(tracks) == 0 {
		return nil, nil
	}

	out := make([]models.Track, len(tracks))
	for i, t := range tracks {
		if !models.IsValidRating(t.Rating) {
			return nil, fmt.Errorf("%w: track %q has %d", ErrInvalidRating, t.String(), t.Rating)
		}
		if t.PlayCount < 0 {
			t.PlayCount = 0
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		out[i] = t
	}

	err := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(&out, importBatchSize).Error
	if err != nil {
		return nil, fmt.Errorf("upsert tracks: %w", err)
	}

	l.logger.Info().Int("tracks", len(out)).Msg("catalog updated")
	return out, nil
}

// Count returns the number of tracks in the catalog.
func (l *Library) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := l.db.WithContext(ctx).Model(&models.Track{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count tracks: %w", err)
	}
	return n, nil
}
