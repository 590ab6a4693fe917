/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package settings persists playlist definitions and rule settings.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/friendsincode/radiostream/internal/cache"
	"github.com/friendsincode/radiostream/internal/library"
	"github.com/friendsincode/radiostream/internal/models"
	"github.com/friendsincode/radiostream/internal/smartblock"
)

// DefaultPlaylistName names the built-in playlist over the whole catalog.
const DefaultPlaylistName = "All music"

const rulesRecordID = "default"

var (
	// ErrPlaylistNotFound indicates an unknown playlist name.
	ErrPlaylistNotFound = errors.New("playlist not found")

	// ErrPlaylistProtected indicates an attempt to change a built-in playlist.
	ErrPlaylistProtected = errors.New("playlist is built in")

	// ErrInvalidPlaylist indicates a playlist definition that cannot be stored.
	ErrInvalidPlaylist = errors.New("invalid playlist")
)

// Settings is the complete persisted configuration.
type Settings struct {
	Playlists []models.Playlist
	Rules     smartblock.RuleSettings
}

// Store reads and writes settings with an optional read-through cache.
type Store struct {
	db     *gorm.DB
	cache  *cache.Cache
	logger zerolog.Logger
}

// NewStore creates a settings store. c may be nil.
func NewStore(db *gorm.DB, c *cache.Cache, logger zerolog.Logger) *Store {
	return &Store{
		db:     db,
		cache:  c,
		logger: logger.With().Str("component", "settings").Logger(),
	}
}

// Load returns every playlist and the rule settings, seeding the built-in
// playlist and the stock rules on first use.
func (s *Store) Load(ctx context.Context) (Settings, error) {
	if err := s.EnsureDefaults(ctx); err != nil {
		return Settings{}, err
	}

	playlists, err := s.Playlists(ctx)
	if err != nil {
		return Settings{}, err
	}
	rules, err := s.Rules(ctx)
	if err != nil {
		return Settings{}, err
	}
	return Settings{Playlists: playlists, Rules: rules}, nil
}

// EnsureDefaults inserts the built-in playlist and default rules when absent.
func (s *Store) EnsureDefaults(ctx context.Context) error {
	db := s.db.WithContext(ctx)

	builtin := models.Playlist{Name: DefaultPlaylistName, Query: "", CanDelete: false}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&builtin).Error; err != nil {
		return fmt.Errorf("seed default playlist: %w", err)
	}

	record := models.RuleSettingsRecord{ID: rulesRecordID, Values: smartblock.DefaultRuleSettings().Values()}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		return fmt.Errorf("seed default rules: %w", err)
	}
	return nil
}

// Rules returns the stored rule settings.
func (s *Store) Rules(ctx context.Context) (smartblock.RuleSettings, error) {
	if values, ok := s.cache.GetRules(ctx); ok {
		rules, err := smartblock.RuleSettingsFromValues(values)
		if err == nil {
			return rules, nil
		}
		s.logger.Warn().Err(err).Msg("ignoring cached rules")
	}

	var record models.RuleSettingsRecord
	err := s.db.WithContext(ctx).First(&record, "id = ?", rulesRecordID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.EnsureDefaults(ctx); err != nil {
			return smartblock.RuleSettings{}, err
		}
		return smartblock.DefaultRuleSettings(), nil
	}
	if err != nil {
		return smartblock.RuleSettings{}, fmt.Errorf("load rules: %w", err)
	}

	rules, err := smartblock.RuleSettingsFromValues(record.Values)
	if err != nil {
		return smartblock.RuleSettings{}, fmt.Errorf("stored rules: %w", err)
	}
	if err := s.cache.SetRules(ctx, record.Values); err != nil {
		s.logger.Debug().Err(err).Msg("cache rules")
	}
	return rules, nil
}

// SaveRules validates and replaces the stored rule settings.
func (s *Store) SaveRules(ctx context.Context, rules smartblock.RuleSettings) error {
	if err := rules.Validate(); err != nil {
		return err
	}

	record := models.RuleSettingsRecord{ID: rulesRecordID, Values: rules.Values()}
	if err := s.db.WithContext(ctx).Save(&record).Error; err != nil {
		return fmt.Errorf("save rules: %w", err)
	}
	if err := s.cache.InvalidateRules(ctx); err != nil {
		s.logger.Debug().Err(err).Msg("invalidate cached rules")
	}

	s.logger.Info().Msg("rule settings saved")
	return nil
}

// Playlists lists the playlists, built-in ones first.
func (s *Store) Playlists(ctx context.Context) ([]models.Playlist, error) {
	if cached, ok := s.cache.GetPlaylistList(ctx); ok {
		out := make([]models.Playlist, len(cached))
		for i, p := range cached {
			out[i] = fromCached(p)
		}
		return out, nil
	}

	var playlists []models.Playlist
	if err := s.db.WithContext(ctx).Order("can_delete").Order("name").Find(&playlists).Error; err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}

	cached := make([]cache.CachedPlaylist, len(playlists))
	for i, p := range playlists {
		cached[i] = toCached(p)
	}
	if err := s.cache.SetPlaylistList(ctx, cached); err != nil {
		s.logger.Debug().Err(err).Msg("cache playlist list")
	}
	return playlists, nil
}

// Playlist loads one playlist by name.
func (s *Store) Playlist(ctx context.Context, name string) (models.Playlist, error) {
	if cached, ok := s.cache.GetPlaylist(ctx, name); ok {
		return fromCached(*cached), nil
	}

	var playlist models.Playlist
	err := s.db.WithContext(ctx).First(&playlist, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Playlist{}, fmt.Errorf("%w: %s", ErrPlaylistNotFound, name)
	}
	if err != nil {
		return models.Playlist{}, fmt.Errorf("load playlist: %w", err)
	}

	if err := s.cache.SetPlaylist(ctx, toCached(playlist)); err != nil {
		s.logger.Debug().Err(err).Msg("cache playlist")
	}
	return playlist, nil
}

// SavePlaylist creates or updates a user playlist. The query must parse.
func (s *Store) SavePlaylist(ctx context.Context, name, query string) (models.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Playlist{}, fmt.Errorf("%w: name is required", ErrInvalidPlaylist)
	}
	if _, err := library.ParseQuery(query); err != nil {
		return models.Playlist{}, fmt.Errorf("%w: %v", ErrInvalidPlaylist, err)
	}

	existing, err := s.Playlist(ctx, name)
	switch {
	case err == nil && !existing.CanDelete:
		return models.Playlist{}, fmt.Errorf("%w: %s", ErrPlaylistProtected, name)
	case err != nil && !errors.Is(err, ErrPlaylistNotFound):
		return models.Playlist{}, err
	}

	playlist := models.Playlist{Name: name, Query: query, CanDelete: true}
	upsert := clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"query", "can_delete", "updated_at"}),
	}
	if err := s.db.WithContext(ctx).Clauses(upsert).Create(&playlist).Error; err != nil {
		return models.Playlist{}, fmt.Errorf("save playlist: %w", err)
	}
	if err := s.cache.InvalidatePlaylist(ctx, name); err != nil {
		s.logger.Debug().Err(err).Msg("invalidate cached playlist")
	}

	s.logger.Info().Str("playlist", name).Str("query", query).Msg("playlist saved")
	return playlist, nil
}

// DeletePlaylist removes a user playlist.
func (s *Store) DeletePlaylist(ctx context.Context, name string) error {
	playlist, err := s.Playlist(ctx, name)
	if err != nil {
		return err
	}
	if !playlist.CanDelete {
		return fmt.Errorf("%w: %s", ErrPlaylistProtected, name)
	}

	if err := s.db.WithContext(ctx).Delete(&models.Playlist{}, "name = ?", name).Error; err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	if err := s.cache.InvalidatePlaylist(ctx, name); err != nil {
		s.logger.Debug().Err(err).Msg("invalidate cached playlist")
	}

	s.logger.Info().Str("playlist", name).Msg("playlist deleted")
	return nil
}

func toCached(p models.Playlist) cache.CachedPlaylist {
	return cache.CachedPlaylist{Name: p.Name, Query: p.Query, CanDelete: p.CanDelete}
}

func fromCached(p cache.CachedPlaylist) models.Playlist {
	return models.Playlist{Name: p.Name, Query: p.Query, CanDelete: p.CanDelete}
}
