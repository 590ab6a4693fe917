/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/friendsincode/radiostream/internal/events"
	"github.com/friendsincode/radiostream/internal/library"
	"github.com/friendsincode/radiostream/internal/settings"
	"github.com/friendsincode/radiostream/internal/smartblock"
)

// maxCount bounds the playlist length a client may request.
const maxCount = 1000

// API exposes HTTP handlers.
type API struct {
	library      *library.Library
	settings     *settings.Store
	engine       *smartblock.Engine
	bus          events.Publisher
	defaultCount int
	now          func() time.Time
	logger       zerolog.Logger
}

// Option customizes an API.
type Option func(*API)

// WithClock overrides the time recorded for plays.
func WithClock(now func() time.Time) Option {
	return func(a *API) { a.now = now }
}

// New creates the API router wrapper.
func New(lib *library.Library, store *settings.Store, engine *smartblock.Engine, bus events.Publisher, defaultCount int, logger zerolog.Logger, opts ...Option) *API {
	a := &API{
		library:      lib,
		settings:     store,
		engine:       engine,
		bus:          bus,
		defaultCount: defaultCount,
		now:          time.Now,
		logger:       logger.With().Str("component", "api").Logger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Routes mounts the API under /api/v1.
func (a *API) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", a.handleHealth)

		r.Route("/playlists", func(r chi.Router) {
			r.Get("/", a.handlePlaylistsList)
			r.Route("/{name}", func(r chi.Router) {
				r.Get("/", a.handlePlaylistGet)
				r.Put("/", a.handlePlaylistSave)
				r.Delete("/", a.handlePlaylistDelete)
				r.Get("/tracks", a.handlePlaylistTracks)
			})
		})

		r.Route("/rules", func(r chi.Router) {
			r.Get("/", a.handleRulesGet)
			r.Put("/", a.handleRulesUpdate)
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", a.handleItemsSearch)
			r.Route("/{itemID}", func(r chi.Router) {
				r.Get("/", a.handleItemGet)
				r.Put("/rating", a.handleItemRating)
				r.Post("/last-played", a.handleItemPlayed)
			})
		})
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	tracks, err := a.library.Count(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("health check failed")
		writeError(w, http.StatusServiceUnavailable, "db_unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "tracks": tracks})
}

func (a *API) publish(eventType events.EventType, payload events.Payload) {
	if a.bus != nil {
		a.bus.Publish(eventType, payload)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
