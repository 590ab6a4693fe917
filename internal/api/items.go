/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/friendsincode/radiostream/internal/events"
	"github.com/friendsincode/radiostream/internal/library"
)

type ratingRequest struct {
	NewRating *int `json:"new_rating"`
}

type playedRequest struct {
	PlayedAt *time.Time `json:"played_at"`
}

func (a *API) handleItemsSearch(w http.ResponseWriter, r *http.Request) {
	tracks, err := a.library.Tracks(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		a.writeItemError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": tracks})
}

func (a *API) handleItemGet(w http.ResponseWriter, r *http.Request) {
	track, err := a.library.Track(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		a.writeItemError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, track)
}

func (a *API) handleItemRating(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.NewRating == nil {
		writeError(w, http.StatusBadRequest, "new_rating_required")
		return
	}

	track, err := a.library.SetRating(r.Context(), chi.URLParam(r, "itemID"), *req.NewRating)
	if err != nil {
		a.writeItemError(w, err)
		return
	}

	a.publish(events.EventTrackRated, events.Payload{"track_id": track.ID, "rating": track.Rating})
	writeJSON(w, http.StatusOK, track)
}

// handleItemPlayed records a play. The body is optional; without one the
// play is recorded at the current time.
func (a *API) handleItemPlayed(w http.ResponseWriter, r *http.Request) {
	var req playedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	at := a.now()
	if req.PlayedAt != nil {
		at = *req.PlayedAt
	}

	track, err := a.library.MarkPlayed(r.Context(), chi.URLParam(r, "itemID"), at)
	if err != nil {
		a.writeItemError(w, err)
		return
	}

	a.publish(events.EventTrackPlayed, events.Payload{
		"track_id":   track.ID,
		"play_count": track.PlayCount,
		"played_at":  at.UTC(),
	})
	writeJSON(w, http.StatusOK, track)
}

func (a *API) writeItemError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, library.ErrTrackNotFound):
		writeError(w, http.StatusNotFound, "track_not_found")
	case errors.Is(err, library.ErrInvalidRating):
		writeError(w, http.StatusBadRequest, "invalid_rating")
	case errors.Is(err, library.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, "invalid_query")
	default:
		a.logger.Error().Err(err).Msg("item operation failed")
		writeError(w, http.StatusInternalServerError, "db_error")
	}
}
