/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/friendsincode/radiostream/internal/events"
	"github.com/friendsincode/radiostream/internal/library"
	"github.com/friendsincode/radiostream/internal/models"
	"github.com/friendsincode/radiostream/internal/settings"
	"github.com/friendsincode/radiostream/internal/smartblock"
)

type playlistSaveRequest struct {
	Query string `json:"query"`
}

type scoredTrackResponse struct {
	models.Track
	Scores smartblock.Scores `json:"scores"`
	Total  float64           `json:"total"`
}

type playlistTracksResponse struct {
	Playlist   string                `json:"playlist"`
	Query      string                `json:"query"`
	Count      int                   `json:"count"`
	Shuffle    bool                  `json:"shuffle"`
	Candidates int                   `json:"candidates"`
	Penalties  map[string]int        `json:"penalties"`
	Tracks     []scoredTrackResponse `json:"tracks"`
}

func (a *API) handlePlaylistsList(w http.ResponseWriter, r *http.Request) {
	playlists, err := a.settings.Playlists(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("list playlists failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"playlists": playlists})
}

func (a *API) handlePlaylistGet(w http.ResponseWriter, r *http.Request) {
	playlist, err := a.settings.Playlist(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		a.writePlaylistError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (a *API) handlePlaylistSave(w http.ResponseWriter, r *http.Request) {
	var req playlistSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	playlist, err := a.settings.SavePlaylist(r.Context(), chi.URLParam(r, "name"), req.Query)
	if err != nil {
		a.writePlaylistError(w, err)
		return
	}

	a.publish(events.EventPlaylistSaved, events.Payload{"playlist": playlist.Name, "query": playlist.Query})
	writeJSON(w, http.StatusOK, playlist)
}

func (a *API) handlePlaylistDelete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := a.settings.DeletePlaylist(r.Context(), name); err != nil {
		a.writePlaylistError(w, err)
		return
	}

	a.publish(events.EventPlaylistDeleted, events.Payload{"playlist": name})
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handlePlaylistTracks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	count := a.defaultCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > maxCount {
			writeError(w, http.StatusBadRequest, "invalid_count")
			return
		}
		count = n
	}

	shuffle := true
	if raw := r.URL.Query().Get("shuffle"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_shuffle")
			return
		}
		shuffle = b
	}

	var seed int64
	if raw := r.URL.Query().Get("seed"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_seed")
			return
		}
		seed = n
	}

	playlist, err := a.settings.Playlist(ctx, name)
	if err != nil {
		a.writePlaylistError(w, err)
		return
	}
	rules, err := a.settings.Rules(ctx)
	if err != nil {
		a.logger.Error().Err(err).Msg("load rules failed")
		writeError(w, http.StatusInternalServerError, "rules_unavailable")
		return
	}

	result, err := a.engine.Generate(ctx, smartblock.GenerateRequest{
		Settings: rules,
		Count:    count,
		Shuffle:  shuffle,
		Query:    playlist.Query,
		Seed:     seed,
	})
	if err != nil {
		switch {
		case errors.Is(err, library.ErrInvalidQuery):
			writeError(w, http.StatusBadRequest, "invalid_query")
		case errors.Is(err, smartblock.ErrInvalidRating):
			a.logger.Warn().Err(err).Str("playlist", name).Msg("catalog holds an invalid rating")
			writeError(w, http.StatusUnprocessableEntity, "invalid_rating_in_catalog")
		default:
			a.logger.Error().Err(err).Str("playlist", name).Msg("generate playlist failed")
			writeError(w, http.StatusInternalServerError, "generate_failed")
		}
		return
	}

	resp := playlistTracksResponse{
		Playlist:   playlist.Name,
		Query:      playlist.Query,
		Count:      count,
		Shuffle:    shuffle,
		Candidates: result.Candidates,
		Penalties:  result.Penalties,
		Tracks:     make([]scoredTrackResponse, len(result.Tracks)),
	}
	ids := make([]string, len(result.Tracks))
	for i, st := range result.Tracks {
		resp.Tracks[i] = scoredTrackResponse{Track: st.Track, Scores: st.Scores, Total: st.Scores.Total()}
		ids[i] = st.Track.ID
	}

	a.publish(events.EventPlaylistGenerated, events.Payload{
		"playlist":   playlist.Name,
		"count":      count,
		"candidates": result.Candidates,
		"track_ids":  ids,
	})
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) writePlaylistError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, settings.ErrPlaylistNotFound):
		writeError(w, http.StatusNotFound, "playlist_not_found")
	case errors.Is(err, settings.ErrPlaylistProtected):
		writeError(w, http.StatusConflict, "playlist_protected")
	case errors.Is(err, settings.ErrInvalidPlaylist):
		writeError(w, http.StatusBadRequest, "invalid_playlist")
	default:
		a.logger.Error().Err(err).Msg("playlist operation failed")
		writeError(w, http.StatusInternalServerError, "db_error")
	}
}
