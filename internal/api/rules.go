/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/friendsincode/radiostream/internal/events"
	"github.com/friendsincode/radiostream/internal/smartblock"
)

func (a *API) handleRulesGet(w http.ResponseWriter, r *http.Request) {
	rules, err := a.settings.Rules(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("load rules failed")
		writeError(w, http.StatusInternalServerError, "rules_unavailable")
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

// handleRulesUpdate replaces the whole rule document. Partial documents
// are rejected so no rule silently falls back to a default.
func (a *API) handleRulesUpdate(w http.ResponseWriter, r *http.Request) {
	var values map[string]float64
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	rules, err := smartblock.RuleSettingsFromValues(values)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_rules", "detail": err.Error()})
		return
	}

	if err := a.settings.SaveRules(r.Context(), rules); err != nil {
		if errors.Is(err, smartblock.ErrInvalidSettings) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_rules", "detail": err.Error()})
			return
		}
		a.logger.Error().Err(err).Msg("save rules failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.publish(events.EventRulesUpdated, events.Payload{"rules": rules.Values()})
	writeJSON(w, http.StatusOK, rules)
}
