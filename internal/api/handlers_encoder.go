// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// EncoderTable is the debug view of one categorical field.
type EncoderTable struct {
	Field    string `json:"field"`
	Size     int    `json:"size"`
	BaseSize int    `json:"base_size"`
	// Values[i] is the value encoded as i. Entries past BaseSize were
	// assigned at runtime.
	Values []string `json:"values"`
}

// EncoderTable lists the current codes for district, taluq or season.
func (h *Handler) EncoderTable(w http.ResponseWriter, r *http.Request) {
	if h.engine == nil {
		respondError(w, r, http.StatusServiceUnavailable, "NOT_READY", msgEngineNotLoaded, nil)
		return
	}

	field := strings.ToLower(chi.URLParam(r, "field"))
	enc := h.engine.Encoder()
	if !enc.HasField(field) {
		respondError(w, r, http.StatusNotFound, "UNKNOWN_FIELD", "Unknown encoder field", map[string]interface{}{
			"field":  sanitizeLogValue(field),
			"fields": enc.Fields(),
		})
		return
	}

	values := enc.Snapshot(field)
	respondJSON(w, r, http.StatusOK, EncoderTable{
		Field:    field,
		Size:     len(values),
		BaseSize: enc.BaseSize(field),
		Values:   values,
	})
}
