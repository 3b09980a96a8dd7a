// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the readiness payload.
type HealthStatus struct {
	Status     string  `json:"status"`
	Version    string  `json:"version"`
	Classifier string  `json:"classifier,omitempty"`
	Crops      int     `json:"crops"`
	Regions    int     `json:"regions"`
	Uptime     float64 `json:"uptime_seconds"`
}

// Root reports that the API is up.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{
		"message": "API is working!",
		"version": h.version,
	})
}

// HealthLive answers 200 while the process can serve HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "alive"})
}

// HealthReady answers 200 once the engine and reference data are loaded.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:  "not_ready",
		Version: h.version,
		Uptime:  time.Since(h.started).Seconds(),
	}
	if h.engine == nil {
		respondError(w, r, http.StatusServiceUnavailable, "NOT_READY", msgEngineNotLoaded, map[string]interface{}{
			"health": status,
		})
		return
	}

	status.Status = "ready"
	status.Classifier = h.engine.ClassifierKind()
	status.Crops = len(h.engine.Store().Crops())
	status.Regions = h.engine.Store().RegionCount()
	respondJSON(w, r, http.StatusOK, status)
}
