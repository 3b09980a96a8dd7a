// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package api

import (
	"time"

	"github.com/tomtom215/cropwise/internal/recommend"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes = 1 << 20

// Handler serves the HTTP endpoints.
type Handler struct {
	engine       *recommend.Engine
	version      string
	maxBodyBytes int64
	started      time.Time
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithVersion sets the version reported by the root and readiness endpoints.
func WithVersion(v string) HandlerOption {
	return func(h *Handler) { h.version = v }
}

// WithMaxBodyBytes caps /recommend request bodies.
func WithMaxBodyBytes(n int64) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

// NewHandler creates a handler. A nil engine keeps /health/ready failing
// and /recommend answering 503.
func NewHandler(engine *recommend.Engine, opts ...HandlerOption) *Handler {
	h := &Handler{
		engine:       engine,
		version:      "dev",
		maxBodyBytes: DefaultMaxBodyBytes,
		started:      time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
