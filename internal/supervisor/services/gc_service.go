// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ValueLogCollector reclaims value log space. Satisfied by
// *encoder.BadgerStore.
type ValueLogCollector interface {
	RunGC(discardRatio float64) error
}

// EncoderGCService periodically garbage collects the encoder extension
// store. GC failures are logged and retried on the next tick; they never
// restart the service.
type EncoderGCService struct {
	store        ValueLogCollector
	interval     time.Duration
	discardRatio float64
	logger       zerolog.Logger
	name         string
}

// NewEncoderGCService creates the service. Non-positive settings fall back
// to 10 minutes and a 0.5 discard ratio.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEncoderGCService(store ValueLogCollector, interval time.Duration, discardRatio float64, logger zerolog.Logger) *EncoderGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if discardRatio <= 0 || discardRatio >= 1 {
		discardRatio = 0.5
	}
	return &EncoderGCService{
		store:        store,
		interval:     interval,
		discardRatio: discardRatio,
		logger:       logger.With().Str("service", "encoder-gc").Logger(),
		name:         "encoder-gc",
	}
}

// Serve implements suture.Service.
func (s *EncoderGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Debug().Dur("interval", s.interval).Msg("Encoder store GC running")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := s.store.RunGC(s.discardRatio); err != nil {
				s.logger.Warn().Err(err).Msg("Encoder store GC failed")
				continue
			}
			s.logger.Debug().Dur("duration", time.Since(start)).Msg("Encoder store GC complete")
		}
	}
}

func (s *EncoderGCService) String() string {
	return s.name
}
