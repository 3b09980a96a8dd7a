// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package recommend

import (
	"fmt"

	"github.com/tomtom215/cropwise/internal/ranking"
)

// NoCandidatesError means nothing could be ranked for the request.
type NoCandidatesError struct {
	District string
	Taluq    string
}

func (e *NoCandidatesError) Error() string {
	return fmt.Sprintf("no suitable crops found for %s/%s", e.District, e.Taluq)
}

// Unwrap lets errors.Is match ranking.ErrNoCandidates.
func (e *NoCandidatesError) Unwrap() error {
	return ranking.ErrNoCandidates
}

// Location is the display string returned to the caller.
func (e *NoCandidatesError) Location() string {
	return ranking.NoRecommendationsLocation(e.District, e.Taluq)
}

// InternalError wraps any unexpected failure during scoring.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *InternalError) Unwrap() error {
	return e.Err
}
