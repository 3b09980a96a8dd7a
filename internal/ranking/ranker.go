// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

// Package ranking fuses classifier probability with soil similarity, orders
// the candidates and derives the display metrics of the winners.
package ranking

import (
	"errors"
	"slices"

	"github.com/tomtom215/cropwise/internal/models"
)

// Fusion weights. They sum to 1.
const (
	Alpha = 0.6 // classifier probability
	Beta  = 0.4 // soil similarity
)

// Selection limits.
const (
	// ShortlistSize is the number of candidates kept after sorting.
	ShortlistSize = 5
	// ExposedSize is the number of candidates returned to the caller.
	ExposedSize = 2
)

// ErrNoCandidates is returned when there is nothing to rank.
var ErrNoCandidates = errors.New("no candidates")

// FinalScore fuses probability with the two similarity divergences.
// Higher is better.
func FinalScore(probability, npkNorm, phNorm float64) float64 {
	return Alpha*probability + Beta*(1-(npkNorm+phNorm)/2)
}

// Rank returns the shortlist: candidates sorted by descending final score,
// truncated to ShortlistSize. Equal scores keep their input order, which is
// the crop table order. The input slice is not modified.
func Rank(candidates []models.CandidateScore) ([]models.CandidateScore, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	sorted := slices.Clone(candidates)
	slices.SortStableFunc(sorted, func(a, b models.CandidateScore) int {
		switch {
		case a.FinalScore > b.FinalScore:
			return -1
		case a.FinalScore < b.FinalScore:
			return 1
		default:
			return 0
		}
	})

	if len(sorted) > ShortlistSize {
		sorted = sorted[:ShortlistSize]
	}
	return sorted, nil
}

// Select ranks candidates and returns the primary recommendation and, when
// more than one candidate exists, the alternative.
func Select(candidates []models.CandidateScore) (primary Recommendation, alternative *Recommendation, err error) {
	shortlist, err := Rank(candidates)
	if err != nil {
		return Recommendation{}, nil, err
	}

	primary = Derive(shortlist[0])
	if len(shortlist) >= ExposedSize {
		alt := Derive(shortlist[1])
		alternative = &alt
	}
	return primary, alternative, nil
}
