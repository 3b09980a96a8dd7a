// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

// Package similarity measures how far a crop's ideal soil chemistry is from
// the user's soil-test readings. Both measures are distances: 0 is a perfect
// match and larger is worse.
package similarity

import (
	"math"

	"github.com/tomtom215/cropwise/internal/models"
)

// PHRange is the width of the pH scale used to normalize pH distance.
const PHRange = 14.0

// Score holds the normalized divergences for one crop.
type Score struct {
	NPKNorm float64
	PHNorm  float64
}

// Scorer computes divergences against a fixed NPK normalization constant.
type Scorer struct {
	npkMaxSum float64
}

// NewScorer returns a scorer for the training-time maximum N+P+K sum.
// Values below 1 are raised to 1.
func NewScorer(npkMaxSum float64) *Scorer {
	if math.IsNaN(npkMaxSum) || npkMaxSum < 1 {
		npkMaxSum = 1
	}
	return &Scorer{npkMaxSum: npkMaxSum}
}

// NPKMaxSum returns the normalization constant in use.
func (s *Scorer) NPKMaxSum() float64 {
	return s.npkMaxSum
}

// Score compares query readings with a crop profile.
//
// NPKNorm is not bounded by 1: a query far outside the training data can
// exceed the constant.
func (s *Scorer) Score(query *models.UserQuery, crop *models.CropProfile) Score {
	npk := math.Abs(crop.N-query.N) + math.Abs(crop.P-query.P) + math.Abs(crop.K-query.K)
	return Score{
		NPKNorm: npk / s.npkMaxSum,
		PHNorm:  phNorm(crop.PHMean, query.PH),
	}
}

func phNorm(crop, user *float64) float64 {
	if crop == nil || user == nil || math.IsNaN(*crop) || math.IsNaN(*user) {
		return 0
	}
	return math.Abs(*crop-*user) / PHRange
}
