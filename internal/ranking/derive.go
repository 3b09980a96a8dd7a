// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package ranking

import (
	"github.com/tomtom215/cropwise/internal/models"
)

// ProfitCategory buckets yield x price.
type ProfitCategory string

const (
	ProfitVeryHigh ProfitCategory = "Very High"
	ProfitHigh     ProfitCategory = "High"
	ProfitMedium   ProfitCategory = "Medium"
	ProfitModerate ProfitCategory = "Moderate"
	ProfitUnknown  ProfitCategory = "Unknown"
)

// Profit thresholds, exclusive lower bounds.
const (
	veryHighProfit = 100000
	highProfit     = 75000
	mediumProfit   = 50000
)

// Sustainability scoring.
const (
	MaxSustainability = 10

	probabilityBonus = 4
	npkBonus         = 3
	phBonus          = 3

	probabilityThreshold = 0.7
	npkThreshold         = 0.5
	phThreshold          = 0.3
)

// Recommendation is a shortlisted candidate with its derived metrics.
type Recommendation struct {
	Crop           string
	Probability    float64
	NPKNorm        float64
	PHNorm         float64
	FinalScore     float64
	Yield          *float64
	Price          *float64
	Profit         *float64
	ProfitCategory ProfitCategory
	Sustainability int
}

// Derive computes the display metrics of one candidate.
func Derive(c models.CandidateScore) Recommendation {
	r := Recommendation{
		Probability:    c.Probability,
		NPKNorm:        c.NPKNorm,
		PHNorm:         c.PHNorm,
		FinalScore:     c.FinalScore,
		Yield:          c.Yield,
		Price:          c.Price,
		Sustainability: Sustainability(c.Probability, c.NPKNorm, c.PHNorm),
	}
	if c.Crop != nil {
		r.Crop = c.Crop.Name
	}
	r.Profit = Profit(c.Yield, c.Price)
	r.ProfitCategory = CategorizeProfit(r.Profit)
	return r
}

// Profit returns yield x price. It is undefined when either factor is
// missing or zero, since a zero in the crop table means "not recorded".
func Profit(yield, price *float64) *float64 {
	if yield == nil || price == nil || *yield == 0 || *price == 0 {
		return nil
	}
	return models.Float(*yield * *price)
}

// CategorizeProfit maps a profit figure to its category.
func CategorizeProfit(profit *float64) ProfitCategory {
	if profit == nil {
		return ProfitUnknown
	}
	switch p := *profit; {
	case p > veryHighProfit:
		return ProfitVeryHigh
	case p > highProfit:
		return ProfitHigh
	case p > mediumProfit:
		return ProfitMedium
	default:
		return ProfitModerate
	}
}

// Sustainability scores a candidate from 0 to MaxSustainability.
func Sustainability(probability, npkNorm, phNorm float64) int {
	score := 0
	if probability > probabilityThreshold {
		score += probabilityBonus
	}
	if npkNorm < npkThreshold {
		score += npkBonus
	}
	if phNorm < phThreshold {
		score += phBonus
	}
	return min(score, MaxSustainability)
}
