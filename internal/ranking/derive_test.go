// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package ranking

import (
	"testing"

	"github.com/tomtom215/cropwise/internal/models"
)

func ptr(v float64) *float64 { return &v }

func TestCategorizeProfit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		yield *float64
		price *float64
		want  ProfitCategory
	}{
		{"very high", ptr(40), ptr(3000), ProfitVeryHigh},
		{"boundary 100000 is high", ptr(50), ptr(2000), ProfitHigh},
		{"high", ptr(30), ptr(2600), ProfitHigh},
		{"boundary 75000 is medium", ptr(25), ptr(3000), ProfitMedium},
		{"medium", ptr(20), ptr(3000), ProfitMedium},
		{"boundary 50000 is moderate", ptr(20), ptr(2500), ProfitModerate},
		{"moderate", ptr(10), ptr(1800), ProfitModerate},
		{"missing yield", nil, ptr(1800), ProfitUnknown},
		{"missing price", ptr(10), nil, ProfitUnknown},
		{"zero yield", ptr(0), ptr(1800), ProfitUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategorizeProfit(Profit(tt.yield, tt.price)); got != tt.want {
				t.Errorf("CategorizeProfit = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSustainability(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prob, npk, ph float64
		want          int
	}{
		{0.9, 0.1, 0.1, 10},
		{0.7, 0.1, 0.1, 6},
		{0.71, 0.5, 0.1, 7},
		{0.71, 0.49, 0.3, 7},
		{0.2, 0.8, 0.5, 0},
		{1, 0, 0, 10},
	}
	for _, tt := range tests {
		if got := Sustainability(tt.prob, tt.npk, tt.ph); got != tt.want {
			t.Errorf("Sustainability(%v, %v, %v) = %d, want %d", tt.prob, tt.npk, tt.ph, got, tt.want)
		}
	}
}

func TestDerive(t *testing.T) {
	t.Parallel()

	c := models.CandidateScore{
		Crop:        &models.CropProfile{Name: "Ragi"},
		Probability: 0.82,
		NPKNorm:     0,
		PHNorm:      0,
		FinalScore:  FinalScore(0.82, 0, 0),
		Yield:       ptr(12.7),
		Price:       ptr(3846),
	}

	r := Derive(c)
	if r.Crop != "Ragi" {
		t.Errorf("Crop = %q, want Ragi", r.Crop)
	}
	if r.Sustainability != 10 {
		t.Errorf("Sustainability = %d, want 10", r.Sustainability)
	}
	if r.Profit == nil || *r.Profit != 12.7*3846 {
		t.Errorf("Profit = %v, want %v", r.Profit, 12.7*3846)
	}
	if r.ProfitCategory != ProfitModerate {
		t.Errorf("ProfitCategory = %q, want %q", r.ProfitCategory, ProfitModerate)
	}
}
