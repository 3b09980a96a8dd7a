// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package models

import (
	"math"
	"strings"
)

// CropProfile is the agronomic profile of a single crop as emitted by the
// offline training job.
type CropProfile struct {
	Name         string   `json:"name" validate:"required"`
	N            float64  `json:"n" validate:"gte=0"`
	P            float64  `json:"p" validate:"gte=0"`
	K            float64  `json:"k" validate:"gte=0"`
	PHMean       *float64 `json:"ph_mean,omitempty" validate:"omitempty,gte=0,lte=14"`
	TempMean     *float64 `json:"temp_mean,omitempty"`
	HumidityMean *float64 `json:"humidity_mean,omitempty"`
	MainSoilType string   `json:"main_soiltype"`
	YieldPerArea *float64 `json:"yield_per_area,omitempty" validate:"omitempty,gte=0"`
	PricePerUnit *float64 `json:"price_per_unit,omitempty" validate:"omitempty,gte=0"`
}

// RegionProfile holds the climate averages for one (district, taluq) pair.
type RegionProfile struct {
	District      string   `json:"district"`
	Taluq         string   `json:"taluq"`
	AvgTempKharif *float64 `json:"avg_temp_kharif,omitempty"`
	AvgTempRabi   *float64 `json:"avg_temp_rabi,omitempty"`
	AvgRainfall   *float64 `json:"avg_rainfall,omitempty"`
}

// Key returns the canonical lookup key of the region.
func (r *RegionProfile) Key() RegionKey {
	return NewRegionKey(r.District, r.Taluq)
}

// RegionKey identifies a region by canonical district and taluq.
type RegionKey struct {
	District string
	Taluq    string
}

// NewRegionKey canonicalizes both parts of a region key.
func NewRegionKey(district, taluq string) RegionKey {
	return RegionKey{District: Canonicalize(district), Taluq: Canonicalize(taluq)}
}

// Canonicalize lowercases and trims a categorical value before it is
// compared or encoded.
func Canonicalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Float returns a pointer to v. NaN and infinities are treated as missing.
func Float(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
