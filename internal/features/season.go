// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

// Package features assembles classifier input vectors for (query, crop) pairs.
package features

import (
	"strings"

	"github.com/tomtom215/cropwise/internal/models"
)

// Normalized season names. These are the class labels of the season encoder.
const (
	SeasonKharif  = "kharif"
	SeasonRabi    = "rabi"
	SeasonAnnual  = "annual"
	SeasonBoth    = "both"
	SeasonUnknown = "unknown"
)

// NormalizeSeason maps a free-form season to one of the normalized names.
// The offline training job applies the same rule; the two must not diverge.
func NormalizeSeason(raw string) string {
	s := models.Canonicalize(raw)
	switch {
	case strings.HasPrefix(s, "k"):
		return SeasonKharif
	case strings.HasPrefix(s, "r"):
		return SeasonRabi
	case strings.HasPrefix(s, "a"):
		return SeasonAnnual
	case strings.Contains(s, "/"):
		return SeasonBoth
	default:
		return SeasonUnknown
	}
}
