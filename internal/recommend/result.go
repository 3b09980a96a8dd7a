// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package recommend

import (
	"github.com/tomtom215/cropwise/internal/ranking"
)

// Result is a successful recommendation. The primary crop's display fields
// are inlined; the runner-up, when present, is nested under
// alternative_crop. Results may be shared through the cache and must be
// treated as read-only.
type Result struct {
	Location string `json:"location"`
	ranking.Display
	Alternative *ranking.Display `json:"alternative_crop,omitempty"`

	Primary        ranking.Recommendation  `json:"-"`
	AlternativeRec *ranking.Recommendation `json:"-"`
	Candidates     int                     `json:"-"`
}

func newResult(district, taluq string, primary ranking.Recommendation, alt *ranking.Recommendation, candidates int) *Result {
	r := &Result{
		Location:       ranking.FormatLocation(district, taluq),
		Display:        primary.Display(),
		Primary:        primary,
		AlternativeRec: alt,
		Candidates:     candidates,
	}
	if alt != nil {
		d := alt.Display()
		r.Alternative = &d
	}
	return r
}
