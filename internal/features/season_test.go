// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package features

import "testing"

func TestNormalizeSeason(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Kharif", SeasonKharif},
		{"Rabi", SeasonRabi},
		{"Annual", SeasonAnnual},
		{"Oct/Nov", SeasonBoth},
		{"monsoon", SeasonUnknown},
		{"  KHARIF ", SeasonKharif},
		{"kharif/rabi", SeasonKharif},
		{"Whole Year", SeasonUnknown},
		{"", SeasonUnknown},
		{"/", SeasonBoth},
	}

	for _, tt := range tests {
		if got := NormalizeSeason(tt.in); got != tt.want {
			t.Errorf("NormalizeSeason(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
