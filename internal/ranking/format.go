// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package ranking

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Display is the user-facing rendering of a recommendation.
type Display struct {
	CropName       string `json:"crop_name"`
	YieldData      string `json:"yield_data"`
	MarketPrice    string `json:"market_price"`
	ProfitMargin   string `json:"profit_margin"`
	Sustainability string `json:"sustainability"`
}

const unknownValue = "Unknown"

var profitIcons = map[ProfitCategory]string{
	ProfitVeryHigh: "🔥",
	ProfitHigh:     "⬆️",
	ProfitMedium:   "➡️",
	ProfitModerate: "⬇️",
}

// Casers and printers carry state and are created per call.
func titleCase(s string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(s))
}

// Display renders the recommendation for the API response.
func (r *Recommendation) Display() Display {
	return Display{
		CropName:       r.Crop + " 🌱",
		YieldData:      formatYield(r.Yield),
		MarketPrice:    formatPrice(r.Price),
		ProfitMargin:   r.ProfitCategory.Label(),
		Sustainability: fmt.Sprintf("%d/%d", r.Sustainability, MaxSustainability),
	}
}

// Label returns the category with its trend icon.
func (c ProfitCategory) Label() string {
	if icon, ok := profitIcons[c]; ok {
		return string(c) + " " + icon
	}
	return string(c)
}

// FormatLocation renders "District, Taluq" in title case.
func FormatLocation(district, taluq string) string {
	return titleCase(district) + ", " + titleCase(taluq)
}

// NoRecommendationsLocation is the location string used when nothing ranked.
func NoRecommendationsLocation(district, taluq string) string {
	return "No recommendations for " + FormatLocation(district, taluq)
}

func formatYield(yield *float64) string {
	if yield == nil {
		return unknownValue
	}
	return strconv.FormatInt(int64(math.Trunc(*yield)), 10) + " quintals/acre"
}

func formatPrice(price *float64) string {
	if price == nil {
		return unknownValue
	}
	return message.NewPrinter(language.English).Sprintf("₹%d/qtl", int64(math.Trunc(*price)))
}
