// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package features

import (
	"math"
	"strings"

	"github.com/tomtom215/cropwise/internal/models"
)

// RainfallScale converts region rainfall (mm) to the humidity-like scale the
// crop profiles use.
const RainfallScale = 10.0

// Codes holds the encoded categorical fields of a query. They are computed
// once per request and shared by every crop's vector.
type Codes struct {
	District int
	Taluq    int
	Season   int
}

// Context is the per-request part of every feature vector.
type Context struct {
	Codes    Codes
	Season   string // normalized
	SoilType string // canonical
	Region   *models.RegionProfile
	// RegionTemp and Rainfall are nil when the region row is missing or
	// carries no usable value.
	RegionTemp *float64
	Rainfall   *float64
}

// NewContext prepares the request-level inputs. region may be nil.
func NewContext(query *models.UserQuery, region *models.RegionProfile, codes Codes) *Context {
	season := NormalizeSeason(query.Season)
	ctx := &Context{
		Codes:    codes,
		Season:   season,
		SoilType: models.Canonicalize(query.SoilType),
		Region:   region,
	}
	if region != nil {
		ctx.RegionTemp = RegionTemperature(season, region)
		if region.AvgRainfall != nil {
			ctx.Rainfall = models.Float(*region.AvgRainfall / RainfallScale)
		}
	}
	return ctx
}

// RegionTemperature picks the temperature matching the normalized season.
// Seasons other than kharif and rabi use the mean of the temperatures that
// are present. It returns nil when no usable temperature exists.
func RegionTemperature(season string, region *models.RegionProfile) *float64 {
	if region == nil {
		return nil
	}
	switch season {
	case SeasonRabi:
		return present(region.AvgTempRabi)
	case SeasonKharif:
		return present(region.AvgTempKharif)
	}

	var sum float64
	var n int
	for _, v := range []*float64{region.AvgTempKharif, region.AvgTempRabi} {
		if p := present(v); p != nil {
			sum += *p
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return models.Float(sum / float64(n))
}

// Build assembles the feature vector for one crop.
func (c *Context) Build(crop *models.CropProfile) models.FeatureVector {
	var v models.FeatureVector

	v[models.FeatureDistrict] = float64(c.Codes.District)
	v[models.FeatureTaluq] = float64(c.Codes.Taluq)
	v[models.FeatureSeason] = float64(c.Codes.Season)
	v[models.FeatureTempDiff] = absDiff(c.RegionTemp, crop.TempMean)
	v[models.FeatureRainDiff] = absDiff(c.Rainfall, crop.HumidityMean)
	v[models.FeatureSoilMatch] = SoilMatch(c.SoilType, crop.MainSoilType)
	v[models.FeatureCropN] = crop.N
	v[models.FeatureCropP] = crop.P
	v[models.FeatureCropK] = crop.K
	if ph := present(crop.PHMean); ph != nil {
		v[models.FeatureCropPH] = *ph
	}
	return v
}

// Build is a convenience wrapper for a single (query, region, crop) triple.
func Build(query *models.UserQuery, region *models.RegionProfile, crop *models.CropProfile, codes Codes) models.FeatureVector {
	return NewContext(query, region, codes).Build(crop)
}

// SoilMatch returns 1 when the query soil type is a non-empty substring of
// the crop's main soil type. Both sides are canonicalized.
//
// The offline labeling step checks the opposite direction (crop soil within
// region soil). Serving keeps this direction.
func SoilMatch(querySoil, cropSoil string) float64 {
	q := models.Canonicalize(querySoil)
	if q == "" {
		return 0
	}
	if strings.Contains(models.Canonicalize(cropSoil), q) {
		return 1
	}
	return 0
}

// absDiff returns |a-b|, or 0 when either side is missing.
func absDiff(a, b *float64) float64 {
	a, b = present(a), present(b)
	if a == nil || b == nil {
		return 0
	}
	return math.Abs(*a - *b)
}

func present(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}
