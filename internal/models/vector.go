// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package models

// Feature positions within a FeatureVector. The order is part of the model
// artifact contract and must match the column order used during training.
const (
	FeatureDistrict = iota
	FeatureTaluq
	FeatureSeason
	FeatureTempDiff
	FeatureRainDiff
	FeatureSoilMatch
	FeatureCropN
	FeatureCropP
	FeatureCropK
	FeatureCropPH

	// FeatureCount is the fixed length of every feature vector.
	FeatureCount
)

// FeatureNames lists the training column name for each feature position.
var FeatureNames = [FeatureCount]string{
	"district_enc",
	"taluq_enc",
	"season_enc",
	"temp_diff",
	"rain_diff",
	"soil_match",
	"crop_N",
	"crop_P",
	"crop_K",
	"crop_ph",
}

// FeatureVector is the numeric input to the suitability classifier for one
// (query, crop) pair.
type FeatureVector [FeatureCount]float64

// Slice returns the vector as a slice for transport encoders.
func (v FeatureVector) Slice() []float64 {
	out := make([]float64, FeatureCount)
	copy(out, v[:])
	return out
}

// CandidateScore is the scoring outcome for one crop within a request.
type CandidateScore struct {
	Crop        *CropProfile
	Probability float64
	NPKNorm     float64
	PHNorm      float64
	FinalScore  float64
	Yield       *float64
	Price       *float64
}
