// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

// Package models defines the domain types shared by the scoring pipeline.
//
// Crop and region profiles are loaded once at startup and treated as
// read-only afterwards. Queries, feature vectors and candidate scores are
// created per request and discarded when the response is written.
//
// Optional numeric fields are modelled as *float64: nil means the value was
// missing from the source data and must never be read as zero.
package models
