// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package models

// UserQuery is a single recommendation request after numeric coercion.
//
// N, P and K default to 0 when the caller sent nothing parseable. PH is nil
// in that case so the similarity scorer can skip the pH term entirely.
type UserQuery struct {
	District string   `json:"district"`
	Taluq    string   `json:"taluq"`
	SoilType string   `json:"soil_type"`
	Season   string   `json:"season"`
	N        float64  `json:"n"`
	P        float64  `json:"p"`
	K        float64  `json:"k"`
	PH       *float64 `json:"ph,omitempty"`
}

// Location returns the region key the query refers to.
func (q *UserQuery) Location() RegionKey {
	return NewRegionKey(q.District, q.Taluq)
}
