// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

// Package refdata loads the read-only reference data the engine scores
// against: the model artifact (crop table, encoder classes, forest) and the
// region climate table. Both are loaded once at startup and never mutated.
package refdata

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cropwise/internal/classifier"
	"github.com/tomtom215/cropwise/internal/encoder"
	"github.com/tomtom215/cropwise/internal/models"
	"github.com/tomtom215/cropwise/internal/validation"
)

// ErrMissingEncoder is returned when the artifact lacks a categorical field.
var ErrMissingEncoder = errors.New("artifact is missing an encoder field")

// Artifact is the JSON document written by the offline training job.
type Artifact struct {
	Version   string               `json:"version" validate:"required"`
	TrainedAt *time.Time           `json:"trained_at,omitempty"`
	NPKMax    *float64             `json:"npk_max_sum,omitempty" validate:"omitempty,finite,gte=0"`
	Encoders  map[string][]string  `json:"encoders" validate:"required"`
	Crops     []models.CropProfile `json:"crops" validate:"dive"`
	Model     Model                `json:"classifier"`
}

// Model is the serialized classifier. Only forests are embedded; a remote
// classifier is configured separately and ignores this block.
type Model struct {
	Kind string `json:"kind" validate:"omitempty,oneof=forest remote"`
	classifier.Forest
}

// LoadArtifact reads and validates the artifact at path.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	a, err := ParseArtifact(data)
	if err != nil {
		return nil, fmt.Errorf("artifact %s: %w", path, err)
	}
	return a, nil
}

// ParseArtifact decodes and validates an artifact document.
func ParseArtifact(data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := validation.Struct(&a); err != nil {
		return nil, err
	}
	for _, field := range []string{encoder.FieldDistrict, encoder.FieldTaluq, encoder.FieldSeason} {
		if _, ok := a.Encoders[field]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingEncoder, field)
		}
	}
	return &a, nil
}

// NPKMaxSum returns the NPK normalization constant, floored at 1. When the
// artifact omits it, it is derived from the crop table as the offline job
// computes it: max(N) + max(P) + max(K).
func (a *Artifact) NPKMaxSum() float64 {
	if a.NPKMax != nil {
		return max(*a.NPKMax, 1)
	}
	return DeriveNPKMaxSum(a.Crops)
}

// DeriveNPKMaxSum computes max(N) + max(P) + max(K) over crops, floored at 1.
func DeriveNPKMaxSum(crops []models.CropProfile) float64 {
	var n, p, k float64
	for i := range crops {
		n = max(n, crops[i].N)
		p = max(p, crops[i].P)
		k = max(k, crops[i].K)
	}
	return max(n+p+k, 1)
}

// Forest returns the embedded forest after structural validation.
func (a *Artifact) Forest() (*classifier.Forest, error) {
	if a.Model.Kind != "" && a.Model.Kind != classifier.KindForest {
		return nil, fmt.Errorf("artifact classifier kind %q is not a forest", a.Model.Kind)
	}
	f := a.Model.Forest
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("artifact forest: %w", err)
	}
	return &f, nil
}
