// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

// Package classifier provides the suitability capability: given feature
// vectors, return the probability that each (query, crop) pair is
// agronomically suitable.
//
// Two implementations exist. Forest evaluates the decision trees exported by
// the offline training job in-process. Remote calls an external scoring
// service through a circuit breaker and can fall back to a local Forest.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/tomtom215/cropwise/internal/models"
)

// Classifier kinds, used as metric labels and configuration values.
const (
	KindForest = "forest"
	KindRemote = "remote"
)

// ErrInvalidProbability is returned when a classifier produces a value
// outside [0, 1] or NaN.
var ErrInvalidProbability = errors.New("probability outside [0, 1]")

// ErrLengthMismatch is returned when a batch result does not line up with
// its input.
var ErrLengthMismatch = errors.New("result length does not match input")

// Classifier scores feature vectors. Implementations must be safe for
// concurrent use.
type Classifier interface {
	// PredictSuitability returns one probability per vector, in order.
	PredictSuitability(ctx context.Context, vectors []models.FeatureVector) ([]float64, error)
	// Kind identifies the implementation.
	Kind() string
}

// CheckProbabilities verifies that probs has one value in [0, 1] per input.
func CheckProbabilities(probs []float64, want int) error {
	if len(probs) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrLengthMismatch, len(probs), want)
	}
	for i, p := range probs {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("%w: index %d = %v", ErrInvalidProbability, i, p)
		}
	}
	return nil
}

// Func adapts a plain function to Classifier. Useful for tests and for
// wrapping models that already score one vector at a time.
type Func func(v models.FeatureVector) (float64, error)

// PredictSuitability implements Classifier.
func (f Func) PredictSuitability(ctx context.Context, vectors []models.FeatureVector) ([]float64, error) {
	out := make([]float64, len(vectors))
	for i, v := range vectors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := f(v)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// Kind implements Classifier.
func (f Func) Kind() string { return "func" }
