// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package classifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/cropwise/internal/models"
)

// leafFeature marks a leaf node in Tree.Feature. Any negative value is
// accepted as a leaf.
const leafFeature = -2

var (
	// ErrEmptyForest is returned for a forest without trees.
	ErrEmptyForest = errors.New("forest has no trees")
	// ErrMalformedTree is returned when a tree's arrays are inconsistent.
	ErrMalformedTree = errors.New("malformed tree")
)

// Tree is one decision tree in flattened array form. Node 0 is the root.
// Internal nodes route x[Feature[i]] <= Threshold[i] to Left[i], otherwise
// to Right[i]. Leaves carry per-class weights in Value[i].
type Tree struct {
	Feature   []int       `json:"feature"`
	Threshold []float64   `json:"threshold"`
	Left      []int       `json:"left"`
	Right     []int       `json:"right"`
	Value     [][]float64 `json:"value"`
}

// Forest averages the positive-class probability over its trees.
type Forest struct {
	NFeatures     int    `json:"n_features"`
	PositiveClass int    `json:"positive_class"`
	Trees         []Tree `json:"trees"`
}

// Validate checks structural consistency so Predict can walk trees without
// bounds checks failing at request time.
func (f *Forest) Validate() error {
	if len(f.Trees) == 0 {
		return ErrEmptyForest
	}
	if f.NFeatures != models.FeatureCount {
		return fmt.Errorf("forest expects %d features, vectors have %d", f.NFeatures, models.FeatureCount)
	}
	if f.PositiveClass < 0 {
		return fmt.Errorf("negative positive_class %d", f.PositiveClass)
	}
	for i := range f.Trees {
		if err := f.Trees[i].validate(f.NFeatures, f.PositiveClass); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

func (t *Tree) validate(nFeatures, positive int) error {
	n := len(t.Feature)
	if n == 0 {
		return fmt.Errorf("%w: no nodes", ErrMalformedTree)
	}
	if len(t.Threshold) != n || len(t.Left) != n || len(t.Right) != n || len(t.Value) != n {
		return fmt.Errorf("%w: array lengths differ", ErrMalformedTree)
	}
	for i := 0; i < n; i++ {
		if t.Feature[i] < 0 {
			if len(t.Value[i]) <= positive {
				return fmt.Errorf("%w: leaf %d has %d classes", ErrMalformedTree, i, len(t.Value[i]))
			}
			var total float64
			for _, w := range t.Value[i] {
				if w < 0 {
					return fmt.Errorf("%w: leaf %d has negative weight", ErrMalformedTree, i)
				}
				total += w
			}
			if total == 0 {
				return fmt.Errorf("%w: leaf %d has zero weight", ErrMalformedTree, i)
			}
			continue
		}
		if t.Feature[i] >= nFeatures {
			return fmt.Errorf("%w: node %d splits on feature %d", ErrMalformedTree, i, t.Feature[i])
		}
		// Children always follow their parent, which also rules out cycles.
		if t.Left[i] <= i || t.Left[i] >= n || t.Right[i] <= i || t.Right[i] >= n {
			return fmt.Errorf("%w: node %d has children %d/%d", ErrMalformedTree, i, t.Left[i], t.Right[i])
		}
	}
	return nil
}

// predict returns the positive-class fraction of the leaf x lands in.
//
// Inputs are rounded to float32 before comparison because the training
// library stores split inputs in single precision.
func (t *Tree) predict(x *models.FeatureVector, positive int) float64 {
	node := 0
	for t.Feature[node] >= 0 {
		if float64(float32(x[t.Feature[node]])) <= t.Threshold[node] {
			node = t.Left[node]
		} else {
			node = t.Right[node]
		}
	}

	var total float64
	for _, w := range t.Value[node] {
		total += w
	}
	return t.Value[node][positive] / total
}

// Predict scores one vector.
func (f *Forest) Predict(x models.FeatureVector) float64 {
	var sum float64
	for i := range f.Trees {
		sum += f.Trees[i].predict(&x, f.PositiveClass)
	}
	return sum / float64(len(f.Trees))
}

// PredictSuitability implements Classifier.
func (f *Forest) PredictSuitability(ctx context.Context, vectors []models.FeatureVector) ([]float64, error) {
	out := make([]float64, len(vectors))
	for i := range vectors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = f.Predict(vectors[i])
	}
	return out, nil
}

// Kind implements Classifier.
func (f *Forest) Kind() string { return KindForest }
