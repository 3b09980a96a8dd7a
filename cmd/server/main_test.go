// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package main

import (
	"testing"

	"github.com/tomtom215/cropwise/internal/classifier"
	"github.com/tomtom215/cropwise/internal/config"
	"github.com/tomtom215/cropwise/internal/models"
	"github.com/tomtom215/cropwise/internal/refdata"
)

func stumpArtifact() *refdata.Artifact {
	a := &refdata.Artifact{Version: "test"}
	a.Model.Forest = classifier.Forest{
		NFeatures:     models.FeatureCount,
		PositiveClass: 1,
		Trees: []classifier.Tree{{
			Feature:   []int{-2},
			Threshold: []float64{0},
			Left:      []int{-1},
			Right:     []int{-1},
			Value:     [][]float64{{1, 3}},
		}},
	}
	return a
}

func TestRegionSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  config.RegionsConfig
		want refdata.RegionSource
	}{
		{
			name: "csv",
			cfg:  config.RegionsConfig{Source: config.RegionSourceCSV, Path: "r.csv", Table: "regions"},
			want: refdata.RegionSource{CSVPath: "r.csv"},
		},
		{
			name: "duckdb",
			cfg:  config.RegionsConfig{Source: config.RegionSourceDuckDB, Path: "r.csv", DuckDBPath: "r.duckdb", Table: "regions"},
			want: refdata.RegionSource{Database: "r.duckdb", Table: "regions"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := regionSource(tt.cfg); got != tt.want {
				t.Errorf("regionSource() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBuildClassifier(t *testing.T) {
	t.Parallel()

	broken := &refdata.Artifact{Version: "test"}
	remoteCfg := config.ClassifierConfig{
		Kind:            config.ClassifierRemote,
		Endpoint:        "http://127.0.0.1:9/predict",
		FallbackToLocal: true,
	}

	tests := []struct {
		name     string
		cfg      config.ClassifierConfig
		artifact *refdata.Artifact
		wantKind string
		wantErr  bool
	}{
		{"forest", config.ClassifierConfig{Kind: config.ClassifierForest}, stumpArtifact(), classifier.KindForest, false},
		{"forest missing", config.ClassifierConfig{Kind: config.ClassifierForest}, broken, "", true},
		{"remote with fallback", remoteCfg, stumpArtifact(), classifier.KindRemote, false},
		{"remote without usable forest", remoteCfg, broken, classifier.KindRemote, false},
		{"remote without endpoint", config.ClassifierConfig{Kind: config.ClassifierRemote}, stumpArtifact(), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			clf, err := buildClassifier(tt.cfg, tt.artifact)
			if (err != nil) != tt.wantErr {
				t.Fatalf("buildClassifier() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if clf.Kind() != tt.wantKind {
				t.Errorf("Kind() = %q, want %q", clf.Kind(), tt.wantKind)
			}
		})
	}
}
