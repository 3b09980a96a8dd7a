// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package refdata

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tomtom215/cropwise/internal/models"
	"github.com/tomtom215/cropwise/internal/validation"
)

const validArtifact = `{
  "version": "2026.03",
  "trained_at": "2026-03-01T10:00:00Z",
  "encoders": {"district": ["mysuru", "udupi"], "taluq": ["hunsur", "kundapura"], "season": ["kharif", "rabi"]},
  "crops": [
    {"name": "ragi", "n": 40, "p": 20, "k": 20, "ph_mean": 6.5, "temp_mean": 24, "humidity_mean": 80, "main_soiltype": "red loamy", "yield_per_area": 12, "price_per_unit": 3800},
    {"name": "rice", "n": 80, "p": 40, "k": 40, "main_soiltype": "clay"}
  ],
  "classifier": {
    "kind": "forest",
    "n_features": 10,
    "positive_class": 1,
    "trees": [{"feature": [5, -2, -2], "threshold": [0.5, 0, 0], "left": [1, -1, -1], "right": [2, -1, -1], "value": [[0, 0], [3, 1], [1, 3]]}]
  }
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestParseArtifact_Valid(t *testing.T) {
	t.Parallel()

	a, err := ParseArtifact([]byte(validArtifact))
	if err != nil {
		t.Fatalf("ParseArtifact() error = %v", err)
	}
	if a.Version != "2026.03" {
		t.Errorf("Version = %q, want 2026.03", a.Version)
	}
	if a.TrainedAt == nil || a.TrainedAt.Year() != 2026 {
		t.Errorf("TrainedAt = %v, want 2026-03-01", a.TrainedAt)
	}
	if len(a.Crops) != 2 {
		t.Fatalf("len(Crops) = %d, want 2", len(a.Crops))
	}
	if a.Crops[0].PHMean == nil || *a.Crops[0].PHMean != 6.5 {
		t.Errorf("Crops[0].PHMean = %v, want 6.5", a.Crops[0].PHMean)
	}
	if a.Crops[1].PHMean != nil {
		t.Errorf("Crops[1].PHMean = %v, want nil", *a.Crops[1].PHMean)
	}

	f, err := a.Forest()
	if err != nil {
		t.Fatalf("Forest() error = %v", err)
	}
	if len(f.Trees) != 1 || f.PositiveClass != 1 {
		t.Errorf("Forest() = %d trees, positive %d", len(f.Trees), f.PositiveClass)
	}
}

func TestParseArtifact_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		doc      string
		validErr bool
		target   error
	}{
		{"not json", `{`, false, nil},
		{"missing version", `{"encoders": {"district": [], "taluq": [], "season": []}}`, true, nil},
		{"negative n", `{"version": "1", "encoders": {"district": [], "taluq": [], "season": []}, "crops": [{"name": "a", "n": -1}]}`, true, nil},
		{"ph out of range", `{"version": "1", "encoders": {"district": [], "taluq": [], "season": []}, "crops": [{"name": "a", "ph_mean": 15}]}`, true, nil},
		{"unnamed crop", `{"version": "1", "encoders": {"district": [], "taluq": [], "season": []}, "crops": [{"n": 1}]}`, true, nil},
		{"bad kind", `{"version": "1", "encoders": {"district": [], "taluq": [], "season": []}, "classifier": {"kind": "svm"}}`, true, nil},
		{"missing season encoder", `{"version": "1", "encoders": {"district": [], "taluq": []}}`, false, ErrMissingEncoder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseArtifact([]byte(tt.doc))
			if err == nil {
				t.Fatal("ParseArtifact() error = nil, want error")
			}
			var verr *validation.Error
			if got := errors.As(err, &verr); got != tt.validErr {
				t.Errorf("validation error = %v, want %v (err: %v)", got, tt.validErr, err)
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("error = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestArtifact_EmptyCropsAllowed(t *testing.T) {
	t.Parallel()

	a, err := ParseArtifact([]byte(`{"version": "1", "encoders": {"district": [], "taluq": [], "season": []}, "crops": []}`))
	if err != nil {
		t.Fatalf("ParseArtifact() error = %v", err)
	}
	if len(a.Crops) != 0 {
		t.Errorf("len(Crops) = %d, want 0", len(a.Crops))
	}
	if _, err := a.Forest(); err == nil {
		t.Error("Forest() error = nil for empty forest")
	}
}

func TestArtifact_NPKMaxSum(t *testing.T) {
	t.Parallel()

	v := func(f float64) *float64 { return &f }
	crops := []models.CropProfile{{Name: "a", N: 40, P: 50, K: 10}, {Name: "b", N: 90, P: 20, K: 30}}

	tests := []struct {
		name  string
		given *float64
		crops []models.CropProfile
		want  float64
	}{
		{"explicit", v(250), crops, 250},
		{"explicit floored", v(0.2), crops, 1},
		{"derived", nil, crops, 90 + 50 + 30},
		{"derived empty", nil, nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := Artifact{NPKMax: tt.given, Crops: tt.crops}
			if got := a.NPKMaxSum(); got != tt.want {
				t.Errorf("NPKMaxSum() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadArtifact_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadArtifact(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("LoadArtifact() error = nil for missing file")
	}
}

func TestStore_RegionLookup(t *testing.T) {
	t.Parallel()

	temp := 25.0
	regions := []models.RegionProfile{
		{District: " Mysuru", Taluq: "HUNSUR ", AvgTempKharif: &temp},
		{District: "mysuru", Taluq: "hunsur"},
		{District: "Udupi", Taluq: "Kundapura"},
	}
	s := NewStore(nil, regions, 0)

	if s.RegionCount() != 2 {
		t.Errorf("RegionCount() = %d, want 2", s.RegionCount())
	}
	if s.NPKMaxSum() != 1 {
		t.Errorf("NPKMaxSum() = %v, want 1", s.NPKMaxSum())
	}

	r, ok := s.Region(models.NewRegionKey("MYSURU", "Hunsur"))
	if !ok {
		t.Fatal("Region() not found")
	}
	if r.AvgTempKharif == nil || *r.AvgTempKharif != 25 {
		t.Errorf("first row should win, got AvgTempKharif = %v", r.AvgTempKharif)
	}

	if _, ok := s.Region(models.NewRegionKey("mandya", "maddur")); ok {
		t.Error("Region() found unknown key")
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	artifact := writeFile(t, "model.json", validArtifact)
	csv := writeFile(t, "regions.csv", "district,taluq,avg_temp_kharif,avg_temp_rabi,avg_rainfall\nMysuru,Hunsur,25,22,780\n")

	store, a, err := Load(context.Background(), artifact, RegionSource{CSVPath: csv})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if a.Version != "2026.03" {
		t.Errorf("Version = %q", a.Version)
	}
	if len(store.Crops()) != 2 {
		t.Errorf("len(Crops()) = %d, want 2", len(store.Crops()))
	}
	if store.NPKMaxSum() != 80+40+40 {
		t.Errorf("NPKMaxSum() = %v, want 160", store.NPKMaxSum())
	}
	r, ok := store.Region(models.NewRegionKey("mysuru", "hunsur"))
	if !ok || r.AvgRainfall == nil || *r.AvgRainfall != 780 {
		t.Errorf("Region(mysuru, hunsur) = %v, %v", r, ok)
	}
}

func TestLoadRegions_NoSource(t *testing.T) {
	t.Parallel()

	if _, err := LoadRegions(context.Background(), RegionSource{}); err == nil {
		t.Error("LoadRegions() error = nil with no source")
	}
	if _, err := LoadRegions(context.Background(), RegionSource{Table: "regions"}); err == nil {
		t.Error("LoadRegions() error = nil for table without database")
	}
}
