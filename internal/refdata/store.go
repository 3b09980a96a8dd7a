// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package refdata

import (
	"context"
	"fmt"

	"github.com/tomtom215/cropwise/internal/database"
	"github.com/tomtom215/cropwise/internal/logging"
	"github.com/tomtom215/cropwise/internal/metrics"
	"github.com/tomtom215/cropwise/internal/models"
)

// Store is the immutable reference data shared by all requests.
type Store struct {
	crops     []models.CropProfile
	regions   map[models.RegionKey]*models.RegionProfile
	npkMaxSum float64
}

// NewStore indexes regions by canonical (district, taluq). The first row for
// a key wins; later duplicates are counted and ignored.
func NewStore(crops []models.CropProfile, regions []models.RegionProfile, npkMaxSum float64) *Store {
	s := &Store{
		crops:     crops,
		regions:   make(map[models.RegionKey]*models.RegionProfile, len(regions)),
		npkMaxSum: max(npkMaxSum, 1),
	}

	duplicates := 0
	for i := range regions {
		key := regions[i].Key()
		if _, ok := s.regions[key]; ok {
			duplicates++
			continue
		}
		s.regions[key] = &regions[i]
	}
	if duplicates > 0 {
		logging.Warn().Int("duplicates", duplicates).Msg("Duplicate region rows ignored")
	}

	metrics.ReferenceRows.WithLabelValues("crops").Set(float64(len(crops)))
	metrics.ReferenceRows.WithLabelValues("regions").Set(float64(len(s.regions)))
	return s
}

// Crops returns the crop table in artifact order. Callers must not modify it.
func (s *Store) Crops() []models.CropProfile {
	return s.crops
}

// Region returns the climate profile for key.
func (s *Store) Region(key models.RegionKey) (*models.RegionProfile, bool) {
	r, ok := s.regions[key]
	return r, ok
}

// RegionCount returns the number of distinct regions.
func (s *Store) RegionCount() int {
	return len(s.regions)
}

// NPKMaxSum returns the NPK normalization constant.
func (s *Store) NPKMaxSum() float64 {
	return s.npkMaxSum
}

// RegionSource selects where region rows come from. Exactly one of CSVPath
// and Table is used; Table wins when both are set.
type RegionSource struct {
	CSVPath  string
	Database string
	Table    string
}

// LoadRegions reads region rows through an embedded DuckDB handle.
func LoadRegions(ctx context.Context, src RegionSource) ([]models.RegionProfile, error) {
	var source database.Source
	cfg := database.Config{}
	switch {
	case src.Table != "":
		if src.Database == "" {
			return nil, fmt.Errorf("region table %q needs a database path", src.Table)
		}
		cfg.Path = src.Database
		source = database.TableSource(src.Table)
	case src.CSVPath != "":
		source = database.CSVSource(src.CSVPath)
	default:
		return nil, fmt.Errorf("no region source configured")
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close region database")
		}
	}()

	regions, err := db.LoadRegions(ctx, source)
	if err != nil {
		return nil, err
	}
	logging.Info().Str("source", source.String()).Int("rows", len(regions)).Msg("Region table loaded")
	return regions, nil
}

// Load reads the artifact and region table and builds the store.
func Load(ctx context.Context, artifactPath string, src RegionSource) (*Store, *Artifact, error) {
	artifact, err := LoadArtifact(artifactPath)
	if err != nil {
		return nil, nil, err
	}
	regions, err := LoadRegions(ctx, src)
	if err != nil {
		return nil, nil, err
	}
	if len(artifact.Crops) == 0 {
		logging.Warn().Msg("Artifact has an empty crop table; every request will return no candidates")
	}
	return NewStore(artifact.Crops, regions, artifact.NPKMaxSum()), artifact, nil
}
