// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/cropwise/internal/models"
)

// ErrMissingColumn is returned when a region source lacks a required column.
var ErrMissingColumn = errors.New("region source is missing a required column")

// district and taluq are required; climate columns read as NULL when absent.
var (
	regionKeyColumns     = []string{"district", "taluq"}
	regionClimateColumns = []string{"avg_temp_kharif", "avg_temp_rabi", "avg_rainfall"}
)

// Source is a SQL FROM expression that yields region rows.
type Source struct {
	from string
	desc string
}

// CSVSource reads a CSV file with a header row. Every column is read as text
// and cast afterwards so a malformed cell only nulls that cell.
func CSVSource(path string) Source {
	return Source{
		from: fmt.Sprintf("read_csv_auto(%s, header = true, all_varchar = true)", quoteLiteral(path)),
		desc: path,
	}
}

// TableSource reads an existing table or view.
func TableSource(name string) Source {
	return Source{from: quoteIdentifier(name), desc: name}
}

// String implements fmt.Stringer.
func (s Source) String() string { return s.desc }

// LoadRegions reads every region row from src in source order.
func (db *DB) LoadRegions(ctx context.Context, src Source) ([]models.RegionProfile, error) {
	columns, err := db.columns(ctx, src)
	if err != nil {
		return nil, err
	}

	query, err := regionQuery(src, columns)
	if err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query regions from %s: %w", src, err)
	}
	defer rows.Close()

	var regions []models.RegionProfile
	for rows.Next() {
		var (
			district, taluq        sql.NullString
			kharif, rabi, rainfall sql.NullFloat64
		)
		if err := rows.Scan(&district, &taluq, &kharif, &rabi, &rainfall); err != nil {
			return nil, fmt.Errorf("scan region row: %w", err)
		}
		regions = append(regions, models.RegionProfile{
			District:      district.String,
			Taluq:         taluq.String,
			AvgTempKharif: nullFloat(kharif),
			AvgTempRabi:   nullFloat(rabi),
			AvgRainfall:   nullFloat(rainfall),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate regions: %w", err)
	}
	return regions, nil
}

// columns maps lowercased column names of src to their actual spelling.
func (db *DB) columns(ctx context.Context, src Source) (map[string]string, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT * FROM "+src.from+" LIMIT 0")
	if err != nil {
		return nil, fmt.Errorf("inspect region source %s: %w", src, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read region columns: %w", err)
	}
	out := make(map[string]string, len(names))
	for _, n := range names {
		out[strings.ToLower(strings.TrimSpace(n))] = n
	}
	return out, nil
}

func regionQuery(src Source, columns map[string]string) (string, error) {
	selects := make([]string, 0, len(regionKeyColumns)+len(regionClimateColumns))
	for _, c := range regionKeyColumns {
		actual, ok := columns[c]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
		selects = append(selects, fmt.Sprintf("CAST(%s AS VARCHAR)", quoteIdentifier(actual)))
	}
	for _, c := range regionClimateColumns {
		actual, ok := columns[c]
		if !ok {
			selects = append(selects, "CAST(NULL AS DOUBLE)")
			continue
		}
		selects = append(selects, fmt.Sprintf("TRY_CAST(%s AS DOUBLE)", quoteIdentifier(actual)))
	}
	return "SELECT " + strings.Join(selects, ", ") + " FROM " + src.from, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return models.Float(v.Float64)
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
