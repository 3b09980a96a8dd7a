// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

// Package database wraps the embedded DuckDB engine used to read reference
// tables. DuckDB reads the region CSV directly (read_csv_auto) or serves the
// same rows from a table in an existing database file. Nothing is ever
// written through this package.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/cropwise/internal/logging"
)

// memoryPath opens a transient in-memory database.
const memoryPath = ":memory:"

// Config controls how the DuckDB handle is opened.
type Config struct {
	// Path to a DuckDB database file. Empty or ":memory:" opens an in-memory
	// database, which is all that is needed to read CSV files.
	Path string

	// Threads caps DuckDB worker threads. Default runtime.NumCPU().
	Threads int
}

// DB wraps a DuckDB connection pool.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens DuckDB. File databases are opened read-only.
func Open(cfg Config) (*DB, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	path := cfg.Path
	if path == "" {
		path = memoryPath
	}

	// Extension auto-install stays off so startup never reaches the network.
	connStr := fmt.Sprintf("%s?threads=%d&autoinstall_known_extensions=false&autoload_known_extensions=false", path, threads)
	if path != memoryPath {
		connStr += "&access_mode=read_only"
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logging.Debug().Str("path", path).Int("threads", threads).Msg("DuckDB opened")
	return &DB{conn: conn, path: path}, nil
}

// Conn exposes the underlying pool.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Path returns the database path, ":memory:" for in-memory handles.
func (db *DB) Path() string {
	return db.path
}

// Close releases the connection pool.
func (db *DB) Close() error {
	if db == nil || db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

func closeQuietly(conn *sql.DB) {
	if err := conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		logging.Warn().Err(err).Msg("Failed to close database")
	}
}
