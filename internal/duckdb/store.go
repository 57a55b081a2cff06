// Package duckdb persists variant reports in DuckDB. Each count run is
// recorded in the runs table together with fingerprints of its inputs;
// known variants and their nearby discovered variants are appended to
// known_variants and nearby_variants.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for report results.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path, empty for in-memory databases.
func (s *Store) Path() string {
	return s.path
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run_id BIGINT PRIMARY KEY,
		created_at TIMESTAMP,
		chrom VARCHAR,
		window_size BIGINT,
		reference_path VARCHAR,
		reference_size BIGINT,
		reference_mtime TIMESTAMP,
		catalog_path VARCHAR,
		catalog_size BIGINT,
		catalog_mtime TIMESTAMP,
		reads_path VARCHAR,
		reads_size BIGINT,
		reads_mtime TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS known_variants (
		run_id BIGINT,
		chrom VARCHAR,
		pos BIGINT,
		id VARCHAR,
		ref VARCHAR,
		alt VARCHAR,
		quality DOUBLE,
		variant_type VARCHAR,
		support BIGINT,
		coverage BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS nearby_variants (
		run_id BIGINT,
		chrom VARCHAR,
		known_pos BIGINT,
		known_ref VARCHAR,
		known_alt VARCHAR,
		pos BIGINT,
		ref VARCHAR,
		alt VARCHAR,
		variant_type VARCHAR,
		support BIGINT
	)`,
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
