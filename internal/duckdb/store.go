// Package duckdb stores parsed pileup records in a DuckDB database, one row
// per sample per site, so that tallies can be queried with SQL afterwards.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"
)

// Store manages a DuckDB connection holding pileup site tallies.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path, logger: zap.NewNop()}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// SetLogger sets the logger for progress messages.
func (s *Store) SetLogger(l *zap.Logger) {
	s.logger = l
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS pileup_sites (
		chrom VARCHAR,
		pos BIGINT,
		ref_base VARCHAR,
		sample_index INTEGER,
		coverage BIGINT,
		bases VARCHAR,
		a_count BIGINT,
		c_count BIGINT,
		g_count BIGINT,
		t_count BIGINT,
		n_count BIGINT,
		d_count BIGINT
	)`); err != nil {
		return err
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS pileup_metadata (
		source VARCHAR,
		quality_encoding VARCHAR,
		min_base_quality INTEGER,
		record_count BIGINT
	)`)
	return err
}
