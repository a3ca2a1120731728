package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/inodb/vibe-pileup/internal/pileup"
)

// WriteRecords batch-inserts pileup records into DuckDB using the Appender
// API, one row per sample per site. Returns the number of rows written.
func (s *Store) WriteRecords(recs []pileup.Record) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return 0, fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "pileup_sites")
		return err
	}); err != nil {
		return 0, fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	rows := 0
	for i := range recs {
		rec := &recs[i]
		for j := range rec.Samples {
			smp := &rec.Samples[j]
			if err := appender.AppendRow(
				rec.Chromosome, int64(rec.Position), string(rec.ReferenceBase), int32(j),
				int64(smp.ReadCoverage), string(smp.ReadBases),
				int64(smp.ACount), int64(smp.CCount), int64(smp.GCount),
				int64(smp.TCount), int64(smp.NCount), int64(smp.DCount),
			); err != nil {
				return rows, fmt.Errorf("append pileup site: %w", err)
			}
			rows++
		}
	}

	if err := appender.Flush(); err != nil {
		return rows, fmt.Errorf("flush appender: %w", err)
	}
	s.logger.Info("wrote pileup sites",
		zap.Int("records", len(recs)),
		zap.Int("rows", rows))
	return rows, nil
}

// WriteMetadata records the provenance of the stored sites.
func (s *Store) WriteMetadata(source, encoding string, minBaseQuality int, recordCount int) error {
	_, err := s.db.Exec(
		`INSERT INTO pileup_metadata (source, quality_encoding, min_base_quality, record_count) VALUES (?, ?, ?, ?)`,
		source, encoding, minBaseQuality, recordCount,
	)
	if err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// CountSites returns the number of stored site rows.
func (s *Store) CountSites() (int64, error) {
	var n int64
	if err := s.db.QueryRow(`SELECT count(*) FROM pileup_sites`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sites: %w", err)
	}
	return n, nil
}
