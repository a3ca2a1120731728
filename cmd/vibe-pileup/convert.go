package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-pileup/internal/duckdb"
	"github.com/inodb/vibe-pileup/internal/output"
	"github.com/inodb/vibe-pileup/internal/pileup"
)

// recordWriter consumes records; implemented by the text format writers.
type recordWriter interface {
	Write(rec *pileup.Record) error
	Flush() error
}

func newConvertCmd(opts *rootOptions) *cobra.Command {
	var (
		format  string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "convert <pileup-file>",
		Short: "Convert a pileup file to sync, tab, or DuckDB format",
		Long: `Convert parses a pileup file and writes the per-sample tallies in
another format: PoPoolation2 sync counts, a long-form tab table, or a
queryable DuckDB database.`,
		Example: `  vibe-pileup convert sample.pileup
  vibe-pileup convert -f tab -o tallies.tsv sample.pileup
  vibe-pileup convert -f duckdb -o sites.duckdb sample.pileup.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, args[0], format, outPath)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "sync", "Output format: sync, tab, duckdb")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Output file (default: derived from input, or stdout for '-')")

	return cmd
}

func runConvert(opts *rootOptions, path, format, outPath string) error {
	logger := opts.logger
	defer logger.Sync()

	if format == "duckdb" {
		return convertDuckDB(opts, path, outPath)
	}

	it, closeInput, err := opts.newIterator(path)
	if err != nil {
		return err
	}
	defer closeInput()

	var out *os.File
	if outPath == "" {
		switch format {
		case "sync":
			outPath = defaultOutputPath(path, ".sync")
		case "tab":
			outPath = defaultOutputPath(path, ".tsv")
		default:
			return fmt.Errorf("unknown output format %q", format)
		}
	}
	if outPath == "" {
		out = os.Stdout
	} else {
		out, err = os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer out.Close()
	}

	var w recordWriter
	switch format {
	case "sync":
		w = output.NewSyncWriter(out)
	case "tab":
		tw := output.NewTabWriter(out)
		if err := tw.WriteHeader(); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		w = tw
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	records := 0
	for it.Good() {
		if err := w.Write(it.Record()); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		records++
		if err := it.Next(); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	logger.Info("converted pileup",
		zap.String("input", path),
		zap.String("format", format),
		zap.Int("records", records))
	return nil
}

func convertDuckDB(opts *rootOptions, path, outPath string) error {
	logger := opts.logger

	if outPath == "" {
		outPath = defaultOutputPath(path, ".duckdb")
	}
	if outPath == "" {
		return fmt.Errorf("--output is required for duckdb output from stdin")
	}
	// Start from a clean database.
	if _, err := os.Stat(outPath); err == nil {
		if err := os.Remove(outPath); err != nil {
			return fmt.Errorf("remove existing output: %w", err)
		}
	}

	it, closeInput, err := opts.newIterator(path)
	if err != nil {
		return err
	}
	defer closeInput()

	var recs []pileup.Record
	for it.Good() {
		recs = append(recs, it.Record().Clone())
		if err := it.Next(); err != nil {
			return err
		}
	}

	store, err := duckdb.Open(outPath)
	if err != nil {
		return err
	}
	defer store.Close()
	store.SetLogger(logger)

	rows, err := store.WriteRecords(recs)
	if err != nil {
		return err
	}
	if err := store.WriteMetadata(path, opts.qualityEncoding, opts.minBaseQuality, len(recs)); err != nil {
		return err
	}

	logger.Info("converted pileup to duckdb",
		zap.String("input", path),
		zap.String("output", outPath),
		zap.Int("records", len(recs)),
		zap.Int("rows", rows))
	fmt.Fprintf(os.Stderr, "Wrote %d records (%d site rows) to %s\n", len(recs), rows, outPath)
	return nil
}
