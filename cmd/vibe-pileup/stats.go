package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// statsCounters aggregates tallies across all records of a run.
type statsCounters struct {
	records      uint64
	samples      int
	a, c, g, t   uint64
	n, d         uint64
	coverage     uint64
	maxCoverage  uint64
	chromosomes  map[string]uint64
	currentChrom string
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <pileup-file>",
		Short: "Summarize base tallies and coverage of a pileup file",
		Example: `  vibe-pileup stats sample.pileup
  vibe-pileup stats --min-base-quality 20 sample.pileup.gz
  cat sample.pileup | vibe-pileup stats -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(opts, args[0])
		},
	}
}

func runStats(opts *rootOptions, path string) error {
	logger := opts.logger
	defer logger.Sync()

	it, closeInput, err := opts.newIterator(path)
	if err != nil {
		return err
	}
	defer closeInput()

	agg := statsCounters{chromosomes: make(map[string]uint64)}
	for it.Good() {
		rec := it.Record()
		agg.records++
		agg.samples = len(rec.Samples)
		if rec.Chromosome != agg.currentChrom {
			agg.currentChrom = rec.Chromosome
			logger.Info("entering chromosome", zap.String("chrom", rec.Chromosome))
		}
		agg.chromosomes[rec.Chromosome]++
		for i := range rec.Samples {
			s := &rec.Samples[i]
			agg.a += s.ACount
			agg.c += s.CCount
			agg.g += s.GCount
			agg.t += s.TCount
			agg.n += s.NCount
			agg.d += s.DCount
			agg.coverage += s.ReadCoverage
			if s.ReadCoverage > agg.maxCoverage {
				agg.maxCoverage = s.ReadCoverage
			}
		}
		if err := it.Next(); err != nil {
			return err
		}
	}

	logger.Info("finished reading",
		zap.Uint64("records", agg.records),
		zap.Int("samples", agg.samples))

	w := os.Stdout
	fmt.Fprintf(w, "records\t%d\n", agg.records)
	fmt.Fprintf(w, "chromosomes\t%d\n", len(agg.chromosomes))
	fmt.Fprintf(w, "samples\t%d\n", agg.samples)
	fmt.Fprintf(w, "a_count\t%d\n", agg.a)
	fmt.Fprintf(w, "c_count\t%d\n", agg.c)
	fmt.Fprintf(w, "g_count\t%d\n", agg.g)
	fmt.Fprintf(w, "t_count\t%d\n", agg.t)
	fmt.Fprintf(w, "n_count\t%d\n", agg.n)
	fmt.Fprintf(w, "d_count\t%d\n", agg.d)
	fmt.Fprintf(w, "max_coverage\t%d\n", agg.maxCoverage)
	if agg.records > 0 && agg.samples > 0 {
		mean := float64(agg.coverage) / float64(agg.records*uint64(agg.samples))
		fmt.Fprintf(w, "mean_coverage\t%.2f\n", mean)
	}
	return nil
}
