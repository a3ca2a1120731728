// Package output provides pileup record output formatters.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/inodb/vibe-pileup/internal/pileup"
)

// TabWriter writes one tab-delimited row per sample per position, with the
// decoded bases and the per-base tallies.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Chromosome",
			"Position",
			"Reference",
			"Sample",
			"Coverage",
			"Bases",
			"A",
			"C",
			"G",
			"T",
			"N",
			"Del",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes all samples of a single record.
func (tw *TabWriter) Write(rec *pileup.Record) error {
	for i := range rec.Samples {
		s := &rec.Samples[i]
		bases := string(s.ReadBases)
		if bases == "" {
			bases = "-"
		}
		_, err := fmt.Fprintf(tw.w, "%s\t%d\t%c\t%d\t%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d\n",
			rec.Chromosome, rec.Position, rec.ReferenceBase, i,
			s.ReadCoverage, bases,
			s.ACount, s.CCount, s.GCount, s.TCount, s.NCount, s.DCount,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes buffered output.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
