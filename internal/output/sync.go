package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/inodb/vibe-pileup/internal/pileup"
)

// SyncWriter writes records in the PoPoolation2 "sync" format: chromosome,
// position, and reference base, followed by one A:T:C:G:N:del count column
// per sample.
type SyncWriter struct {
	w *bufio.Writer
}

// NewSyncWriter creates a new sync format writer.
func NewSyncWriter(w io.Writer) *SyncWriter {
	return &SyncWriter{w: bufio.NewWriter(w)}
}

// Write writes a single record as one sync line.
func (sw *SyncWriter) Write(rec *pileup.Record) error {
	if _, err := fmt.Fprintf(sw.w, "%s\t%d\t%c", rec.Chromosome, rec.Position, rec.ReferenceBase); err != nil {
		return err
	}
	for i := range rec.Samples {
		s := &rec.Samples[i]
		if _, err := fmt.Fprintf(sw.w, "\t%d:%d:%d:%d:%d:%d",
			s.ACount, s.TCount, s.CCount, s.GCount, s.NCount, s.DCount,
		); err != nil {
			return err
		}
	}
	return sw.w.WriteByte('\n')
}

// Flush flushes buffered output.
func (sw *SyncWriter) Flush() error {
	return sw.w.Flush()
}
