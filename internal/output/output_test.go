package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/inodb/vibe-pileup/internal/pileup"
)

func testRecord() *pileup.Record {
	return &pileup.Record{
		Chromosome:    "2R",
		Position:      2302,
		ReferenceBase: 'N',
		Samples: []pileup.Sample{
			{
				ReadCoverage: 5,
				ReadBases:    []byte("TTTtt"),
				TCount:       5,
			},
			{
				ReadCoverage: 4,
				ReadBases:    []byte("CCc*"),
				CCount:       3,
				DCount:       1,
			},
		},
	}
}

func TestSyncWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewSyncWriter(&buf)

	if err := w.Write(testRecord()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	want := "2R\t2302\tN\t0:5:0:0:0:0\t0:0:3:0:0:1\n"
	if buf.String() != want {
		t.Errorf("sync output mismatch:\ngot  %q\nwant %q", buf.String(), want)
	}
}

func TestTabWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	if err := w.WriteHeader(); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if err := w.Write(testRecord()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus two sample rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "#Chromosome\tPosition") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if lines[1] != "2R\t2302\tN\t0\t5\tTTTtt\t0\t0\t0\t5\t0\t0" {
		t.Errorf("unexpected first sample row: %s", lines[1])
	}
	if lines[2] != "2R\t2302\tN\t1\t4\tCCc*\t0\t3\t0\t0\t0\t1" {
		t.Errorf("unexpected second sample row: %s", lines[2])
	}
}

func TestTabWriter_EmptyBases(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	rec := &pileup.Record{
		Chromosome:    "chr1",
		Position:      1,
		ReferenceBase: 'A',
		Samples:       []pileup.Sample{{ReadCoverage: 0}},
	}
	if err := w.Write(rec); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if !strings.Contains(buf.String(), "\t-\t") {
		t.Errorf("expected placeholder for empty base string, got %q", buf.String())
	}
}
