// Package pileup provides parsing for samtools (m)pileup files: per-position
// text summaries of aligned reads, with one coverage/bases/qualities field
// block per sample.
package pileup

// Sample holds the decoded data of one sample at one position.
type Sample struct {
	// ReadCoverage is the read count as declared in the input. Due to a
	// producer quirk this is not always equal to the number of decoded
	// bases; see the reconciliation rule in the reader.
	ReadCoverage uint64

	// ReadBases is the decoded base-call string. Match symbols ('.' and ',')
	// are expanded to the upper/lower-case reference base; indel and read
	// segment markers are removed.
	ReadBases []byte

	// PhredScores holds one decoded quality score per entry of ReadBases.
	// Empty when quality parsing is disabled.
	PhredScores []uint8

	// Per-base tallies over ReadBases. Deletion and skip markers ('*', '#')
	// are counted in DCount.
	ACount uint64
	CCount uint64
	GCount uint64
	TCount uint64
	NCount uint64
	DCount uint64
}

// Reset clears the sample for reuse. Slices are truncated, not freed, so
// that per-line reuse does not reallocate.
func (s *Sample) Reset() {
	s.ReadCoverage = 0
	s.ReadBases = s.ReadBases[:0]
	s.PhredScores = s.PhredScores[:0]
	s.ACount = 0
	s.CCount = 0
	s.GCount = 0
	s.TCount = 0
	s.NCount = 0
	s.DCount = 0
}

// BaseCount returns the number of called bases (deletions excluded).
func (s *Sample) BaseCount() uint64 {
	return s.ACount + s.CCount + s.GCount + s.TCount + s.NCount
}

// Record holds one parsed pileup line.
type Record struct {
	Chromosome    string
	Position      uint64
	ReferenceBase byte
	Samples       []Sample

	// fieldCount is the number of sample field blocks per line, learned
	// from the first parsed line and enforced thereafter. With sample
	// filtering, len(Samples) can be smaller than fieldCount.
	fieldCount int

	// scratch receives samples that a filter excludes; their fields still
	// have to be scanned to keep the parse position correct.
	scratch Sample
}

// Reset clears the record, including the learned per-line sample arity.
// The sample buffer is truncated, not freed.
func (r *Record) Reset() {
	r.Chromosome = ""
	r.Position = 0
	r.ReferenceBase = 0
	r.Samples = r.Samples[:0]
	r.fieldCount = 0
}

// Clone returns a deep copy of the record. Parse buffers are reused across
// lines, so callers that retain records must clone them.
func (r *Record) Clone() Record {
	c := Record{
		Chromosome:    r.Chromosome,
		Position:      r.Position,
		ReferenceBase: r.ReferenceBase,
		fieldCount:    r.fieldCount,
	}
	if len(r.Samples) > 0 {
		c.Samples = make([]Sample, len(r.Samples))
		for i := range r.Samples {
			s := r.Samples[i]
			s.ReadBases = append([]byte(nil), s.ReadBases...)
			s.PhredScores = append([]uint8(nil), s.PhredScores...)
			c.Samples[i] = s
		}
	}
	return c
}
