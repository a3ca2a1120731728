package pileup

import (
	"fmt"
	"io"

	"github.com/inodb/vibe-pileup/internal/quality"
	"github.com/inodb/vibe-pileup/internal/scan"
)

// Reader parses simple (m)pileup input. The zero value is not ready for use;
// call NewReader for the defaults (quality strings enabled, sanger encoding,
// no quality filtering).
//
// A Reader holds configuration only. Per-stream parse state (the fixed
// per-line sample arity) lives in the Record that is passed to ParseLine,
// so a Reader can serve multiple streams as long as each stream gets its
// own Record.
type Reader struct {
	// WithQualityString controls whether each sample field block carries a
	// quality string after the base string. Enabled by default.
	WithQualityString bool

	// QualityEncoding selects the phred decoding scheme for quality strings.
	QualityEncoding quality.Encoding

	// MinPhredScore is the minimum quality for a base to be tallied. Bases
	// below the threshold are skipped entirely (neither base nor deletion).
	MinPhredScore uint8
}

// NewReader returns a reader with default settings.
func NewReader() *Reader {
	return &Reader{
		WithQualityString: true,
		QualityEncoding:   quality.Sanger,
	}
}

// ParseLine parses one pileup line from s into rec, overwriting it in place.
// It returns false with a nil error at clean end of input, with rec reset to
// its empty default.
//
// The first parsed line determines how many sample field blocks every
// subsequent line of the same stream must carry; a mismatch fails with
// ErrSampleCountMismatch.
func (r *Reader) ParseLine(s *scan.Scanner, rec *Record) (bool, error) {
	return r.parseLine(s, rec, nil)
}

// ParseLineFiltered is ParseLine with a sample filter: only samples at
// indices where filter is true are materialized into rec.Samples. All sample
// field blocks present in the line are still scanned and validated, so the
// parse position stays correct. A filter shorter than the line's sample
// count excludes the remaining samples; extra trailing entries are ignored.
func (r *Reader) ParseLineFiltered(s *scan.Scanner, rec *Record, filter []bool) (bool, error) {
	return r.parseLine(s, rec, filter)
}

// ReadAll parses the named source to exhaustion and returns all records.
func (r *Reader) ReadAll(src io.Reader, name string) ([]Record, error) {
	s := scan.NewScanner(src, name)
	var recs []Record
	var rec Record
	for {
		ok, err := r.ParseLine(s, &rec)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		recs = append(recs, rec.Clone())
	}
	return recs, nil
}

// MakeSampleFilter turns a list of sample indices into a boolean filter
// suitable for ParseLineFiltered.
func MakeSampleFilter(indices []int) []bool {
	max := -1
	for _, i := range indices {
		if i > max {
			max = i
		}
	}
	filter := make([]bool, max+1)
	for _, i := range indices {
		filter[i] = true
	}
	return filter
}

func (r *Reader) parseLine(s *scan.Scanner, rec *Record, filter []bool) (bool, error) {
	// At end of input, reset the record so that a reused buffer does not
	// carry the sample arity (or stale data) over to another stream.
	if !s.Good() {
		rec.Reset()
		return false, nil
	}
	if scan.IsNewline(s.Current()) {
		return false, parseErr(s, ErrEmptyLine, "")
	}

	// Chromosome.
	if err := s.Expect(scan.IsGraph, "chromosome name"); err != nil {
		return false, err
	}
	rec.Chromosome = string(s.ReadWhile(scan.IsGraph, nil))

	// Position.
	if err := nextField(s); err != nil {
		return false, err
	}
	pos, err := s.ParseUint()
	if err != nil {
		return false, err
	}
	rec.Position = pos

	// Reference base.
	if err := nextField(s); err != nil {
		return false, err
	}
	rb := scan.ToUpper(s.Current())
	if rb != 'A' && rb != 'C' && rb != 'G' && rb != 'T' && rb != 'N' {
		return false, parseErr(s, ErrInvalidReferenceBase, fmt.Sprintf("found %q", s.Current()))
	}
	rec.ReferenceBase = rb
	s.Next()

	// Sample field blocks. The first line fixes the arity for the stream.
	first := rec.fieldCount == 0
	if first {
		rec.Samples = rec.Samples[:0]
	}
	index := 0
	kept := 0
	for s.Good() && !scan.IsNewline(s.Current()) {
		if !first && index >= rec.fieldCount {
			return false, parseErr(s, ErrSampleCountMismatch, "")
		}
		keep := filter == nil || (index < len(filter) && filter[index])
		var smp *Sample
		switch {
		case !keep:
			smp = &rec.scratch
		case first:
			rec.Samples = append(rec.Samples, Sample{})
			smp = &rec.Samples[len(rec.Samples)-1]
			kept++
		default:
			smp = &rec.Samples[kept]
			kept++
		}
		smp.Reset()
		if err := r.parseSampleFields(s, rec, smp); err != nil {
			return false, err
		}
		if err := r.tallySampleCounts(s, smp); err != nil {
			return false, err
		}
		index++
	}
	if first {
		rec.fieldCount = index
	} else if index != rec.fieldCount {
		return false, parseErr(s, ErrSampleCountMismatch, "")
	}

	// Consume the line terminator.
	if s.Good() {
		if s.Current() == '\r' {
			s.Next()
		}
		if s.Good() && s.Current() == '\n' {
			s.Next()
		}
	}
	return true, nil
}

// nextField affirms that at least one blank separates the previous field,
// then skips to the start of the next one.
func nextField(s *scan.Scanner) error {
	if err := s.Expect(scan.IsBlank, "field separator"); err != nil {
		return err
	}
	s.SkipWhile(scan.IsBlank)
	return nil
}

// isIndelChar reports whether c may appear inside an indel annotation,
// per the mpileup definition (http://www.htslib.org/doc/samtools-mpileup.html).
func isIndelChar(c byte) bool {
	switch scan.ToUpper(c) {
	case 'A', 'C', 'G', 'T', 'N', '*', '#':
		return true
	}
	return false
}

// parseSampleFields decodes one sample field block: coverage, base string,
// and (if enabled) quality string.
func (r *Reader) parseSampleFields(s *scan.Scanner, rec *Record, smp *Sample) error {
	// Declared read coverage.
	if err := nextField(s); err != nil {
		return err
	}
	cov, err := s.ParseUint()
	if err != nil {
		return err
	}
	smp.ReadCoverage = cov

	// Base string. Match symbols expand to the reference base, indel and
	// read segment annotations are skipped, everything else is kept verbatim.
	if err := nextField(s); err != nil {
		return err
	}
	for s.Good() && scan.IsGraph(s.Current()) {
		c := s.Current()
		switch c {
		case '+', '-':
			// An indel annotation [+-][0-9]+ followed by that many base
			// codes. Coverage-neutral, so nothing is appended.
			s.Next()
			cnt, err := s.ParseUint()
			if err != nil {
				return err
			}
			for i := uint64(0); i < cnt; i++ {
				if !s.Good() || !isIndelChar(s.Current()) {
					return parseErr(s, ErrInvalidIndelCharacter, "")
				}
				s.Next()
			}
		case '^':
			// Start of a read segment, followed by one mapping quality
			// character. Both are discarded.
			s.Next()
			if !s.Good() {
				return parseErr(s, ErrTruncatedReadSegmentMarker, "")
			}
			s.Next()
		case '$':
			// End of a read segment.
			s.Next()
		case '.':
			smp.ReadBases = append(smp.ReadBases, scan.ToUpper(rec.ReferenceBase))
			s.Next()
		case ',':
			smp.ReadBases = append(smp.ReadBases, scan.ToLower(rec.ReferenceBase))
			s.Next()
		default:
			smp.ReadBases = append(smp.ReadBases, c)
			s.Next()
		}
	}

	// Quality string.
	if r.WithQualityString {
		if err := nextField(s); err != nil {
			return err
		}
		for s.Good() && scan.IsGraph(s.Current()) {
			score, err := quality.DecodeToPhred(s.Current(), r.QualityEncoding)
			if err != nil {
				return &ParseError{
					Source: s.Source(),
					At:     s.At(),
					Err:    err,
				}
			}
			smp.PhredScores = append(smp.PhredScores, score)
			s.Next()
		}
		if len(smp.ReadBases) != len(smp.PhredScores) {
			return parseErr(s, ErrBaseQualityLengthMismatch, fmt.Sprintf(
				"%d bases, but %d quality score codes",
				len(smp.ReadBases), len(smp.PhredScores),
			))
		}
	}

	// Guard against unrecognized trailing content.
	if s.Good() && !scan.IsBlank(s.Current()) && !scan.IsNewline(s.Current()) {
		return parseErr(s, ErrTrailingGarbage, fmt.Sprintf("found %q", s.Current()))
	}
	return nil
}

// tallySampleCounts classifies the decoded bases into the per-base counters,
// skipping bases below the quality threshold, and reconciles the result
// against the declared coverage.
func (r *Reader) tallySampleCounts(s *scan.Scanner, smp *Sample) error {
	var skipCount, rnaCount uint64
	for i := 0; i < len(smp.ReadBases); i++ {
		if len(smp.PhredScores) > 0 && smp.PhredScores[i] < r.MinPhredScore {
			skipCount++
			continue
		}
		switch smp.ReadBases[i] {
		case 'a', 'A':
			smp.ACount++
		case 'c', 'C':
			smp.CCount++
		case 'g', 'G':
			smp.GCount++
		case 't', 'T':
			smp.TCount++
		case 'n', 'N':
			smp.NCount++
		case '*', '#':
			smp.DCount++
		case '<', '>':
			// RNA splice markers count toward no public tally.
			rnaCount++
		default:
			return parseErr(s, ErrInvalidAlleleCharacter, fmt.Sprintf("found %q", smp.ReadBases[i]))
		}
	}

	// The declared coverage has to account for every decoded base call.
	// Exception: at least one producer (seen in the PoPoolation2 test data)
	// omits a single low-quality or deleted base from the coverage counter,
	// on lines where nothing else was called. Allow exactly that case:
	// zero called bases, and one single deleted or skipped base that is
	// missing from the declared coverage.
	tolerated := smp.BaseCount() == 0 && smp.DCount+skipCount == 1 &&
		uint64(len(smp.ReadBases)) == smp.ReadCoverage+1
	if uint64(len(smp.ReadBases)) != smp.ReadCoverage && !tolerated {
		return parseErr(s, ErrCoverageMismatch, fmt.Sprintf(
			"given read count (%d) does not match the number of bases found in the sample (%d)",
			smp.ReadCoverage, len(smp.ReadBases),
		))
	}
	return nil
}
