package pileup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-pileup/internal/scan"
)

func newTestScanner(input string) *scan.Scanner {
	return scan.NewScanner(strings.NewReader(input), "test")
}

func TestParseLine_Basic(t *testing.T) {
	// Classic samtools pileup line: one sample, 24 reads on the forward and
	// reverse strand, one read start and one read end marker.
	line := "seq1\t272\tT\t24\t,.$.....,,.,.,...,,,.,..^+.\t<<<+;<<<<<<<<<<<=<;<;7<&\n"

	r := NewReader()
	var rec Record
	ok, err := r.ParseLine(newTestScanner(line), &rec)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "seq1", rec.Chromosome)
	assert.Equal(t, uint64(272), rec.Position)
	assert.Equal(t, byte('T'), rec.ReferenceBase)
	require.Len(t, rec.Samples, 1)

	s := &rec.Samples[0]
	assert.Equal(t, uint64(24), s.ReadCoverage)
	assert.Equal(t, "tTTTTTTttTtTtTTTtttTtTTT", string(s.ReadBases))
	require.Len(t, s.PhredScores, 24)
	assert.Equal(t, uint8('<'-33), s.PhredScores[0])
	assert.Equal(t, uint8('&'-33), s.PhredScores[23])

	assert.Equal(t, uint64(24), s.TCount)
	assert.Equal(t, uint64(0), s.ACount+s.CCount+s.GCount+s.NCount+s.DCount)
}

func TestParseLine_LowercaseReferenceNormalized(t *testing.T) {
	r := NewReader()
	r.WithQualityString = false
	var rec Record
	ok, err := r.ParseLine(newTestScanner("chr1\t9\tg\t1\t.\n"), &rec)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, byte('G'), rec.ReferenceBase)
	assert.Equal(t, "G", string(rec.Samples[0].ReadBases))
}

func TestParseLine_EndOfInput(t *testing.T) {
	r := NewReader()
	r.WithQualityString = false
	var rec Record
	s := newTestScanner("chr1\t1\tA\t1\t.\n")

	ok, err := r.ParseLine(s, &rec)
	require.NoError(t, err)
	require.True(t, ok)

	// At end of input, the record is reset so that reuse across streams
	// does not carry the sample arity over.
	ok, err = r.ParseLine(s, &rec)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, rec.Chromosome)
	assert.Empty(t, rec.Samples)
}

func TestParseLine_EmptyLine(t *testing.T) {
	r := NewReader()
	var rec Record
	_, err := r.ParseLine(newTestScanner("\nchr1\t1\tA\n"), &rec)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyLine)
}

func TestParseLine_InvalidReferenceBase(t *testing.T) {
	r := NewReader()
	var rec Record
	_, err := r.ParseLine(newTestScanner("chr1\t5\tX\t1\t.\t<\n"), &rec)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidReferenceBase)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "test", perr.Source)
	assert.NotEmpty(t, perr.At)
}

func TestParseLine_IndelSkipped(t *testing.T) {
	// The +2AC insertion is coverage-neutral: it contributes nothing to the
	// base string or the tallies.
	r := NewReader()
	r.WithQualityString = false
	var rec Record
	ok, err := r.ParseLine(newTestScanner("3R\t100\tG\t5\t.,+2AC.,.\n"), &rec)
	require.NoError(t, err)
	require.True(t, ok)

	s := &rec.Samples[0]
	assert.Equal(t, "GgGgG", string(s.ReadBases))
	assert.Equal(t, uint64(5), s.GCount)
	assert.Equal(t, uint64(0), s.ACount+s.CCount+s.TCount+s.NCount+s.DCount)
}

func TestParseLine_DeletionRunSkipped(t *testing.T) {
	r := NewReader()
	r.WithQualityString = false
	var rec Record
	ok, err := r.ParseLine(newTestScanner("chr2\t42\tt\t4\t.-2aN,..\n"), &rec)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "TtTT", string(rec.Samples[0].ReadBases))
}

func TestParseLine_InvalidIndelCharacter(t *testing.T) {
	r := NewReader()
	r.WithQualityString = false
	var rec Record
	_, err := r.ParseLine(newTestScanner("chr1\t1\tA\t3\t.+2AQ..\n"), &rec)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidIndelCharacter)
}

func TestParseLine_TruncatedReadSegmentMarker(t *testing.T) {
	r := NewReader()
	r.WithQualityString = false
	var rec Record
	_, err := r.ParseLine(newTestScanner("chr1\t1\tA\t1\t.^"), &rec)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTruncatedReadSegmentMarker)
}

func TestParseLine_TrailingGarbage(t *testing.T) {
	r := NewReader()
	r.WithQualityString = false
	var rec Record
	_, err := r.ParseLine(newTestScanner("chr1\t1\tA\t1\t.\x01\n"), &rec)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTrailingGarbage)
}

func TestParseLine_BaseQualityLengthMismatch(t *testing.T) {
	r := NewReader()
	var rec Record
	_, err := r.ParseLine(newTestScanner("chr1\t1\tA\t1\t.\t<<\n"), &rec)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBaseQualityLengthMismatch)
}

func TestParseLine_InvalidAlleleCharacter(t *testing.T) {
	// 'R' survives base string decoding (any non-special graph character is
	// kept verbatim) but the tally step rejects it.
	r := NewReader()
	var rec Record
	_, err := r.ParseLine(newTestScanner("chr1\t1\tA\t1\tR\t<\n"), &rec)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidAlleleCharacter)
}

func TestParseLine_SampleCountMismatch(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "second line has fewer samples",
			input: "chr1\t1\tA\t1\t.\t<\t1\t,\t<\nchr1\t2\tA\t1\t.\t<\n",
		},
		{
			name:  "second line has more samples",
			input: "chr1\t1\tA\t1\t.\t<\nchr1\t2\tA\t1\t.\t<\t1\t,\t<\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader()
			var rec Record
			s := newTestScanner(tt.input)

			ok, err := r.ParseLine(s, &rec)
			require.NoError(t, err)
			require.True(t, ok)

			_, err = r.ParseLine(s, &rec)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSampleCountMismatch)
		})
	}
}

func TestParseLine_CoverageTolerance(t *testing.T) {
	// Line observed in the PoPoolation2 test data: the second sample has a
	// declared coverage of zero but one deleted base. Exactly one deleted
	// or skipped base may be missing from the declared coverage.
	r := NewReader()
	var rec Record
	ok, err := r.ParseLine(newTestScanner("2R\t113608\tN\t1\tT$\tA\t0\t*\t*\n"), &rec)
	require.NoError(t, err)
	require.True(t, ok)

	require.Len(t, rec.Samples, 2)
	assert.Equal(t, uint64(1), rec.Samples[0].ReadCoverage)
	assert.Equal(t, "T", string(rec.Samples[0].ReadBases))
	assert.Equal(t, uint64(1), rec.Samples[0].TCount)
	assert.Equal(t, uint64(0), rec.Samples[1].ReadCoverage)
	assert.Equal(t, "*", string(rec.Samples[1].ReadBases))
	assert.Equal(t, uint64(1), rec.Samples[1].DCount)
}

func TestParseLine_CoverageMismatch(t *testing.T) {
	// Two deleted bases with zero called bases exceed the tolerance.
	r := NewReader()
	var rec Record
	_, err := r.ParseLine(newTestScanner("2R\t113608\tN\t1\tT$\tA\t0\t**\t**\n"), &rec)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCoverageMismatch)
}

func TestParseLine_ToleranceBoundary(t *testing.T) {
	// A single base below the quality threshold is skipped. With coverage 1
	// the lengths agree; with coverage 0 the one-off tolerance applies; with
	// coverage 2 nothing can reconcile the counts.
	parse := func(coverage string) error {
		r := NewReader()
		r.MinPhredScore = 20
		var rec Record
		_, err := r.ParseLine(newTestScanner("chr1\t10\tA\t"+coverage+"\tC\t!\n"), &rec)
		return err
	}

	require.NoError(t, parse("1"))
	require.NoError(t, parse("0"))

	err := parse("2")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCoverageMismatch)
}

func TestParseLine_QualityFilterSkipsBases(t *testing.T) {
	// Phred scores: 'I' = 40, '!' = 0. Only the two high quality bases
	// are tallied.
	r := NewReader()
	r.MinPhredScore = 20
	var rec Record
	ok, err := r.ParseLine(newTestScanner("chr1\t7\tA\t4\t.C,g\tI!I!\n"), &rec)
	require.NoError(t, err)
	require.True(t, ok)

	s := &rec.Samples[0]
	assert.Equal(t, "ACag", string(s.ReadBases))
	assert.Equal(t, uint64(2), s.ACount)
	assert.Equal(t, uint64(0), s.CCount)
	assert.Equal(t, uint64(0), s.GCount)
}

func TestParseLine_RNAMarkersNotTallied(t *testing.T) {
	// '<' and '>' stay in the base string but count toward no public tally.
	r := NewReader()
	r.WithQualityString = false
	var rec Record
	ok, err := r.ParseLine(newTestScanner("chr1\t3\tA\t6\t..<>,N\n"), &rec)
	require.NoError(t, err)
	require.True(t, ok)

	s := &rec.Samples[0]
	require.Len(t, s.ReadBases, 6)
	assert.Equal(t, uint64(3), s.ACount)
	assert.Equal(t, uint64(1), s.NCount)
	sum := s.ACount + s.CCount + s.GCount + s.TCount + s.NCount + s.DCount
	assert.Equal(t, uint64(4), sum, "tally sum excludes the two RNA markers")
}

func TestParseLine_SpaceSeparated(t *testing.T) {
	// Runs of blanks separate fields just as single tabs do.
	r := NewReader()
	r.WithQualityString = false
	var rec Record
	ok, err := r.ParseLine(newTestScanner("chr1   15  A   2  .,\n"), &rec)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(15), rec.Position)
	assert.Equal(t, "Aa", string(rec.Samples[0].ReadBases))
}

func TestParseLineFiltered_Mask(t *testing.T) {
	// Only the first sample is materialized, but both sample fields are
	// consumed: the second line parses cleanly, which it would not if the
	// cursor were left inside line one.
	input := "chr1\t1\tA\t2\t..\t<<\t1\tC\t<\n" +
		"chr1\t2\tA\t1\t.\t<\t3\tggg\t<<<\n"

	r := NewReader()
	var rec Record
	s := newTestScanner(input)

	ok, err := r.ParseLineFiltered(s, &rec, []bool{true, false})
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, rec.Samples, 1)
	assert.Equal(t, "AA", string(rec.Samples[0].ReadBases))

	ok, err = r.ParseLineFiltered(s, &rec, []bool{true, false})
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, rec.Samples, 1)
	assert.Equal(t, "A", string(rec.Samples[0].ReadBases))
	assert.Equal(t, uint64(2), rec.Position)
}

func TestParseLineFiltered_ShortAndLongMasks(t *testing.T) {
	line := "chr1\t1\tA\t1\t.\t<\t1\tC\t<\t1\tg\t<\n"

	t.Run("short mask excludes the tail", func(t *testing.T) {
		r := NewReader()
		var rec Record
		ok, err := r.ParseLineFiltered(newTestScanner(line), &rec, []bool{false, true})
		require.NoError(t, err)
		require.True(t, ok)
		require.Len(t, rec.Samples, 1)
		assert.Equal(t, "C", string(rec.Samples[0].ReadBases))
	})

	t.Run("long mask ignores extra entries", func(t *testing.T) {
		r := NewReader()
		var rec Record
		ok, err := r.ParseLineFiltered(newTestScanner(line), &rec, []bool{true, true, true, true, true})
		require.NoError(t, err)
		require.True(t, ok)
		assert.Len(t, rec.Samples, 3)
	})
}

func TestParseLineFiltered_ExcludedSampleStillValidated(t *testing.T) {
	// The excluded second sample carries a coverage mismatch; scanning it
	// anyway surfaces the error.
	r := NewReader()
	var rec Record
	_, err := r.ParseLineFiltered(
		newTestScanner("chr1\t1\tA\t1\t.\t<\t5\t..\t<<\n"), &rec, []bool{true, false})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCoverageMismatch)
}

func TestReadAll(t *testing.T) {
	input := "chr1\t1\tA\t1\t.\t<\n" +
		"chr1\t2\tC\t2\t.,\t<<\n" +
		"chr2\t1\tG\t1\t,\t<\n"

	recs, err := NewReader().ReadAll(strings.NewReader(input), "test")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "chr1", recs[0].Chromosome)
	assert.Equal(t, uint64(2), recs[1].Position)
	assert.Equal(t, "g", string(recs[2].Samples[0].ReadBases))

	// Records must not alias the reused parse buffer.
	assert.Equal(t, "A", string(recs[0].Samples[0].ReadBases))
}

func TestReadAll_Idempotence(t *testing.T) {
	input := "seq1\t272\tT\t24\t,.$.....,,.,.,...,,,.,..^+.\t<<<+;<<<<<<<<<<<=<;<;7<&\n" +
		"seq1\t273\tT\t23\t,.....,,.,.,...,,,.,..A\t<<<;<<<<<<<<<3<=<<<;<<+\n"

	first, err := NewReader().ReadAll(strings.NewReader(input), "test")
	require.NoError(t, err)
	second, err := NewReader().ReadAll(strings.NewReader(input), "test")
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestMakeSampleFilter(t *testing.T) {
	filter := MakeSampleFilter([]int{0, 3})
	assert.Equal(t, []bool{true, false, false, true}, filter)

	assert.Empty(t, MakeSampleFilter(nil))
}

func TestSampleReset(t *testing.T) {
	s := Sample{
		ReadCoverage: 3,
		ReadBases:    []byte("ACg"),
		PhredScores:  []uint8{30, 30, 30},
		ACount:       1, CCount: 1, GCount: 1,
	}
	s.Reset()
	assert.Zero(t, s.ReadCoverage)
	assert.Empty(t, s.ReadBases)
	assert.Empty(t, s.PhredScores)
	assert.Zero(t, s.ACount+s.CCount+s.GCount+s.TCount+s.NCount+s.DCount)
	// Capacity is retained for reuse.
	assert.Equal(t, 3, cap(s.ReadBases))
}
