// Package quality decodes phred quality characters under the historic
// FASTQ/pileup encoding schemes.
package quality

import (
	"fmt"
	"math"
	"strings"
)

// Encoding selects the character-to-score convention used by a producer.
type Encoding int

const (
	// Sanger is the phred+33 encoding, also used by Illumina 1.8+.
	Sanger Encoding = iota
	// Illumina13 is the phred+64 encoding of Illumina 1.3.
	Illumina13
	// Illumina15 is the phred+64 encoding of Illumina 1.5 (scores start at 3).
	Illumina15
	// Illumina18 is the phred+33 encoding of Illumina 1.8+.
	Illumina18
	// Solexa uses offset 64 with Solexa odds scores, which need conversion
	// to phred. Scores can be as low as -5 (character 59).
	Solexa
)

// String returns the canonical name of the encoding.
func (e Encoding) String() string {
	switch e {
	case Sanger:
		return "sanger"
	case Illumina13:
		return "illumina-1.3"
	case Illumina15:
		return "illumina-1.5"
	case Illumina18:
		return "illumina-1.8"
	case Solexa:
		return "solexa"
	}
	return fmt.Sprintf("Encoding(%d)", int(e))
}

// ParseEncoding resolves a user-supplied encoding name. Accepted names are
// "sanger", "illumina-1.3", "illumina-1.5", "illumina-1.8", and "solexa"
// (case-insensitive; "illumina1.3" style variants without the dash work too).
func ParseEncoding(name string) (Encoding, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "_", "-")
	switch s {
	case "sanger":
		return Sanger, nil
	case "illumina-1.3", "illumina1.3":
		return Illumina13, nil
	case "illumina-1.5", "illumina1.5":
		return Illumina15, nil
	case "illumina-1.8", "illumina1.8":
		return Illumina18, nil
	case "solexa":
		return Solexa, nil
	}
	return Sanger, fmt.Errorf("unknown quality encoding %q", name)
}

// solexaToPhred converts a Solexa odds score to the nearest phred score.
func solexaToPhred(solexa int) uint8 {
	p := 10.0 * math.Log10(math.Pow(10.0, float64(solexa)/10.0)+1.0)
	return uint8(math.Round(p))
}

// DecodeToPhred decodes one quality character into a phred score under the
// given encoding. Characters outside the valid range of the encoding fail.
func DecodeToPhred(c byte, e Encoding) (uint8, error) {
	switch e {
	case Sanger, Illumina18:
		if c < 33 || c >= 127 {
			return 0, fmt.Errorf("invalid quality character %q for encoding %s", c, e)
		}
		return c - 33, nil
	case Illumina13, Illumina15:
		if c < 64 || c >= 127 {
			return 0, fmt.Errorf("invalid quality character %q for encoding %s", c, e)
		}
		return c - 64, nil
	case Solexa:
		if c < 59 || c >= 127 {
			return 0, fmt.Errorf("invalid quality character %q for encoding %s", c, e)
		}
		return solexaToPhred(int(c) - 64), nil
	}
	return 0, fmt.Errorf("invalid quality encoding %d", int(e))
}
