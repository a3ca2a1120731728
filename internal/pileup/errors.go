package pileup

import (
	"errors"
	"fmt"

	"github.com/inodb/vibe-pileup/internal/scan"
)

// Error kinds for malformed pileup input. Match them with errors.Is; the
// concrete error returned by the parser is a *ParseError wrapping one of
// these.
var (
	ErrEmptyLine                  = errors.New("invalid empty line")
	ErrInvalidReferenceBase       = errors.New("invalid reference base that is not in [ACGTN]")
	ErrInvalidIndelCharacter      = errors.New("invalid indel character")
	ErrTruncatedReadSegmentMarker = errors.New("invalid start of read segment marker")
	ErrSampleCountMismatch        = errors.New("line with different number of samples")
	ErrBaseQualityLengthMismatch  = errors.New("base and quality string length mismatch")
	ErrTrailingGarbage            = errors.New("invalid characters after sample fields")
	ErrInvalidAlleleCharacter     = errors.New("invalid allele character")
	ErrCoverageMismatch           = errors.New("declared read coverage does not match bases")
)

// ParseError describes a parse failure with source name and position context.
type ParseError struct {
	Source string
	At     string // "line:column" of the scanner when the failure was detected
	Err    error  // one of the Err* kinds above
	Detail string // optional extra context
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("malformed pileup %s at %s: %v", e.Source, e.At, e.Err)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// parseErr builds a *ParseError at the scanner's current position.
func parseErr(s *scan.Scanner, kind error, detail string) error {
	return &ParseError{
		Source: s.Source(),
		At:     s.At(),
		Err:    kind,
		Detail: detail,
	}
}
