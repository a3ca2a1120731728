// Package scan provides a buffered byte scanner with single-byte lookahead
// and line/column tracking, used by the pileup parser.
package scan

import (
	"bufio"
	"fmt"
	"io"
)

// Scanner reads a byte stream one character at a time. The current character
// is always available via Current until the stream is exhausted, and the
// scanner tracks line and column positions for error messages.
type Scanner struct {
	r    *bufio.Reader
	name string
	line int
	col  int
	cur  byte
	good bool
}

// NewScanner creates a scanner over r. The name identifies the source in
// error messages (typically a file path, or "stdin").
func NewScanner(r io.Reader, name string) *Scanner {
	s := &Scanner{
		r:    bufio.NewReader(r),
		name: name,
		line: 1,
		col:  1,
	}
	s.fill()
	return s
}

// fill loads the next byte into cur, or marks the scanner exhausted.
func (s *Scanner) fill() {
	b, err := s.r.ReadByte()
	if err != nil {
		s.good = false
		s.cur = 0
		return
	}
	s.cur = b
	s.good = true
}

// Good reports whether a current character is available.
func (s *Scanner) Good() bool {
	return s.good
}

// Current returns the character at the scanner position. Only valid while
// Good returns true.
func (s *Scanner) Current() byte {
	return s.cur
}

// Next advances the scanner by one character.
func (s *Scanner) Next() {
	if !s.good {
		return
	}
	if s.cur == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	s.fill()
}

// Source returns the name of the underlying input source.
func (s *Scanner) Source() string {
	return s.name
}

// At returns the current position as "line:column" (both 1-based).
func (s *Scanner) At() string {
	return fmt.Sprintf("%d:%d", s.line, s.col)
}

// ReadWhile appends characters to buf for as long as pred holds, and returns
// the extended buffer. Passing a reused buffer avoids reallocation.
func (s *Scanner) ReadWhile(pred func(byte) bool, buf []byte) []byte {
	for s.good && pred(s.cur) {
		buf = append(buf, s.cur)
		s.Next()
	}
	return buf
}

// SkipWhile advances past characters for as long as pred holds.
func (s *Scanner) SkipWhile(pred func(byte) bool) {
	for s.good && pred(s.cur) {
		s.Next()
	}
}

// Expect fails unless the current character exists and satisfies pred.
// The what string names the expectation in the error message.
func (s *Scanner) Expect(pred func(byte) bool, what string) error {
	if !s.good {
		return fmt.Errorf("%s at %s: unexpected end of input, expected %s", s.name, s.At(), what)
	}
	if !pred(s.cur) {
		return fmt.Errorf("%s at %s: unexpected character %q, expected %s", s.name, s.At(), s.cur, what)
	}
	return nil
}

// ParseUint reads a run of decimal digits as an unsigned integer. At least
// one digit must be present.
func (s *Scanner) ParseUint() (uint64, error) {
	if !s.good || !IsDigit(s.cur) {
		return 0, fmt.Errorf("%s at %s: expected unsigned integer", s.name, s.At())
	}
	var v uint64
	for s.good && IsDigit(s.cur) {
		d := uint64(s.cur - '0')
		if v > (^uint64(0)-d)/10 {
			return 0, fmt.Errorf("%s at %s: unsigned integer overflow", s.name, s.At())
		}
		v = v*10 + d
		s.Next()
	}
	return v, nil
}
