package scan

// Character class predicates used by the field scanners. These operate on
// raw bytes; pileup files are ASCII by definition.

// IsGraph reports whether c is a printable character other than space.
func IsGraph(c byte) bool {
	return c > 0x20 && c < 0x7f
}

// IsBlank reports whether c is a space or tab (the pileup field separators).
func IsBlank(c byte) bool {
	return c == ' ' || c == '\t'
}

// IsNewline reports whether c terminates a line.
func IsNewline(c byte) bool {
	return c == '\n' || c == '\r'
}

// IsDigit reports whether c is a decimal digit.
func IsDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// ToUpper upper-cases an ASCII letter, leaving other bytes unchanged.
func ToUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

// ToLower lower-cases an ASCII letter, leaving other bytes unchanged.
func ToLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
