package sd2

import "unicode/utf16"

// Source is the abstract character source the lexer pulls from: a
// pull interface returning the next UTF-16 code unit, or a negative
// value once the source is exhausted. The core never validates
// encoding beyond accepting what the source yields, and never reads
// from the filesystem or network itself — callers are responsible for
// turning a file, buffer, or stream into a Source.
type Source interface {
	// NextUnit returns the next UTF-16 code unit, or a negative value
	// at end of input.
	NextUnit() int32
}

// StringSource is a concrete, in-memory Source over a Go string. It
// reads the string once, forward-only.
type StringSource struct {
	units []uint16
	pos   int
}

// NewStringSource builds a Source over the given text, encoding it to
// UTF-16 code units up front.
func NewStringSource(text string) *StringSource {
	return &StringSource{units: utf16.Encode([]rune(text))}
}

// NextUnit implements Source.
func (s *StringSource) NextUnit() int32 {
	if s.pos >= len(s.units) {
		return -1
	}
	u := s.units[s.pos]
	s.pos++
	return int32(u)
}
