package lang

import "unicode/utf8"

// CharStream yields the characters of a source string one at a time with a
// single character of lookahead. It never rewinds.
type CharStream struct {
	input string
	pos   int
	line  int
	col   int
}

// NewCharStream returns a stream positioned at the start of s.
func NewCharStream(s string) *CharStream {
	return &CharStream{input: s, line: 1}
}

// Peek returns the next character without consuming it.
// The boolean is false at end of input.
func (s *CharStream) Peek() (rune, bool) {
	if s.EOF() {
		return 0, false
	}

	r, _ := utf8.DecodeRuneInString(s.input[s.pos:])

	return r, true
}

// Advance consumes and returns the next character.
// The boolean is false at end of input, in which case nothing is consumed.
func (s *CharStream) Advance() (rune, bool) {
	if s.EOF() {
		return 0, false
	}

	r, size := utf8.DecodeRuneInString(s.input[s.pos:])

	s.pos += size
	if r == '\n' {
		s.line++
		s.col = 0
	} else {
		s.col++
	}

	return r, true
}

// EOF reports whether every character has been consumed.
func (s *CharStream) EOF() bool { return s.pos >= len(s.input) }

// Position returns the position of the next character.
func (s *CharStream) Position() Position {
	return Position{Offset: s.pos, Line: s.line, Column: s.col}
}
