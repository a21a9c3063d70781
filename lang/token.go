package lang

import (
	"strconv"
)

// Kind classifies a [Token].
type Kind int

const (
	KindInvalid       Kind = iota // Invalid
	KindKeyword                   // Keyword
	KindIdentifier                // Identifier
	KindStringLiteral             // StringLiteral
	KindSeparator                 // Separator
	KindOperator                  // Operator
	KindEOF                       // EndOfInput
)

var kindName = [...]string{
	KindInvalid:       "Invalid",
	KindKeyword:       "Keyword",
	KindIdentifier:    "Identifier",
	KindStringLiteral: "StringLiteral",
	KindSeparator:     "Separator",
	KindOperator:      "Operator",
	KindEOF:           "EndOfInput",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindName) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}

	return kindName[k]
}

// MarshalText renders the kind by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Reserved words and built-in names.
const (
	KeywordFunction = "function"
	BuiltinPrintln  = "println"
)

// Position identifies a location in source text.
//
// Line numbers start at 1. Column counts the characters consumed on the
// current line before the position, so the first character of a line is at
// column 0.
type Position struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Token is a lexical unit. Text holds the decoded value for string literals
// and the source spelling for everything else. Tokens are immutable.
type Token struct {
	Kind Kind     `json:"kind"`
	Text string   `json:"text"`
	Pos  Position `json:"pos"`
}

// Is reports whether t has the given kind and text.
func (t Token) Is(kind Kind, text string) bool {
	return t.Kind == kind && t.Text == text
}

func (t Token) String() string {
	return describe(t.Kind, t.Text)
}

// describe renders a token kind and optional text the way diagnostics show
// them, e.g. `Separator ";"` or `Identifier`.
func describe(kind Kind, text string) string {
	if kind == KindEOF || text == "" {
		return kind.String()
	}

	return kind.String() + " " + strconv.Quote(text)
}
