package lang

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

// separators are the single-character punctuation tokens.
const separators = "(){};,"

type lexState int

const (
	stateScanning lexState = iota
	stateDone
)

// Lexer converts a [CharStream] into tokens on demand.
//
// Exactly one [KindEOF] token is produced. Every call to [Lexer.Next] after
// it, or after a lexical error, returns [io.EOF].
type Lexer struct {
	src   *CharStream
	state lexState
}

// NewLexer returns a lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: NewCharStream(src)}
}

// Next returns the next token.
func (l *Lexer) Next() (Token, error) {
	if l.state == stateDone {
		return Token{}, io.EOF
	}

	tok, err := l.scan()
	if err != nil || tok.Kind == KindEOF {
		l.state = stateDone
	}

	return tok, err
}

// Tokens returns an iterator over the remaining tokens, ending after the
// EndOfInput token or the first error.
func (l *Lexer) Tokens() iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		for {
			tok, err := l.Next()
			if errors.Is(err, io.EOF) {
				return
			}

			if !yield(tok, err) || err != nil {
				return
			}
		}
	}
}

// Tokenize lexes all of src. The returned slice ends with the EndOfInput
// token.
func Tokenize(ctx context.Context, src string, opts ...Option) ([]Token, error) {
	cfg := makeConfig(opts...)

	var toks []Token

	for tok, err := range NewLexer(src).Tokens() {
		if err != nil {
			return nil, err
		}

		toks = append(toks, tok)
	}

	cfg.logger.TraceContext(ctx, "lex complete",
		slog.Int("source_bytes", len(src)),
		slog.Int("tokens", len(toks)))

	return toks, nil
}

func (l *Lexer) scan() (Token, error) {
	for {
		l.skipSpace()

		start := l.src.Position()

		r, ok := l.src.Peek()
		if !ok {
			return Token{Kind: KindEOF, Pos: start}, nil
		}

		switch {
		case r == '"':
			return l.scanString(start)

		case strings.ContainsRune(separators, r):
			l.src.Advance()

			return Token{Kind: KindSeparator, Text: string(r), Pos: start}, nil

		case r == '+' || r == '-' || r == '*':
			return l.scanOperator(start), nil

		case r == '/':
			tok, comment, err := l.scanSlash(start)
			if err != nil {
				return Token{}, err
			}

			if comment {
				continue
			}

			return tok, nil

		case unicode.IsLetter(r):
			return l.scanIdentifier(start), nil

		default:
			return Token{}, ErrLex.WithPosition(start).
				With(slog.String("char", string(r))).
				Wrap(fmt.Errorf("unexpected character %q", r))
		}
	}
}

func (l *Lexer) skipSpace() {
	for {
		r, ok := l.src.Peek()
		if !ok || !unicode.IsSpace(r) {
			return
		}

		l.src.Advance()
	}
}

// scanString reads a double-quoted literal. Only \n and \\ escapes exist.
// Literals must be valid UTF-8.
func (l *Lexer) scanString(start Position) (Token, error) {
	l.src.Advance() // opening quote

	var b strings.Builder

	for {
		at := l.src.Position()

		r, ok := l.src.Advance()
		if !ok {
			return Token{}, ErrLex.WithPosition(start).
				Wrap(errors.New("unterminated string literal"))
		}

		if r == utf8.RuneError && l.src.Position().Offset-at.Offset == 1 {
			return Token{}, ErrLex.WithPosition(at).
				Wrap(errors.New("invalid UTF-8 in string literal"))
		}

		switch r {
		case '"':
			return Token{Kind: KindStringLiteral, Text: b.String(), Pos: start}, nil

		case '\n':
			return Token{}, ErrLex.WithPosition(at).
				Wrap(errors.New("newline in string literal"))

		case '\\':
			e, ok := l.src.Advance()
			if !ok {
				return Token{}, ErrLex.WithPosition(start).
					Wrap(errors.New("unterminated string literal"))
			}

			switch e {
			case 'n':
				b.WriteRune('\n')
			case '\\':
				b.WriteRune('\\')
			default:
				return Token{}, ErrLex.WithPosition(at).
					With(slog.String("escape", `\`+string(e))).
					Wrap(fmt.Errorf("invalid escape sequence \\%c", e))
			}

		default:
			b.WriteRune(r)
		}
	}
}

// scanOperator reads op, op op, or op= for op in + - *.
func (l *Lexer) scanOperator(start Position) Token {
	op, _ := l.src.Advance()
	text := string(op)

	if r, ok := l.src.Peek(); ok && (r == op || r == '=') {
		l.src.Advance()

		text += string(r)
	}

	return Token{Kind: KindOperator, Text: text, Pos: start}
}

// scanSlash handles comments and the / and /= operators. The boolean result
// reports that a comment was skipped and no token was produced.
func (l *Lexer) scanSlash(start Position) (Token, bool, error) {
	l.src.Advance()

	r, ok := l.src.Peek()
	if !ok {
		return Token{Kind: KindOperator, Text: "/", Pos: start}, false, nil
	}

	switch r {
	case '/':
		for {
			c, ok := l.src.Advance()
			if !ok || c == '\n' {
				return Token{}, true, nil
			}
		}

	case '*':
		l.src.Advance()

		for {
			c, ok := l.src.Advance()
			if !ok {
				return Token{}, false, ErrLex.WithPosition(start).
					Wrap(errors.New("unterminated block comment"))
			}

			if c == '*' {
				if n, ok := l.src.Peek(); ok && n == '/' {
					l.src.Advance()

					return Token{}, true, nil
				}
			}
		}

	case '=':
		l.src.Advance()

		return Token{Kind: KindOperator, Text: "/=", Pos: start}, false, nil

	default:
		return Token{Kind: KindOperator, Text: "/", Pos: start}, false, nil
	}
}

func (l *Lexer) scanIdentifier(start Position) Token {
	var b strings.Builder

	for {
		r, ok := l.src.Peek()
		if !ok || !isIdentifierContinue(r) {
			break
		}

		l.src.Advance()
		b.WriteRune(r)
	}

	text := b.String()
	if text == KeywordFunction {
		return Token{Kind: KindKeyword, Text: text, Pos: start}
	}

	return Token{Kind: KindIdentifier, Text: text, Pos: start}
}

func isIdentifierContinue(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
