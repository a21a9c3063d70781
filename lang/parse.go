package lang

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// TokenSource supplies tokens to a [Parser]. It returns [io.EOF] once
// exhausted. Both [*Lexer] and the source returned by [NewTokenSlice]
// implement it.
type TokenSource interface {
	Next() (Token, error)
}

type sliceSource struct {
	toks []Token
	pos  int
}

// NewTokenSlice returns a TokenSource reading toks in order. The slice is
// never modified.
func NewTokenSlice(toks []Token) TokenSource {
	return &sliceSource{toks: toks}
}

func (s *sliceSource) Next() (Token, error) {
	if s.pos >= len(s.toks) {
		return Token{}, io.EOF
	}

	tok := s.toks[s.pos]
	s.pos++

	return tok, nil
}

// cursor buffers every token pulled from a source so the parser can mark a
// position and rewind to it.
type cursor struct {
	src  TokenSource
	buf  []Token
	pos  int
	last Position
}

func (c *cursor) peek() (Token, error) {
	if c.pos < len(c.buf) {
		return c.buf[c.pos], nil
	}

	tok, err := c.src.Next()
	if errors.Is(err, io.EOF) {
		return Token{}, ErrSyntax.WithPosition(c.last).
			Wrap(errors.New("token stream ended without EndOfInput"))
	}

	if err != nil {
		return Token{}, err
	}

	c.buf = append(c.buf, tok)
	c.last = tok.Pos

	return tok, nil
}

func (c *cursor) next() (Token, error) {
	tok, err := c.peek()
	if err == nil {
		c.pos++
	}

	return tok, err
}

func (c *cursor) mark() int { return c.pos }

func (c *cursor) reset(m int) { c.pos = m }

// Parser builds a [Program] from tokens by recursive descent:
//
//	program       = (functionDecl | functionCall)* ;
//	functionDecl  = "function" Identifier "(" ")" functionBody ;
//	functionBody  = "{" functionCall* "}" ;
//	functionCall  = Identifier "(" parameterList? ")" ";" ;
//	parameterList = StringLiteral ("," StringLiteral)* ;
type Parser struct {
	cur cursor
	cfg config
}

// NewParser returns a parser reading from src.
func NewParser(src TokenSource, opts ...Option) *Parser {
	return &Parser{
		cur: cursor{src: src, last: Position{Line: 1}},
		cfg: makeConfig(opts...),
	}
}

// ParseProgram consumes every token up to and including EndOfInput.
// The first error aborts the parse.
func (p *Parser) ParseProgram(ctx context.Context) (*Program, error) {
	prog := new(Program)

	for {
		tok, err := p.cur.peek()
		if err != nil {
			return nil, err
		}

		if tok.Kind == KindEOF {
			_, _ = p.cur.next()

			break
		}

		st, err := p.statement()
		if err != nil {
			return nil, err
		}

		prog.Statements = append(prog.Statements, st)
	}

	p.cfg.logger.TraceContext(ctx, "parse complete",
		slog.Int("statements", len(prog.Statements)),
		slog.Bool("backtracking", p.cfg.backtrack))

	return prog, nil
}

func (p *Parser) statement() (Statement, error) {
	if p.cfg.backtrack {
		return p.statementBacktrack()
	}

	return p.statementLookahead()
}

// statementLookahead dispatches on the first token of the statement.
func (p *Parser) statementLookahead() (Statement, error) {
	tok, err := p.cur.peek()
	if err != nil {
		return Statement{}, err
	}

	switch {
	case tok.Is(KindKeyword, KeywordFunction):
		decl, err := p.functionDecl()
		if err != nil {
			return Statement{}, err
		}

		return Statement{Kind: StatementDecl, Decl: decl}, nil

	case tok.Kind == KindIdentifier:
		call, err := p.functionCall()
		if err != nil {
			return Statement{}, err
		}

		return CallStatement(call), nil

	default:
		return Statement{}, unknownStatement(tok)
	}
}

// statementBacktrack tries each alternative in turn, rewinding the cursor
// whenever an alternative reports errTryNext. If none applies, the first
// partial match explains the failure.
func (p *Parser) statementBacktrack() (Statement, error) {
	alts := []func() (Statement, error){
		p.tryFunctionDecl,
		p.tryFunctionCall,
	}

	m := p.cur.mark()

	var partial *partialMatch

	for _, alt := range alts {
		st, err := alt()
		if err == nil {
			return st, nil
		}

		if !errors.Is(err, errTryNext) {
			return Statement{}, err
		}

		if partial == nil {
			errors.As(err, &partial)
		}

		p.cur.reset(m)
	}

	if partial != nil {
		return Statement{}, partial.cause
	}

	tok, err := p.cur.peek()
	if err != nil {
		return Statement{}, err
	}

	return Statement{}, unknownStatement(tok)
}

func (p *Parser) tryFunctionDecl() (Statement, error) {
	tok, err := p.cur.peek()
	if err != nil {
		return Statement{}, err
	}

	if !tok.Is(KindKeyword, KeywordFunction) {
		return Statement{}, errTryNext
	}

	m := p.cur.mark()

	_, _ = p.cur.next()

	// Without a name this is not a declaration.
	name, err := p.cur.peek()
	if err != nil {
		return Statement{}, err
	}

	if name.Kind != KindIdentifier {
		return Statement{}, &partialMatch{
			cause: mismatch(describe(KindIdentifier, ""), name),
		}
	}

	p.cur.reset(m)

	decl, err := p.functionDecl()
	if err != nil {
		return Statement{}, err
	}

	return Statement{Kind: StatementDecl, Decl: decl}, nil
}

func (p *Parser) tryFunctionCall() (Statement, error) {
	tok, err := p.cur.peek()
	if err != nil {
		return Statement{}, err
	}

	if tok.Kind != KindIdentifier {
		return Statement{}, errTryNext
	}

	call, err := p.functionCall()
	if err != nil {
		return Statement{}, err
	}

	return CallStatement(call), nil
}

// functionDecl parses: "function" Identifier "(" ")" functionBody.
func (p *Parser) functionDecl() (*FunctionDecl, error) {
	kw, err := p.expect(KindKeyword, KeywordFunction)
	if err != nil {
		return nil, err
	}

	name, err := p.expect(KindIdentifier, "")
	if err != nil {
		return nil, err
	}

	for _, sep := range []string{"(", ")"} {
		if _, err := p.expect(KindSeparator, sep); err != nil {
			return nil, err
		}
	}

	body, err := p.functionBody()
	if err != nil {
		return nil, err
	}

	return &FunctionDecl{Name: name.Text, Body: body, Pos: kw.Pos}, nil
}

// functionBody parses: "{" functionCall* "}".
func (p *Parser) functionBody() (FunctionBody, error) {
	var body FunctionBody

	if _, err := p.expect(KindSeparator, "{"); err != nil {
		return body, err
	}

	for {
		tok, err := p.cur.peek()
		if err != nil {
			return body, err
		}

		switch {
		case tok.Is(KindSeparator, "}"):
			_, _ = p.cur.next()

			return body, nil

		case tok.Kind == KindIdentifier:
			call, err := p.functionCall()
			if err != nil {
				return body, err
			}

			body.Calls = append(body.Calls, call)

		default:
			return body, mismatch(`Identifier or Separator "}"`, tok)
		}
	}
}

// functionCall parses: Identifier "(" parameterList? ")" ";".
func (p *Parser) functionCall() (*FunctionCall, error) {
	name, err := p.expect(KindIdentifier, "")
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(KindSeparator, "("); err != nil {
		return nil, err
	}

	call := &FunctionCall{Name: name.Text, Pos: name.Pos}

	tok, err := p.cur.peek()
	if err != nil {
		return nil, err
	}

	if tok.Kind == KindStringLiteral {
		_, _ = p.cur.next()
		call.Arguments = append(call.Arguments, tok.Text)

		for {
			tok, err := p.cur.peek()
			if err != nil {
				return nil, err
			}

			if !tok.Is(KindSeparator, ",") {
				break
			}

			_, _ = p.cur.next()

			arg, err := p.expect(KindStringLiteral, "")
			if err != nil {
				return nil, err
			}

			call.Arguments = append(call.Arguments, arg.Text)
		}
	}

	for _, sep := range []string{")", ";"} {
		if _, err := p.expect(KindSeparator, sep); err != nil {
			return nil, err
		}
	}

	return call, nil
}

// expect consumes the next token if it has the given kind and, when text is
// not empty, the given text.
func (p *Parser) expect(kind Kind, text string) (Token, error) {
	tok, err := p.cur.peek()
	if err != nil {
		return Token{}, err
	}

	if tok.Kind != kind || (text != "" && tok.Text != text) {
		return Token{}, mismatch(describe(kind, text), tok)
	}

	_, _ = p.cur.next()

	return tok, nil
}

func mismatch(want string, got Token) error {
	return ErrSyntax.WithPosition(got.Pos).
		With(
			slog.String("expected", want),
			slog.String("got", got.String()),
		).
		Wrap(fmt.Errorf("expected %s but got %s", want, got))
}

func unknownStatement(tok Token) error {
	return ErrSyntax.WithPosition(tok.Pos).
		With(slog.String("got", tok.String())).
		Wrap(fmt.Errorf("unknown statement starting with %s", tok))
}
