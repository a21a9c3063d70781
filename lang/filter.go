package lang

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// filterEnv is the environment a token filter expression is evaluated in.
type filterEnv struct {
	Kind   string
	Text   string
	Line   int
	Column int
	Offset int
}

func envOf(tok Token) filterEnv {
	return filterEnv{
		Kind:   tok.Kind.String(),
		Text:   tok.Text,
		Line:   tok.Pos.Line,
		Column: tok.Pos.Column,
		Offset: tok.Pos.Offset,
	}
}

// TokenFilter is a compiled boolean expression over a token's Kind, Text,
// Line, Column and Offset, for example:
//
//	Kind == "Identifier" && Text startsWith "say"
type TokenFilter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles a token filter expression.
func CompileFilter(expression string) (*TokenFilter, error) {
	program, err := expr.Compile(expression,
		expr.Env(filterEnv{}),
		expr.AsBool(),
	)
	if err != nil {
		return nil, ErrFilter.
			With(slog.String("expression", expression)).
			Wrap(err)
	}

	return &TokenFilter{source: expression, program: program}, nil
}

// Match reports whether tok satisfies the filter.
func (f *TokenFilter) Match(tok Token) (bool, error) {
	out, err := expr.Run(f.program, envOf(tok))
	if err != nil {
		return false, ErrFilter.
			With(slog.String("expression", f.source)).
			Wrap(err)
	}

	ok, isBool := out.(bool)
	if !isBool {
		return false, ErrFilter.Wrap(fmt.Errorf("result %T is not a boolean", out))
	}

	return ok, nil
}

// FilterTokens returns the tokens of toks matching expression, in order.
// An empty expression matches every token.
func FilterTokens(
	ctx context.Context,
	toks []Token,
	expression string,
	opts ...Option,
) ([]Token, error) {
	if expression == "" {
		return toks, nil
	}

	f, err := CompileFilter(expression)
	if err != nil {
		return nil, err
	}

	out := make([]Token, 0, len(toks))

	for _, tok := range toks {
		ok, err := f.Match(tok)
		if err != nil {
			return nil, err
		}

		if ok {
			out = append(out, tok)
		}
	}

	makeConfig(opts...).logger.TraceContext(ctx, "filter complete",
		slog.String("expression", expression),
		slog.Int("matched", len(out)),
		slog.Int("total", len(toks)))

	return out, nil
}
