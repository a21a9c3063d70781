package repl

import (
	"bytes"
	"context"
	"log/slog"
	"slices"

	"github.com/ardnew/fncall/lang"
	"github.com/ardnew/fncall/log"
)

// Session accumulates function declarations across evaluated inputs.
//
// Each input is parsed on its own and resolved against the declarations
// collected so far. A declaration replaces any earlier one with the same
// name, so input that redefines a function changes the behavior of every
// declaration that calls it.
type Session struct {
	decls  []lang.Statement
	opts   []lang.Option
	logger log.Logger
}

// NewSession returns an empty session. The options are applied to every
// stage of each evaluation.
func NewSession(logger log.Logger, opts ...lang.Option) *Session {
	return &Session{
		opts:   append([]lang.Option{lang.WithLogger(logger)}, opts...),
		logger: logger,
	}
}

// Eval parses input, binds its calls against the session, and executes the
// top-level calls of input in order. It returns the println output written
// before any error.
//
// Declarations in input join the session once resolution succeeds, even if
// a later call fails at run time.
func (s *Session) Eval(ctx context.Context, input string) (string, error) {
	prog, err := lang.ParseString(ctx, input, s.opts...)
	if err != nil {
		return "", err
	}

	scope := &lang.Program{
		Statements: append(slices.Clone(s.decls), prog.Statements...),
	}

	if err := lang.Resolve(ctx, scope, s.opts...); err != nil {
		return "", err
	}

	for decl := range prog.Declarations() {
		s.declare(decl)
	}

	s.logger.TraceContext(ctx, "session eval",
		slog.Int("statements", len(prog.Statements)),
		slog.Int("declarations", len(s.decls)))

	var out bytes.Buffer

	in := lang.NewInterpreter(&out, s.opts...)

	for call := range prog.Calls() {
		if err := in.Exec(ctx, scope, call); err != nil {
			return out.String(), err
		}
	}

	return out.String(), nil
}

func (s *Session) declare(decl *lang.FunctionDecl) {
	stmt := lang.Statement{Kind: lang.StatementDecl, Decl: decl}

	i := slices.IndexFunc(s.decls, func(st lang.Statement) bool {
		return st.Decl.Name == decl.Name
	})
	if i < 0 {
		s.decls = append(s.decls, stmt)

		return
	}

	s.decls[i] = stmt
}

// Names returns the declared function names in declaration order.
func (s *Session) Names() []string {
	names := make([]string, 0, len(s.decls))

	for _, st := range s.decls {
		names = append(names, st.Decl.Name)
	}

	return names
}

// Lookup returns the declaration of name.
func (s *Session) Lookup(name string) (*lang.FunctionDecl, bool) {
	for _, st := range s.decls {
		if st.Decl.Name == name {
			return st.Decl, true
		}
	}

	return nil, false
}

// Len returns the number of declared functions.
func (s *Session) Len() int { return len(s.decls) }

// Program returns the session declarations as a resolved program.
func (s *Session) Program(ctx context.Context) (*lang.Program, error) {
	prog := &lang.Program{Statements: slices.Clone(s.decls)}

	if err := lang.Resolve(ctx, prog, s.opts...); err != nil {
		return nil, err
	}

	return prog, nil
}

// Reset forgets every declaration.
func (s *Session) Reset() { s.decls = nil }
