package lang

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/fncall/log"
)

// config carries the options shared by every pipeline stage. Each stage
// reads only the fields it needs.
type config struct {
	logger    log.Logger
	maxDepth  int
	backtrack bool
	strict    bool
	cache     bool
}

// Option configures a pipeline stage.
type Option func(*config)

func makeConfig(opts ...Option) config {
	c := config{cache: true}

	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// WithLogger sets the logger used to trace pipeline stages.
// The zero [log.Logger] discards everything.
func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithBacktracking selects the trial-and-rewind statement dispatcher instead
// of the default lookahead dispatcher. Both accept the same language.
func WithBacktracking(enable bool) Option {
	return func(c *config) { c.backtrack = enable }
}

// WithStrictDeclarations makes a second declaration of the same function
// name a binding error. By default the last declaration wins.
func WithStrictDeclarations(enable bool) Option {
	return func(c *config) { c.strict = enable }
}

// WithMaxDepth limits the call depth of the interpreter. Zero or a negative
// depth means no limit.
func WithMaxDepth(depth int) Option {
	return func(c *config) { c.maxDepth = depth }
}

// WithCache controls whether [ParseString] and [ParseReader] reuse token
// slices of previously seen sources. Enabled by default.
func WithCache(enable bool) Option {
	return func(c *config) { c.cache = enable }
}

// Compile parses and resolves src.
func Compile(ctx context.Context, src string, opts ...Option) (*Program, error) {
	prog, err := ParseString(ctx, src, opts...)
	if err != nil {
		return nil, err
	}

	err = Resolve(ctx, prog, opts...)
	if err != nil {
		return nil, err
	}

	return prog, nil
}

// Run lexes, parses, resolves and executes src, writing program output to w.
func Run(ctx context.Context, src string, w io.Writer, opts ...Option) error {
	prog, err := Compile(ctx, src, opts...)
	if err != nil {
		return err
	}

	cfg := makeConfig(opts...)
	cfg.logger.TraceContext(ctx, "execute",
		slog.Int("statements", len(prog.Statements)))

	return NewInterpreter(w, opts...).Run(ctx, prog)
}
