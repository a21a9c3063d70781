package lang

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Interpreter executes resolved programs.
//
// Without [WithMaxDepth] recursion is unbounded: a function that calls
// itself unconditionally runs until the goroutine stack is exhausted.
type Interpreter struct {
	w   io.Writer
	cfg config
}

// NewInterpreter returns an interpreter writing println output to w.
func NewInterpreter(w io.Writer, opts ...Option) *Interpreter {
	if w == nil {
		w = io.Discard
	}

	return &Interpreter{w: w, cfg: makeConfig(opts...)}
}

// Run executes the top-level calls of prog in source order.
// Declarations are not executed on their own. A nil program does nothing.
func (in *Interpreter) Run(ctx context.Context, prog *Program) error {
	if prog == nil {
		return nil
	}

	for call := range prog.Calls() {
		if err := in.call(ctx, prog, call, 1); err != nil {
			return err
		}
	}

	return nil
}

// Exec executes a single call in the scope of prog.
func (in *Interpreter) Exec(
	ctx context.Context,
	prog *Program,
	call *FunctionCall,
) error {
	return in.call(ctx, prog, call, 1)
}

func (in *Interpreter) call(
	ctx context.Context,
	prog *Program,
	call *FunctionCall,
	depth int,
) error {
	if in.cfg.maxDepth > 0 && depth > in.cfg.maxDepth {
		return ErrRuntime.WithPosition(call.Pos).
			With(
				slog.String("function", call.Name),
				slog.Int("max_depth", in.cfg.maxDepth),
			).
			Wrap(fmt.Errorf("maximum call depth %d exceeded", in.cfg.maxDepth))
	}

	in.cfg.logger.TraceContext(ctx, "call",
		slog.String("function", call.Name),
		slog.Int("depth", depth))

	if !call.Binding.Bound() {
		if call.Name != BuiltinPrintln {
			return ErrRuntime.WithPosition(call.Pos).
				With(slog.String("function", call.Name)).
				Wrap(fmt.Errorf("unresolved call to %s", call.Name))
		}

		_, err := io.WriteString(in.w, strings.Join(call.Arguments, " ")+"\n")
		if err != nil {
			return ErrRuntime.Wrap(err)
		}

		return nil
	}

	decl, ok := prog.Declaration(call.Binding)
	if !ok {
		return ErrRuntime.WithPosition(call.Pos).
			With(slog.String("function", call.Name)).
			Wrap(fmt.Errorf("call to %s is bound outside the program", call.Name))
	}

	for _, c := range decl.Body.Calls {
		if err := in.call(ctx, prog, c, depth+1); err != nil {
			return err
		}
	}

	return nil
}
