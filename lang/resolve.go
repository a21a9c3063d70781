package lang

import (
	"context"
	"fmt"
	"log/slog"
)

// Resolve binds every call in prog to the declaration it names.
//
// The first pass indexes top-level declarations by name, so a call may
// refer to a function declared later in the source. When a name is declared
// more than once the last declaration wins, unless [WithStrictDeclarations]
// is given. The second pass binds the calls in every declaration body and
// every top-level call. Calls to println that do not name a declaration stay
// unbound; any other unknown name is an [ErrBinding].
//
// Resolving an already resolved program produces the same bindings.
func Resolve(ctx context.Context, prog *Program, opts ...Option) error {
	if prog == nil {
		return nil
	}

	cfg := makeConfig(opts...)

	index := make(map[string]int)

	for i, st := range prog.Statements {
		if st.Kind != StatementDecl {
			continue
		}

		if prev, dup := index[st.Decl.Name]; dup && cfg.strict {
			return ErrBinding.WithPosition(st.Decl.Pos).
				With(
					slog.String("function", st.Decl.Name),
					slog.String("previous", prog.Statements[prev].Decl.Pos.String()),
				).
				Wrap(fmt.Errorf("duplicate declaration of %s", st.Decl.Name))
		}

		index[st.Decl.Name] = i
	}

	bind := func(call *FunctionCall) error {
		if i, ok := index[call.Name]; ok {
			call.Binding = bindTo(i)

			return nil
		}

		if call.Name == BuiltinPrintln {
			call.Binding = Binding{}

			return nil
		}

		return ErrBinding.WithPosition(call.Pos).
			With(slog.String("function", call.Name)).
			Wrap(fmt.Errorf("unknown function %s", call.Name))
	}

	calls := 0

	for _, st := range prog.Statements {
		switch st.Kind {
		case StatementDecl:
			for _, call := range st.Decl.Body.Calls {
				if err := bind(call); err != nil {
					return err
				}

				calls++
			}

		case StatementCall:
			if err := bind(st.Call); err != nil {
				return err
			}

			calls++
		}
	}

	cfg.logger.TraceContext(ctx, "resolve complete",
		slog.Int("declarations", len(index)),
		slog.Int("calls", calls))

	return nil
}
