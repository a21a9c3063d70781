package lang

import "encoding/json"

// ToMap converts the program to plain maps and slices for serialization.
func (p *Program) ToMap() map[string]any {
	stmts := make([]any, 0, len(p.Statements))

	for _, st := range p.Statements {
		switch st.Kind {
		case StatementDecl:
			calls := make([]any, 0, len(st.Decl.Body.Calls))
			for _, c := range st.Decl.Body.Calls {
				calls = append(calls, c.toMap())
			}

			stmts = append(stmts, map[string]any{
				"declare": st.Decl.Name,
				"body":    calls,
			})

		case StatementCall:
			stmts = append(stmts, st.Call.toMap())
		}
	}

	return map[string]any{"program": stmts}
}

func (c *FunctionCall) toMap() map[string]any {
	args := make([]any, len(c.Arguments))
	for i, a := range c.Arguments {
		args[i] = a
	}

	return map[string]any{
		"call":      c.Name,
		"arguments": args,
		"resolved":  c.Binding.Bound(),
	}
}

// MarshalJSON implements [json.Marshaler] using [Program.ToMap].
func (p *Program) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToMap())
}
