package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// DefaultIndent is the indent width used when a formatter is given a width
// it cannot use.
const DefaultIndent = 2

// Format writes p as source text that parses back to an equivalent program.
// An indent of zero writes each declaration on a single line.
func (p *Program) Format(_ context.Context, w io.Writer, indent int) error {
	var b strings.Builder

	for _, st := range p.Statements {
		switch st.Kind {
		case StatementDecl:
			b.WriteString(KeywordFunction + " " + st.Decl.Name + "() {")

			for _, call := range st.Decl.Body.Calls {
				src, err := formatCall(call)
				if err != nil {
					return err
				}

				if indent > 0 {
					b.WriteString("\n" + strings.Repeat(" ", indent) + src)
				} else {
					b.WriteString(" " + src)
				}
			}

			switch {
			case indent > 0 && len(st.Decl.Body.Calls) > 0:
				b.WriteString("\n}\n")
			case len(st.Decl.Body.Calls) > 0:
				b.WriteString(" }\n")
			default:
				b.WriteString("}\n")
			}

		case StatementCall:
			src, err := formatCall(st.Call)
			if err != nil {
				return err
			}

			b.WriteString(src + "\n")

		default:
			return ErrFormat.Wrap(fmt.Errorf("invalid statement kind %s", st.Kind))
		}
	}

	_, err := io.WriteString(w, b.String())

	return err
}

func formatCall(call *FunctionCall) (string, error) {
	args := make([]string, len(call.Arguments))

	for i, arg := range call.Arguments {
		q, err := quote(arg)
		if err != nil {
			return "", err
		}

		args[i] = q
	}

	return call.Name + "(" + strings.Join(args, ", ") + ");", nil
}

// quote renders s as a string literal. A double quote has no escape in the
// language, so strings containing one cannot be written.
func quote(s string) (string, error) {
	if strings.ContainsRune(s, '"') {
		return "", ErrFormat.Wrap(fmt.Errorf("string %q contains a double quote", s))
	}

	r := strings.NewReplacer(`\`, `\\`, "\n", `\n`)

	return `"` + r.Replace(s) + `"`, nil
}

// FormatJSON writes the AST as JSON to the writer.
func (p *Program) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(p, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(p)
	}

	if err != nil {
		return ErrFormat.Wrap(err)
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the AST as YAML to the writer.
func (p *Program) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	if indent <= 0 {
		indent = DefaultIndent
	}

	data, err := yaml.MarshalContext(ctx, p.ToMap(),
		yaml.Indent(indent),
		yaml.IndentSequence(true),
	)
	if err != nil {
		return ErrFormat.Wrap(err)
	}

	_, err = w.Write(data)

	return err
}
