package lang

import (
	"io"
	"iter"
	"strconv"
	"strings"
)

// Program is the root of a parsed source: its statements in source order.
type Program struct {
	Statements []Statement
}

// StatementKind selects the populated field of a [Statement].
type StatementKind int

const (
	StatementDecl StatementKind = iota + 1 // FunctionDecl
	StatementCall                          // FunctionCall
)

func (k StatementKind) String() string {
	switch k {
	case StatementDecl:
		return "FunctionDecl"
	case StatementCall:
		return "FunctionCall"
	default:
		return "StatementKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Statement is a top-level declaration or call. Exactly one of Decl and Call
// is set, as selected by Kind.
type Statement struct {
	Kind StatementKind
	Decl *FunctionDecl
	Call *FunctionCall
}

// FunctionDecl declares a parameterless function.
type FunctionDecl struct {
	Name string
	Body FunctionBody
	Pos  Position
}

// FunctionBody is the ordered list of calls a function makes.
type FunctionBody struct {
	Calls []*FunctionCall
}

// FunctionCall invokes a function with string arguments. Binding is set by
// [Resolve].
type FunctionCall struct {
	Name      string
	Arguments []string
	Binding   Binding
	Pos       Position
}

// Binding refers to the declaration a call resolves to by its index in
// [Program.Statements]. The zero Binding is unbound, which is how calls to
// the println built-in remain after resolution.
type Binding struct {
	index int // statement index + 1
}

func bindTo(i int) Binding { return Binding{index: i + 1} }

// Bound reports whether the binding refers to a declaration.
func (b Binding) Bound() bool { return b.index > 0 }

// Index returns the statement index of the bound declaration.
func (b Binding) Index() (int, bool) { return b.index - 1, b.index > 0 }

// Declaration returns the declaration b refers to in p.
func (p *Program) Declaration(b Binding) (*FunctionDecl, bool) {
	i, ok := b.Index()
	if !ok || p == nil || i >= len(p.Statements) {
		return nil, false
	}

	st := p.Statements[i]
	if st.Kind != StatementDecl || st.Decl == nil {
		return nil, false
	}

	return st.Decl, true
}

// Declarations iterates over the top-level declarations of p. A nil
// program has none.
func (p *Program) Declarations() iter.Seq[*FunctionDecl] {
	return func(yield func(*FunctionDecl) bool) {
		if p == nil {
			return
		}

		for _, st := range p.Statements {
			if st.Kind == StatementDecl && !yield(st.Decl) {
				return
			}
		}
	}
}

// Calls iterates over the top-level calls of p.
func (p *Program) Calls() iter.Seq[*FunctionCall] {
	return func(yield func(*FunctionCall) bool) {
		if p == nil {
			return
		}

		for _, st := range p.Statements {
			if st.Kind == StatementCall && !yield(st.Call) {
				return
			}
		}
	}
}

// NewDecl builds a declaration statement.
func NewDecl(name string, calls ...*FunctionCall) Statement {
	return Statement{
		Kind: StatementDecl,
		Decl: &FunctionDecl{Name: name, Body: FunctionBody{Calls: calls}},
	}
}

// NewCall builds a call node.
func NewCall(name string, args ...string) *FunctionCall {
	return &FunctionCall{Name: name, Arguments: args}
}

// CallStatement wraps a call node as a top-level statement.
func CallStatement(call *FunctionCall) Statement {
	return Statement{Kind: StatementCall, Call: call}
}

// Dumper renders a node as an indented tree. Composite nodes recurse into
// their children with prefix extended by one tab.
type Dumper interface {
	Dump(w io.Writer, prefix string) error
}

// dumpWriter writes lines until the first error, which it keeps.
type dumpWriter struct {
	w   io.Writer
	err error
}

func (d *dumpWriter) line(prefix string, item ...string) {
	if d.err != nil {
		return
	}

	_, d.err = io.WriteString(d.w, prefix+strings.Join(item, " ")+"\n")
}

func (d *dumpWriter) node(n Dumper, prefix string) {
	if d.err != nil {
		return
	}

	d.err = n.Dump(d.w, prefix)
}

// Dump writes the program tree.
func (p *Program) Dump(w io.Writer, prefix string) error {
	d := &dumpWriter{w: w}
	d.line(prefix, "Program")

	for _, st := range p.Statements {
		d.node(st, prefix+"\t")
	}

	return d.err
}

// String returns the dump of p.
func (p *Program) String() string {
	var b strings.Builder

	_ = p.Dump(&b, "")

	return b.String()
}

// Dump writes the populated node of s.
func (s Statement) Dump(w io.Writer, prefix string) error {
	switch s.Kind {
	case StatementDecl:
		return s.Decl.Dump(w, prefix)
	case StatementCall:
		return s.Call.Dump(w, prefix)
	default:
		d := &dumpWriter{w: w}
		d.line(prefix, s.Kind.String())

		return d.err
	}
}

// Dump writes the declaration and its body.
func (f *FunctionDecl) Dump(w io.Writer, prefix string) error {
	d := &dumpWriter{w: w}
	d.line(prefix, "FunctionDecl", f.Name)
	d.node(f.Body, prefix+"\t")

	return d.err
}

// Dump writes the calls of the body.
func (b FunctionBody) Dump(w io.Writer, prefix string) error {
	d := &dumpWriter{w: w}
	d.line(prefix, "FunctionBody")

	for _, c := range b.Calls {
		d.node(c, prefix+"\t")
	}

	return d.err
}

// Dump writes the call, its resolution state and its arguments.
func (c *FunctionCall) Dump(w io.Writer, prefix string) error {
	state := "not resolved"
	if c.Binding.Bound() {
		state = "resolved"
	}

	d := &dumpWriter{w: w}
	d.line(prefix, "FunctionCall", c.Name+",", state)

	for _, arg := range c.Arguments {
		d.line(prefix+"\t", "Parameter:", arg)
	}

	return d.err
}
