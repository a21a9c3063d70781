package lang

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestRun_Programs(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "hello world",
			src:  `function sayHello() { println("Hello World!"); } sayHello();`,
			want: "Hello World!\n",
		},
		{
			name: "escapes",
			src:  `println("a\nb", "c\\d");`,
			want: "a\nb c\\d\n",
		},
		{
			name: "empty program",
			src:  "",
			want: "",
		},
		{
			name: "comments only",
			src:  "// nothing\n/* here */",
			want: "",
		},
		{
			name: "declarations are not executed",
			src:  `function f() { println("f"); }`,
			want: "",
		},
		{
			name: "source order and depth first",
			src: `function outer() { println("outer"); inner(); println("after"); }
				function inner() { println("inner"); }
				println("start"); outer(); inner();`,
			want: "start\nouter\ninner\nafter\ninner\n",
		},
		{
			name: "println without arguments",
			src:  `println();`,
			want: "\n",
		},
		{
			name: "arguments joined by one space",
			src:  `println("a", "", "b");`,
			want: "a  b\n",
		},
		{
			name: "last declaration wins",
			src:  `function f() { println("1"); } function f() { println("2"); } f();`,
			want: "2\n",
		},
		{
			name: "call before the redeclaration",
			src:  `a(); function a() { println("1"); } function a() { println("2"); }`,
			want: "2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			if err := Run(t.Context(), tt.src, &buf); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if buf.String() != tt.want {
				t.Errorf("expected output %q, got %q", tt.want, buf.String())
			}
		})
	}
}

func TestRun_BindingErrorProducesNoOutput(t *testing.T) {
	var buf bytes.Buffer

	err := Run(t.Context(), `println("before"); foo();`, &buf)
	if !errors.Is(err, ErrBinding) {
		t.Fatalf("expected ErrBinding, got %v", err)
	}

	if !strings.Contains(err.Error(), "foo") {
		t.Errorf("expected error naming foo, got %q", err)
	}

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestRun_UnboundedRecursion(t *testing.T) {
	src := `function f() { f(); } f();`

	prog, err := Compile(t.Context(), src)
	if err != nil {
		t.Fatalf("expected recursive program to parse and resolve, got %v", err)
	}

	decl, ok := prog.Declaration(prog.Statements[1].Call.Binding)
	if !ok || decl != prog.Statements[0].Decl {
		t.Fatal("expected f() bound to its own declaration")
	}

	err = NewInterpreter(nil, WithMaxDepth(64)).Run(t.Context(), prog)
	if !errors.Is(err, ErrRuntime) {
		t.Fatalf("expected ErrRuntime from depth limit, got %v", err)
	}

	if !strings.Contains(err.Error(), "maximum call depth 64 exceeded") {
		t.Errorf("unexpected message %q", err)
	}
}

func TestInterpreter_MaxDepthBoundary(t *testing.T) {
	src := `function a() { b(); } function b() { println("b"); } a();`

	tests := []struct {
		depth   int
		wantErr bool
	}{
		{0, false},
		{3, false},
		{2, true},
	}

	for _, tt := range tests {
		var buf bytes.Buffer

		err := Run(t.Context(), src, &buf, WithMaxDepth(tt.depth))
		if (err != nil) != tt.wantErr {
			t.Errorf("depth %d: expected error %v, got %v", tt.depth, tt.wantErr, err)
		}
	}
}

func TestInterpreter_NilProgram(t *testing.T) {
	var buf bytes.Buffer

	if err := NewInterpreter(&buf).Run(t.Context(), nil); err != nil {
		t.Errorf("expected nil program to run, got %v", err)
	}

	if buf.Len() != 0 {
		t.Errorf("unexpected output %q", buf.String())
	}

	var prog *Program

	for range prog.Calls() {
		t.Error("expected no calls in a nil program")
	}

	for range prog.Declarations() {
		t.Error("expected no declarations in a nil program")
	}
}

func TestInterpreter_UnresolvedCall(t *testing.T) {
	prog := &Program{Statements: []Statement{CallStatement(NewCall("ghost"))}}

	err := NewInterpreter(nil).Run(t.Context(), prog)
	if !errors.Is(err, ErrRuntime) {
		t.Fatalf("expected ErrRuntime, got %v", err)
	}
}

func TestInterpreter_Exec(t *testing.T) {
	prog, err := Compile(t.Context(), `function hi() { println("hi"); } hi(); hi();`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer

	if err := NewInterpreter(&buf).Exec(t.Context(), prog, prog.Statements[1].Call); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if buf.String() != "hi\n" {
		t.Errorf("expected a single line, got %q", buf.String())
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestInterpreter_WriteError(t *testing.T) {
	err := Run(t.Context(), `println("x");`, failWriter{})
	if !errors.Is(err, ErrRuntime) {
		t.Fatalf("expected ErrRuntime, got %v", err)
	}
}

func BenchmarkRun(b *testing.B) {
	src := `function sayHello() { println("Hello", "World!"); }
		function twice() { sayHello(); sayHello(); }
		twice(); twice();`

	for b.Loop() {
		if err := Run(b.Context(), src, nil); err != nil {
			b.Fatal(err)
		}
	}
}
