package repl

import (
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/fncall/lang"
	"github.com/ardnew/fncall/log"
)

func TestSession_Eval(t *testing.T) {
	s := NewSession(log.Logger{})

	steps := []struct {
		input   string
		want    string
		wantErr error
		names   string
	}{
		{`function greet() { println("hi"); }`, "", nil, "greet"},
		{`greet();`, "hi\n", nil, "greet"},
		{`function outer() { greet(); greet(); }`, "", nil, "greet outer"},
		{`outer();`, "hi\nhi\n", nil, "greet outer"},
		{`function greet() { println("bye"); } outer();`, "bye\nbye\n", nil, "greet outer"},
		{`function broken() { missing(); }`, "", lang.ErrBinding, "greet outer"},
		{`println("a", "b");`, "a b\n", nil, "greet outer"},
		{`function later() { println(` + "\"x\"" + `); }`, "", nil, "greet outer later"},
		{`undefined(`, "", lang.ErrSyntax, "greet outer later"},
	}

	for _, step := range steps {
		got, err := s.Eval(t.Context(), step.input)

		if step.wantErr != nil {
			if !errors.Is(err, step.wantErr) {
				t.Fatalf("%s: expected %v, got %v", step.input, step.wantErr, err)
			}
		} else if err != nil {
			t.Fatalf("%s: unexpected error: %v", step.input, err)
		}

		if got != step.want {
			t.Errorf("%s: got %q, want %q", step.input, got, step.want)
		}

		if names := strings.Join(s.Names(), " "); names != step.names {
			t.Errorf("%s: names %q, want %q", step.input, names, step.names)
		}
	}
}

func TestSession_ForwardReferenceWithinInput(t *testing.T) {
	s := NewSession(log.Logger{})

	got, err := s.Eval(t.Context(), `first(); function first() { second(); } function second() { println("ok"); }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "ok\n" {
		t.Errorf("got %q", got)
	}
}

func TestSession_RuntimeErrorKeepsOutputAndDeclarations(t *testing.T) {
	s := NewSession(log.Logger{}, lang.WithMaxDepth(3))

	got, err := s.Eval(t.Context(), `function loop() { loop(); } println("before"); loop();`)
	if !errors.Is(err, lang.ErrRuntime) {
		t.Fatalf("expected ErrRuntime, got %v", err)
	}

	if got != "before\n" {
		t.Errorf("got %q", got)
	}

	if _, ok := s.Lookup("loop"); !ok {
		t.Error("expected loop to be declared")
	}
}

func TestSession_Strict(t *testing.T) {
	s := NewSession(log.Logger{}, lang.WithStrictDeclarations(true))

	if _, err := s.Eval(t.Context(), `function f() {}`); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Eval(t.Context(), `function f() { println("again"); }`); !errors.Is(err, lang.ErrBinding) {
		t.Fatalf("expected ErrBinding, got %v", err)
	}

	decl, _ := s.Lookup("f")
	if len(decl.Body.Calls) != 0 {
		t.Error("expected the first declaration to be kept")
	}
}

func TestSession_ProgramAndReset(t *testing.T) {
	s := NewSession(log.Logger{})

	if _, err := s.Eval(t.Context(), `function greet() { println("hi"); } function twice() { greet(); greet(); }`); err != nil {
		t.Fatal(err)
	}

	prog, err := s.Program(t.Context())
	if err != nil {
		t.Fatal(err)
	}

	var b strings.Builder
	if err := prog.Dump(&b, ""); err != nil {
		t.Fatal(err)
	}

	want := "Program\n" +
		"\tFunctionDecl greet\n" +
		"\t\tFunctionBody\n" +
		"\t\t\tFunctionCall println, not resolved\n" +
		"\t\t\t\tParameter: hi\n" +
		"\tFunctionDecl twice\n" +
		"\t\tFunctionBody\n" +
		"\t\t\tFunctionCall greet, resolved\n" +
		"\t\t\tFunctionCall greet, resolved\n"

	if b.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", b.String(), want)
	}

	s.Reset()

	if s.Len() != 0 {
		t.Errorf("expected empty session, got %d", s.Len())
	}

	if _, err := s.Eval(t.Context(), `greet();`); !errors.Is(err, lang.ErrBinding) {
		t.Errorf("expected ErrBinding after reset, got %v", err)
	}
}
