package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/fncall/lang"
)

func ioContext(ctx context.Context, stdin string) (context.Context, *bytes.Buffer) {
	var out bytes.Buffer

	return WithInput(WithOutput(ctx, &out), strings.NewReader(stdin)), &out
}

func TestRun_Run(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Run
		src     string
		want    string
		wantErr error
	}{
		{
			name: "hello world",
			src:  `function sayHello() { println("Hello World!"); } sayHello();`,
			want: "Hello World!\n",
		},
		{
			name:    "binding error writes nothing",
			src:     `println("first"); foo();`,
			wantErr: lang.ErrBinding,
		},
		{
			name:    "syntax error",
			src:     `f(`,
			wantErr: lang.ErrSyntax,
		},
		{
			name:    "max depth",
			cmd:     Run{MaxDepth: 8},
			src:     `function f() { f(); } f();`,
			wantErr: lang.ErrRuntime,
		},
		{
			name:    "strict declarations",
			cmd:     Run{Strict: true},
			src:     `function f() {} function f() {}`,
			wantErr: lang.ErrBinding,
		},
		{
			name: "backtracking",
			cmd:  Run{Backtrack: true},
			src:  `function a() { println("a", "b"); } a(); a();`,
			want: "a b\na b\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, out := ioContext(t.Context(), tt.src)

			tt.cmd.Source = []string{"-"}

			err := tt.cmd.Run(ctx)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}

				if tt.want == "" && out.Len() > 0 {
					t.Errorf("unexpected output %q", out.String())
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if out.String() != tt.want {
				t.Errorf("got %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestRun_OutputBeforeRuntimeError(t *testing.T) {
	ctx, out := ioContext(t.Context(), `println("before"); function f() { f(); } f();`)

	cmd := Run{MaxDepth: 4, Source: []string{"-"}}

	if err := cmd.Run(ctx); !errors.Is(err, lang.ErrRuntime) {
		t.Fatalf("expected ErrRuntime, got %v", err)
	}

	if out.String() != "before\n" {
		t.Errorf("expected output written before the error, got %q", out.String())
	}
}

func TestRun_Files(t *testing.T) {
	dir := t.TempDir()

	decl := writeFile(t, dir, "decl.fn", `function greet() { println("hi"); }`)
	main := writeFile(t, dir, "main.fn", `greet();`)

	ctx, out := ioContext(t.Context(), "")

	cmd := Run{Source: []string{main, decl}}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.String() != "hi\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestPipelineOptions(t *testing.T) {
	r := Run{MaxDepth: 2, Strict: true}

	if got := len(r.Options()); got != 4 {
		t.Errorf("expected logger and pipeline options, got %d", got)
	}

	_, err := lang.Compile(t.Context(), `function f() {} function f() {}`, r.Options()...)
	if !errors.Is(err, lang.ErrBinding) {
		t.Errorf("expected strict declarations, got %v", err)
	}
}
