package lang

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

const formatSource = `function greet() { println("hi", "a\nb"); other(); }
function empty() {}
greet();`

func TestProgram_Format(t *testing.T) {
	prog, err := parse(t, formatSource)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		indent int
		want   string
	}{
		{
			name:   "indented",
			indent: 2,
			want: "function greet() {\n" +
				"  println(\"hi\", \"a\\nb\");\n" +
				"  other();\n" +
				"}\n" +
				"function empty() {}\n" +
				"greet();\n",
		},
		{
			name:   "single line",
			indent: 0,
			want: "function greet() { println(\"hi\", \"a\\nb\"); other(); }\n" +
				"function empty() {}\n" +
				"greet();\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			if err := prog.Format(t.Context(), &buf, tt.indent); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if buf.String() != tt.want {
				t.Errorf("expected:\n%s\ngot:\n%s", tt.want, buf.String())
			}

			again, err := parse(t, buf.String())
			if err != nil {
				t.Fatalf("formatted source does not parse: %v", err)
			}

			if again.String() != prog.String() {
				t.Errorf("round trip changed the program:\n%s\nvs\n%s", again, prog)
			}
		})
	}
}

func TestProgram_Format_Backslash(t *testing.T) {
	prog := &Program{Statements: []Statement{CallStatement(NewCall("println", `C:\dir`))}}

	var buf bytes.Buffer
	if err := prog.Format(t.Context(), &buf, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if buf.String() != "println(\"C:\\\\dir\");\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestProgram_Format_Unrepresentable(t *testing.T) {
	prog := &Program{Statements: []Statement{CallStatement(NewCall("println", `say "hi"`))}}

	err := prog.Format(t.Context(), &bytes.Buffer{}, 2)
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
}

func TestProgram_FormatJSON(t *testing.T) {
	prog, err := Compile(t.Context(), formatSource+` function other() {}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := prog.FormatJSON(t.Context(), &buf, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out struct {
		Program []struct {
			Declare string `json:"declare"`
			Call    string `json:"call"`
			Body    []struct {
				Call      string   `json:"call"`
				Arguments []string `json:"arguments"`
				Resolved  bool     `json:"resolved"`
			} `json:"body"`
			Resolved bool `json:"resolved"`
		} `json:"program"`
	}

	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}

	if len(out.Program) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(out.Program))
	}

	greet := out.Program[0]
	if greet.Declare != "greet" || len(greet.Body) != 2 {
		t.Fatalf("unexpected declaration %+v", greet)
	}

	if greet.Body[0].Arguments[1] != "a\nb" || greet.Body[0].Resolved {
		t.Errorf("unexpected println call %+v", greet.Body[0])
	}

	if !greet.Body[1].Resolved {
		t.Error("expected other() to be resolved")
	}

	if out.Program[2].Call != "greet" || !out.Program[2].Resolved {
		t.Errorf("unexpected top-level call %+v", out.Program[2])
	}
}

func TestProgram_FormatYAML(t *testing.T) {
	prog, err := parse(t, formatSource)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := prog.FormatYAML(t.Context(), &buf, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()

	for _, want := range []string{"program:", "declare: greet", "call: println", "call: greet"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected YAML to contain %q:\n%s", want, out)
		}
	}
}
