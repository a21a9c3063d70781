package lang

import (
	"bytes"
	"errors"
	"testing"
)

func FuzzParseString(f *testing.F) {
	for _, seed := range []string{
		"",
		`function sayHello() { println("Hello World!"); } sayHello();`,
		`println("a\nb", "c\\d");`,
		`f("a",);`,
		"function f() { /* open",
		"a += b -- c /= d",
		`"unterminated`,
		"// comment\nx();",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, src string) {
		prog, err := ParseString(t.Context(), src, WithCache(false))
		if err != nil {
			if !errors.Is(err, ErrLex) && !errors.Is(err, ErrSyntax) {
				t.Fatalf("unexpected error class: %v", err)
			}

			if errors.Is(err, errTryNext) {
				t.Fatalf("internal signal escaped: %v", err)
			}

			return
		}

		var buf bytes.Buffer
		if err := prog.Format(t.Context(), &buf, 2); err != nil {
			t.Fatalf("format failed: %v", err)
		}

		again, err := ParseString(t.Context(), buf.String(), WithCache(false))
		if err != nil {
			t.Fatalf("formatted source does not parse: %v\n%s", err, buf.String())
		}

		if again.String() != prog.String() {
			t.Fatalf("round trip changed the program:\n%s\nvs\n%s", again, prog)
		}

		back, err := ParseString(t.Context(), src, WithCache(false), WithBacktracking(true))
		if err != nil || back.String() != prog.String() {
			t.Fatalf("backtracking parse differs: %v", err)
		}
	})
}
