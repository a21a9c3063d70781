// Package lang implements the fncall scripting language: a lexer, a
// recursive-descent parser, a two-pass reference resolver and a tree-walking
// interpreter.
//
// A program is a sequence of function declarations and function calls.
// Functions take no parameters; calls pass string literals. The only
// built-in is println, which writes its arguments separated by single
// spaces followed by a newline.
//
//	function sayHello() {
//	  println("Hello", "World!");
//	}
//	sayHello();
//
// # Pipeline
//
// The stages can be driven one at a time:
//
//	toks, err := lang.Tokenize(ctx, src)
//	prog, err := lang.NewParser(lang.NewTokenSlice(toks)).ParseProgram(ctx)
//	err = lang.Resolve(ctx, prog)
//	err = lang.NewInterpreter(os.Stdout).Run(ctx, prog)
//
// or all at once with [Run]. [ParseString] and [ParseReader] cache token
// slices by the xxh3 hash of the source; see [ClearCache].
//
// # Errors
//
// Every failure is an [*Error] matching one of [ErrLex], [ErrSyntax],
// [ErrBinding] or [ErrRuntime] with [errors.Is]. The first error aborts the
// pipeline.
//
// # Diagnostics
//
// Every AST node implements [Dumper]. The dump is a diagnostic tree and is
// not source text; use [Program.Format] to write source.
package lang
