package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/ardnew/fncall/lang"
	"github.com/ardnew/fncall/log"
)

// Fmt parses a source and writes it in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as fncall source (default)."`
	JSON   JSON   `cmd:""                    help:"Format as JSON."`
	YAML   YAML   `cmd:""                    help:"Format as YAML."`
	AST    AST    `cmd:""                    help:"Format as abstract syntax tree."`
}

// formatInput is shared by every fmt subcommand.
type formatInput struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// program reads and parses the source, resolving calls if resolve is set.
func (f formatInput) program(
	ctx context.Context,
	format string,
	resolve bool,
) (*lang.Program, error) {
	src, err := openSources(ctx, []string{f.Source}, nil)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	opts := []lang.Option{lang.WithLogger(log.Default())}

	prog, err := lang.ParseReader(ctx, src, opts...)
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("format", format))
	}

	if resolve {
		if err := lang.Resolve(ctx, prog, opts...); err != nil {
			return nil, lang.WrapError(err).With(slog.String("format", format))
		}
	}

	return prog, nil
}

// Native formats input as fncall source.
type Native struct {
	Indent int `default:"2" help:"Indent width, 0 to keep each declaration on one line." short:"i"`

	Input formatInput `embed:""`
}

// Run executes the fmt native command.
func (f *Native) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := f.Input.program(ctx, "native", false)
	if err != nil {
		return err
	}

	return write(ctx, func(w io.Writer) error {
		return prog.Format(ctx, w, max(f.Indent, 0))
	})
}

// JSON formats input as JSON.
type JSON struct {
	Indent  int  `default:"2"    help:"Indent width for JSON output."      short:"i"`
	Resolve bool `default:"true" help:"Resolve calls before formatting." negatable:""`

	Input formatInput `embed:""`
}

// Run executes the fmt json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := j.Input.program(ctx, "json", j.Resolve)
	if err != nil {
		return err
	}

	return write(ctx, func(w io.Writer) error {
		return prog.FormatJSON(ctx, w, j.Indent)
	})
}

// YAML formats input as YAML.
type YAML struct {
	Indent  int  `default:"2"    help:"Indent width for YAML output."      short:"i"`
	Resolve bool `default:"true" help:"Resolve calls before formatting." negatable:""`

	Input formatInput `embed:""`
}

// Run executes the fmt yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := y.Input.program(ctx, "yaml", y.Resolve)
	if err != nil {
		return err
	}

	return write(ctx, func(w io.Writer) error {
		return prog.FormatYAML(ctx, w, y.Indent)
	})
}

// AST prints the indented tree dump of the input.
type AST struct {
	Resolve bool `default:"true" help:"Resolve calls before dumping." negatable:""`

	Input formatInput `embed:""`
}

// Run executes the fmt ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := a.Input.program(ctx, "ast", a.Resolve)
	if err != nil {
		return err
	}

	return write(ctx, func(w io.Writer) error {
		return prog.Dump(w, "")
	})
}

// write runs fn against the command output, wrapping plain write failures.
func write(ctx context.Context, fn func(io.Writer) error) error {
	err := fn(outputFrom(ctx))
	if err == nil {
		return nil
	}

	var langErr *lang.Error
	if errors.As(err, &langErr) {
		return err
	}

	return ErrWriteOutput.Wrap(err)
}
