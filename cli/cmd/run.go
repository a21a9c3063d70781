package cmd

import (
	"bufio"
	"context"
	"log/slog"

	"github.com/ardnew/fncall/lang"
	"github.com/ardnew/fncall/log"
)

// Run executes programs.
type Run struct {
	MaxDepth  int      `default:"0" help:"Maximum call depth, 0 for no limit."              short:"d"`
	Strict    bool     `            help:"Reject duplicate function declarations."`
	Backtrack bool     `            help:"Parse statements by trial and rewind."`
	Include   []string `            help:"Directories searched for relative sources." short:"I" type:"path"`

	Source []string `arg:"" default:"-" help:"Source files, '-' for stdin." name:"source"`
}

// Options returns the pipeline options selected by the flags.
func (r *Run) Options() []lang.Option {
	return append(
		[]lang.Option{lang.WithLogger(log.Default())},
		pipelineOptions(r.MaxDepth, r.Strict, r.Backtrack)...,
	)
}

func pipelineOptions(maxDepth int, strict, backtrack bool) []lang.Option {
	return []lang.Option{
		lang.WithMaxDepth(maxDepth),
		lang.WithStrictDeclarations(strict),
		lang.WithBacktracking(backtrack),
	}
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, err := openSources(ctx, r.Source, r.Include)
	if err != nil {
		return err
	}
	defer src.Close()

	opts := r.Options()

	prog, err := lang.ParseReader(ctx, src, opts...)
	if err != nil {
		return err
	}

	if err := lang.Resolve(ctx, prog, opts...); err != nil {
		return err
	}

	out := bufio.NewWriter(outputFrom(ctx))

	err = lang.NewInterpreter(out, opts...).Run(ctx, prog)

	// Output produced before a runtime error is still written.
	if ferr := out.Flush(); ferr != nil && err == nil {
		err = ErrWriteOutput.Wrap(ferr)
	}

	if err == nil {
		log.DebugContext(ctx, "run complete",
			slog.Int("statements", len(prog.Statements)))
	}

	return err
}
