package cmd

import (
	"context"

	"github.com/ardnew/fncall/cli/cmd/repl"
	"github.com/ardnew/fncall/log"
)

// Repl starts an interactive session.
type Repl struct {
	MaxDepth  int  `default:"0" help:"Maximum call depth, 0 for no limit." short:"d"`
	Strict    bool `            help:"Reject redeclared functions."`
	Backtrack bool `            help:"Parse statements by trial and rewind."`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	var cacheDir string

	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	return repl.Run(ctx, cacheDir, log.Default(),
		pipelineOptions(r.MaxDepth, r.Strict, r.Backtrack)...)
}
