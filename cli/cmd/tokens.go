package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/ardnew/fncall/lang"
	"github.com/ardnew/fncall/log"
)

// Tokens prints the token stream of the sources.
type Tokens struct {
	Filter  string   `help:"Print only tokens matching this expression over Kind, Text, Line, Column and Offset." short:"F"`
	JSON    bool     `help:"Print one JSON object per token."`
	Include []string `help:"Directories searched for relative sources."                                          short:"I" type:"path"`

	Source []string `arg:"" default:"-" help:"Source files, '-' for stdin." name:"source"`
}

// Run executes the tokens command.
func (t *Tokens) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, err := readSources(ctx, t.Source, t.Include)
	if err != nil {
		return err
	}

	toks, err := lang.Tokenize(ctx, src, lang.WithLogger(log.Default()))
	if err != nil {
		return err
	}

	toks, err = lang.FilterTokens(ctx, toks, t.Filter, lang.WithLogger(log.Default()))
	if err != nil {
		return err
	}

	out := bufio.NewWriter(outputFrom(ctx))
	enc := json.NewEncoder(out)

	for _, tok := range toks {
		if t.JSON {
			err = enc.Encode(tok)
		} else {
			_, err = fmt.Fprintf(out, "%s\t%s\n", tok.Pos, tok)
		}

		if err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	if err := out.Flush(); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
