package cmd

import (
	"context"
	"iter"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/fncall/log"
	"github.com/ardnew/fncall/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: kong context undefined")
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	// Check if file exists and force not set
	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath), slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	data, err := yaml.MarshalContext(ctx, configValues(ktx),
		yaml.Indent(defaultConfigIndent),
		yaml.IndentSequence(true),
	)
	if err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	err = os.WriteFile(confPath, data, 0o600)
	if err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath))

	return nil
}

// configValues collects the current value of every flag of the application
// and its commands, keyed by the flag name with hyphens replaced by
// underscores. Flags of the init command itself are skipped.
func configValues(ktx *kong.Context) yaml.MapSlice {
	prefixIgnore := []string{"help", "version", profile.Tag}

	var (
		items yaml.MapSlice
		seen  = map[string]bool{}
	)

	for node := range nodes(ktx.Model.Node) {
		if node == ktx.Selected() {
			continue
		}

		for _, flag := range node.Flags {
			if flag.Hidden || seen[flag.Name] || slices.ContainsFunc(prefixIgnore, func(s string) bool {
				return strings.HasPrefix(flag.Name, s)
			}) {
				continue
			}

			seen[flag.Name] = true

			val := configValue(ktx.FlagValue(flag))
			if val == nil {
				continue
			}

			items = append(items, yaml.MapItem{
				Key:   strings.ReplaceAll(flag.Name, "-", "_"),
				Value: val,
			})
		}
	}

	return items
}

// nodes iterates over node and its descendants depth-first.
func nodes(node *kong.Node) iter.Seq[*kong.Node] {
	return func(yield func(*kong.Node) bool) {
		var walk func(*kong.Node) bool

		walk = func(n *kong.Node) bool {
			if !yield(n) {
				return false
			}

			for _, child := range n.Children {
				if !walk(child) {
					return false
				}
			}

			return true
		}

		walk(node)
	}
}

// configValue returns the YAML value of a flag, or nil if it has none worth
// writing.
func configValue(val any) any {
	switch v := val.(type) {
	case nil:
		return nil

	case string:
		if v == "" {
			return nil
		}

		return v

	case []string:
		if len(v) == 0 {
			return nil
		}

		return v

	case interface{ String() string }:
		return v.String()

	default:
		return v
	}
}
