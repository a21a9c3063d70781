package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/fncall/cli/cmd"
	"github.com/ardnew/fncall/pkg"
)

// CLI is the top-level command-line interface for fncall.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Run    cmd.Run    `cmd:"" default:"withargs" help:"Execute programs"`
	Tokens cmd.Tokens `cmd:""                    help:"Print the token stream of programs"`
	Fmt    cmd.Fmt    `cmd:""                    help:"Format programs"`
	Init   cmd.Init   `cmd:""                    help:"Initialize configuration file"`
	Repl   cmd.Repl   `cmd:""                    help:"Start an interactive session"`
}

// Run executes the fncall CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cli.Log.scan(args)

	parser, err := newParser(&cli, func() context.Context { return ctx },
		configPath(baseConfig), pkg.CacheDir(),
		kong.UsageOnError(),
		kong.Exit(exit),
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	cli.Log.start(ctx)

	// No-op unless built with tag pprof and a mode is selected.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx)
}

// newParser builds the kong parser for cli. Commands receive the context
// returned by provide at the time they run. Configuration is read from
// confPath (YAML) and confPath.json.
func newParser(
	cli *CLI,
	provide func() context.Context,
	confPath, cacheDir string,
	opts ...kong.Option,
) (*kong.Kong, error) {
	vars := kong.Vars{
		"version":            pkg.Version,
		cmd.ConfigIdentifier: confPath,
		cmd.CacheIdentifier:  cacheDir,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	return kong.New(cli, append([]kong.Option{
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.ExplicitGroups([]kong.Group{cli.Log.group(), cli.Pprof.group()}),
		kong.BindSingletonProvider(provide),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			Tree:                true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(kong.JSON, confPath+".json"),
		kong.Configuration(loadYAML(provide()), confPath),
		vars,
	}, opts...)...)
}
