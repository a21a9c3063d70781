package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/fncall/log"
	"github.com/ardnew/fncall/pkg"
)

func parse(t *testing.T, confPath string, args ...string) *CLI {
	t.Helper()

	// Parsing reconfigures the default logger.
	t.Cleanup(func() { log.Config(log.WithDefaults(os.Stderr)) })

	var cli CLI

	parser, err := newParser(&cli, t.Context, confPath, t.TempDir(),
		kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse(args); err != nil {
		t.Fatalf("parse %q: %v", args, err)
	}

	return &cli
}

func TestParse_Defaults(t *testing.T) {
	cli := parse(t, filepath.Join(t.TempDir(), "config"))

	if cli.Log.Level != "info" || cli.Log.Format != "text" || !cli.Log.Pretty {
		t.Errorf("unexpected log defaults %+v", cli.Log)
	}

	if len(cli.Run.Source) != 1 || cli.Run.Source[0] != "-" {
		t.Errorf("expected run from stdin by default, got %q", cli.Run.Source)
	}
}

func TestParse_DefaultCommandWithArgs(t *testing.T) {
	cli := parse(t, filepath.Join(t.TempDir(), "config"),
		"--log-level=trace", "-d", "3", "a.fn", "b.fn")

	if cli.Log.Level != "trace" {
		t.Errorf("unexpected level %q", cli.Log.Level)
	}

	if cli.Run.MaxDepth != 3 || strings.Join(cli.Run.Source, ",") != "a.fn,b.fn" {
		t.Errorf("unexpected run command %+v", cli.Run)
	}
}

func TestParse_ConfigFiles(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "config")

	yamlConf := "log:\n  format: json\nmax_depth: 7\ninclude:\n  - " + dir + "\n"
	if err := os.WriteFile(conf, []byte(yamlConf), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(conf+".json", []byte(`{"backtrack": true}`), 0o600); err != nil {
		t.Fatal(err)
	}

	cli := parse(t, conf, "run", "prog.fn")

	if cli.Log.Format != "json" {
		t.Errorf("expected format from YAML, got %q", cli.Log.Format)
	}

	if cli.Run.MaxDepth != 7 || !cli.Run.Backtrack {
		t.Errorf("unexpected run command %+v", cli.Run)
	}

	if len(cli.Run.Include) != 1 || cli.Run.Include[0] != dir {
		t.Errorf("unexpected include %q", cli.Run.Include)
	}

	cli = parse(t, conf, "run", "--max-depth=2", "prog.fn")
	if cli.Run.MaxDepth != 2 {
		t.Errorf("expected flag to override the file, got %d", cli.Run.MaxDepth)
	}
}

func TestParse_Version(t *testing.T) {
	var (
		out  bytes.Buffer
		code = -1
	)

	var cli CLI

	parser, err := newParser(&cli, context.Background, filepath.Join(t.TempDir(), "config"), t.TempDir(),
		kong.Writers(&out, &out),
		kong.Exit(func(c int) { code = c }))
	if err != nil {
		t.Fatal(err)
	}

	_, _ = parser.Parse([]string{"--version"})

	if code != 0 || strings.TrimSpace(out.String()) != pkg.Version {
		t.Errorf("got exit %d and output %q", code, out.String())
	}
}
