package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/fncall/log"
)

// loadYAML returns a [kong.ConfigurationLoader] for YAML configuration files.
//
// Keys are flag names with hyphens written as underscores. Nested mappings
// are flattened, so both of these set --log-level:
//
//	log_level: debug
//
//	log:
//	  level: debug
//
// A file that does not parse is logged and ignored. Command-line flags
// override file values.
func loadYAML(ctx context.Context) func(io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		var doc map[string]any

		err := yaml.NewDecoder(r).DecodeContext(ctx, &doc)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.WarnContext(ctx, "ignoring invalid configuration file",
					slog.Any("error", err))
			}

			return config{}, nil
		}

		cfg := config{}
		cfg.flatten("", doc)

		return cfg, nil
	}
}

// config implements [kong.Resolver] over flattened configuration values.
type config map[string]any

func (c config) flatten(prefix string, doc map[string]any) {
	for key, val := range doc {
		key = prefix + strings.ReplaceAll(key, "-", "_")

		if sub, ok := val.(map[string]any); ok {
			c.flatten(key+"_", sub)

			continue
		}

		c[key] = flagValue(val)
	}
}

// flagValue converts a decoded YAML value to one kong can map onto a flag.
// Kong parses numbers from their string form.
func flagValue(val any) any {
	switch v := val.(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = flagValue(e)
		}

		return out
	default:
		return v
	}
}

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if v, ok := c[flag.Name]; ok {
		return v, nil
	}

	return c[strings.ReplaceAll(flag.Name, "-", "_")], nil
}
