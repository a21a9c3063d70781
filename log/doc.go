// Package log provides an immutable, concurrency-safe logging interface
// based on [log/slog].
//
// A [Logger] is configured once with functional options and never changes
// afterward; [Logger.Wrap] and [Logger.With] derive new loggers.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
//	logger.Info("program loaded", slog.Int("statements", n))
//
// # Levels
//
// In addition to the four [slog] levels the package defines [LevelTrace],
// used for per-stage diagnostics that are too noisy for debug output.
//
// # Output
//
// Messages are written as text ([FormatText], the default) or JSON
// ([FormatJSON]). Unless [WithPretty] disables it, output is colorized when
// the writer is a terminal, and JSON records span several lines.
//
// The functions at package level log through a default logger that writes
// to stderr and is reconfigured with [Config].
package log
