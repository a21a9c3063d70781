package cmd

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/ardnew/mung"
	"github.com/klauspost/readahead"

	"github.com/ardnew/fncall/log"
)

type (
	contextKey struct{}
	outputKey  struct{}
	inputKey   struct{}
)

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// WithOutput returns a context whose commands write their results to w
// instead of stdout.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// WithInput returns a context whose commands read the "-" source from r
// instead of stdin.
func WithInput(ctx context.Context, r io.Reader) context.Context {
	return context.WithValue(ctx, inputKey{}, r)
}

func inputFrom(ctx context.Context) io.Reader {
	if r, ok := ctx.Value(inputKey{}).(io.Reader); ok && r != nil {
		return r
	}

	return os.Stdin
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// searchPath returns the directories searched for relative sources that do
// not exist in the working directory: the include directories followed by
// those listed in [PathEnv]. Entries that are not directories are dropped.
func searchPath(include []string) []string {
	list := mung.Make(
		mung.WithSubjectItems(os.Getenv(PathEnv)),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(include...),
		mung.WithFilter(isDir),
	).String()

	var dirs []string

	seen := make(map[string]struct{})

	for _, dir := range filepath.SplitList(list) {
		if dir == "" || !isDir(dir) {
			continue
		}

		if _, dup := seen[dir]; dup {
			continue
		}

		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}

	return dirs
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

// locate returns the path of the source file named by name. Absolute names
// and names that exist relative to the working directory are returned as-is.
func locate(name string, dirs []string) (string, error) {
	if _, err := os.Stat(name); err == nil || filepath.IsAbs(name) {
		return name, nil
	}

	for _, dir := range dirs {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", ErrSourceNotFound.
		With(slog.String("source", name), slog.Any("search", dirs)).
		Wrap(fs.ErrNotExist)
}

// sourceReader concatenates sources and closes the files it opened.
type sourceReader struct {
	io.Reader

	files []*os.File
}

func (s *sourceReader) Close() error {
	errs := make([]error, 0, len(s.files))

	for _, f := range s.files {
		errs = append(errs, f.Close())
	}

	return errors.Join(errs...)
}

// openSources opens the named sources and returns a reader over their
// contents, separated by newlines. A file named more than once, through any
// path, is read once. Every "-" denotes the same stdin input, which is read
// once after all files.
func openSources(
	ctx context.Context,
	sources []string,
	include []string,
) (io.ReadCloser, error) {
	if len(sources) == 0 {
		sources = []string{stdinSource}
	}

	dirs := searchPath(include)
	seen := make(map[fileKey]struct{})
	sr := new(sourceReader)
	stdin := false

	for _, src := range sources {
		if src == stdinSource {
			stdin = true

			continue
		}

		path, err := locate(src, dirs)
		if err != nil {
			_ = sr.Close()

			return nil, err
		}

		f, err := openUnique(path, seen)
		if err != nil {
			_ = sr.Close()

			return nil, err
		}

		if f != nil {
			sr.files = append(sr.files, f)
		}
	}

	parts := make([]io.Reader, 0, 2*len(sr.files)+1)

	for _, f := range sr.files {
		if len(parts) > 0 {
			parts = append(parts, strings.NewReader("\n"))
		}

		parts = append(parts, f)
	}

	if stdin {
		if len(parts) > 0 {
			parts = append(parts, strings.NewReader("\n"))
		}

		parts = append(parts, inputFrom(ctx))
	}

	log.TraceContext(ctx, "sources opened",
		slog.Int("files", len(sr.files)),
		slog.Bool("stdin", stdin))

	sr.Reader = io.MultiReader(parts...)

	return sr, nil
}

// readSources reads the sources opened by [openSources] into a string.
func readSources(
	ctx context.Context,
	sources []string,
	include []string,
) (string, error) {
	rc, err := openSources(ctx, sources, include)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	ra := readahead.NewReader(rc)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", ErrReadSource.With(slog.Any("sources", sources)).Wrap(err)
	}

	return string(data), nil
}

// openUnique opens the file at path unless a file with the same device and
// inode was already opened, in which case it returns a nil file.
func openUnique(path string, seen map[fileKey]struct{}) (*os.File, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, wrapReadError(path, err)
	}

	f, err := os.Open(resolved)
	if err != nil {
		return nil, wrapReadError(path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()

		return nil, wrapReadError(path, err)
	}

	if info.IsDir() {
		_ = f.Close()

		return nil, ErrReadSource.With(slog.String("source", path)).
			Wrap(syscall.EISDIR)
	}

	if key, ok := makeFileKey(info); ok {
		if _, dup := seen[key]; dup {
			_ = f.Close()

			return nil, nil
		}

		seen[key] = struct{}{}
	}

	return f, nil
}

func wrapReadError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return ErrSourceNotFound.With(slog.String("source", path)).Wrap(err)
	}

	return ErrReadSource.With(slog.String("source", path)).Wrap(err)
}
