package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// tokenCache maps the xxh3 hash of a source to its *cacheEntry.
// Cached token slices are shared and must never be modified.
var tokenCache sync.Map

// cacheEntry tokenizes its source exactly once.
type cacheEntry struct {
	once   sync.Once
	source string
	tokens []Token
	err    error
}

// ParseReader reads all of r and parses it like [ParseString].
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Program, error) {
	// Read ahead asynchronously while earlier chunks are consumed.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	return ParseString(ctx, string(data), opts...)
}

// ParseString lexes and parses src. Token slices are cached by source
// content unless [WithCache] disables it; every call returns a new Program.
func ParseString(ctx context.Context, src string, opts ...Option) (*Program, error) {
	cfg := makeConfig(opts...)

	toks, err := cachedTokens(ctx, src, cfg, opts)
	if err != nil {
		return nil, err
	}

	return NewParser(NewTokenSlice(toks), opts...).ParseProgram(ctx)
}

func cachedTokens(
	ctx context.Context,
	src string,
	cfg config,
	opts []Option,
) ([]Token, error) {
	if !cfg.cache {
		return Tokenize(ctx, src, opts...)
	}

	key := xxh3.HashString(src)

	value, hit := tokenCache.LoadOrStore(key, new(cacheEntry))

	entry, ok := value.(*cacheEntry)
	if !ok {
		return Tokenize(ctx, src, opts...)
	}

	entry.once.Do(func() {
		entry.source = src
		entry.tokens, entry.err = Tokenize(ctx, src, opts...)
	})

	cfg.logger.TraceContext(ctx, "cache lookup",
		slog.String("source_hash", strconv.FormatUint(key, 16)),
		slog.Bool("cache_hit", hit))

	// Different source with the same hash.
	if entry.source != src {
		return Tokenize(ctx, src, opts...)
	}

	return entry.tokens, entry.err
}

// ClearCache removes every cached token slice.
func ClearCache() {
	tokenCache.Clear()
}
