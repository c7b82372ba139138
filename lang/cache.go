package lang

import (
	"bytes"
	"context"
	"encoding/gob"
	"log/slog"
	"strconv"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/Devenc042/MyZeDeDup/log"
)

// compileKind distinguishes scripts from single expressions in the cache.
type compileKind int

const (
	kindScript compileKind = iota
	kindExpression
)

func (k compileKind) String() string {
	if k == kindExpression {
		return "expression"
	}

	return "script"
}

// globalCache stores parsed nodes keyed by source and option hash. Parsed
// nodes are immutable, so a single tree is shared by every Script compiled
// from the same source.
var globalCache sync.Map

// entry is a cache slot filled exactly once.
type entry struct {
	once sync.Once
	node Node
	err  error
}

// optionsKey is the gob-encoded subset of options that affects parsing.
type optionsKey struct {
	Kind     int
	MaxDepth int
}

// hashOptions encodes options using gob and hashes with xxh3.
func hashOptions(key optionsKey) uint64 {
	var buf bytes.Buffer

	_ = gob.NewEncoder(&buf).Encode(key)

	return xxh3.Hash(buf.Bytes())
}

// cacheKey combines the source hash with the options hash.
func cacheKey(kind compileKind, source string, opts options) string {
	sourceHash := xxh3.HashString(source)
	optsHash := hashOptions(optionsKey{Kind: int(kind), MaxDepth: opts.maxDepth})

	return strconv.FormatUint(sourceHash, 36) + ":" + strconv.FormatUint(optsHash, 36)
}

// cached returns the node stored under key, calling parse to fill the slot
// on first use. Parse errors are cached as well.
func cached(
	ctx context.Context,
	logger log.Logger,
	key string,
	parse func() (Node, error),
) (Node, error) {
	value, hit := globalCache.LoadOrStore(key, new(entry))

	slot, ok := value.(*entry)
	if !ok {
		return parse()
	}

	logger.TraceContext(ctx, "cache lookup",
		slog.String("key", key),
		slog.Bool("cache_hit", hit),
	)

	slot.once.Do(func() {
		slot.node, slot.err = parse()
	})

	return slot.node, slot.err
}

// ClearCache removes all cached compilations.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	globalCache.Clear()
}
