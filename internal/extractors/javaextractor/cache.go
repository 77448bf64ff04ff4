package javaextractor

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/maypok86/otter"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/parser"
)

// parsed is everything extracted from one source file.
type parsed struct {
	result *parser.Result
	nested []NestedType
}

// parseCache memoizes parse results by file path and content hash, so a
// watch-mode regeneration only reparses files whose bytes changed.
type parseCache struct {
	cache otter.Cache[string, *parsed]
}

func newParseCache(capacity int) (*parseCache, error) {
	c, err := otter.MustBuilder[string, *parsed](capacity).
		CollectStats().
		Build()
	if err != nil {
		return nil, err
	}
	return &parseCache{cache: c}, nil
}

func cacheKey(relPath string, src []byte) string {
	sum := sha256.Sum256(src)
	return relPath + "@" + hex.EncodeToString(sum[:])
}

func (c *parseCache) get(key string) (*parsed, bool) {
	return c.cache.Get(key)
}

func (c *parseCache) set(key string, p *parsed) {
	c.cache.Set(key, p)
}

func (c *parseCache) hits() int64 {
	return c.cache.Stats().Hits()
}

func (c *parseCache) close() {
	c.cache.Close()
}
