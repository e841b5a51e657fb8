package cache

import (
	"github.com/HueCodes/keelson/internal/parser"
)

// CachedParser wraps the parser with AST caching
type CachedParser struct {
	cache *ASTCache
	opts  []parser.Option
}

// NewCachedParser creates a new cached parser. The options are applied to
// every parse.
func NewCachedParser(cache *ASTCache, opts ...parser.Option) *CachedParser {
	return &CachedParser{cache: cache, opts: opts}
}

// Parse parses the input, using the cache if available. The boolean reports
// a cache hit.
func (p *CachedParser) Parse(filename, content string) (*parser.File, bool, error) {
	if entry, ok := p.cache.Get(filename, content); ok {
		return entry.File, true, entry.Err
	}

	opts := append([]parser.Option{parser.WithFilename(filename)}, p.opts...)
	file, err := parser.Parse(content, opts...)
	p.cache.Put(filename, content, file, err)
	return file, false, err
}

// Invalidate removes a file from the cache
func (p *CachedParser) Invalidate(filename string) {
	p.cache.Invalidate(filename)
}

// Stats returns the statistics of the underlying cache
func (p *CachedParser) Stats() CacheStats {
	return p.cache.Stats()
}
