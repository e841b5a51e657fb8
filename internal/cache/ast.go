package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/HueCodes/keelson/internal/parser"
)

// ASTEntry represents a cached parse result
type ASTEntry struct {
	File     *parser.File
	Err      error // the parse error, if parsing failed
	Hash     string
	ParsedAt time.Time
}

// ASTCache is an LRU cache of parse results keyed by filename. An entry is
// only returned while the content hash matches and the entry has not
// expired.
type ASTCache struct {
	lru        *expirable.LRU[string, *ASTEntry]
	maxEntries int
	maxAge     time.Duration
	hits       atomic.Int64
	misses     atomic.Int64
}

// Option configures the ASTCache
type Option func(*ASTCache)

// NewASTCache creates a new AST cache
func NewASTCache(opts ...Option) *ASTCache {
	c := &ASTCache{
		maxEntries: 100,
		maxAge:     5 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lru = expirable.NewLRU[string, *ASTEntry](c.maxEntries, nil, c.maxAge)
	return c
}

// WithMaxEntries sets the maximum number of cached entries
func WithMaxEntries(n int) Option {
	return func(c *ASTCache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithMaxAge sets the maximum age of cached entries
func WithMaxAge(d time.Duration) Option {
	return func(c *ASTCache) {
		if d > 0 {
			c.maxAge = d
		}
	}
}

// Get retrieves a cached result if it exists and the content hash matches
func (c *ASTCache) Get(filename, content string) (*ASTEntry, bool) {
	ent, ok := c.lru.Get(filename)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	if ent.Hash != hashContent(content) {
		// Content changed, remove stale entry
		c.lru.Remove(filename)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return ent, true
}

// Put stores a parse result in the cache
func (c *ASTCache) Put(filename, content string, file *parser.File, err error) {
	c.lru.Add(filename, &ASTEntry{
		File:     file,
		Err:      err,
		Hash:     hashContent(content),
		ParsedAt: time.Now(),
	})
}

// Invalidate removes an entry from the cache
func (c *ASTCache) Invalidate(filename string) {
	c.lru.Remove(filename)
}

// Clear removes all entries from the cache
func (c *ASTCache) Clear() {
	c.lru.Purge()
}

// Size returns the number of entries in the cache
func (c *ASTCache) Size() int {
	return c.lru.Len()
}

// Stats returns cache statistics
func (c *ASTCache) Stats() CacheStats {
	return CacheStats{
		Entries:    c.lru.Len(),
		MaxEntries: c.maxEntries,
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
	}
}

// CacheStats contains cache statistics
type CacheStats struct {
	Entries    int
	MaxEntries int
	Hits       int64
	Misses     int64
}

// hashContent computes a SHA256 hash of the content
func hashContent(content string) string {
	h := sha256.Sum256([]byte(content))
	return hex.EncodeToString(h[:])
}
