package cache

import (
	"testing"
	"time"

	"github.com/HueCodes/keelson/internal/parser"
)

func TestASTCache_GetPut(t *testing.T) {
	cache := NewASTCache()

	content := "FROM alpine\nRUN echo hello\n"
	file, err := parser.Parse(content)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	if _, ok := cache.Get("Dockerfile", content); ok {
		t.Error("expected cache miss on empty cache")
	}

	cache.Put("Dockerfile", content, file, nil)

	entry, ok := cache.Get("Dockerfile", content)
	if !ok {
		t.Fatal("expected cache hit after put")
	}
	if entry.File != file {
		t.Error("cached file mismatch")
	}
	if entry.Hash != hashContent(content) {
		t.Error("cached hash mismatch")
	}
}

func TestASTCache_ContentChange(t *testing.T) {
	cache := NewASTCache()

	content1 := "FROM alpine\n"
	file, _ := parser.Parse(content1)
	cache.Put("Dockerfile", content1, file, nil)

	if _, ok := cache.Get("Dockerfile", "FROM ubuntu\n"); ok {
		t.Error("expected cache miss after content change")
	}
	if cache.Size() != 0 {
		t.Errorf("expected stale entry to be removed, got %d entries", cache.Size())
	}
}

func TestASTCache_LRUEviction(t *testing.T) {
	cache := NewASTCache(WithMaxEntries(2))

	content := "FROM alpine\n"
	file, _ := parser.Parse(content)

	cache.Put("file1", content, file, nil)
	cache.Put("file2", content, file, nil)

	// Access file1 so file2 becomes least recently used
	cache.Get("file1", content)

	cache.Put("file3", content, file, nil)

	if cache.Size() != 2 {
		t.Errorf("expected 2 entries, got %d", cache.Size())
	}
	if _, ok := cache.Get("file1", content); !ok {
		t.Error("expected file1 to still be cached")
	}
	if _, ok := cache.Get("file2", content); ok {
		t.Error("expected file2 to be evicted")
	}
	if _, ok := cache.Get("file3", content); !ok {
		t.Error("expected file3 to still be cached")
	}
}

func TestASTCache_Invalidate(t *testing.T) {
	cache := NewASTCache()

	content := "FROM alpine\n"
	file, _ := parser.Parse(content)

	cache.Put("Dockerfile", content, file, nil)
	cache.Invalidate("Dockerfile")

	if _, ok := cache.Get("Dockerfile", content); ok {
		t.Error("expected cache miss after invalidation")
	}
}

func TestASTCache_Clear(t *testing.T) {
	cache := NewASTCache()

	content := "FROM alpine\n"
	file, _ := parser.Parse(content)

	cache.Put("file1", content, file, nil)
	cache.Put("file2", content, file, nil)
	cache.Clear()

	if cache.Size() != 0 {
		t.Errorf("expected empty cache, got %d entries", cache.Size())
	}
}

func TestASTCache_Expiration(t *testing.T) {
	cache := NewASTCache(WithMaxAge(20 * time.Millisecond))

	content := "FROM alpine\n"
	file, _ := parser.Parse(content)

	cache.Put("Dockerfile", content, file, nil)

	if _, ok := cache.Get("Dockerfile", content); !ok {
		t.Error("expected cache hit")
	}

	time.Sleep(100 * time.Millisecond)

	if _, ok := cache.Get("Dockerfile", content); ok {
		t.Error("expected cache miss after expiration")
	}
}

func TestASTCache_Stats(t *testing.T) {
	cache := NewASTCache(WithMaxEntries(50))

	content := "FROM alpine\n"
	file, _ := parser.Parse(content)

	cache.Put("file1", content, file, nil)
	cache.Put("file2", content, file, nil)
	cache.Get("file1", content)
	cache.Get("missing", content)

	stats := cache.Stats()
	if stats.Entries != 2 {
		t.Errorf("expected 2 entries, got %d", stats.Entries)
	}
	if stats.MaxEntries != 50 {
		t.Errorf("expected max 50 entries, got %d", stats.MaxEntries)
	}
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %d and %d", stats.Hits, stats.Misses)
	}
}

func TestCachedParser_Parse(t *testing.T) {
	cp := NewCachedParser(NewASTCache())

	content := "FROM alpine\nRUN echo hello\n"

	file1, hit, err := cp.Parse("Dockerfile", content)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if hit {
		t.Error("expected first parse to miss")
	}

	file2, hit, err := cp.Parse("Dockerfile", content)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if !hit {
		t.Error("expected second parse to hit")
	}
	if file1 != file2 {
		t.Error("expected the cached tree to be returned")
	}
}

func TestCachedParser_CachesErrors(t *testing.T) {
	cp := NewCachedParser(NewASTCache())

	content := "RUN echo hi\n"
	_, _, err1 := cp.Parse("bad.dockerfile", content)
	if !parser.IsParseError(err1) {
		t.Fatalf("expected parse error, got %v", err1)
	}

	_, hit, err2 := cp.Parse("bad.dockerfile", content)
	if !hit {
		t.Error("expected cached failure")
	}
	if err2 != err1 {
		t.Error("expected the cached error to be returned")
	}
}

func TestCachedParser_Options(t *testing.T) {
	cp := NewCachedParser(NewASTCache(), parser.WithMaxDepth(1))

	_, _, err := cp.Parse("Dockerfile", "FROM alpine\nONBUILD ONBUILD RUN x\n")
	if err == nil {
		t.Fatal("expected nesting error")
	}
	pe, ok := err.(*parser.ParseError)
	if !ok {
		t.Fatalf("expected *parser.ParseError, got %T", err)
	}
	if pe.Filename != "Dockerfile" {
		t.Errorf("expected filename in error, got %q", pe.Filename)
	}
}

func TestHashContent(t *testing.T) {
	hash1 := hashContent("FROM alpine\n")
	hash2 := hashContent("FROM alpine\n")
	hash3 := hashContent("FROM ubuntu\n")

	if hash1 != hash2 {
		t.Error("expected same hash for same content")
	}
	if hash1 == hash3 {
		t.Error("expected different hash for different content")
	}
}
