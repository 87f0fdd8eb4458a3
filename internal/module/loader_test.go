package module

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/netesy/limit/internal/lexer"
	"github.com/netesy/limit/internal/source"
	"github.com/netesy/limit/internal/trivia"
)

func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newLoader() *Loader {
	sink := &source.Sink{Catalog: source.DefaultCatalog()}
	return NewLoader(lexer.Legacy, trivia.NewPool(), sink)
}

func TestResolveRelativeToImportingFile(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.lm", "fn main(): void { }\n")
	writeFile(t, dir, "a/b.lm", "fn helper(): void { }\n")

	l := newLoader()
	mod, err := l.Resolve(main, "a.b")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if mod.Path != "a.b" {
		t.Fatalf("got path %q, want a.b", mod.Path)
	}
	if mod.File == nil {
		t.Fatal("expected a parsed File")
	}
}

func TestResolveCachesByPath(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.lm", "fn main(): void { }\n")
	writeFile(t, dir, "a.lm", "fn helper(): void { }\n")

	l := newLoader()
	first, err := l.Resolve(main, "a")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	second, err := l.Resolve(main, "a")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if first != second {
		t.Fatal("expected the second Resolve to hit the registry, not reparse")
	}
}

func TestResolveMissingFile(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.lm", "fn main(): void { }\n")

	l := newLoader()
	if _, err := l.Resolve(main, "missing.module"); err == nil {
		t.Fatal("expected an error for an unresolvable import")
	}
}

func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, err := OpenCache(filepath.Join(dir, "cache.sqlite"))
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer c.Close()

	if _, ok := c.Get("a.b", "h1"); ok {
		t.Fatal("expected a miss on an empty cache")
	}
	if err := c.Put("a.b", "h1", []byte("blob")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	blob, ok := c.Get("a.b", "h1")
	if !ok || string(blob) != "blob" {
		t.Fatalf("got (%q, %v), want (\"blob\", true)", blob, ok)
	}
	if _, ok := c.Get("a.b", "stale-hash"); ok {
		t.Fatal("expected a miss once the content hash no longer matches")
	}
}
