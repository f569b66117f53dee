// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "adr-002.md", "# B\n")
	writeDoc(t, dir, "adr-001.md", "# A\n")
	writeDoc(t, dir, "notes.txt", "not markdown")
	writeDoc(t, dir, "sub/adr-003.MD", "# C\n")
	writeDoc(t, dir, ".hidden/skip.md", "# skipped\n")

	paths, err := Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 3 {
		t.Fatalf("paths = %v", paths)
	}
	if filepath.Base(paths[0]) != "adr-001.md" {
		t.Errorf("order = %v", paths)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	a := writeDoc(t, dir, "adr-001.md", "---\ntype: adr\ntitle: A\n---\n# Decision\n")
	b := writeDoc(t, dir, "adr-002.md", "---\ntype: adr\ntitle: B\n---\n# Decision\n")

	set, err := Load([]string{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if set.Len() != 2 {
		t.Fatalf("len = %d", set.Len())
	}
	// Input order preserved regardless of parse completion order.
	if set.Documents()[0].Path != a {
		t.Errorf("order = %v", set.Documents()[0].Path)
	}
	if _, ok := set.ByPath(b); !ok {
		t.Error("ByPath miss")
	}
	if doc, ok := set.ByStem("adr-001"); !ok || doc.Path != a {
		t.Error("ByStem should be case-insensitive")
	}
	if _, ok := set.ByStem("ADR-001"); !ok {
		t.Error("ByStem uppercase miss")
	}
}

func TestLoadDegradedHeader(t *testing.T) {
	dir := t.TempDir()
	bad := writeDoc(t, dir, "bad.md", "---\ntitle: [unclosed\n---\n# Body\n")

	set, err := Load([]string{bad})
	if err != nil {
		t.Fatalf("degraded header must not abort the load: %v", err)
	}
	doc, ok := set.ByPath(bad)
	if !ok {
		t.Fatal("degraded document missing from set")
	}
	if doc.Header != nil {
		t.Error("degraded document should have nil header")
	}
	if _, ok := doc.Section("Body"); !ok {
		t.Error("body should still be parsed")
	}
	if _, ok := set.ParseError(bad); !ok {
		t.Error("parse error should be recorded")
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load([]string{"/nonexistent/nope.md"}); err == nil {
		t.Fatal("expected I/O error")
	}
}

func TestStemCollisionFirstWins(t *testing.T) {
	dir := t.TempDir()
	first := writeDoc(t, dir, "a/ADR-001.md", "---\ntype: adr\n---\n")
	second := writeDoc(t, dir, "b/adr-001.md", "---\ntype: adr\n---\n")

	set, err := Load([]string{first, second})
	if err != nil {
		t.Fatal(err)
	}
	doc, ok := set.ByStem("adr-001")
	if !ok || doc.Path != first {
		t.Errorf("first in document order should win, got %v", doc.Path)
	}
}

func TestStem(t *testing.T) {
	if got := Stem("docs/adr/ADR-001.md"); got != "ADR-001" {
		t.Errorf("Stem = %q", got)
	}
}
