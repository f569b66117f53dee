package index

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pdiddy/docbase/internal/corpus"
	"github.com/pdiddy/docbase/pkg/types"
)

// --- test helpers ---

func testSetup(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()

	cfg := types.IndexConfig{
		IndexDir:   filepath.Join(tmpDir, "index"),
		MaxResults: 20,
	}
	store, err := Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	return store, tmpDir
}

func writeDoc(t *testing.T, tmpDir, name, content string) string {
	t.Helper()
	path := filepath.Join(tmpDir, "docs", name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func sampleDoc(title string) string {
	return `---
type: adr
title: ` + title + `
status: accepted
---

# Decision

We will adopt structured document storage.

# Consequences

Queries become possible over section content.
`
}

func loadSet(t *testing.T, paths ...string) *corpus.Set {
	t.Helper()
	set, err := corpus.Load(paths)
	if err != nil {
		t.Fatal(err)
	}
	return set
}

func syncSet(t *testing.T, store *Store, set *corpus.Set) Summary {
	t.Helper()
	var buf bytes.Buffer
	summary, err := store.Sync(context.Background(), set, &buf)
	if err != nil {
		t.Fatalf("sync: %v\noutput:\n%s", err, buf.String())
	}
	return summary
}

func TestSyncIndexesDocuments(t *testing.T) {
	store, tmpDir := testSetup(t)
	a := writeDoc(t, tmpDir, "adr-001.md", sampleDoc("First"))
	b := writeDoc(t, tmpDir, "adr-002.md", sampleDoc("Second"))

	summary := syncSet(t, store, loadSet(t, a, b))
	if summary.Indexed != 2 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}

	hits, err := store.Search(context.Background(), SearchOptions{Section: "Decision"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %+v", hits)
	}
	if hits[0].DocType != "adr" || hits[0].Title != "First" {
		t.Errorf("hit = %+v", hits[0])
	}
}

func TestSyncSkipsUnchanged(t *testing.T) {
	store, tmpDir := testSetup(t)
	a := writeDoc(t, tmpDir, "adr-001.md", sampleDoc("First"))

	set := loadSet(t, a)
	syncSet(t, store, set)

	summary := syncSet(t, store, set)
	if summary.Skipped != 1 || summary.Indexed != 0 {
		t.Fatalf("second sync = %+v", summary)
	}
}

func TestSyncDetectsUpdate(t *testing.T) {
	store, tmpDir := testSetup(t)
	a := writeDoc(t, tmpDir, "adr-001.md", sampleDoc("First"))
	syncSet(t, store, loadSet(t, a))

	writeDoc(t, tmpDir, "adr-001.md", sampleDoc("Renamed"))
	// Force a distinct mod time; coarse filesystem clocks would
	// otherwise make this racy.
	later := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(a, later, later); err != nil {
		t.Fatal(err)
	}

	summary := syncSet(t, store, loadSet(t, a))
	if summary.Updated != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	hits, err := store.Search(context.Background(), SearchOptions{Section: "Decision"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Title != "Renamed" {
		t.Errorf("hits = %+v", hits)
	}
}

func TestSyncRemovesVanished(t *testing.T) {
	store, tmpDir := testSetup(t)
	a := writeDoc(t, tmpDir, "adr-001.md", sampleDoc("First"))
	b := writeDoc(t, tmpDir, "adr-002.md", sampleDoc("Second"))
	syncSet(t, store, loadSet(t, a, b))

	summary := syncSet(t, store, loadSet(t, a))
	if summary.Removed != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	hits, err := store.Search(context.Background(), SearchOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for _, h := range hits {
		if h.Path == b {
			t.Errorf("removed document still in index: %+v", h)
		}
	}
}

func TestFullTextSearch(t *testing.T) {
	store, tmpDir := testSetup(t)
	a := writeDoc(t, tmpDir, "adr-001.md", sampleDoc("First"))
	syncSet(t, store, loadSet(t, a))

	hits, err := store.Search(context.Background(), SearchOptions{Query: "structured"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Heading != "Decision" {
		t.Fatalf("hits = %+v", hits)
	}

	none, err := store.Search(context.Background(), SearchOptions{Query: "nonexistentterm"})
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("hits = %+v", none)
	}
}

func TestSearchTypeFilter(t *testing.T) {
	store, tmpDir := testSetup(t)
	a := writeDoc(t, tmpDir, "adr-001.md", sampleDoc("First"))
	n := writeDoc(t, tmpDir, "note.md", "---\ntype: note\ntitle: N\n---\n\n# Decision\n\nA note about storage.\n")
	syncSet(t, store, loadSet(t, a, n))

	hits, err := store.Search(context.Background(), SearchOptions{Query: "storage", Type: "note"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].DocType != "note" {
		t.Fatalf("hits = %+v", hits)
	}
}

func TestSearchMaxResults(t *testing.T) {
	store, tmpDir := testSetup(t)
	a := writeDoc(t, tmpDir, "adr-001.md", sampleDoc("First"))
	syncSet(t, store, loadSet(t, a))

	hits, err := store.Search(context.Background(), SearchOptions{MaxResults: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}
}

func TestExportJSON(t *testing.T) {
	store, tmpDir := testSetup(t)
	a := writeDoc(t, tmpDir, "adr-001.md", sampleDoc("First"))
	syncSet(t, store, loadSet(t, a))

	var buf bytes.Buffer
	if err := store.ExportJSON(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	var entries []ExportEntry
	if err := json.Unmarshal(buf.Bytes(), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %+v", entries)
	}
	e := entries[0]
	if e.ID != "adr-001" || e.Type != "adr" || e.Title != "First" {
		t.Errorf("entry = %+v", e)
	}
	if e.Header["status"] != "accepted" {
		t.Errorf("header = %v", e.Header)
	}
	if len(e.Sections) != 2 || e.Sections[0].Heading != "Decision" {
		t.Errorf("sections = %+v", e.Sections)
	}
}

func TestExportYAML(t *testing.T) {
	store, tmpDir := testSetup(t)
	a := writeDoc(t, tmpDir, "adr-001.md", sampleDoc("First"))
	syncSet(t, store, loadSet(t, a))

	var buf bytes.Buffer
	if err := store.ExportYAML(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("adr-001")) {
		t.Errorf("yaml = %q", buf.String())
	}
}

func TestDegradedDocumentIndexed(t *testing.T) {
	store, tmpDir := testSetup(t)
	bad := writeDoc(t, tmpDir, "bad.md", "---\ntitle: a\ntitle: b\n---\n\n# Body\n\nStill searchable.\n")

	summary := syncSet(t, store, loadSet(t, bad))
	if summary.Indexed != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	hits, err := store.Search(context.Background(), SearchOptions{Query: "searchable"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %+v", hits)
	}
}
