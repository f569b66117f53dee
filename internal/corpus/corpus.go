// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus materializes a working set of markdown documents for
// validation and graph building. Documents whose header fails to
// decode stay in the set in degraded form; the parse error is recorded
// alongside.
package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pdiddy/docbase/internal/document"
)

// maxLoadWorkers bounds the parallel parse fan-out.
const maxLoadWorkers = 8

// Set is an immutable, fully-materialized working set. Document order
// is the input path order.
type Set struct {
	docs      []*document.Document
	byPath    map[string]*document.Document
	byStem    map[string]*document.Document
	parseErrs map[string]*document.ParseError
}

// Documents returns the documents in input order.
func (s *Set) Documents() []*document.Document {
	return s.docs
}

// Len returns the number of documents in the set.
func (s *Set) Len() int {
	return len(s.docs)
}

// ByPath looks a document up by its cleaned path.
func (s *Set) ByPath(path string) (*document.Document, bool) {
	d, ok := s.byPath[filepath.Clean(path)]
	return d, ok
}

// ByStem looks a document up by uppercased filename stem. When two
// files share a stem, the first in document order wins.
func (s *Set) ByStem(stem string) (*document.Document, bool) {
	d, ok := s.byStem[strings.ToUpper(stem)]
	return d, ok
}

// ParseError returns the recorded header parse error for path, if any.
func (s *Set) ParseError(path string) (*document.ParseError, bool) {
	e, ok := s.parseErrs[filepath.Clean(path)]
	return e, ok
}

// Stem returns the lookup stem for a document path: the base name
// without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Discover walks dir and returns the paths of all markdown files,
// sorted lexically.
func Discover(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".md") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover documents in %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Load reads and parses every path with a bounded worker pool and
// returns the materialized set. I/O failures abort; header parse
// failures do not.
func Load(paths []string) (*Set, error) {
	type loadResult struct {
		idx int
		doc *document.Document
		err error
	}

	ch := make(chan loadResult, len(paths))
	sem := make(chan struct{}, maxLoadWorkers)
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			raw, err := os.ReadFile(path)
			if err != nil {
				ch <- loadResult{idx: i, err: err}
				return
			}
			doc, err := document.Parse(raw)
			if _, degraded := err.(*document.ParseError); err != nil && !degraded {
				ch <- loadResult{idx: i, err: fmt.Errorf("parse %s: %w", path, err)}
				return
			}
			doc.Path = path
			ch <- loadResult{idx: i, doc: doc, err: err}
		}(i, path)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	docs := make([]*document.Document, len(paths))
	parseErrs := make(map[string]*document.ParseError)
	for r := range ch {
		if pe, ok := r.err.(*document.ParseError); ok {
			pe.Path = paths[r.idx]
			parseErrs[filepath.Clean(paths[r.idx])] = pe
		} else if r.err != nil {
			return nil, r.err
		}
		docs[r.idx] = r.doc
	}

	set := FromDocuments(docs)
	set.parseErrs = parseErrs
	return set, nil
}

// FromDocuments builds a set from already-parsed documents, keeping
// their order.
func FromDocuments(docs []*document.Document) *Set {
	set := &Set{
		docs:      docs,
		byPath:    make(map[string]*document.Document, len(docs)),
		byStem:    make(map[string]*document.Document, len(docs)),
		parseErrs: make(map[string]*document.ParseError),
	}
	for _, d := range docs {
		clean := filepath.Clean(d.Path)
		if _, dup := set.byPath[clean]; !dup {
			set.byPath[clean] = d
		}
		stem := strings.ToUpper(Stem(d.Path))
		if _, dup := set.byStem[stem]; !dup {
			set.byStem[stem] = d
		}
	}
	return set
}
