// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph builds the typed relation graph over a working set.
// Edges are normalized: a value declared through an inverse field is
// stored reversed under the forward relation name, so traversal never
// needs to know which side declared the link.
package graph

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/docbase/internal/corpus"
	"github.com/pdiddy/docbase/internal/document"
	"github.com/pdiddy/docbase/internal/refs"
	"github.com/pdiddy/docbase/internal/schema"
)

// Edge is one normalized relation link between two document paths.
type Edge struct {
	From     string
	Relation string
	To       string
}

// Candidate is a suggested inverse declaration: Doc should declare
// Relation pointing at Target.
type Candidate struct {
	Doc      string
	Relation string
	Target   string
}

// decl records one resolved relation field occurrence as declared,
// before normalization.
type decl struct {
	doc    string
	field  string
	target string
}

// Graph is an immutable relation graph.
type Graph struct {
	sch   *schema.Schema
	edges []Edge
	out   map[string][]Edge
	in    map[string][]Edge
	decls []decl
}

// Build scans every document's header for relation-named fields whose
// values resolve inside the set. Unresolved or malformed values
// contribute no edges; the validator reports those.
func Build(set *corpus.Set, sch *schema.Schema) *Graph {
	g := &Graph{
		sch: sch,
		out: make(map[string][]Edge),
		in:  make(map[string][]Edge),
	}
	seen := make(map[Edge]bool)

	for _, doc := range set.Documents() {
		if doc.Header == nil {
			continue
		}
		for _, field := range doc.Header.Keys() {
			rel, inverse, ok := sch.Relation(field)
			if !ok {
				continue
			}
			v, _ := doc.Get(field)
			for _, raw := range scalarStrings(v) {
				r := refs.Resolve(sch, raw, doc.Path, set)
				if r.Outcome != refs.Resolved {
					continue
				}
				g.decls = append(g.decls, decl{doc: doc.Path, field: field, target: r.Target.Path})

				e := Edge{From: doc.Path, Relation: rel.Name, To: r.Target.Path}
				if inverse {
					e = Edge{From: r.Target.Path, Relation: rel.Name, To: doc.Path}
				}
				if seen[e] {
					continue
				}
				seen[e] = true
				g.edges = append(g.edges, e)
				g.out[e.From] = append(g.out[e.From], e)
				g.in[e.To] = append(g.in[e.To], e)
			}
		}
	}
	return g
}

func scalarStrings(v document.Value) []string {
	switch v.Kind {
	case document.KindString:
		return []string{v.Str}
	case document.KindArray:
		var out []string
		for _, item := range v.Items {
			if item.Kind == document.KindString {
				out = append(out, item.Str)
			}
		}
		return out
	}
	return nil
}

// Edges returns every edge in insertion order.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// Outgoing returns the edges leaving path.
func (g *Graph) Outgoing(path string) []Edge {
	return g.out[path]
}

// Incoming returns the edges arriving at path.
func (g *Graph) Incoming(path string) []Edge {
	return g.in[path]
}

// Transitive returns every path reachable from start over outgoing
// edges within maxDepth hops, each once, in BFS order. maxDepth < 1
// means unlimited.
func (g *Graph) Transitive(start string, maxDepth int) []string {
	type hop struct {
		path  string
		depth int
	}
	visited := map[string]bool{start: true}
	queue := []hop{{path: start}}
	var out []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if maxDepth >= 1 && cur.depth >= maxDepth {
			continue
		}
		for _, e := range g.out[cur.path] {
			if visited[e.To] {
				continue
			}
			visited[e.To] = true
			out = append(out, e.To)
			queue = append(queue, hop{path: e.To, depth: cur.depth + 1})
		}
	}
	return out
}

// MissingInverses reports, for each forward declaration A --r--> B
// whose relation declares an inverse, the documents B that do not
// declare the inverse back at A. Report-only.
func (g *Graph) MissingInverses() []Candidate {
	declared := make(map[decl]bool, len(g.decls))
	for _, d := range g.decls {
		declared[d] = true
	}

	seen := make(map[Candidate]bool)
	var out []Candidate
	for _, d := range g.decls {
		rel, inverse, ok := g.sch.Relation(d.field)
		if !ok || inverse || rel.Inverse == "" {
			continue
		}
		back := decl{doc: d.target, field: rel.Inverse, target: d.doc}
		if declared[back] {
			continue
		}
		c := Candidate{Doc: d.target, Relation: rel.Inverse, Target: d.doc}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// Mermaid writes the graph as a mermaid flowchart.
func (g *Graph) Mermaid(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "graph TD"); err != nil {
		return err
	}
	for _, e := range g.edges {
		_, err := fmt.Fprintf(w, "  %s[\"%s\"] -->|%s| %s[\"%s\"]\n",
			nodeID(e.From), corpus.Stem(e.From), e.Relation, nodeID(e.To), corpus.Stem(e.To))
		if err != nil {
			return err
		}
	}
	return nil
}

// Dot writes the graph in graphviz dot format.
func (g *Graph) Dot(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "digraph docbase {"); err != nil {
		return err
	}
	for _, e := range g.edges {
		_, err := fmt.Fprintf(w, "  %q -> %q [label=%q];\n",
			corpus.Stem(e.From), corpus.Stem(e.To), e.Relation)
		if err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

var nodeIDClean = regexp.MustCompile(`[^A-Za-z0-9_]`)

func nodeID(path string) string {
	return nodeIDClean.ReplaceAllString(corpus.Stem(path), "_")
}

var idNum = regexp.MustCompile(`^(\d+)$`)

// NextID allocates the next free "PREFIX-NNN" id for the set by
// scanning existing filename stems, case-insensitively.
func NextID(set *corpus.Set, prefix string) string {
	upper := strings.ToUpper(prefix) + "-"
	max := 0
	for _, doc := range set.Documents() {
		stem := strings.ToUpper(corpus.Stem(doc.Path))
		if !strings.HasPrefix(stem, upper) {
			continue
		}
		rest := stem[len(upper):]
		if !idNum.MatchString(rest) {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s-%03d", strings.ToUpper(prefix), max+1)
}
