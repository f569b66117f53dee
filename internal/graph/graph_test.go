// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"bytes"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/pdiddy/docbase/internal/corpus"
	"github.com/pdiddy/docbase/internal/document"
	"github.com/pdiddy/docbase/internal/schema"
)

const graphSchema = `
relation "supersedes" {
  inverse     = "superseded_by"
  cardinality = "one"
}
relation "relates_to" {}

type "adr" {
  field "title" { type = "string" }
}

ref_format {
  rule "string-id" {
    pattern = "^ADR-\\d+$"
  }
}
`

func buildGraph(t *testing.T, headers map[string]string) (*Graph, *corpus.Set) {
	t.Helper()
	sch, err := schema.Compile([]byte(graphSchema), "graph.hcl")
	if err != nil {
		t.Fatal(err)
	}
	var docs []*document.Document
	// Deterministic document order.
	var paths []string
	for p := range headers {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		doc, err := document.Parse([]byte("---\ntype: adr\n" + headers[p] + "---\n"))
		if err != nil {
			t.Fatal(err)
		}
		doc.Path = p
		docs = append(docs, doc)
	}
	set := corpus.FromDocuments(docs)
	return Build(set, sch), set
}

func TestBuildForwardAndInverse(t *testing.T) {
	g, _ := buildGraph(t, map[string]string{
		"adr-001.md": "",
		"adr-002.md": "supersedes: ADR-001\n",
		"adr-003.md": "superseded_by: ADR-004\n",
		"adr-004.md": "",
	})

	// Forward declaration.
	out := g.Outgoing("adr-002.md")
	if len(out) != 1 || out[0].To != "adr-001.md" || out[0].Relation != "supersedes" {
		t.Fatalf("outgoing = %+v", out)
	}
	// Inverse declaration normalizes to a forward edge from the target.
	out = g.Outgoing("adr-004.md")
	if len(out) != 1 || out[0].To != "adr-003.md" || out[0].Relation != "supersedes" {
		t.Fatalf("normalized inverse = %+v", out)
	}
	in := g.Incoming("adr-001.md")
	if len(in) != 1 || in[0].From != "adr-002.md" {
		t.Fatalf("incoming = %+v", in)
	}
}

func TestBothSidesDeclaredOneEdge(t *testing.T) {
	g, _ := buildGraph(t, map[string]string{
		"adr-001.md": "superseded_by: ADR-002\n",
		"adr-002.md": "supersedes: ADR-001\n",
	})
	if len(g.Edges()) != 1 {
		t.Fatalf("edges = %+v", g.Edges())
	}
	if len(g.MissingInverses()) != 0 {
		t.Errorf("no candidates when both sides declare: %+v", g.MissingInverses())
	}
}

func TestUnresolvedRefNoEdge(t *testing.T) {
	g, _ := buildGraph(t, map[string]string{
		"adr-001.md": "supersedes: ADR-404\nrelates_to: [garbage]\n",
	})
	if len(g.Edges()) != 0 {
		t.Fatalf("edges = %+v", g.Edges())
	}
}

func TestTransitive(t *testing.T) {
	g2, _ := buildGraph(t, map[string]string{
		"adr-001.md": "relates_to: [ADR-002, ADR-004]\n",
		"adr-002.md": "relates_to: [ADR-003]\n",
		"adr-003.md": "",
		"adr-004.md": "",
	})

	depth1 := g2.Transitive("adr-001.md", 1)
	want1 := []string{"adr-002.md", "adr-004.md"}
	if !reflect.DeepEqual(depth1, want1) {
		t.Errorf("depth 1 = %v, want %v", depth1, want1)
	}

	depth2 := g2.Transitive("adr-001.md", 2)
	want2 := []string{"adr-002.md", "adr-004.md", "adr-003.md"}
	if !reflect.DeepEqual(depth2, want2) {
		t.Errorf("depth 2 = %v, want %v", depth2, want2)
	}

	all := g2.Transitive("adr-001.md", 0)
	if !reflect.DeepEqual(all, want2) {
		t.Errorf("unlimited = %v, want %v", all, want2)
	}
}

func TestTransitiveCycle(t *testing.T) {
	g, _ := buildGraph(t, map[string]string{
		"adr-001.md": "relates_to: [ADR-002]\n",
		"adr-002.md": "relates_to: [ADR-001]\n",
	})
	got := g.Transitive("adr-001.md", 0)
	if !reflect.DeepEqual(got, []string{"adr-002.md"}) {
		t.Errorf("cycle traversal = %v", got)
	}
}

func TestMissingInverses(t *testing.T) {
	g, _ := buildGraph(t, map[string]string{
		"adr-001.md": "",
		"adr-002.md": "supersedes: ADR-001\n",
		// relates_to has no declared inverse; never a candidate.
		"adr-003.md": "relates_to: [ADR-001]\n",
	})
	got := g.MissingInverses()
	want := []Candidate{{Doc: "adr-001.md", Relation: "superseded_by", Target: "adr-002.md"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("candidates = %+v, want %+v", got, want)
	}
}

func TestMermaidAndDot(t *testing.T) {
	g, _ := buildGraph(t, map[string]string{
		"adr-001.md": "",
		"adr-002.md": "supersedes: ADR-001\n",
	})

	var mm bytes.Buffer
	if err := g.Mermaid(&mm); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(mm.String(), "graph TD") || !strings.Contains(mm.String(), "|supersedes|") {
		t.Errorf("mermaid = %q", mm.String())
	}

	var dot bytes.Buffer
	if err := g.Dot(&dot); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(dot.String(), `"adr-002" -> "adr-001" [label="supersedes"];`) {
		t.Errorf("dot = %q", dot.String())
	}
}

func TestNextID(t *testing.T) {
	_, set := buildGraph(t, map[string]string{
		"docs/adr-001.md": "",
		"docs/ADR-007.md": "",
		"docs/other.md":   "",
	})
	if got := NextID(set, "adr"); got != "ADR-008" {
		t.Errorf("NextID = %q", got)
	}
	if got := NextID(set, "opp"); got != "OPP-001" {
		t.Errorf("NextID empty prefix = %q", got)
	}
}
