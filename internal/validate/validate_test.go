// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/docbase/internal/corpus"
	"github.com/pdiddy/docbase/internal/document"
	"github.com/pdiddy/docbase/internal/schema"
	"github.com/pdiddy/docbase/internal/users"
)

const testSchema = `
relation "supersedes" {
  inverse     = "superseded_by"
  cardinality = "one"
}

type "adr" {
  field "title" {
    type     = "string"
    required = true
  }
  field "date" {
    type     = "string"
    required = true
    pattern  = "^\\d{4}-\\d{2}-\\d{2}$"
  }
  field "status" {
    type   = "enum"
    values = ["proposed", "accepted", "rejected"]
  }
  field "owners" {
    type = "user[]"
  }
  field "tags" {
    type = "string[]"
  }

  section "Decision" {
    required = true
  }
  section "Options" {
    table {
      required = true
      column "Option" {
        required = true
      }
      column "Weight" {
        type = "number"
      }
    }
  }
}

ref_format {
  rule "string-id" {
    pattern = "^ADR-\\d+$"
  }
  rule "relative-path" {
    pattern = "\\.md$"
  }
}
`

const testUsers = `
users:
  onni:
    teams: [platform]
teams:
  platform: {}
`

func compileAll(t *testing.T) (*schema.Schema, *users.Directory) {
	t.Helper()
	sch, err := schema.Compile([]byte(testSchema), "test.hcl")
	if err != nil {
		t.Fatal(err)
	}
	dir, err := users.Compile([]byte(testUsers))
	if err != nil {
		t.Fatal(err)
	}
	return sch, dir
}

func docFrom(t *testing.T, path, raw string) *document.Document {
	t.Helper()
	doc, err := document.Parse([]byte(raw))
	if _, degraded := err.(*document.ParseError); err != nil && !degraded {
		t.Fatal(err)
	}
	doc.Path = path
	return doc
}

func setFrom(docs ...*document.Document) *corpus.Set {
	return corpus.FromDocuments(docs)
}

func codes(issues []Issue) []string {
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.Code
	}
	return out
}

func TestValidDocumentPasses(t *testing.T) {
	sch, dir := compileAll(t)
	doc := docFrom(t, "adr-001.md", `---
type: adr
title: Use PostgreSQL
date: 2026-01-15
status: accepted
owners: ["@onni"]
---

# Decision

Yes.
`)
	report := Run(setFrom(doc), sch, Options{Users: dir})
	if !report.OK || report.Errors != 0 || report.Warnings != 0 {
		t.Fatalf("report = %+v", report)
	}
	if len(report.Files) != 0 {
		t.Errorf("clean files should not appear, got %v", report.Files)
	}
}

func TestMissingRequiredFieldOnlyF010(t *testing.T) {
	sch, _ := compileAll(t)
	doc := docFrom(t, "adr-001.md", `---
type: adr
title: No date
---

# Decision

Yes.
`)
	report := Run(setFrom(doc), sch, Options{})
	if len(report.Files) != 1 {
		t.Fatalf("files = %d", len(report.Files))
	}
	got := codes(report.Files[0].Errors)
	if len(got) != 1 || got[0] != CodeMissingField {
		t.Errorf("errors = %v, want exactly one F010", got)
	}
}

func TestFieldKindAndEnumAndPattern(t *testing.T) {
	sch, _ := compileAll(t)
	doc := docFrom(t, "adr-001.md", `---
type: adr
title: 42
date: someday
status: maybe
tags: not-a-list
---

# Decision

Yes.
`)
	report := Run(setFrom(doc), sch, Options{})
	got := codes(report.Files[0].Errors)
	want := []string{CodeKindMismatch, CodeKindMismatch, CodeInvalidEnum, CodePatternMismatch}
	if len(got) != len(want) {
		t.Fatalf("errors = %v, want %v", got, want)
	}
	// Codes ascending within the list.
	for i := 1; i < len(got); i++ {
		if got[i] < got[i-1] {
			t.Errorf("codes not ascending: %v", got)
		}
	}
}

func TestScalarInRefSlotNeverCoerced(t *testing.T) {
	sch, _ := compileAll(t)
	// supersedes is cardinality one (scalar); a list there is F020.
	doc := docFrom(t, "adr-002.md", `---
type: adr
title: T
date: 2026-01-15
supersedes: [ADR-001]
---

# Decision

Yes.
`)
	report := Run(setFrom(doc), sch, Options{})
	got := codes(report.Files[0].Errors)
	if len(got) != 1 || got[0] != CodeKindMismatch {
		t.Errorf("errors = %v, want one F020", got)
	}
}

func TestUnresolvedRefIsWarning(t *testing.T) {
	sch, _ := compileAll(t)
	doc := docFrom(t, "adr-002.md", `---
type: adr
title: T
date: 2026-01-15
superseded_by: ADR-404
---

# Decision

Yes.
`)
	report := Run(setFrom(doc), sch, Options{})
	fr := report.Files[0]
	if len(fr.Errors) != 0 {
		t.Errorf("errors = %v, want none", codes(fr.Errors))
	}
	if got := codes(fr.Warnings); len(got) != 1 || got[0] != CodeUnresolvedIDRef {
		t.Errorf("warnings = %v, want one R011", got)
	}
	if !report.OK {
		t.Error("warnings alone must not fail the run")
	}
}

func TestResolvedRefIsClean(t *testing.T) {
	sch, _ := compileAll(t)
	a := docFrom(t, "docs/adr-001.md", "---\ntype: adr\ntitle: A\ndate: 2026-01-01\n---\n# Decision\nx\n")
	b := docFrom(t, "docs/adr-002.md", "---\ntype: adr\ntitle: B\ndate: 2026-01-02\nsupersedes: ADR-001\n---\n# Decision\nx\n")
	report := Run(setFrom(a, b), sch, Options{})
	if !report.OK || report.Warnings != 0 {
		t.Fatalf("report = %+v", report)
	}
}

func TestBadAndBrokenRefs(t *testing.T) {
	sch, _ := compileAll(t)
	doc := docFrom(t, "docs/adr-001.md", `---
type: adr
title: T
date: 2026-01-15
supersedes: "not a ref"
superseded_by: ./gone.md
---

# Decision

Yes.
`)
	report := Run(setFrom(doc), sch, Options{})
	got := codes(report.Files[0].Warnings)
	want := []string{CodeBadRefFormat, CodeBrokenPathRef}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("warnings = %v, want %v", got, want)
	}
}

func TestUserChecks(t *testing.T) {
	sch, dir := compileAll(t)
	doc := docFrom(t, "adr-001.md", `---
type: adr
title: T
date: 2026-01-15
owners: ["@onni", "@ghost", "no-at"]
---

# Decision

Yes.
`)
	report := Run(setFrom(doc), sch, Options{Users: dir})
	got := codes(report.Files[0].Warnings)
	want := []string{CodeInvalidHandle, CodeUnknownUser}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("warnings = %v, want %v", got, want)
	}
}

func TestNilDirectorySkipsUnknownUser(t *testing.T) {
	sch, _ := compileAll(t)
	doc := docFrom(t, "adr-001.md", `---
type: adr
title: T
date: 2026-01-15
owners: ["@ghost", "bad handle"]
---

# Decision

Yes.
`)
	report := Run(setFrom(doc), sch, Options{})
	got := codes(report.Files[0].Warnings)
	if len(got) != 1 || got[0] != CodeInvalidHandle {
		t.Errorf("warnings = %v, want only U010", got)
	}
}

func TestHeaderUndecodable(t *testing.T) {
	sch, _ := compileAll(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.md")
	if err := os.WriteFile(path, []byte("---\ntitle: a\ntitle: b\n---\n# Decision\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	set, err := corpus.Load([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	report := Run(set, sch, Options{})
	if len(report.Files) != 1 {
		t.Fatalf("report = %+v", report)
	}
	got := codes(report.Files[0].Errors)
	if len(got) != 1 || got[0] != CodeHeaderUndecodable {
		t.Errorf("errors = %v, want exactly one F001", got)
	}
}

func TestUnknownType(t *testing.T) {
	sch, _ := compileAll(t)
	doc := docFrom(t, "x.md", "---\ntype: mystery\ntitle: T\n---\n# Decision\n")
	report := Run(setFrom(doc), sch, Options{})
	got := codes(report.Files[0].Errors)
	if len(got) != 1 || got[0] != CodeUnknownType {
		t.Errorf("errors = %v, want one F002", got)
	}
}

func TestUnmanagedDocumentSkipped(t *testing.T) {
	sch, _ := compileAll(t)
	doc := docFrom(t, "readme.md", "# Plain readme\n\nNo header.\n")
	report := Run(setFrom(doc), sch, Options{})
	if len(report.Files) != 0 || !report.OK {
		t.Errorf("report = %+v", report)
	}
}

func TestSectionAndTableChecks(t *testing.T) {
	sch, _ := compileAll(t)
	doc := docFrom(t, "adr-001.md", `---
type: adr
title: T
date: 2026-01-15
---

# Options

| Option | Weight |
|--------|--------|
| Keep   | 3      |
| Drop   | heavy  |
|        | 1      |
`)
	report := Run(setFrom(doc), sch, Options{})
	got := codes(report.Files[0].Errors)
	// Missing required Decision section, a bad Weight number, and an
	// empty required Option cell.
	want := []string{CodeMissingField, CodeKindMismatch, CodeMissingSection}
	if len(got) != len(want) {
		t.Fatalf("errors = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("errors = %v, want %v", got, want)
			break
		}
	}
}

func TestMissingTableAndColumn(t *testing.T) {
	sch, _ := compileAll(t)
	noTable := docFrom(t, "a.md", `---
type: adr
title: T
date: 2026-01-15
---

# Decision

x

# Options

No table here.
`)
	wrongCols := docFrom(t, "b.md", `---
type: adr
title: T
date: 2026-01-15
---

# Decision

x

# Options

| Alternative |
|-------------|
| Keep        |
`)
	report := Run(setFrom(noTable, wrongCols), sch, Options{})
	if len(report.Files) != 2 {
		t.Fatalf("files = %d", len(report.Files))
	}
	if got := codes(report.Files[0].Errors); len(got) != 1 || got[0] != CodeMissingTable {
		t.Errorf("noTable errors = %v", got)
	}
	if got := codes(report.Files[1].Errors); len(got) != 1 || got[0] != CodeMissingColumn {
		t.Errorf("wrongCols errors = %v", got)
	}
}

func TestMaxCount(t *testing.T) {
	src := `
type "note" {
  max_count = 2
  field "title" { type = "string" }
}
`
	sch, err := schema.Compile([]byte(src), "test.hcl")
	if err != nil {
		t.Fatal(err)
	}
	var docs []*document.Document
	for _, name := range []string{"n1.md", "n2.md", "n3.md", "n4.md"} {
		docs = append(docs, docFrom(t, name, "---\ntype: note\n---\n"))
	}
	report := Run(setFrom(docs...), sch, Options{})
	if len(report.Files) != 1 {
		t.Fatalf("files = %+v", report.Files)
	}
	if report.Files[0].Path != "n3.md" {
		t.Errorf("T010 should land on the first excess file, got %s", report.Files[0].Path)
	}
	if got := codes(report.Files[0].Errors); len(got) != 1 || got[0] != CodeMaxCountExceeded {
		t.Errorf("errors = %v", got)
	}
}

func TestFilesInDocumentOrder(t *testing.T) {
	sch, _ := compileAll(t)
	a := docFrom(t, "z.md", "---\ntype: adr\ntitle: T\n---\n# Decision\nx\n")
	b := docFrom(t, "a.md", "---\ntype: adr\ntitle: T\n---\n# Decision\nx\n")
	report := Run(setFrom(a, b), sch, Options{})
	if len(report.Files) != 2 || report.Files[0].Path != "z.md" {
		t.Errorf("files out of order: %+v", report.Files)
	}
}

func TestRenderJSONShape(t *testing.T) {
	sch, _ := compileAll(t)
	doc := docFrom(t, "adr-001.md", "---\ntype: adr\ntitle: T\n---\n# Decision\nx\n")
	report := Run(setFrom(doc), sch, Options{})

	var buf bytes.Buffer
	if err := RenderJSON(&buf, report); err != nil {
		t.Fatal(err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"errors", "warnings", "ok", "files"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
}

func TestRenderTextAndCompact(t *testing.T) {
	sch, _ := compileAll(t)
	doc := docFrom(t, "adr-001.md", "---\ntype: adr\ntitle: T\n---\n# Options\nx\n")
	report := Run(setFrom(doc), sch, Options{})

	var text bytes.Buffer
	if err := RenderText(&text, report); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text.String(), "F010") || !strings.Contains(text.String(), "failed") {
		t.Errorf("text = %q", text.String())
	}

	var compact bytes.Buffer
	if err := RenderCompact(&compact, report); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(compact.String()), "\n")
	for _, line := range lines {
		if !strings.HasPrefix(line, "adr-001.md: ") {
			t.Errorf("compact line = %q", line)
		}
	}
}

func TestIsError(t *testing.T) {
	for code, want := range map[string]bool{
		CodeHeaderUndecodable: true,
		CodeMissingSection:    true,
		CodeMaxCountExceeded:  true,
		CodeBadRefFormat:      false,
		CodeUnknownUser:       false,
	} {
		if IsError(code) != want {
			t.Errorf("IsError(%s) = %v", code, !want)
		}
	}
}
