// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate applies a compiled schema across a working set and
// produces a structured report with a stable error taxonomy. Codes are
// part of the contract: F (field), S (section), T (type) findings are
// errors; R (reference) and U (user) findings are warnings.
package validate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/docbase/internal/corpus"
	"github.com/pdiddy/docbase/internal/document"
	"github.com/pdiddy/docbase/internal/refs"
	"github.com/pdiddy/docbase/internal/schema"
	"github.com/pdiddy/docbase/internal/users"
)

// Finding codes. These are stable identifiers; tooling keys off them.
const (
	CodeHeaderUndecodable = "F001"
	CodeUnknownType       = "F002"
	CodeMissingField      = "F010"
	CodeKindMismatch      = "F020"
	CodeInvalidEnum       = "F021"
	CodePatternMismatch   = "F030"
	CodeMissingSection    = "S010"
	CodeMissingTable      = "S020"
	CodeMissingColumn     = "S021"
	CodeMaxCountExceeded  = "T010"
	CodeBadRefFormat      = "R001"
	CodeBrokenPathRef     = "R010"
	CodeUnresolvedIDRef   = "R011"
	CodeInvalidHandle     = "U010"
	CodeUnknownUser       = "U011"
)

// IsError reports whether code is error-grade. R and U codes are
// warnings; everything else is an error.
func IsError(code string) bool {
	return !strings.HasPrefix(code, "R") && !strings.HasPrefix(code, "U")
}

// Issue is one finding against one document.
type Issue struct {
	Code     string `json:"code"`
	Location string `json:"location"`
	Message  string `json:"message"`
	Hint     string `json:"hint,omitempty"`
}

// FileReport collects the findings for one document.
type FileReport struct {
	Path     string  `json:"path"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// Report is the result of a validation run. Files appear in document
// order and only when they have findings.
type Report struct {
	Errors   int          `json:"errors"`
	Warnings int          `json:"warnings"`
	OK       bool         `json:"ok"`
	Files    []FileReport `json:"files"`
}

// Options tunes a validation run. A nil Users directory degrades user
// checks to syntax only; unknown-user findings are never emitted.
type Options struct {
	Users *users.Directory
}

type checker struct {
	set  *corpus.Set
	sch  *schema.Schema
	opts Options

	issues []Issue
	doc    *document.Document
}

func (c *checker) add(code, location, format string, args ...interface{}) {
	c.issues = append(c.issues, Issue{
		Code:     code,
		Location: location,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (c *checker) addHint(code, location, hint, format string, args ...interface{}) {
	c.issues = append(c.issues, Issue{
		Code:     code,
		Location: location,
		Message:  fmt.Sprintf(format, args...),
		Hint:     hint,
	})
}

// Run validates every managed document in the set.
func Run(set *corpus.Set, sch *schema.Schema, opts Options) Report {
	report := Report{}
	typeCounts := make(map[string]int)

	for _, doc := range set.Documents() {
		c := &checker{set: set, sch: sch, opts: opts, doc: doc}

		if pe, degraded := set.ParseError(doc.Path); degraded {
			c.add(CodeHeaderUndecodable, "header", "header cannot be decoded: %s", pe.Reason)
			report.append(doc.Path, c.issues)
			continue
		}

		typeName := doc.Type()
		if typeName == "" {
			continue // unmanaged
		}
		td, known := sch.Type(typeName)
		if !known {
			c.add(CodeUnknownType, "header.type", "unknown document type %q", typeName)
			report.append(doc.Path, c.issues)
			continue
		}

		typeCounts[typeName]++
		if td.MaxCount > 0 && typeCounts[typeName] == td.MaxCount+1 {
			c.add(CodeMaxCountExceeded, "header.type",
				"type %q allows at most %d documents", typeName, td.MaxCount)
		}

		c.checkFields(td)
		c.checkSections(td.Sections, nil, doc.Sections)
		report.append(doc.Path, c.issues)
	}

	report.OK = report.Errors == 0
	return report
}

func (r *Report) append(path string, issues []Issue) {
	if len(issues) == 0 {
		return
	}
	fr := FileReport{Path: path}
	for _, is := range issues {
		if IsError(is.Code) {
			fr.Errors = append(fr.Errors, is)
		} else {
			fr.Warnings = append(fr.Warnings, is)
		}
	}
	sortIssues(fr.Errors)
	sortIssues(fr.Warnings)
	r.Errors += len(fr.Errors)
	r.Warnings += len(fr.Warnings)
	r.Files = append(r.Files, fr)
}

func sortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Code < issues[j].Code
	})
}

// ---- field pass ----

func (c *checker) checkFields(td *schema.TypeDef) {
	for _, fd := range td.Fields {
		loc := "header." + fd.Name
		v, present := c.doc.Get(fd.Name)
		if !present || v.Kind == document.KindNull {
			if fd.Required {
				c.add(CodeMissingField, loc, "required field %q is missing", fd.Name)
			}
			continue
		}
		c.checkValue(fd.Kind, fd, v, loc)
	}
}

// checkValue applies the kind-specific rules shared by header fields
// and table cells.
func (c *checker) checkValue(kind schema.FieldKind, fd schema.FieldDef, v document.Value, loc string) {
	switch kind {
	case schema.KindString:
		if v.Kind != document.KindString {
			c.add(CodeKindMismatch, loc, "expected string, got %s", v.Kind)
			return
		}
		c.checkPattern(fd, v.Str, loc)
	case schema.KindNumber:
		if v.Kind != document.KindNumber {
			c.add(CodeKindMismatch, loc, "expected number, got %s", v.Kind)
		}
	case schema.KindBool:
		if v.Kind != document.KindBool {
			c.add(CodeKindMismatch, loc, "expected bool, got %s", v.Kind)
		}
	case schema.KindEnum:
		if v.Kind != document.KindString {
			c.add(CodeKindMismatch, loc, "expected one of %s, got %s", strings.Join(fd.Values, "|"), v.Kind)
			return
		}
		for _, allowed := range fd.Values {
			if v.Str == allowed {
				return
			}
		}
		c.addHint(CodeInvalidEnum, loc, "allowed: "+strings.Join(fd.Values, ", "),
			"%q is not an allowed value", v.Str)
	case schema.KindStringList:
		items, ok := c.stringItems(v, loc, "string[]")
		if !ok {
			return
		}
		for i, s := range items {
			c.checkPattern(fd, s, loc+"["+strconv.Itoa(i)+"]")
		}
	case schema.KindRef:
		if v.Kind != document.KindString {
			c.add(CodeKindMismatch, loc, "expected a reference string, got %s", v.Kind)
			return
		}
		c.checkRef(v.Str, loc)
	case schema.KindRefList:
		items, ok := c.stringItems(v, loc, "ref[]")
		if !ok {
			return
		}
		for i, s := range items {
			c.checkRef(s, loc+"["+strconv.Itoa(i)+"]")
		}
	case schema.KindUser:
		if v.Kind != document.KindString {
			c.add(CodeKindMismatch, loc, "expected a user reference, got %s", v.Kind)
			return
		}
		c.checkUser(v.Str, loc)
	case schema.KindUserList:
		items, ok := c.stringItems(v, loc, "user[]")
		if !ok {
			return
		}
		for i, s := range items {
			c.checkUser(s, loc+"["+strconv.Itoa(i)+"]")
		}
	}
}

// stringItems unwraps an array value whose items must all be strings.
// A scalar in an array slot (or the reverse) is a kind mismatch; no
// coercion happens.
func (c *checker) stringItems(v document.Value, loc, want string) ([]string, bool) {
	if v.Kind != document.KindArray {
		c.add(CodeKindMismatch, loc, "expected %s, got %s", want, v.Kind)
		return nil, false
	}
	out := make([]string, 0, len(v.Items))
	for i, item := range v.Items {
		if item.Kind != document.KindString {
			c.add(CodeKindMismatch, loc+"["+strconv.Itoa(i)+"]", "expected string item, got %s", item.Kind)
			return nil, false
		}
		out = append(out, item.Str)
	}
	return out, true
}

func (c *checker) checkPattern(fd schema.FieldDef, s, loc string) {
	if fd.Pattern != nil && !fd.Pattern.MatchString(s) {
		c.addHint(CodePatternMismatch, loc, "pattern: "+fd.Pattern.String(),
			"%q does not match the required pattern", s)
	}
}

func (c *checker) checkRef(raw, loc string) {
	r := refs.Resolve(c.sch, raw, c.doc.Path, c.set)
	switch r.Outcome {
	case refs.BadFormat:
		c.add(CodeBadRefFormat, loc, "%q matches no reference format", raw)
	case refs.Broken:
		c.add(CodeBrokenPathRef, loc, "%q does not point at a document in the set", raw)
	case refs.Unresolved:
		c.add(CodeUnresolvedIDRef, loc, "%q resolves to no document", raw)
	}
}

func (c *checker) checkUser(raw, loc string) {
	name, _, ok := users.ParseHandle(raw)
	if !ok || name == "" {
		c.add(CodeInvalidHandle, loc, "%q is not a valid @handle or @team/name reference", raw)
		return
	}
	if c.opts.Users != nil && !c.opts.Users.Valid(raw) {
		c.add(CodeUnknownUser, loc, "%q is not in the user directory", raw)
	}
}

// ---- section pass ----

func (c *checker) checkSections(defs []schema.SectionDef, path []string, actual []*document.Section) {
	for _, sd := range defs {
		secPath := append(append([]string(nil), path...), sd.Name)
		loc := "section " + schema.SectionPath(secPath...)

		sec := findSection(actual, sd.Name)
		if sec == nil {
			if sd.Required {
				c.add(CodeMissingSection, loc, "required section %q is missing", sd.Name)
			}
			continue
		}

		for i, tdef := range sd.Tables {
			tbl, ok := sec.Table(i)
			if !ok {
				if tdef.Required {
					c.add(CodeMissingTable, loc, "required table #%d is missing", i+1)
				}
				continue
			}
			c.checkTable(tdef, tbl, loc)
		}

		c.checkSections(sd.Children, secPath, sec.Children)
	}
}

func findSection(sections []*document.Section, name string) *document.Section {
	for _, s := range sections {
		if s.Heading == name {
			return s
		}
	}
	return nil
}

func (c *checker) checkTable(tdef schema.TableDef, tbl *document.Table, loc string) {
	present := make(map[string]bool, len(tbl.Columns))
	for _, col := range tbl.Columns {
		present[col] = true
	}

	for _, cd := range tdef.Columns {
		if !present[cd.Name] {
			if cd.Required {
				c.add(CodeMissingColumn, loc, "required column %q is missing", cd.Name)
			}
			continue
		}
		for row := range tbl.Rows {
			cellLoc := fmt.Sprintf("%s, column %q, row %d", loc, cd.Name, row+1)
			raw, _ := tbl.Cell(cd.Name, row)
			if strings.TrimSpace(raw) == "" {
				if cd.Required {
					c.add(CodeMissingField, cellLoc, "required cell is empty")
				}
				continue
			}
			v := document.ParseScalar(raw)
			if cd.Kind == schema.KindString {
				v = document.String(strings.TrimSpace(raw))
			}
			fd := schema.FieldDef{Name: cd.Name, Kind: cd.Kind, Pattern: cd.Pattern}
			c.checkValue(cd.Kind, fd, v, cellLoc)
		}
	}
}
