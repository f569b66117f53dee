// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schema compiles the HCL schema definition language into the
// in-memory type system the validator and graph operate on. A schema
// declares document types (fields, required sections, tables), named
// relations between documents, and the reference-format rules that
// classify raw reference strings.
package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// FieldKind enumerates the value kinds a header field or table column
// may declare.
type FieldKind string

const (
	KindString     FieldKind = "string"
	KindNumber     FieldKind = "number"
	KindBool       FieldKind = "bool"
	KindEnum       FieldKind = "enum"
	KindRef        FieldKind = "ref"
	KindRefList    FieldKind = "ref[]"
	KindStringList FieldKind = "string[]"
	KindUser       FieldKind = "user"
	KindUserList   FieldKind = "user[]"
)

// Cardinality of a relation: how many targets a single document may name.
type Cardinality string

const (
	One  Cardinality = "one"
	Many Cardinality = "many"
)

// Relation is a named, typed link between documents. Inverse, when set,
// names the field a target document uses to point back.
type Relation struct {
	Name        string
	Inverse     string
	Cardinality Cardinality
}

// FieldDef describes one header field of a document type.
type FieldDef struct {
	Name     string
	Kind     FieldKind
	Required bool
	Values   []string
	Pattern  *regexp.Regexp
}

// ColumnDef describes one column of a required table.
type ColumnDef struct {
	Name     string
	Kind     FieldKind
	Required bool
	Pattern  *regexp.Regexp
}

// TableDef describes a table expected inside a section.
type TableDef struct {
	Required bool
	Columns  []ColumnDef
}

// SectionDef is a node of the expected heading tree of a document type.
type SectionDef struct {
	Name     string
	Required bool
	Children []SectionDef
	Tables   []TableDef
}

// TypeDef is one compiled document type. Fields includes the implicit
// relation fields injected at compile time; callers never need to
// distinguish them from declared fields.
type TypeDef struct {
	Name     string
	Folder   string
	MaxCount int
	Fields   []FieldDef
	Sections []SectionDef
}

// Field returns the named field definition.
func (t *TypeDef) Field(name string) (FieldDef, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// Rule is one reference-format rule. Rules are tried in declaration
// order; the first whose pattern matches classifies the reference.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// Schema is the compiled type system.
type Schema struct {
	Relations []Relation
	Rules     []Rule

	types     map[string]*TypeDef
	typeOrder []string
	byField   map[string]relationUse
}

type relationUse struct {
	rel     Relation
	inverse bool
}

// Type returns the named document type.
func (s *Schema) Type(name string) (*TypeDef, bool) {
	t, ok := s.types[name]
	return t, ok
}

// TypeNames returns the declared types in declaration order.
func (s *Schema) TypeNames() []string {
	out := make([]string, len(s.typeOrder))
	copy(out, s.typeOrder)
	return out
}

// Relation reports whether fieldName is a relation field, and whether
// it is the inverse side.
func (s *Schema) Relation(fieldName string) (Relation, bool, bool) {
	u, ok := s.byField[fieldName]
	return u.rel, u.inverse, ok
}

// ClassifyRef runs raw through the reference-format rules in
// declaration order and returns the first matching rule's name.
func (s *Schema) ClassifyRef(raw string) (string, bool) {
	for _, r := range s.Rules {
		if r.Pattern.MatchString(raw) {
			return r.Name, true
		}
	}
	return "", false
}

// ---- HCL surface ----

type hclRoot struct {
	Relations []hclRelation `hcl:"relation,block"`
	Types     []hclType     `hcl:"type,block"`
	RefFormat *hclRefFormat `hcl:"ref_format,block"`
}

type hclRelation struct {
	Name        string `hcl:"name,label"`
	Inverse     string `hcl:"inverse,optional"`
	Cardinality string `hcl:"cardinality,optional"`
}

type hclType struct {
	Name     string       `hcl:"name,label"`
	Folder   string       `hcl:"folder,optional"`
	MaxCount int          `hcl:"max_count,optional"`
	Fields   []hclField   `hcl:"field,block"`
	Sections []hclSection `hcl:"section,block"`
}

type hclField struct {
	Name     string   `hcl:"name,label"`
	Type     string   `hcl:"type"`
	Required bool     `hcl:"required,optional"`
	Values   []string `hcl:"values,optional"`
	Pattern  string   `hcl:"pattern,optional"`
}

type hclSection struct {
	Name     string       `hcl:"name,label"`
	Required bool         `hcl:"required,optional"`
	Sections []hclSection `hcl:"section,block"`
	Tables   []hclTable   `hcl:"table,block"`
}

type hclTable struct {
	Required bool        `hcl:"required,optional"`
	Columns  []hclColumn `hcl:"column,block"`
}

type hclColumn struct {
	Name     string `hcl:"name,label"`
	Type     string `hcl:"type,optional"`
	Required bool   `hcl:"required,optional"`
	Pattern  string `hcl:"pattern,optional"`
}

type hclRefFormat struct {
	Rules []hclRule `hcl:"rule,block"`
}

type hclRule struct {
	Name    string `hcl:"name,label"`
	Pattern string `hcl:"pattern"`
}

var fieldKinds = map[string]FieldKind{
	"string":   KindString,
	"number":   KindNumber,
	"bool":     KindBool,
	"enum":     KindEnum,
	"ref":      KindRef,
	"ref[]":    KindRefList,
	"string[]": KindStringList,
	"user":     KindUser,
	"user[]":   KindUserList,
}

var columnKinds = map[string]FieldKind{
	"string": KindString,
	"number": KindNumber,
	"bool":   KindBool,
	"ref":    KindRef,
	"user":   KindUser,
}

// LoadFile compiles the schema at path.
func LoadFile(path string) (*Schema, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse schema %s: %w", path, diags)
	}
	return compileFile(file, path)
}

// Compile parses and compiles schema source. filename is used only for
// diagnostics.
func Compile(src []byte, filename string) (*Schema, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse schema %s: %w", filename, diags)
	}
	return compileFile(file, filename)
}

func compileFile(file *hcl.File, filename string) (*Schema, error) {
	var root hclRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("decode schema %s: %w", filename, diags)
	}

	sch := &Schema{
		types:   make(map[string]*TypeDef),
		byField: make(map[string]relationUse),
	}

	for _, r := range root.Relations {
		card := Many
		switch r.Cardinality {
		case "", "many":
		case "one":
			card = One
		default:
			return nil, fmt.Errorf("relation %q: cardinality must be one or many, got %q", r.Name, r.Cardinality)
		}
		if _, dup := sch.byField[r.Name]; dup {
			return nil, fmt.Errorf("duplicate relation name %q", r.Name)
		}
		rel := Relation{Name: r.Name, Inverse: r.Inverse, Cardinality: card}
		sch.Relations = append(sch.Relations, rel)
		sch.byField[r.Name] = relationUse{rel: rel}
		if r.Inverse != "" {
			if _, dup := sch.byField[r.Inverse]; dup {
				return nil, fmt.Errorf("relation %q: inverse %q collides with another relation field", r.Name, r.Inverse)
			}
			sch.byField[r.Inverse] = relationUse{rel: rel, inverse: true}
		}
	}

	for _, t := range root.Types {
		if _, dup := sch.types[t.Name]; dup {
			return nil, fmt.Errorf("duplicate type %q", t.Name)
		}
		td := &TypeDef{Name: t.Name, Folder: t.Folder, MaxCount: t.MaxCount}
		for _, f := range t.Fields {
			fd, err := compileField(t.Name, f)
			if err != nil {
				return nil, err
			}
			if _, dup := td.Field(fd.Name); dup {
				return nil, fmt.Errorf("type %q: duplicate field %q", t.Name, fd.Name)
			}
			td.Fields = append(td.Fields, fd)
		}
		sections, err := compileSections(t.Name, t.Sections)
		if err != nil {
			return nil, err
		}
		td.Sections = sections
		sch.types[t.Name] = td
		sch.typeOrder = append(sch.typeOrder, t.Name)
	}

	// Every relation implies a non-required ref field on every type,
	// named after the relation (and its inverse). Declared fields win.
	for _, rel := range sch.Relations {
		kind := KindRefList
		if rel.Cardinality == One {
			kind = KindRef
		}
		names := []string{rel.Name}
		if rel.Inverse != "" {
			names = append(names, rel.Inverse)
		}
		for _, td := range sch.types {
			for _, name := range names {
				if _, declared := td.Field(name); declared {
					continue
				}
				td.Fields = append(td.Fields, FieldDef{Name: name, Kind: kind})
			}
		}
	}

	if root.RefFormat != nil {
		seen := make(map[string]bool)
		for _, r := range root.RefFormat.Rules {
			if seen[r.Name] {
				return nil, fmt.Errorf("duplicate ref_format rule %q", r.Name)
			}
			seen[r.Name] = true
			re, err := regexp.Compile(r.Pattern)
			if err != nil {
				return nil, fmt.Errorf("ref_format rule %q: %w", r.Name, err)
			}
			sch.Rules = append(sch.Rules, Rule{Name: r.Name, Pattern: re})
		}
	}

	return sch, nil
}

func compileField(typeName string, f hclField) (FieldDef, error) {
	kind, ok := fieldKinds[f.Type]
	if !ok {
		return FieldDef{}, fmt.Errorf("type %q field %q: unknown field type %q", typeName, f.Name, f.Type)
	}
	fd := FieldDef{Name: f.Name, Kind: kind, Required: f.Required, Values: f.Values}
	if kind == KindEnum && len(f.Values) == 0 {
		return FieldDef{}, fmt.Errorf("type %q field %q: enum needs at least one value", typeName, f.Name)
	}
	if kind != KindEnum && len(f.Values) > 0 {
		return FieldDef{}, fmt.Errorf("type %q field %q: values only applies to enum", typeName, f.Name)
	}
	if f.Pattern != "" {
		re, err := regexp.Compile(f.Pattern)
		if err != nil {
			return FieldDef{}, fmt.Errorf("type %q field %q: %w", typeName, f.Name, err)
		}
		fd.Pattern = re
	}
	return fd, nil
}

func compileSections(typeName string, in []hclSection) ([]SectionDef, error) {
	seen := make(map[string]bool)
	var out []SectionDef
	for _, s := range in {
		if seen[s.Name] {
			return nil, fmt.Errorf("type %q: duplicate sibling section %q", typeName, s.Name)
		}
		seen[s.Name] = true
		sd := SectionDef{Name: s.Name, Required: s.Required}
		children, err := compileSections(typeName, s.Sections)
		if err != nil {
			return nil, err
		}
		sd.Children = children
		for _, t := range s.Tables {
			td := TableDef{Required: t.Required}
			cols := make(map[string]bool)
			for _, c := range t.Columns {
				if cols[c.Name] {
					return nil, fmt.Errorf("type %q section %q: duplicate column %q", typeName, s.Name, c.Name)
				}
				cols[c.Name] = true
				ctype := c.Type
				if ctype == "" {
					ctype = "string"
				}
				kind, ok := columnKinds[ctype]
				if !ok {
					return nil, fmt.Errorf("type %q section %q column %q: unknown column type %q", typeName, s.Name, c.Name, ctype)
				}
				cd := ColumnDef{Name: c.Name, Kind: kind, Required: c.Required}
				if c.Pattern != "" {
					re, err := regexp.Compile(c.Pattern)
					if err != nil {
						return nil, fmt.Errorf("type %q section %q column %q: %w", typeName, s.Name, c.Name, err)
					}
					cd.Pattern = re
				}
				td.Columns = append(td.Columns, cd)
			}
			sd.Tables = append(sd.Tables, td)
		}
		out = append(out, sd)
	}
	return out, nil
}

// SectionPath renders a section definition path for diagnostics.
func SectionPath(parts ...string) string {
	return strings.Join(parts, " > ")
}
