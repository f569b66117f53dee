// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package refs resolves raw document references against a working set
// using the schema's reference-format rules. Resolution is a pure
// function of its inputs.
package refs

import (
	"path/filepath"
	"strings"

	"github.com/pdiddy/docbase/internal/corpus"
	"github.com/pdiddy/docbase/internal/document"
	"github.com/pdiddy/docbase/internal/schema"
)

// Outcome classifies a resolution attempt.
type Outcome int

const (
	// Resolved means the reference names a working-set member.
	Resolved Outcome = iota
	// BadFormat means no reference-format rule matched the raw string.
	BadFormat
	// Unresolved means a string-id reference matched no document stem.
	Unresolved
	// Broken means a relative-path reference points outside the set.
	Broken
)

func (o Outcome) String() string {
	switch o {
	case Resolved:
		return "resolved"
	case BadFormat:
		return "bad-format"
	case Unresolved:
		return "unresolved"
	case Broken:
		return "broken"
	}
	return "unknown"
}

// ResolvedRef is the result of one resolution attempt. Target is set
// only when Outcome is Resolved.
type ResolvedRef struct {
	Raw     string
	Format  string
	Target  *document.Document
	Outcome Outcome
}

// pathRuleName is the rule name that selects the relative-path
// strategy; every other rule resolves by string id.
const pathRuleName = "relative-path"

// Resolve classifies raw with the schema's format rules and resolves
// it against the set. fromPath anchors relative-path references.
func Resolve(sch *schema.Schema, raw, fromPath string, set *corpus.Set) ResolvedRef {
	rule, ok := sch.ClassifyRef(raw)
	if !ok {
		return ResolvedRef{Raw: raw, Outcome: BadFormat}
	}
	ref := ResolvedRef{Raw: raw, Format: rule}

	if rule == pathRuleName {
		target := raw
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(fromPath), target)
		}
		doc, found := set.ByPath(target)
		if !found {
			ref.Outcome = Broken
			return ref
		}
		ref.Target = doc
		ref.Outcome = Resolved
		return ref
	}

	doc, found := set.ByStem(strings.ToUpper(raw))
	if !found {
		ref.Outcome = Unresolved
		return ref
	}
	ref.Target = doc
	ref.Outcome = Resolved
	return ref
}
