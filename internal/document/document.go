// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package document parses structured markdown documents into an
// addressable tree. A document is a YAML header block followed by a body
// with an ATX heading hierarchy and pipe-delimited tables. Every node
// records the exact byte range it covers, and all content extraction is a
// pure slice of the original buffer, never a re-emission of parsed nodes.
package document

import (
	"bytes"
	"fmt"
	"os"
)

// delimiter is the header block marker line.
const delimiter = "---"

// ParseError reports a malformed or undecodable header block. The body is
// still parsed when a ParseError is returned, so section and table access
// degrades gracefully instead of failing wholesale.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Reason)
	}
	return e.Reason
}

// Document is an immutable parsed document. Edits produce a new Document
// via a targeted byte-range splice; the body buffer is never re-serialized
// from the tree.
type Document struct {
	Path     string
	Raw      []byte
	Header   *Header // nil when absent or undecodable
	Body     []byte  // sub-slice of Raw past the header block
	Sections []*Section

	headerBlock []byte // Raw up to the start of Body, delimiters included
}

// Parse builds a Document from raw bytes. On a malformed header it returns
// both a degraded Document (nil Header, parsed body) and a *ParseError.
func Parse(raw []byte) (*Document, error) {
	doc := &Document{Raw: raw}

	header, block, body, perr := splitHeader(raw)
	doc.Header = header
	doc.headerBlock = block
	doc.Body = body
	doc.Sections = scanSections(body)
	if perr != nil {
		return doc, perr
	}
	return doc, nil
}

// Load reads and parses a document from disk.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	doc, err := Parse(raw)
	doc.Path = path
	if perr, ok := err.(*ParseError); ok {
		perr.Path = path
	}
	return doc, err
}

// Save writes the document's raw bytes to path.
func (d *Document) Save(path string) error {
	if err := os.WriteFile(path, d.Raw, 0o644); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	return nil
}

func splitHeader(raw []byte) (*Header, []byte, []byte, *ParseError) {
	lines := splitLines(raw)
	if len(lines) == 0 || lines[0].text != delimiter {
		return nil, nil, raw, nil
	}
	for i := 1; i < len(lines); i++ {
		if lines[i].text != delimiter {
			continue
		}
		yamlSrc := raw[lines[0].end:lines[i].start]
		block := raw[:lines[i].end]
		body := raw[lines[i].end:]
		header, err := parseHeader(yamlSrc)
		if err != nil {
			return nil, block, body, &ParseError{Reason: err.Error()}
		}
		return header, block, body, nil
	}
	return nil, nil, raw, &ParseError{Reason: "unterminated header block"}
}

// Section resolves a path of heading texts, exact and case-sensitive,
// descending the tree in document order. The first match wins at each
// level; duplicates at the same level are not disambiguated.
func (d *Document) Section(path ...string) (*Section, bool) {
	if len(path) == 0 {
		return nil, false
	}
	candidates := d.Sections
	var cur *Section
	for _, name := range path {
		cur = nil
		for _, s := range candidates {
			if s.Heading == name {
				cur = s
				break
			}
		}
		if cur == nil {
			return nil, false
		}
		candidates = cur.Children
	}
	return cur, true
}

// Slice extracts a byte range of the body. The result aliases the
// document's buffer; callers must not mutate it.
func (d *Document) Slice(r Range) []byte {
	return d.Body[r.Start:r.End]
}

// Splice replaces exactly the given body byte range with repl and
// re-parses the document to keep all recorded ranges consistent. The
// receiver is unchanged.
func (d *Document) Splice(r Range, repl []byte) (*Document, error) {
	if r.Start < 0 || r.End < r.Start || r.End > len(d.Body) {
		return nil, fmt.Errorf("splice range [%d,%d) out of bounds (body is %d bytes)", r.Start, r.End, len(d.Body))
	}
	var buf bytes.Buffer
	buf.Grow(len(d.headerBlock) + len(d.Body) - r.Len() + len(repl))
	buf.Write(d.headerBlock)
	buf.Write(d.Body[:r.Start])
	buf.Write(repl)
	buf.Write(d.Body[r.End:])

	out, err := Parse(buf.Bytes())
	out.Path = d.Path
	if err != nil {
		return out, err
	}
	return out, nil
}

// Get returns a header value by dotted path.
func (d *Document) Get(path string) (Value, bool) {
	if d.Header == nil {
		return Value{}, false
	}
	return d.Header.Get(path)
}

// Display returns a header value rendered as a plain string.
func (d *Document) Display(path string) (string, bool) {
	v, ok := d.Get(path)
	if !ok {
		return "", false
	}
	return v.Display(), true
}

// Set returns a new Document with the header field at the dotted path set.
// Only the header block is rewritten; the body bytes are untouched.
func (d *Document) Set(path string, v Value) (*Document, error) {
	header := NewHeader()
	if d.Header != nil {
		header = d.Header.clone()
	}
	header.Set(path, v)
	return d.withHeader(header)
}

// Unset returns a new Document with the top-level header field removed.
func (d *Document) Unset(name string) (*Document, error) {
	if d.Header == nil || !d.Header.Has(name) {
		return d, nil
	}
	header := d.Header.clone()
	header.Remove(name)
	return d.withHeader(header)
}

func (d *Document) withHeader(header *Header) (*Document, error) {
	encoded, err := header.marshal()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(delimiter)
	buf.WriteByte('\n')
	buf.Write(encoded)
	buf.WriteString(delimiter)
	buf.WriteByte('\n')
	buf.Write(d.Body)

	out, err := Parse(buf.Bytes())
	out.Path = d.Path
	if err != nil {
		return nil, fmt.Errorf("rebuilding header: %w", err)
	}
	return out, nil
}

// Type returns the document's declared type from the header, or the
// empty string when the header has no string-valued type field.
func (d *Document) Type() string {
	v, ok := d.Get("type")
	if !ok || v.Kind != KindString {
		return ""
	}
	return v.Str
}
