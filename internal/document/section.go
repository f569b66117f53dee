// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import (
	"strings"
)

// Range is a half-open byte range into a document body.
type Range struct {
	Start int
	End   int
}

// Len returns the number of bytes covered.
func (r Range) Len() int { return r.End - r.Start }

// Section is a node in a document's heading tree. Range covers the content
// between the heading line and the next heading of the same or shallower
// level; children nest strictly inside it, in document order.
type Section struct {
	Heading  string
	Level    int
	Range    Range
	Children []*Section
	Tables   []*Table
}

// Table is a pipe-delimited table block. Every row carries a value
// (possibly empty) for every declared column.
type Table struct {
	Columns []string
	Rows    []map[string]string
	Range   Range
}

// Column returns all cell values for a named column, or false if the
// column is not declared.
func (t *Table) Column(name string) ([]string, bool) {
	found := false
	for _, c := range t.Columns {
		if c == name {
			found = true
			break
		}
	}
	if !found {
		return nil, false
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[name]
	}
	return out, true
}

// Cell returns the value at (column, row), or false if out of range.
func (t *Table) Cell(col string, row int) (string, bool) {
	if row < 0 || row >= len(t.Rows) {
		return "", false
	}
	v, ok := t.Rows[row][col]
	return v, ok
}

// Table returns the i-th table in the section's own range, in document
// order. Tables inside child sections are not counted.
func (s *Section) Table(i int) (*Table, bool) {
	if i < 0 || i >= len(s.Tables) {
		return nil, false
	}
	return s.Tables[i], true
}

// Find returns the first child with the given heading, exact-text and
// case-sensitive.
func (s *Section) Find(heading string) (*Section, bool) {
	for _, c := range s.Children {
		if c.Heading == heading {
			return c, true
		}
	}
	return nil, false
}

type line struct {
	start int // byte offset of the line start
	end   int // byte offset past the trailing newline (or EOF)
	text  string
}

func splitLines(body []byte) []line {
	var lines []line
	pos := 0
	for pos < len(body) {
		end := pos
		for end < len(body) && body[end] != '\n' {
			end++
		}
		text := string(body[pos:end])
		if end < len(body) {
			end++ // consume the newline
		}
		lines = append(lines, line{start: pos, end: end, text: strings.TrimSuffix(text, "\r")})
		pos = end
	}
	return lines
}

// headingLevel returns the ATX heading level (1-6) of a line, or 0.
func headingLevel(text string) int {
	level := 0
	for level < len(text) && text[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0
	}
	if level == len(text) {
		return level
	}
	if text[level] == ' ' || text[level] == '\t' {
		return level
	}
	return 0
}

func headingText(text string, level int) string {
	t := strings.TrimSpace(text[level:])
	// Closing hash sequence is decoration, not heading text.
	trimmed := strings.TrimRight(t, "#")
	if trimmed != t && strings.HasSuffix(trimmed, " ") {
		t = strings.TrimRight(trimmed, " ")
	}
	return t
}

func isFence(text string) bool {
	t := strings.TrimSpace(text)
	return strings.HasPrefix(t, "```") || strings.HasPrefix(t, "~~~")
}

func isTableRow(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "|")
}

func isSeparatorRow(text string) bool {
	cells := splitRow(text)
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		c = strings.TrimSpace(c)
		c = strings.TrimPrefix(c, ":")
		c = strings.TrimSuffix(c, ":")
		if c == "" || strings.Trim(c, "-") != "" {
			return false
		}
	}
	return true
}

func splitRow(text string) []string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "|") {
		return nil
	}
	t = strings.TrimPrefix(t, "|")
	t = strings.TrimSuffix(t, "|")
	parts := strings.Split(t, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// scanSections builds the section tree and attaches tables to their
// innermost enclosing section. Headings and pipe rows inside fenced code
// blocks are ignored.
func scanSections(body []byte) []*Section {
	lines := splitLines(body)

	var roots []*Section
	var stack []*Section
	inFence := false

	closeTo := func(level, at int) {
		for len(stack) > 0 && stack[len(stack)-1].Level >= level {
			stack[len(stack)-1].Range.End = at
			stack = stack[:len(stack)-1]
		}
	}

	i := 0
	for i < len(lines) {
		ln := lines[i]
		if isFence(ln.text) {
			inFence = !inFence
			i++
			continue
		}
		if inFence {
			i++
			continue
		}
		if level := headingLevel(ln.text); level > 0 {
			closeTo(level, ln.start)
			sec := &Section{
				Heading: headingText(ln.text, level),
				Level:   level,
				Range:   Range{Start: ln.end, End: len(body)},
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, sec)
			} else {
				roots = append(roots, sec)
			}
			stack = append(stack, sec)
			i++
			continue
		}
		if isTableRow(ln.text) && i+1 < len(lines) && isSeparatorRow(lines[i+1].text) {
			columns := splitRow(ln.text)
			tbl := &Table{Columns: columns}
			j := i + 2
			for j < len(lines) && isTableRow(lines[j].text) {
				cells := splitRow(lines[j].text)
				row := make(map[string]string, len(columns))
				for ci, col := range columns {
					if ci < len(cells) {
						row[col] = cells[ci]
					} else {
						row[col] = ""
					}
				}
				tbl.Rows = append(tbl.Rows, row)
				j++
			}
			tbl.Range = Range{Start: ln.start, End: lines[j-1].end}
			if len(stack) > 0 {
				owner := stack[len(stack)-1]
				owner.Tables = append(owner.Tables, tbl)
			}
			i = j
			continue
		}
		i++
	}

	closeTo(1, len(body))
	return roots
}
