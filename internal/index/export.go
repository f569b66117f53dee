// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	yaml "go.yaml.in/yaml/v3"
)

// ExportSection is one section of an exported document.
type ExportSection struct {
	Heading string `json:"heading" yaml:"heading"`
	Level   int    `json:"level" yaml:"level"`
	Content string `json:"content" yaml:"content"`
}

// ExportEntry is one document in a full index dump.
type ExportEntry struct {
	Path     string                 `json:"path" yaml:"path"`
	ID       string                 `json:"id" yaml:"id"`
	Type     string                 `json:"type" yaml:"type"`
	Title    string                 `json:"title,omitempty" yaml:"title,omitempty"`
	Status   string                 `json:"status,omitempty" yaml:"status,omitempty"`
	Header   map[string]interface{} `json:"header" yaml:"header"`
	Sections []ExportSection        `json:"sections" yaml:"sections"`
}

// ExportJSON writes the full index to w as indented JSON, ordered by
// document path.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// ExportYAML writes the full index to w as YAML, ordered by document
// path.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func (s *Store) exportEntries(ctx context.Context) ([]ExportEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, id, doc_type, title, status, header_json FROM documents ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var entries []ExportEntry
	for rows.Next() {
		var e ExportEntry
		var headerJSON string
		if err := rows.Scan(&e.Path, &e.ID, &e.Type, &e.Title, &e.Status, &headerJSON); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		if err := json.Unmarshal([]byte(headerJSON), &e.Header); err != nil {
			return nil, fmt.Errorf("decoding header for %s: %w", e.Path, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range entries {
		sections, err := s.exportSections(ctx, entries[i].Path)
		if err != nil {
			return nil, err
		}
		entries[i].Sections = sections
	}
	return entries, nil
}

func (s *Store) exportSections(ctx context.Context, path string) ([]ExportSection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT heading, level, content FROM sections WHERE path = ? ORDER BY rowid`, path)
	if err != nil {
		return nil, fmt.Errorf("querying sections: %w", err)
	}
	defer rows.Close()

	var out []ExportSection
	for rows.Next() {
		var sec ExportSection
		if err := rows.Scan(&sec.Heading, &sec.Level, &sec.Content); err != nil {
			return nil, fmt.Errorf("scanning section: %w", err)
		}
		out = append(out, sec)
	}
	return out, rows.Err()
}
