// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SearchOptions holds parameters for index queries.
type SearchOptions struct {
	// Query is the FTS5 full-text search string.
	Query string

	// Type filters by document type.
	Type string

	// Section filters by exact heading text.
	Section string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (o SearchOptions) IsEmpty() bool {
	return o.Query == "" && o.Type == "" && o.Section == ""
}

// Hit is one search result: a section with its document metadata.
type Hit struct {
	Path    string `json:"path" yaml:"path"`
	DocType string `json:"doc_type" yaml:"doc_type"`
	Title   string `json:"title" yaml:"title"`
	Heading string `json:"heading" yaml:"heading"`
	Level   int    `json:"level" yaml:"level"`
	Content string `json:"content" yaml:"content"`
}

// Search queries the index with optional full-text search and
// structured filters. Full-text queries rank by relevance; structured
// queries sort by path and heading.
func (s *Store) Search(ctx context.Context, opts SearchOptions) ([]Hit, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT sec.path, d.doc_type, d.title, sec.heading, sec.level, sec.content
			FROM sections_fts
			JOIN sections sec ON sec.rowid = sections_fts.rowid
			LEFT JOIN documents d ON sec.path = d.path
			WHERE sections_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT sec.path, d.doc_type, d.title, sec.heading, sec.level, sec.content
			FROM sections sec
			LEFT JOIN documents d ON sec.path = d.path
			WHERE 1=1`)
	}

	if opts.Type != "" {
		qb.WriteString(` AND d.doc_type = ?`)
		args = append(args, opts.Type)
	}
	if opts.Section != "" {
		qb.WriteString(` AND sec.heading = ?`)
		args = append(args, opts.Section)
	}

	if useFTS {
		qb.WriteString(` ORDER BY sections_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY sec.path, sec.heading`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var (
			h       Hit
			docType sql.NullString
			title   sql.NullString
		)
		if err := rows.Scan(&h.Path, &docType, &title, &h.Heading, &h.Level, &h.Content); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if docType.Valid {
			h.DocType = docType.String
		}
		if title.Valid {
			h.Title = title.String
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
