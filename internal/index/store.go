// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index maintains the SQLite document index: one row per
// document, one row per section, with an FTS5 table over section
// content for full-text search.
//
// Builds must pass the sqlite_fts5 tag (the mage targets do) so
// mattn/go-sqlite3 compiles the FTS5 module in; without it Open fails
// creating the full-text tables.
package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/docbase/internal/corpus"
	"github.com/pdiddy/docbase/internal/document"
	"github.com/pdiddy/docbase/pkg/types"
)

const dbFile = "docbase.db"

// Store manages the document index SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// Open opens or creates the index database at cfg.IndexDir/docbase.db,
// creating the schema if it does not exist.
func Open(cfg types.IndexConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			path TEXT PRIMARY KEY,
			id TEXT,
			doc_type TEXT,
			title TEXT,
			status TEXT,
			header_json TEXT,
			mod_time TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS sections (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL REFERENCES documents(path),
			heading TEXT NOT NULL,
			level INTEGER NOT NULL,
			content TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sections_path ON sections(path)`,
		`CREATE TABLE IF NOT EXISTS index_status (
			path TEXT PRIMARY KEY,
			mod_time TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='sections_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE sections_fts USING fts5(content, content=sections, content_rowid=rowid)`,
			`CREATE TRIGGER sections_ai AFTER INSERT ON sections BEGIN
				INSERT INTO sections_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
			`CREATE TRIGGER sections_ad AFTER DELETE ON sections BEGIN
				INSERT INTO sections_fts(sections_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			END`,
			`CREATE TRIGGER sections_au AFTER UPDATE ON sections BEGIN
				INSERT INTO sections_fts(sections_fts, rowid, content) VALUES('delete', old.rowid, old.content);
				INSERT INTO sections_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Summary holds counts from an index sync run.
type Summary struct {
	Indexed int
	Updated int
	Skipped int
	Removed int
	Failed  int
}

// Total returns the number of documents processed.
func (s Summary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Sync brings the index up to date with the working set. Documents are
// re-indexed only when their file mod time changed; rows for files no
// longer in the set are removed.
func (s *Store) Sync(ctx context.Context, set *corpus.Set, w io.Writer) (Summary, error) {
	var summary Summary
	live := make(map[string]bool, set.Len())

	for _, doc := range set.Documents() {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		live[doc.Path] = true

		info, err := os.Stat(doc.Path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", doc.Path, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT mod_time FROM index_status WHERE path = ?`, doc.Path,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", doc.Path)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		if err := s.indexDocument(ctx, doc, modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", doc.Path, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s\n", doc.Path)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s\n", doc.Path)
			summary.Indexed++
		}
	}

	removed, err := s.removeStale(ctx, live)
	if err != nil {
		return summary, err
	}
	summary.Removed = removed

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, removed: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Removed, summary.Failed)
	return summary, nil
}

func (s *Store) indexDocument(ctx context.Context, doc *document.Document, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sections WHERE path = ?`, doc.Path); err != nil {
			return fmt.Errorf("deleting old sections: %w", err)
		}
	}

	headerJSON := "{}"
	title, status := "", ""
	if doc.Header != nil {
		headerMap := make(map[string]interface{}, len(doc.Header.Keys()))
		for _, k := range doc.Header.Keys() {
			v, _ := doc.Header.Get(k)
			headerMap[k] = v.Interface()
		}
		data, err := json.Marshal(headerMap)
		if err != nil {
			return fmt.Errorf("encoding header: %w", err)
		}
		headerJSON = string(data)
		title, _ = doc.Display("title")
		status, _ = doc.Display("status")
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (path, id, doc_type, title, status, header_json, mod_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
			id=excluded.id, doc_type=excluded.doc_type, title=excluded.title,
			status=excluded.status, header_json=excluded.header_json,
			mod_time=excluded.mod_time`,
		doc.Path, corpus.Stem(doc.Path), doc.Type(), title, status, headerJSON, modTime,
	)
	if err != nil {
		return fmt.Errorf("upserting document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sections (path, heading, level, content) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	var insert func(sections []*document.Section) error
	insert = func(sections []*document.Section) error {
		for _, sec := range sections {
			content := string(doc.Slice(sec.Range))
			if _, err := stmt.ExecContext(ctx, doc.Path, sec.Heading, sec.Level, content); err != nil {
				return fmt.Errorf("inserting section %q: %w", sec.Heading, err)
			}
			if err := insert(sec.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := insert(doc.Sections); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO index_status (path, mod_time) VALUES (?, ?)
		 ON CONFLICT(path) DO UPDATE SET mod_time=excluded.mod_time`,
		doc.Path, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating index status: %w", err)
	}

	return tx.Commit()
}

func (s *Store) removeStale(ctx context.Context, live map[string]bool) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM index_status`)
	if err != nil {
		return 0, fmt.Errorf("listing indexed paths: %w", err)
	}
	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scanning path: %w", err)
		}
		if !live[path] {
			stale = append(stale, path)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, path := range stale {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return 0, fmt.Errorf("beginning transaction: %w", err)
		}
		for _, stmt := range []string{
			`DELETE FROM sections WHERE path = ?`,
			`DELETE FROM documents WHERE path = ?`,
			`DELETE FROM index_status WHERE path = ?`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, path); err != nil {
				tx.Rollback()
				return 0, fmt.Errorf("removing %s: %w", path, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return 0, err
		}
	}
	return len(stale), nil
}
