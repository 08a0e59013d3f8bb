package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// SQLite is the production Store. Documents live as JSON bodies in a single
// table keyed by (collection, key); an optional FTS5 table provides the
// relevance-scored text index behind Search. Filtering, sorting, and
// projection reuse the shared Match/SortDocuments/Project semantics, so the
// store engine stays a dumb bag of JSON (its design is not this system's
// concern) while query behavior is identical to the in-memory store.
type SQLite struct {
	db        *sql.DB
	textIndex bool
}

// NewSQLite wraps an opened database. textIndex reports whether the FTS5
// table was created (see db.EnsureSchema); when false, Search degrades to
// ErrNoTextIndex and callers use their own fallback.
func NewSQLite(db *sql.DB, textIndex bool) *SQLite {
	return &SQLite{db: db, textIndex: textIndex}
}

// Upsert writes doc under (collection, key), replacing any previous body,
// and refreshes the text-index row when searchText is non-empty.
func (s *SQLite) Upsert(ctx context.Context, collection, key string, doc Document, searchText string) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: marshal document: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, key, body) VALUES (?, ?, ?)
		 ON CONFLICT(collection, key) DO UPDATE SET body = excluded.body`,
		collection, key, string(body))
	if err != nil {
		return fmt.Errorf("store: upsert: %w", err)
	}
	if !s.textIndex || searchText == "" {
		return nil
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM document_search WHERE collection = ? AND key = ?`, collection, key); err != nil {
		return fmt.Errorf("store: refresh index: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO document_search (collection, key, content) VALUES (?, ?, ?)`,
		collection, key, searchText); err != nil {
		return fmt.Errorf("store: index document: %w", err)
	}
	return nil
}

// Find implements Store.
func (s *SQLite) Find(ctx context.Context, collection string, q Query) ([]Document, error) {
	docs, err := s.load(ctx, collection)
	if err != nil {
		return nil, err
	}
	matched := make([]Document, 0)
	for _, doc := range docs {
		if Match(doc, q.Filter) {
			matched = append(matched, doc)
		}
	}
	SortDocuments(matched, q.Sort)
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	out := make([]Document, len(matched))
	for i, doc := range matched {
		out[i] = Project(doc, q.Fields)
	}
	return out, nil
}

// FindOne implements Store. Returns nil (not an error) when nothing matches.
func (s *SQLite) FindOne(ctx context.Context, collection string, q Query) (Document, error) {
	q.Limit = 1
	docs, err := s.Find(ctx, collection, q)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

// Distinct implements Store.
func (s *SQLite) Distinct(ctx context.Context, collection, field string) ([]string, error) {
	docs, err := s.load(ctx, collection)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, doc := range docs {
		v := doc.String(field)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

// Search implements Store using the FTS5 index, best match first (bm25).
// The raw query is re-issued as quoted tokens so user punctuation cannot
// break the FTS query syntax.
func (s *SQLite) Search(ctx context.Context, collection, query string, limit int) ([]Document, error) {
	if !s.textIndex {
		return nil, ErrNoTextIndex
	}
	match := ftsQuery(query)
	if match == "" {
		return []Document{}, nil
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.body
		 FROM document_search
		 JOIN documents d ON d.collection = document_search.collection AND d.key = document_search.key
		 WHERE document_search.collection = ? AND document_search MATCH ?
		 ORDER BY document_search.rank
		 LIMIT ?`,
		collection, match, limit)
	if err != nil {
		return nil, fmt.Errorf("store: text search: %w", err)
	}
	defer rows.Close()
	return scanDocuments(rows)
}

func (s *SQLite) load(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM documents WHERE collection = ? ORDER BY id`, collection)
	if err != nil {
		return nil, fmt.Errorf("store: load %s: %w", collection, err)
	}
	defer rows.Close()
	return scanDocuments(rows)
}

func scanDocuments(rows *sql.Rows) ([]Document, error) {
	out := make([]Document, 0)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		var doc Document
		if err := json.Unmarshal([]byte(body), &doc); err != nil {
			return nil, fmt.Errorf("store: decode document: %w", err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: rows: %w", err)
	}
	return out, nil
}

// ftsQuery turns free text into an FTS5 query of quoted tokens (implicit AND).
func ftsQuery(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " ")
}

var _ Store = (*SQLite)(nil)
