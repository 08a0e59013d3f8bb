package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func openSQLite(t *testing.T) *SQLite {
	t.Helper()
	conn, err := sql.Open("sqlite", "file:"+filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if _, err := conn.Exec(`
		CREATE TABLE documents (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			collection TEXT NOT NULL,
			key        TEXT NOT NULL,
			body       TEXT NOT NULL,
			UNIQUE (collection, key)
		)`); err != nil {
		t.Fatalf("create documents: %v", err)
	}
	textIndex := true
	if _, err := conn.Exec(`
		CREATE VIRTUAL TABLE document_search
		USING fts5(collection UNINDEXED, key UNINDEXED, content)`); err != nil {
		textIndex = false
	}
	return NewSQLite(conn, textIndex)
}

func TestSQLite_UpsertAndFind_ShouldRoundTrip(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()

	doc := Document{"title": "Intro to Python", "category": "Programming", "ratingAvg": 4.8}
	if err := s.Upsert(ctx, "courses", "Intro to Python", doc, ""); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	docs, err := s.Find(ctx, "courses", Query{
		Filter: Filter{All: []Predicate{{Field: "title", Op: OpEqFold, Value: "INTRO TO PYTHON"}}},
	})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(docs) != 1 || docs[0].String("category") != "Programming" {
		t.Errorf("unexpected result: %v", docs)
	}
	if docs[0].Number("ratingAvg") != 4.8 {
		t.Errorf("number survived badly: %v", docs[0].Number("ratingAvg"))
	}
}

func TestSQLite_Upsert_ShouldReplaceExistingKey(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()

	if err := s.Upsert(ctx, "faqs", "q1", Document{"answer": "old"}, "old text"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := s.Upsert(ctx, "faqs", "q1", Document{"answer": "new"}, "new text"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	docs, err := s.Find(ctx, "faqs", Query{})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(docs) != 1 || docs[0].String("answer") != "new" {
		t.Errorf("expected single replaced document, got %v", docs)
	}
}

func TestSQLite_Search_ShouldRankByRelevance(t *testing.T) {
	s := openSQLite(t)
	if !s.textIndex {
		t.Skip("FTS5 unavailable in this build")
	}
	ctx := context.Background()

	if err := s.Upsert(ctx, "faqs", "about",
		Document{"question": "What is FEKRA?", "answer": "An educational project."},
		"What is FEKRA? An educational project."); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := s.Upsert(ctx, "faqs", "clubs",
		Document{"question": "What clubs does FEKRA have?", "answer": "Several clubs."},
		"What clubs does FEKRA have? Several clubs."); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	docs, err := s.Search(ctx, "faqs", "clubs", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(docs) != 1 || docs[0].String("question") != "What clubs does FEKRA have?" {
		t.Errorf("unexpected search result: %v", docs)
	}
}

func TestSQLite_Search_ShouldQuoteUserPunctuation(t *testing.T) {
	s := openSQLite(t)
	if !s.textIndex {
		t.Skip("FTS5 unavailable in this build")
	}
	// FTS5 operators in user text must not break the query.
	if _, err := s.Search(context.Background(), "faqs", `"fekra" AND (clubs OR`, 10); err != nil {
		t.Errorf("punctuated query should not error: %v", err)
	}
}

func TestSQLite_Search_ShouldReturnErrNoTextIndexWhenDisabled(t *testing.T) {
	s := openSQLite(t)
	s.textIndex = false
	_, err := s.Search(context.Background(), "faqs", "fekra", 10)
	if !errors.Is(err, ErrNoTextIndex) {
		t.Errorf("expected ErrNoTextIndex, got %v", err)
	}
}

func TestSQLite_Distinct_ShouldReturnSortedUniqueValues(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()
	s.Upsert(ctx, "courses", "a", Document{"category": "Programming"}, "")
	s.Upsert(ctx, "courses", "b", Document{"category": "Art"}, "")
	s.Upsert(ctx, "courses", "c", Document{"category": "Programming"}, "")

	got, err := s.Distinct(ctx, "courses", "category")
	if err != nil {
		t.Fatalf("Distinct: %v", err)
	}
	if len(got) != 2 || got[0] != "Art" || got[1] != "Programming" {
		t.Errorf("Distinct: got %v", got)
	}
}

func TestSQLite_Find_ShouldIsolateCollections(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()
	s.Upsert(ctx, "courses", "x", Document{"title": "X"}, "")
	s.Upsert(ctx, "events", "y", Document{"title": "Y"}, "")

	docs, err := s.Find(ctx, "courses", Query{})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(docs) != 1 || docs[0].String("title") != "X" {
		t.Errorf("collection isolation broken: %v", docs)
	}
}
