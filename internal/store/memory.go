package store

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process Store. It backs tests and fixture-driven runs and
// shares the exact filter semantics of the SQLite store through Match.
// It has no text index: Search always returns ErrNoTextIndex.
type Memory struct {
	mu          sync.RWMutex
	collections map[string][]Document
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string][]Document)}
}

// Insert appends documents to a collection, preserving insertion order.
func (m *Memory) Insert(collection string, docs ...Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[collection] = append(m.collections[collection], docs...)
}

// Upsert inserts doc under key, replacing any document previously upserted
// with the same key. searchText is accepted for interface parity with the
// SQLite store and ignored (no text index here).
func (m *Memory) Upsert(ctx context.Context, collection, key string, doc Document, searchText string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_ = searchText
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := m.collections[collection]
	for i := range docs {
		if docs[i].String("_key") == key {
			docs[i] = withKey(doc, key)
			return nil
		}
	}
	m.collections[collection] = append(docs, withKey(doc, key))
	return nil
}

func withKey(doc Document, key string) Document {
	out := make(Document, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	out["_key"] = key
	return out
}

// Find implements Store.
func (m *Memory) Find(ctx context.Context, collection string, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]Document, 0)
	for _, doc := range m.collections[collection] {
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
func (m *Memory) FindOne(ctx context.Context, collection string, q Query) (Document, error) {
	q.Limit = 1
	docs, err := m.Find(ctx, collection, q)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

// Distinct implements Store.
func (m *Memory) Distinct(ctx context.Context, collection, field string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, doc := range m.collections[collection] {
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

// Search implements Store. Memory has no relevance index.
func (m *Memory) Search(ctx context.Context, collection, query string, limit int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, ErrNoTextIndex
}

var _ Store = (*Memory)(nil)
