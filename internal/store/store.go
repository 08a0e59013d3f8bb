package store

import (
	"context"
	"errors"
)

// ErrNoTextIndex is returned by Search when the store has no relevance-scored
// text index for the collection. Callers degrade to their own fallback.
var ErrNoTextIndex = errors.New("store: no text index")

// Document is one record from a logical collection, as decoded from JSON.
// Numbers are float64, times are RFC 3339 strings, relations are arrays of
// identifier strings.
type Document map[string]any

// Op enumerates the field predicates an executor may derive from validated
// arguments. There is deliberately no negation or disjunction beyond what the
// tool catalog needs.
type Op int

const (
	// OpEq matches the field value exactly (strings case-sensitive).
	OpEq Op = iota
	// OpEqFold matches the full string case-insensitively (anchored, not substring).
	OpEqFold
	// OpContainsFold matches a case-insensitive substring. Leading and
	// trailing whitespace in the probe value is ignored.
	OpContainsFold
	// OpGTE is an inclusive lower bound over numbers or RFC 3339 times.
	OpGTE
	// OpLTE is an inclusive upper bound over numbers or RFC 3339 times.
	OpLTE
	// OpIn matches when the array field contains the probe value.
	OpIn
	// OpNotIn matches when the array field does not contain the probe value.
	// A missing field counts as "does not contain".
	OpNotIn
)

// Predicate is one field condition.
type Predicate struct {
	Field string
	Op    Op
	Value any
}

// Filter is a conjunction: every predicate in All must match, and within each
// group of Any at least one predicate must match. An empty filter matches
// every document.
type Filter struct {
	All []Predicate
	Any [][]Predicate
}

// Sort is one ordering key. Keys are applied in sequence; documents compare
// by the first key that differs.
type Sort struct {
	Field string
	Desc  bool
}

// Query is the full read request an executor derives from validated
// arguments: filter, sort, limit, and the projection allow-list.
type Query struct {
	Filter Filter
	Sort   []Sort
	Limit  int
	// Fields is the projection allow-list. Empty means all fields; otherwise
	// only the listed fields survive into the result documents.
	Fields []string
}

// Store is the read-only document store consumed by tool executors. All
// implementations must honor context cancellation and return empty results
// (never an error) when nothing matches.
type Store interface {
	// Find returns the documents of collection matching q, sorted and limited.
	Find(ctx context.Context, collection string, q Query) ([]Document, error)

	// FindOne returns the first match or nil when there is none.
	FindOne(ctx context.Context, collection string, q Query) (Document, error)

	// Distinct returns the sorted distinct non-empty string values of field
	// across the collection.
	Distinct(ctx context.Context, collection, field string) ([]string, error)

	// Search runs the store's relevance-scored text index over the collection
	// and returns up to limit documents, best match first. Returns
	// ErrNoTextIndex when the collection has no such index.
	Search(ctx context.Context, collection, query string, limit int) ([]Document, error)
}

// Project returns a copy of doc containing only the listed fields. A nil or
// empty allow-list returns doc unchanged.
func Project(doc Document, fields []string) Document {
	if doc == nil || len(fields) == 0 {
		return doc
	}
	out := make(Document, len(fields))
	for _, f := range fields {
		if v, ok := doc[f]; ok {
			out[f] = v
		}
	}
	return out
}

// String returns the field as a string, or "" when absent or not a string.
func (d Document) String(field string) string {
	v, _ := d[field].(string)
	return v
}

// Number returns the field as a float64, or 0 when absent or not numeric.
func (d Document) Number(field string) float64 {
	switch v := d[field].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// Strings returns the field as a slice of strings, skipping non-string
// elements.
func (d Document) Strings(field string) []string {
	raw, ok := d[field].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Child returns a nested object field, or nil when absent.
func (d Document) Child(field string) Document {
	if m, ok := d[field].(map[string]any); ok {
		return Document(m)
	}
	return nil
}
