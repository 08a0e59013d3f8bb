package store

import (
	"sort"
	"strings"
	"time"
)

// Match reports whether doc satisfies every predicate of f. Shared by all
// store implementations so filter semantics cannot drift between them.
func Match(doc Document, f Filter) bool {
	for _, p := range f.All {
		if !matchPredicate(doc, p) {
			return false
		}
	}
	for _, group := range f.Any {
		if len(group) == 0 {
			continue
		}
		matched := false
		for _, p := range group {
			if matchPredicate(doc, p) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func matchPredicate(doc Document, p Predicate) bool {
	val, present := doc[p.Field]

	switch p.Op {
	case OpEq:
		if !present {
			return false
		}
		c, ok := compareValues(val, p.Value)
		return ok && c == 0
	case OpEqFold:
		s, ok := val.(string)
		probe, ok2 := p.Value.(string)
		return present && ok && ok2 && strings.EqualFold(s, strings.TrimSpace(probe))
	case OpContainsFold:
		s, ok := val.(string)
		probe, ok2 := p.Value.(string)
		if !present || !ok || !ok2 {
			return false
		}
		return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(probe)))
	case OpGTE:
		if !present {
			return false
		}
		c, ok := compareValues(val, p.Value)
		return ok && c >= 0
	case OpLTE:
		if !present {
			return false
		}
		c, ok := compareValues(val, p.Value)
		return ok && c <= 0
	case OpIn:
		return containsElement(val, p.Value)
	case OpNotIn:
		// A document without the relation at all also qualifies as "absent".
		if !present {
			return true
		}
		return !containsElement(val, p.Value)
	}
	return false
}

func containsElement(val any, probe any) bool {
	arr, ok := val.([]any)
	if !ok {
		return false
	}
	for _, e := range arr {
		if c, ok := compareValues(e, probe); ok && c == 0 {
			return true
		}
	}
	return false
}

// compareValues orders two document values: numerically when both are
// numbers, chronologically when both parse as RFC 3339 times, and
// lexicographically when both are strings. Nil sorts before everything.
// The second return is false for incomparable types (a string against a
// number); equality and range predicates treat that as no match, so a
// value stored under the wrong type never satisfies a filter.
func compareValues(a, b any) (int, bool) {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0, true
		case a == nil:
			return -1, true
		default:
			return 1, true
		}
	}

	af, aNum := asNumber(a)
	bf, bNum := asNumber(b)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}

	as, aStr := a.(string)
	bs, bStr := b.(string)
	if aStr && bStr {
		if at, err := time.Parse(time.RFC3339, as); err == nil {
			if bt, err := time.Parse(time.RFC3339, bs); err == nil {
				switch {
				case at.Before(bt):
					return -1, true
				case at.After(bt):
					return 1, true
				default:
					return 0, true
				}
			}
		}
		return strings.Compare(as, bs), true
	}

	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0, true
			case bb:
				return -1, true
			default:
				return 1, true
			}
		}
	}

	return 0, false
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// SortDocuments orders docs by the given keys, stably, so equal documents
// keep their insertion order and repeated queries return identical ordering.
func SortDocuments(docs []Document, keys []Sort) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, k := range keys {
			// Incomparable values keep their relative order.
			c, ok := compareValues(docs[i][k.Field], docs[j][k.Field])
			if !ok || c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}
