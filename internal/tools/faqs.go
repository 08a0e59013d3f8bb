package tools

import (
	"context"
	"errors"
	"sort"
	"strings"

	"fekra/internal/fuzzy"
	"fekra/internal/store"
)

type searchFAQsArgs struct {
	Q     string `json:"q" jsonschema:"minLength=1,maxLength=200"`
	Limit int    `json:"limit,omitempty" jsonschema:"minimum=1,maximum=50"`
}

var faqFields = []string{"question", "answer", "tags"}

// fuzzyScanCap bounds how many FAQ documents the fallback tiers consider;
// both the token match and the edit-distance ranking stay within it.
const fuzzyScanCap = 50

// searchFAQs answers knowledge-base questions in three tiers: the store's
// relevance text index first, then token matching over the normalized query,
// then edit-distance ranking so a typo like "wat is fekra" still finds
// "What is FEKRA?".
func (e *Executor) searchFAQs(ctx context.Context, a searchFAQsArgs) (any, error) {
	limit := capLimit(a.Limit, 10)

	docs, err := e.store.Search(ctx, colFAQs, a.Q, limit)
	if err != nil && !errors.Is(err, store.ErrNoTextIndex) {
		return nil, err
	}
	if len(docs) > 0 {
		out := make([]store.Document, len(docs))
		for i, doc := range docs {
			out[i] = store.Project(doc, faqFields)
		}
		return out, nil
	}

	return e.fuzzyFAQs(ctx, a.Q, limit)
}

// fuzzyFAQs is the fallback path, bounded by fuzzyScanCap end to end.
// Candidates are FAQs containing every query token as a substring of
// question, answer, or a tag; when that yields nothing (every token
// misspelled), candidates widen to the capped collection itself. Either
// way, results are ranked by ascending edit distance between the
// normalized query and the normalized question, then answer.
func (e *Executor) fuzzyFAQs(ctx context.Context, query string, limit int) ([]store.Document, error) {
	normalized := fuzzy.Normalize(query)
	tokens := strings.Fields(normalized)

	all, err := e.store.Find(ctx, colFAQs, store.Query{Limit: fuzzyScanCap})
	if err != nil {
		return nil, err
	}

	candidates := make([]store.Document, 0)
	for _, doc := range all {
		if faqHasAllTokens(doc, tokens) {
			candidates = append(candidates, doc)
		}
	}
	if len(candidates) == 0 {
		candidates = all
	}

	type ranked struct {
		doc   store.Document
		qDist int
		aDist int
	}
	scored := make([]ranked, len(candidates))
	for i, doc := range candidates {
		scored[i] = ranked{
			doc:   doc,
			qDist: fuzzy.Distance(normalized, fuzzy.Normalize(doc.String("question"))),
			aDist: fuzzy.Distance(normalized, fuzzy.Normalize(doc.String("answer"))),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].qDist != scored[j].qDist {
			return scored[i].qDist < scored[j].qDist
		}
		return scored[i].aDist < scored[j].aDist
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	out := make([]store.Document, len(scored))
	for i, r := range scored {
		out[i] = store.Project(r.doc, faqFields)
	}
	return out, nil
}

// faqHasAllTokens reports whether every token occurs somewhere in the FAQ's
// normalized question, answer, or tags.
func faqHasAllTokens(doc store.Document, tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	haystack := fuzzy.Normalize(doc.String("question")) + " " +
		fuzzy.Normalize(doc.String("answer")) + " " +
		fuzzy.Normalize(strings.Join(doc.Strings("tags"), " "))
	for _, tok := range tokens {
		if !strings.Contains(haystack, tok) {
			return false
		}
	}
	return true
}
