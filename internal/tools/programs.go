package tools

import (
	"context"
	"errors"

	"fekra/internal/store"
)

type searchProgramsArgs struct {
	Q     string `json:"q,omitempty" jsonschema:"minLength=1,maxLength=200"`
	Tag   string `json:"tag,omitempty" jsonschema:"minLength=1,maxLength=50"`
	Limit int    `json:"limit,omitempty" jsonschema:"minimum=1,maximum=50"`
}

var programFields = []string{"title", "mode", "tags", "startsAt", "endsAt"}

// searchPrograms matches programs by free text over title/description or by
// exact tag membership. The schema guarantees at least one of q/tag is set.
// Free-text-only queries try the store's relevance index first; queries
// combining q with tag stay on the substring path, since the index carries
// no field predicates.
func (e *Executor) searchPrograms(ctx context.Context, a searchProgramsArgs) (any, error) {
	limit := capLimit(a.Limit, 10)

	if a.Q != "" && a.Tag == "" {
		docs, err := e.store.Search(ctx, colPrograms, a.Q, limit)
		if err != nil && !errors.Is(err, store.ErrNoTextIndex) {
			return nil, err
		}
		if len(docs) > 0 {
			out := make([]store.Document, len(docs))
			for i, doc := range docs {
				out[i] = store.Project(doc, programFields)
			}
			return out, nil
		}
	}

	var filter store.Filter
	if a.Q != "" {
		filter.Any = append(filter.Any, []store.Predicate{
			{Field: "title", Op: store.OpContainsFold, Value: a.Q},
			{Field: "description", Op: store.OpContainsFold, Value: a.Q},
		})
	}
	if a.Tag != "" {
		filter.All = append(filter.All, store.Predicate{Field: "tags", Op: store.OpIn, Value: a.Tag})
	}
	return e.store.Find(ctx, colPrograms, store.Query{
		Filter: filter,
		Limit:  limit,
		Fields: programFields,
	})
}
