package tools

import (
	"context"

	"fekra/internal/store"
)

type searchScholarshipsArgs struct {
	Q         string   `json:"q,omitempty" jsonschema:"minLength=1,maxLength=200"`
	Type      string   `json:"type,omitempty" jsonschema:"minLength=1,maxLength=80"`
	CreatedBy string   `json:"createdBy,omitempty" jsonschema:"minLength=1,maxLength=120"`
	MinValue  *float64 `json:"minValue,omitempty" jsonschema:"minimum=0"`
	MaxValue  *float64 `json:"maxValue,omitempty" jsonschema:"minimum=0"`
	Applicant string   `json:"applicant,omitempty" jsonschema:"pattern=^[0-9a-fA-F]{24}$,description=User ID to filter by application state"`
	Applied   *bool    `json:"applied,omitempty" jsonschema:"description=true = only scholarships this applicant applied to; false = not applied"`
	Sort      string   `json:"sort,omitempty" jsonschema:"enum=recent,enum=value_desc,enum=value_asc"`
	Limit     int      `json:"limit,omitempty" jsonschema:"minimum=1,maximum=50"`
}

type scholarshipByTitleArgs struct {
	Title string `json:"title" jsonschema:"minLength=1,maxLength=200"`
}

type scholarshipsByTypeArgs struct {
	Type  string `json:"type" jsonschema:"minLength=1,maxLength=80"`
	Limit int    `json:"limit,omitempty" jsonschema:"minimum=1,maximum=50"`
}

type scholarshipsByCreatorArgs struct {
	CreatedBy string `json:"createdBy" jsonschema:"minLength=1,maxLength=120"`
	Limit     int    `json:"limit,omitempty" jsonschema:"minimum=1,maximum=50"`
}

type scholarshipApplicantsArgs struct {
	Title string `json:"title" jsonschema:"minLength=1,maxLength=200"`
}

var (
	scholarshipSearchFields = []string{
		"scholarship_title", "scholarship_description", "scholarship_requirements",
		"scholarship_CreatedBy", "scholarship_value", "scholarship_type",
		"applicants", "createdAt", "updatedAt",
	}
	scholarshipListFields = []string{
		"scholarship_title", "scholarship_value", "scholarship_type",
		"scholarship_CreatedBy", "createdAt",
	}
)

// scholarshipSort maps the sort argument to ordering keys. Value sorts
// tie-break on recency so equal-value scholarships list newest first.
func scholarshipSort(sort string) []store.Sort {
	switch sort {
	case "value_desc":
		return []store.Sort{{Field: "scholarship_value", Desc: true}, {Field: "createdAt", Desc: true}}
	case "value_asc":
		return []store.Sort{{Field: "scholarship_value"}, {Field: "createdAt", Desc: true}}
	}
	return []store.Sort{{Field: "createdAt", Desc: true}}
}

func (e *Executor) searchScholarships(ctx context.Context, a searchScholarshipsArgs) (any, error) {
	var filter store.Filter
	if a.Q != "" {
		filter.Any = append(filter.Any, []store.Predicate{
			{Field: "scholarship_title", Op: store.OpContainsFold, Value: a.Q},
			{Field: "scholarship_description", Op: store.OpContainsFold, Value: a.Q},
			{Field: "scholarship_requirements", Op: store.OpContainsFold, Value: a.Q},
		})
	}
	if a.Type != "" {
		filter.All = append(filter.All, store.Predicate{Field: "scholarship_type", Op: store.OpEq, Value: a.Type})
	}
	if a.CreatedBy != "" {
		filter.All = append(filter.All, store.Predicate{Field: "scholarship_CreatedBy", Op: store.OpEqFold, Value: a.CreatedBy})
	}
	if a.MinValue != nil {
		filter.All = append(filter.All, store.Predicate{Field: "scholarship_value", Op: store.OpGTE, Value: *a.MinValue})
	}
	if a.MaxValue != nil {
		filter.All = append(filter.All, store.Predicate{Field: "scholarship_value", Op: store.OpLTE, Value: *a.MaxValue})
	}
	// The schema guarantees applied is present whenever applicant is, and
	// that applicant matches the identifier pattern. No fail-open path here.
	if a.Applicant != "" && a.Applied != nil {
		op := store.OpNotIn
		if *a.Applied {
			op = store.OpIn
		}
		filter.All = append(filter.All, store.Predicate{Field: "applicants", Op: op, Value: a.Applicant})
	}
	return e.store.Find(ctx, colScholarships, store.Query{
		Filter: filter,
		Sort:   scholarshipSort(a.Sort),
		Limit:  capLimit(a.Limit, 20),
		Fields: scholarshipSearchFields,
	})
}

func (e *Executor) scholarshipByTitle(ctx context.Context, a scholarshipByTitleArgs) (any, error) {
	return e.store.FindOne(ctx, colScholarships, store.Query{
		Filter: store.Filter{All: []store.Predicate{
			{Field: "scholarship_title", Op: store.OpEqFold, Value: a.Title},
		}},
		Fields: scholarshipSearchFields,
	})
}

func (e *Executor) scholarshipsByType(ctx context.Context, a scholarshipsByTypeArgs) (any, error) {
	return e.store.Find(ctx, colScholarships, store.Query{
		Filter: store.Filter{All: []store.Predicate{
			{Field: "scholarship_type", Op: store.OpEq, Value: a.Type},
		}},
		Sort:   []store.Sort{{Field: "createdAt", Desc: true}},
		Limit:  capLimit(a.Limit, 50),
		Fields: scholarshipListFields,
	})
}

func (e *Executor) scholarshipsByCreator(ctx context.Context, a scholarshipsByCreatorArgs) (any, error) {
	return e.store.Find(ctx, colScholarships, store.Query{
		Filter: store.Filter{All: []store.Predicate{
			{Field: "scholarship_CreatedBy", Op: store.OpEqFold, Value: a.CreatedBy},
		}},
		Sort:   []store.Sort{{Field: "createdAt", Desc: true}},
		Limit:  capLimit(a.Limit, 50),
		Fields: scholarshipListFields,
	})
}

// scholarshipApplicants returns the applicant user IDs for one scholarship.
// On a miss the echoed title is the requested one and the ID list is empty,
// so the model always has something coherent to phrase.
func (e *Executor) scholarshipApplicants(ctx context.Context, a scholarshipApplicantsArgs) (any, error) {
	doc, err := e.store.FindOne(ctx, colScholarships, store.Query{
		Filter: store.Filter{All: []store.Predicate{
			{Field: "scholarship_title", Op: store.OpEqFold, Value: a.Title},
		}},
		Fields: []string{"scholarship_title", "applicants"},
	})
	if err != nil {
		return nil, err
	}

	title := a.Title
	ids := []string{}
	if doc != nil {
		if t := doc.String("scholarship_title"); t != "" {
			title = t
		}
		if got := doc.Strings("applicants"); got != nil {
			ids = got
		}
	}
	return map[string]any{"scholarship_title": title, "applicants": ids}, nil
}
