package tools

import (
	"context"

	"fekra/internal/store"
)

type searchCoursesArgs struct {
	Q          string   `json:"q,omitempty" jsonschema:"minLength=1,maxLength=200"`
	Category   string   `json:"category,omitempty" jsonschema:"minLength=1,maxLength=80"`
	Instructor string   `json:"instructor,omitempty" jsonschema:"minLength=1,maxLength=120"`
	Level      string   `json:"level,omitempty" jsonschema:"enum=Beginner,enum=Intermediate,enum=Advanced"`
	MinRating  *float64 `json:"minRating,omitempty" jsonschema:"minimum=0,maximum=5"`
	Sort       string   `json:"sort,omitempty" jsonschema:"enum=rating,enum=recent,enum=price"`
	Limit      int      `json:"limit,omitempty" jsonschema:"minimum=1,maximum=50"`
}

type courseByTitleArgs struct {
	Title string `json:"title" jsonschema:"minLength=1,maxLength=200"`
}

type coursesByInstructorArgs struct {
	Instructor string `json:"instructor" jsonschema:"minLength=1,maxLength=120"`
	Limit      int    `json:"limit,omitempty" jsonschema:"minimum=1,maximum=50"`
}

type coursesByCategoryArgs struct {
	Category string `json:"category" jsonschema:"minLength=1,maxLength=80"`
	Limit    int    `json:"limit,omitempty" jsonschema:"minimum=1,maximum=50"`
}

type courseCategoriesArgs struct{}

var (
	courseSearchFields = []string{
		"title", "description", "price", "instructor", "durationDays",
		"level", "category", "ratingAvg", "ratingCount", "createdAt", "updatedAt",
	}
	courseDetailFields = []string{
		"title", "description", "price", "instructor", "durationDays",
		"level", "category", "ratingAvg", "ratingCount",
		"enrolledStudents", "pendingStudents", "createdAt", "updatedAt",
	}
	courseListFields = []string{
		"title", "instructor", "category", "level", "durationDays",
		"ratingAvg", "ratingCount", "price", "createdAt",
	}
)

// courseSort maps the sort argument to ordering keys. Unspecified and
// "recent" both mean newest first.
func courseSort(sort string) []store.Sort {
	switch sort {
	case "rating":
		return []store.Sort{{Field: "ratingAvg", Desc: true}, {Field: "ratingCount", Desc: true}}
	case "price":
		return []store.Sort{{Field: "price"}}
	}
	return []store.Sort{{Field: "createdAt", Desc: true}}
}

func (e *Executor) searchCourses(ctx context.Context, a searchCoursesArgs) (any, error) {
	var filter store.Filter
	if a.Q != "" {
		filter.Any = append(filter.Any, []store.Predicate{
			{Field: "title", Op: store.OpContainsFold, Value: a.Q},
			{Field: "description", Op: store.OpContainsFold, Value: a.Q},
		})
	}
	if a.Category != "" {
		filter.All = append(filter.All, store.Predicate{Field: "category", Op: store.OpEq, Value: a.Category})
	}
	if a.Instructor != "" {
		filter.All = append(filter.All, store.Predicate{Field: "instructor", Op: store.OpEqFold, Value: a.Instructor})
	}
	if a.Level != "" {
		filter.All = append(filter.All, store.Predicate{Field: "level", Op: store.OpEq, Value: a.Level})
	}
	if a.MinRating != nil {
		filter.All = append(filter.All, store.Predicate{Field: "ratingAvg", Op: store.OpGTE, Value: *a.MinRating})
	}
	return e.store.Find(ctx, colCourses, store.Query{
		Filter: filter,
		Sort:   courseSort(a.Sort),
		Limit:  capLimit(a.Limit, 20),
		Fields: courseSearchFields,
	})
}

// courseByTitle fetches one course by exact case-insensitive title. A miss
// returns null, not an error; the model phrases the "not found" answer.
func (e *Executor) courseByTitle(ctx context.Context, a courseByTitleArgs) (any, error) {
	return e.store.FindOne(ctx, colCourses, store.Query{
		Filter: store.Filter{All: []store.Predicate{
			{Field: "title", Op: store.OpEqFold, Value: a.Title},
		}},
		Fields: courseDetailFields,
	})
}

func (e *Executor) coursesByInstructor(ctx context.Context, a coursesByInstructorArgs) (any, error) {
	return e.store.Find(ctx, colCourses, store.Query{
		Filter: store.Filter{All: []store.Predicate{
			{Field: "instructor", Op: store.OpEqFold, Value: a.Instructor},
		}},
		Sort:   []store.Sort{{Field: "createdAt", Desc: true}},
		Limit:  capLimit(a.Limit, 50),
		Fields: courseListFields,
	})
}

func (e *Executor) coursesByCategory(ctx context.Context, a coursesByCategoryArgs) (any, error) {
	return e.store.Find(ctx, colCourses, store.Query{
		Filter: store.Filter{All: []store.Predicate{
			{Field: "category", Op: store.OpEq, Value: a.Category},
		}},
		Sort:   []store.Sort{{Field: "createdAt", Desc: true}},
		Limit:  capLimit(a.Limit, 50),
		Fields: courseListFields,
	})
}

func (e *Executor) courseCategories(ctx context.Context, _ courseCategoriesArgs) (any, error) {
	return e.store.Distinct(ctx, colCourses, "category")
}
