package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"fekra/internal/domain"
)

// Name identifies one tool in the catalog. The set is closed: executors
// dispatch over these constants with an exhaustive switch, so a tool without
// an executor is a compile-time smell rather than a runtime map miss.
type Name string

const (
	ToolGetUpcomingEvents         Name = "get_upcoming_events"
	ToolSearchPrograms            Name = "search_programs"
	ToolSearchCourses             Name = "search_courses"
	ToolGetCourseByTitle          Name = "get_course_by_title"
	ToolListCoursesByInstructor   Name = "list_courses_by_instructor"
	ToolListCoursesByCategory     Name = "list_courses_by_category"
	ToolListCourseCategories      Name = "list_course_categories"
	ToolSearchScholarships        Name = "search_scholarships"
	ToolGetScholarshipByTitle     Name = "get_scholarship_by_title"
	ToolListScholarshipsByType    Name = "list_scholarships_by_type"
	ToolListScholarshipsByCreator Name = "list_scholarships_by_creator"
	ToolGetScholarshipApplicants  Name = "get_scholarship_applicants"
	ToolSearchFAQs                Name = "search_faqs"
)

// ErrUnknownTool is returned when a proposed tool name is not in the catalog.
var ErrUnknownTool = errors.New("unknown tool")

// Spec is one immutable catalog entry. The description doubles as the usage
// policy the model reasons over: it must say when to prefer this tool over
// its siblings, because tool selection has no other enforcement.
type Spec struct {
	Name        Name
	Description string
	Schema      string

	compiled *jsonschema.Schema
}

// catalog declares every tool, in the fixed order the model sees them.
// Defined once at process start; there is no mutation API.
func catalog() []Spec {
	return []Spec{
		{
			Name:        ToolGetUpcomingEvents,
			Description: "List upcoming events/workshops in a date range with optional mode filter.",
			Schema:      GenerateSchema(upcomingEventsArgs{}),
		},
		{
			Name:        ToolSearchPrograms,
			Description: "Search programs by text or tag. Provide q or tag.",
			Schema:      GenerateSchema(searchProgramsArgs{}, RequireAnyOf("q", "tag")),
		},
		{
			Name: ToolSearchCourses,
			Description: "Search courses by free text or filters. Supports q (title/description), category, " +
				"instructor, level, minRating; sort by rating|recent|price. Provide at least one filter.",
			Schema: GenerateSchema(searchCoursesArgs{},
				RequireAnyOf("q", "category", "instructor", "level", "minRating")),
		},
		{
			Name:        ToolGetCourseByTitle,
			Description: "Fetch one course by exact (case-insensitive) title and return its full details.",
			Schema:      GenerateSchema(courseByTitleArgs{}),
		},
		{
			Name:        ToolListCoursesByInstructor,
			Description: "List all courses taught by a specific instructor.",
			Schema:      GenerateSchema(coursesByInstructorArgs{}),
		},
		{
			Name:        ToolListCoursesByCategory,
			Description: "List courses within a category.",
			Schema:      GenerateSchema(coursesByCategoryArgs{}),
		},
		{
			Name:        ToolListCourseCategories,
			Description: "List all distinct course categories.",
			Schema:      GenerateSchema(courseCategoriesArgs{}),
		},
		{
			Name: ToolSearchScholarships,
			Description: "Search scholarships by free text or filters. Supports q (title/description/requirements), " +
				"type, createdBy, value range, applicant/applied; sort by recent or value. Provide at least one filter.",
			Schema: GenerateSchema(searchScholarshipsArgs{},
				RequireAnyOf("q", "type", "createdBy", "minValue", "maxValue", "applicant"),
				RequireWith("applicant", "applied")),
		},
		{
			Name:        ToolGetScholarshipByTitle,
			Description: "Fetch one scholarship by exact (case-insensitive) title and return its full details.",
			Schema:      GenerateSchema(scholarshipByTitleArgs{}),
		},
		{
			Name:        ToolListScholarshipsByType,
			Description: "List scholarships for a given type (e.g., Merit, Need-based, Research).",
			Schema:      GenerateSchema(scholarshipsByTypeArgs{}),
		},
		{
			Name:        ToolListScholarshipsByCreator,
			Description: "List scholarships created by a specific creator.",
			Schema:      GenerateSchema(scholarshipsByCreatorArgs{}),
		},
		{
			Name:        ToolGetScholarshipApplicants,
			Description: "Get the applicants (user IDs) for a scholarship identified by title.",
			Schema:      GenerateSchema(scholarshipApplicantsArgs{}),
		},
		{
			Name: ToolSearchFAQs,
			Description: "Answer general questions about FEKRA (mission, founders, clubs, partners, SAT services) " +
				"from the FAQ knowledge base. Tolerates typos in q.",
			Schema: GenerateSchema(searchFAQsArgs{}),
		},
	}
}

// Registry is the fixed, ordered tool catalog with schemas compiled once at
// construction. It is immutable after New: adding a tool is a deployment-time
// change.
type Registry struct {
	specs []Spec
	index map[Name]int
}

// NewRegistry builds the catalog and compiles every schema. Format assertions
// are enabled so date-time arguments are checked, not just typed.
func NewRegistry() (*Registry, error) {
	specs := catalog()
	index := make(map[Name]int, len(specs))

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	for i := range specs {
		url := string(specs[i].Name) + ".schema.json"
		if err := compiler.AddResource(url, strings.NewReader(specs[i].Schema)); err != nil {
			return nil, fmt.Errorf("tools: schema for %s: %w", specs[i].Name, err)
		}
		compiled, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("tools: compile schema for %s: %w", specs[i].Name, err)
		}
		specs[i].compiled = compiled
		index[specs[i].Name] = i
	}
	return &Registry{specs: specs, index: index}, nil
}

// Specs returns the catalog in its stable declaration order.
func (r *Registry) Specs() []Spec {
	out := make([]Spec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Definitions renders the catalog for the model's function-calling request,
// in the same stable order on every turn.
func (r *Registry) Definitions() []domain.ToolDefinition {
	out := make([]domain.ToolDefinition, len(r.specs))
	for i, s := range r.specs {
		out[i] = domain.ToolDefinition{
			Name:        string(s.Name),
			Description: s.Description,
			Parameters:  json.RawMessage(s.Schema),
		}
	}
	return out
}

// Lookup resolves a raw tool name proposed by the model to a catalog Name.
func (r *Registry) Lookup(name string) (Name, bool) {
	_, ok := r.index[Name(name)]
	if !ok {
		return "", false
	}
	return Name(name), true
}
