package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"fekra/internal/store"
)

// Collection names in the document store.
const (
	colEvents       = "events"
	colPrograms     = "programs"
	colCourses      = "courses"
	colScholarships = "scholarships"
	colFAQs         = "faqs"
)

// Executor runs validated tool calls against the document store. Every tool
// is read-only; Execute never mutates anything.
type Executor struct {
	registry *Registry
	store    store.Store
	logger   *slog.Logger
}

// NewExecutor wires the catalog to its store. The registry validates, the
// executor translates and fetches.
func NewExecutor(registry *Registry, st store.Store, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{registry: registry, store: st, logger: logger}
}

// Execute validates args against name's schema and then dispatches to the
// tool's executor. Validation always happens first: arguments that fail the
// schema never reach the store. The returned value is the tool result exactly
// as it will be serialized for the model and echoed to the client.
func (e *Executor) Execute(ctx context.Context, name Name, args json.RawMessage) (any, error) {
	if err := e.registry.Validate(name, args); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		args = []byte("{}")
	}

	switch name {
	case ToolGetUpcomingEvents:
		return decodeAndRun(ctx, e, args, e.upcomingEvents)
	case ToolSearchPrograms:
		return decodeAndRun(ctx, e, args, e.searchPrograms)
	case ToolSearchCourses:
		return decodeAndRun(ctx, e, args, e.searchCourses)
	case ToolGetCourseByTitle:
		return decodeAndRun(ctx, e, args, e.courseByTitle)
	case ToolListCoursesByInstructor:
		return decodeAndRun(ctx, e, args, e.coursesByInstructor)
	case ToolListCoursesByCategory:
		return decodeAndRun(ctx, e, args, e.coursesByCategory)
	case ToolListCourseCategories:
		return decodeAndRun(ctx, e, args, e.courseCategories)
	case ToolSearchScholarships:
		return decodeAndRun(ctx, e, args, e.searchScholarships)
	case ToolGetScholarshipByTitle:
		return decodeAndRun(ctx, e, args, e.scholarshipByTitle)
	case ToolListScholarshipsByType:
		return decodeAndRun(ctx, e, args, e.scholarshipsByType)
	case ToolListScholarshipsByCreator:
		return decodeAndRun(ctx, e, args, e.scholarshipsByCreator)
	case ToolGetScholarshipApplicants:
		return decodeAndRun(ctx, e, args, e.scholarshipApplicants)
	case ToolSearchFAQs:
		return decodeAndRun(ctx, e, args, e.searchFAQs)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
}

// decodeAndRun unmarshals the already-validated arguments into the executor's
// typed argument struct and invokes it. Models routinely write integral
// floats where the schema says integer ("limit": 20.0), and JSON Schema
// accepts those, so a failed decode is retried once with the numbers
// re-encoded in canonical form before giving up.
func decodeAndRun[A any](ctx context.Context, e *Executor, args json.RawMessage, run func(context.Context, A) (any, error)) (any, error) {
	var a A
	if err := json.Unmarshal(args, &a); err != nil {
		renormalized, rerr := renumber(args)
		if rerr != nil {
			return nil, fmt.Errorf("tools: decode validated arguments: %w", err)
		}
		if rerr := json.Unmarshal(renormalized, &a); rerr != nil {
			return nil, fmt.Errorf("tools: decode validated arguments: %w", err)
		}
	}
	return run(ctx, a)
}

// renumber round-trips arguments through generic JSON. Go re-encodes an
// integral float64 without the fraction, so "20.0" and "2e1" come back as
// plain "20" and decode cleanly into int fields.
func renumber(args json.RawMessage) (json.RawMessage, error) {
	var generic map[string]any
	if err := json.Unmarshal(args, &generic); err != nil {
		return nil, err
	}
	return json.Marshal(generic)
}

// capLimit applies the tool's default result cap when the model did not ask
// for one. The schema already bounds explicit limits to 1..50.
func capLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}
