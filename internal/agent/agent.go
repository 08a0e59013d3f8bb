// Package agent implements the two-phase conversation loop behind the FEKRA
// website assistant: ask the model what to do, run the tool it proposes, then
// hand the result back for the final phrasing.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fekra/internal/domain"
	"fekra/internal/tools"
)

const systemPrompt = `
You are FEKRA's website assistant.
- For general questions about FEKRA itself (mission, founders, clubs, partners, SAT services, how to apply), call search_faqs with the user's question as q.
- For dynamic data (events, programs, scholarships, courses), call the most relevant TOOL with precise arguments.
- For courses:
  • Use search_courses for filters (q, category, instructor, level, minRating, sort).
  • Use get_course_by_title when the user names an exact course title.
  • Use list_courses_by_instructor or list_courses_by_category when that's what they ask.
  • Use list_course_categories to list available categories.
- For scholarships:
  • Use search_scholarships for filters (q, type, createdBy, min/max value, applicant + applied flag, sort).
  • Use get_scholarship_by_title when an exact title is provided.
  • Use list_scholarships_by_type or list_scholarships_by_creator when that's what they ask.
  • Use get_scholarship_applicants to fetch applicant IDs for a scholarship.
- Dates in answers should use YYYY-MM-DD.
- Never invent fields/links. Only display what tools return.
`

// Answer fallbacks when the model returns empty content.
const (
	fallbackNoTool     = "No tool available for this request."
	fallbackGreeting   = "How can I help?"
	fallbackToolDone   = "Done."
	fallbackBadArgs    = "Sorry, I couldn't process that request. Please try rephrasing it."
	defaultTemperature = 0.2
)

// marshalResult serializes tool results for the second model call; tests may
// replace it to force errors.
var marshalResult = json.Marshal

// ToolRunner validates and executes one tool call. Satisfied by
// *tools.Executor.
type ToolRunner interface {
	Execute(ctx context.Context, name tools.Name, args json.RawMessage) (any, error)
}

// Reply is the assistant's final output for one user turn. Data carries the
// raw tool result when a tool ran, so clients can render structured views
// alongside the prose answer.
type Reply struct {
	Answer string `json:"answer"`
	Data   any    `json:"data,omitempty"`
}

// Agent drives one user turn end to end. It holds no per-turn state; a single
// Agent serves concurrent requests.
type Agent struct {
	model       domain.ChatModel
	registry    *tools.Registry
	runner      ToolRunner
	logger      *slog.Logger
	temperature float64
}

// Option customizes an Agent.
type Option func(*Agent)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Agent) { a.logger = l }
}

// WithTemperature overrides the sampling temperature for both model calls.
func WithTemperature(t float64) Option {
	return func(a *Agent) { a.temperature = t }
}

// New wires a ready Agent. model, registry and runner must not be nil.
func New(model domain.ChatModel, registry *tools.Registry, runner ToolRunner, opts ...Option) *Agent {
	a := &Agent{
		model:       model,
		registry:    registry,
		runner:      runner,
		logger:      slog.Default(),
		temperature: defaultTemperature,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Respond handles one user message. Phase one sends the tool catalog and asks
// the model what to do; if it proposes a tool call, the call is validated and
// executed server-side, and phase two gives the result back to the model to
// phrase the final answer. Only the first proposed call is honored; extras
// are logged and dropped.
func (a *Agent) Respond(ctx context.Context, message string) (*Reply, error) {
	base := []domain.Message{
		{Role: domain.RoleSystem, Content: systemPrompt},
		{Role: domain.RoleUser, Content: message},
	}

	first, err := a.model.Complete(ctx, domain.ChatRequest{
		Messages:    base,
		Tools:       a.registry.Definitions(),
		Temperature: a.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("agent: first completion: %w", err)
	}

	proposal := first.Message
	if len(proposal.ToolCalls) == 0 {
		answer := strings.TrimSpace(proposal.Content)
		if answer == "" {
			answer = fallbackGreeting
		}
		return &Reply{Answer: answer}, nil
	}

	call := proposal.ToolCalls[0]
	if extra := len(proposal.ToolCalls) - 1; extra > 0 {
		a.logger.Warn("ignoring extra tool calls", "tool", call.Name, "extra", extra)
	}

	name, ok := a.registry.Lookup(call.Name)
	if !ok {
		a.logger.Warn("model proposed unknown tool", "tool", call.Name)
		return &Reply{Answer: fallbackNoTool}, nil
	}

	result, err := a.runner.Execute(ctx, name, call.Arguments)
	if err != nil {
		var verr *tools.ValidationError
		if errors.As(err, &verr) {
			a.logger.Warn("tool arguments rejected",
				"tool", verr.Tool, "field", verr.Field, "cause", verr.Cause)
			return &Reply{Answer: fallbackBadArgs}, nil
		}
		return nil, fmt.Errorf("agent: tool %s: %w", name, err)
	}

	resultJSON, err := marshalResult(result)
	if err != nil {
		return nil, fmt.Errorf("agent: marshal tool result: %w", err)
	}

	second, err := a.model.Complete(ctx, domain.ChatRequest{
		Messages: append(base,
			proposal,
			domain.Message{
				Role:       domain.RoleTool,
				ToolCallID: call.ID,
				Name:       call.Name,
				Content:    string(resultJSON),
			},
		),
		Temperature: a.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("agent: second completion: %w", err)
	}

	answer := strings.TrimSpace(second.Message.Content)
	if answer == "" {
		answer = fallbackToolDone
	}
	return &Reply{Answer: answer, Data: result}, nil
}
