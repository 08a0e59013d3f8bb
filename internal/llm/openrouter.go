// Package llm talks to the hosted language model behind the assistant. The
// only implementation is OpenRouter's Chat Completions API, which fronts the
// DeepSeek model the assistant runs on.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fekra/internal/domain"
)

// OpenRouterModel calls the OpenRouter Chat Completions API with
// function-calling enabled.
type OpenRouterModel struct {
	apiKey      string
	model       string
	client      *http.Client
	baseURL     string
	referer     string
	title       string
	marshalFunc func(v interface{}) ([]byte, error) // for testing
}

// Option customizes an OpenRouterModel.
type Option func(*OpenRouterModel)

// WithBaseURL overrides the completions endpoint, mainly for tests.
func WithBaseURL(url string) Option {
	return func(m *OpenRouterModel) { m.baseURL = url }
}

// WithHTTPClient overrides the HTTP client, e.g. to set timeouts.
func WithHTTPClient(c *http.Client) Option {
	return func(m *OpenRouterModel) { m.client = c }
}

// WithAttribution sets the optional HTTP-Referer and X-Title headers
// OpenRouter uses for app rankings.
func WithAttribution(referer, title string) Option {
	return func(m *OpenRouterModel) {
		m.referer = referer
		m.title = title
	}
}

// NewOpenRouterModel returns an OpenRouter-backed ChatModel.
func NewOpenRouterModel(apiKey, model string, opts ...Option) *OpenRouterModel {
	m := &OpenRouterModel{
		apiKey:      apiKey,
		model:       model,
		client:      &http.Client{Timeout: 60 * time.Second},
		baseURL:     "https://openrouter.ai/api/v1/chat/completions",
		marshalFunc: json.Marshal,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type wireRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Tools       []wireTool    `json:"tools,omitempty"`
	ToolChoice  string        `json:"tool_choice,omitempty"`
	Temperature float64       `json:"temperature"`
}

type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	Name       string         `json:"name,omitempty"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type wireTool struct {
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type wireToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type wireResponse struct {
	Model   string `json:"model"`
	Created int64  `json:"created"`
	Choices []struct {
		Message wireMessage `json:"message"`
	} `json:"choices"`
}

// Complete implements domain.ChatModel. Tool definitions are forwarded with
// tool_choice "auto", so the model decides per turn whether to call one.
func (m *OpenRouterModel) Complete(ctx context.Context, req domain.ChatRequest) (*domain.Completion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body := wireRequest{
		Model:       m.model,
		Messages:    encodeMessages(req.Messages),
		Temperature: req.Temperature,
	}
	if len(req.Tools) > 0 {
		body.Tools = encodeTools(req.Tools)
		body.ToolChoice = "auto"
	}

	raw, err := m.marshalFunc(body)
	if err != nil {
		return nil, fmt.Errorf("openrouter marshal: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("openrouter request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if m.referer != "" {
		httpReq.Header.Set("HTTP-Referer", m.referer)
	}
	if m.title != "" {
		httpReq.Header.Set("X-Title", m.title)
	}

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openrouter do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openrouter api: %s", resp.Status)
	}

	var out wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("openrouter decode: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("openrouter: no choices in response")
	}

	return &domain.Completion{
		Message:   decodeMessage(out.Choices[0].Message),
		Model:     out.Model,
		CreatedAt: time.Unix(out.Created, 0),
	}, nil
}

func encodeMessages(msgs []domain.Message) []wireMessage {
	out := make([]wireMessage, len(msgs))
	for i, msg := range msgs {
		wm := wireMessage{
			Role:       string(msg.Role),
			Content:    msg.Content,
			Name:       msg.Name,
			ToolCallID: msg.ToolCallID,
		}
		for _, call := range msg.ToolCalls {
			var wc wireToolCall
			wc.ID = call.ID
			wc.Type = "function"
			wc.Function.Name = call.Name
			wc.Function.Arguments = string(call.Arguments)
			wm.ToolCalls = append(wm.ToolCalls, wc)
		}
		out[i] = wm
	}
	return out
}

func encodeTools(tools []domain.ToolDefinition) []wireTool {
	out := make([]wireTool, len(tools))
	for i, t := range tools {
		out[i] = wireTool{
			Type: "function",
			Function: wireFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return out
}

func decodeMessage(wm wireMessage) domain.Message {
	msg := domain.Message{
		Role:       domain.MessageRole(wm.Role),
		Content:    wm.Content,
		Name:       wm.Name,
		ToolCallID: wm.ToolCallID,
	}
	for _, wc := range wm.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, domain.ToolCall{
			ID:        wc.ID,
			Name:      wc.Function.Name,
			Arguments: json.RawMessage(wc.Function.Arguments),
		})
	}
	return msg
}

var _ domain.ChatModel = (*OpenRouterModel)(nil)
