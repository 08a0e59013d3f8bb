package domain

import (
	"encoding/json"
	"time"
)

// =============================================================================
// Core Configuration
// =============================================================================

type Config struct {
	Gateway GatewayConfig `json:"gateway"`
	Model   ModelConfig   `json:"model"`
	Store   StoreConfig   `json:"store"`
	Infra   InfraConfig   `json:"infra"`
	Retry   RetryConfig   `json:"retry"`
}

type GatewayConfig struct {
	Port      int    `json:"port"`
	AuthToken string `json:"authToken,omitempty"` // When set, requires Authorization: Bearer <authToken>
}

// ModelConfig selects the remote chat-completion model. The API key is never
// stored in the config file; it is read from the environment variable named
// by APIKeyEnv (default OPENROUTER_API_KEY).
type ModelConfig struct {
	Name      string `json:"name"`    // e.g. "deepseek/deepseek-chat"
	BaseURL   string `json:"baseUrl"` // OpenAI-compatible chat completions endpoint
	APIKeyEnv string `json:"apiKeyEnv,omitempty"`
}

type StoreConfig struct {
	// URL is a libSQL database URL: "file:fekra.db" or "libsql://...".
	URL string `json:"url"`
}

type InfraConfig struct {
	LogFormat string `json:"logFormat"` // "json" | "text"
	LogLevel  string `json:"logLevel"`
}

// RetryConfig controls retry behaviour for the model transport client only.
// The tool layer never retries (see agent package).
type RetryConfig struct {
	MaxRetries     int `json:"maxRetries"`     // Maximum retry attempts (0 = no retries)
	InitialBackoff int `json:"initialBackoff"` // Initial backoff in milliseconds
	MaxBackoff     int `json:"maxBackoff"`     // Maximum backoff in milliseconds
	Multiplier     int `json:"multiplier"`     // Backoff multiplier (e.g. 2 for exponential doubling)
}

// =============================================================================
// Chat Protocol
// =============================================================================

type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

// Message is one turn in a chat-completions exchange. Assistant messages may
// carry ToolCalls; tool messages carry the ToolCallID that correlates the
// result with the assistant's proposal.
type Message struct {
	Role       MessageRole `json:"role"`
	Content    string      `json:"content,omitempty"`
	Name       string      `json:"name,omitempty"`
	ToolCalls  []ToolCall  `json:"toolCalls,omitempty"`
	ToolCallID string      `json:"toolCallId,omitempty"`
}

// ToolCall is a structured tool invocation proposed by the model. Arguments
// is raw JSON; it is validated against the tool's schema before execution.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolDefinition is one catalog entry exposed to the model: name, usage
// policy description, and a JSON Schema for the arguments.
type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ChatRequest is one model invocation: message history plus the tool catalog.
type ChatRequest struct {
	Messages    []Message
	Tools       []ToolDefinition
	Temperature float64
}

// Completion is the model's reply to a ChatRequest.
type Completion struct {
	Message   Message
	Model     string
	CreatedAt time.Time
}
