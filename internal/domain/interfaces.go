package domain

import "context"

// ChatModel is the model-agnostic interface for one chat-completions
// exchange. Implementations may be OpenRouter, any OpenAI-compatible
// endpoint, or mocks. The model may answer with plain text or propose
// tool calls; it never executes anything itself.
type ChatModel interface {
	Complete(ctx context.Context, req ChatRequest) (*Completion, error)
}
