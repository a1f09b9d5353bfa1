package llm

import "context"

// Message is one role/content pair in the context sent to the provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer is the minimal chat-completion abstraction the orchestrator
// depends on. It hides the concrete provider to preserve dependency
// direction.
type Completer interface {
	Complete(ctx context.Context, model string, messages []Message) (string, error)
}
