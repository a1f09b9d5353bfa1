package service

import (
	"github.com/chatbot-platform/chatbot-backend/internal/chat/domain"
	"github.com/chatbot-platform/chatbot-backend/internal/llm"
)

// BuildContext assembles the ordered context for one generation: exactly
// one leading system entry carrying the project's system prompt, then the
// supplied prior turns in their given order. It is a pure function; the
// turn cap is owned by the orchestrator.
func BuildContext(systemPrompt string, turns []domain.Message) []llm.Message {
	out := make([]llm.Message, 0, len(turns)+1)
	out = append(out, llm.Message{Role: "system", Content: systemPrompt})
	for _, t := range turns {
		out = append(out, llm.Message{Role: t.Role, Content: t.Content})
	}
	return out
}
