package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/chatbot-platform/chatbot-backend/internal/chat/domain"
	"github.com/chatbot-platform/chatbot-backend/internal/llm"
	"github.com/chatbot-platform/chatbot-backend/internal/projects"
)

const defaultContextLimit = 10

// ProjectDirectory resolves a project only when the caller owns it.
type ProjectDirectory interface {
	FindOwned(ctx context.Context, userDBID, publicID string) (*projects.Project, error)
}

// ConversationStore is the durable, ordered, append-only log of turns.
type ConversationStore interface {
	Append(ctx context.Context, projectID, userID, role, content string) (*domain.Message, error)
	Recent(ctx context.Context, projectID string, limit int) ([]domain.Message, error)
	History(ctx context.Context, projectID string) ([]domain.Message, error)
}

// Exchange is the result of one completed chat turn.
type Exchange struct {
	Answer           string
	UserMessage      *domain.Message
	AssistantMessage *domain.Message
}

// Service orchestrates one chat turn: persist the user message, assemble
// bounded context, call the provider, persist the reply. It holds no
// in-process conversation state; every call re-reads the store.
type Service struct {
	projects     ProjectDirectory
	store        ConversationStore
	model        llm.Completer
	contextLimit int
}

func New(projectDir ProjectDirectory, store ConversationStore, model llm.Completer, contextLimit int) *Service {
	if contextLimit <= 0 {
		contextLimit = defaultContextLimit
	}
	return &Service{
		projects:     projectDir,
		store:        store,
		model:        model,
		contextLimit: contextLimit,
	}
}

// PostMessage handles one user message for a project.
//
// The user turn is committed before the provider is called, so a provider
// failure never loses the user's input; in that case the error propagates
// and no assistant turn is written. Calling this twice with identical
// input produces two independent turn pairs — there is no dedup key.
func (s *Service) PostMessage(ctx context.Context, userID, projectID, text string) (*Exchange, error) {
	p, err := s.projects.FindOwned(ctx, userID, projectID)
	if err != nil {
		if errors.Is(err, projects.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("resolve project: %w", err)
	}

	userMsg, err := s.store.Append(ctx, projectID, userID, domain.RoleUser, text)
	if err != nil {
		return nil, fmt.Errorf("append user turn: %w", err)
	}

	// Includes the turn appended above.
	recent, err := s.store.Recent(ctx, projectID, s.contextLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent turns: %w", err)
	}

	answer, err := s.model.Complete(ctx, p.Model, BuildContext(p.SystemPrompt, recent))
	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}

	assistantMsg, err := s.store.Append(ctx, projectID, userID, domain.RoleAssistant, answer)
	if err != nil {
		return nil, fmt.Errorf("append assistant turn: %w", err)
	}

	return &Exchange{
		Answer:           answer,
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
	}, nil
}

// History returns the project's full conversation after an ownership check.
func (s *Service) History(ctx context.Context, userID, projectID string) ([]domain.Message, error) {
	if _, err := s.projects.FindOwned(ctx, userID, projectID); err != nil {
		if errors.Is(err, projects.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("resolve project: %w", err)
	}
	return s.store.History(ctx, projectID)
}
