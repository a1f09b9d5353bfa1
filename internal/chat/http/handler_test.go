package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatbot-platform/chatbot-backend/internal/auth"
	"github.com/chatbot-platform/chatbot-backend/internal/chat/domain"
	"github.com/chatbot-platform/chatbot-backend/internal/chat/service"
	"github.com/chatbot-platform/chatbot-backend/internal/llm"
)

type fakeChatService struct {
	exchange  *service.Exchange
	history   []domain.Message
	err       error
	gotUser   string
	gotProj   string
	gotText   string
	postCalls int
}

func (f *fakeChatService) PostMessage(_ context.Context, userID, projectID, text string) (*service.Exchange, error) {
	f.postCalls++
	f.gotUser = userID
	f.gotProj = projectID
	f.gotText = text
	if f.err != nil {
		return nil, f.err
	}
	return f.exchange, nil
}

func (f *fakeChatService) History(_ context.Context, userID, projectID string) ([]domain.Message, error) {
	f.gotUser = userID
	f.gotProj = projectID
	if f.err != nil {
		return nil, f.err
	}
	return f.history, nil
}

func newTestRouter(svc ChatService, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	rg := r.Group("/api/chat")
	rg.Use(func(c *gin.Context) {
		c.Set(auth.CtxUserDBID, userID)
		c.Next()
	})
	NewHandler(svc).Register(rg)

	return r
}

func postChat(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestPostChat(t *testing.T) {
	now := time.Now().UTC()
	svc := &fakeChatService{exchange: &service.Exchange{
		Answer:           "Hi there!",
		UserMessage:      &domain.Message{ID: "msg-1", Role: "user", Content: "Hello", CreatedAt: now},
		AssistantMessage: &domain.Message{ID: "msg-2", Role: "assistant", Content: "Hi there!", CreatedAt: now},
	}}
	r := newTestRouter(svc, "user-1")

	rr := postChat(t, r, `{"projectId":"proj-1","message":"Hello"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Message     string `json:"message"`
		UserMessage struct {
			ID        string `json:"id"`
			Role      string `json:"role"`
			Content   string `json:"content"`
			CreatedAt string `json:"createdAt"`
		} `json:"userMessage"`
		AssistantMessage struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"assistantMessage"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.Equal(t, "Hi there!", resp.Message)
	assert.Equal(t, "msg-1", resp.UserMessage.ID)
	assert.Equal(t, "user", resp.UserMessage.Role)
	assert.Equal(t, "Hello", resp.UserMessage.Content)
	assert.NotEmpty(t, resp.UserMessage.CreatedAt)
	assert.Equal(t, "assistant", resp.AssistantMessage.Role)

	assert.Equal(t, "user-1", svc.gotUser)
	assert.Equal(t, "proj-1", svc.gotProj)
	assert.Equal(t, "Hello", svc.gotText)
}

func TestPostChat_MissingFields(t *testing.T) {
	svc := &fakeChatService{}
	r := newTestRouter(svc, "user-1")

	rr := postChat(t, r, `{}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp struct {
		Errors []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, "projectId", resp.Errors[0].Field)
	assert.Equal(t, "message", resp.Errors[1].Field)

	assert.Zero(t, svc.postCalls)
}

func TestPostChat_ProjectNotFound(t *testing.T) {
	svc := &fakeChatService{err: domain.ErrNotFound}
	r := newTestRouter(svc, "user-1")

	rr := postChat(t, r, `{"projectId":"proj-x","message":"Hello"}`)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"message":"Project not found"}`, rr.Body.String())
}

func TestPostChat_UpstreamErrorMessagePassthrough(t *testing.T) {
	svc := &fakeChatService{err: fmt.Errorf("complete: %w", &llm.UpstreamError{
		Status:  http.StatusBadRequest,
		Message: "invalid model name",
	})}
	r := newTestRouter(svc, "user-1")

	rr := postChat(t, r, `{"projectId":"proj-1","message":"Hello"}`)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"message":"invalid model name"}`, rr.Body.String())
}

func TestPostChat_NotConfigured(t *testing.T) {
	svc := &fakeChatService{err: fmt.Errorf("complete: %w", llm.ErrNotConfigured)}
	r := newTestRouter(svc, "user-1")

	rr := postChat(t, r, `{"projectId":"proj-1","message":"Hello"}`)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"message":"OpenRouter API key not configured"}`, rr.Body.String())
}

func TestPostChat_InternalError(t *testing.T) {
	svc := &fakeChatService{err: fmt.Errorf("append user turn: connection reset")}
	r := newTestRouter(svc, "user-1")

	rr := postChat(t, r, `{"projectId":"proj-1","message":"Hello"}`)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	// Internal detail never reaches the client.
	assert.JSONEq(t, `{"message":"Error generating response"}`, rr.Body.String())
}

func TestGetHistory(t *testing.T) {
	svc := &fakeChatService{history: []domain.Message{
		{ID: "msg-1", Role: "user", Content: "Hello"},
		{ID: "msg-2", Role: "assistant", Content: "Hi!"},
	}}
	r := newTestRouter(svc, "user-1")

	req, err := http.NewRequest(http.MethodGet, "/api/chat/proj-1", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Messages []struct {
			ID      string `json:"id"`
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "msg-1", resp.Messages[0].ID)
	assert.Equal(t, "proj-1", svc.gotProj)
}

func TestGetHistory_NotOwned(t *testing.T) {
	// A project owned by someone else reads as absent, never as forbidden.
	svc := &fakeChatService{err: domain.ErrNotFound}
	r := newTestRouter(svc, "user-2")

	req, err := http.NewRequest(http.MethodGet, "/api/chat/proj-1", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"message":"Project not found"}`, rr.Body.String())
}
