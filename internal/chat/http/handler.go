package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chatbot-platform/chatbot-backend/internal/auth"
	"github.com/chatbot-platform/chatbot-backend/internal/chat/domain"
	"github.com/chatbot-platform/chatbot-backend/internal/chat/service"
	"github.com/chatbot-platform/chatbot-backend/internal/llm"
)

// ChatService is what the handlers need from the orchestrator.
type ChatService interface {
	PostMessage(ctx context.Context, userID, projectID, text string) (*service.Exchange, error)
	History(ctx context.Context, userID, projectID string) ([]domain.Message, error)
}

type Handler struct {
	svc ChatService
}

func NewHandler(svc ChatService) *Handler {
	return &Handler{svc: svc}
}

// Register attaches chat routes to the given router group. Extra
// middleware (the rate limiter) applies to submissions only.
func (h *Handler) Register(rg *gin.RouterGroup, postMiddleware ...gin.HandlerFunc) {
	handlers := append([]gin.HandlerFunc{}, postMiddleware...)
	handlers = append(handlers, h.post)
	rg.POST("", handlers...)
	rg.GET("/:public_id", h.history)
}

type postReq struct {
	ProjectID string `json:"projectId"`
	Message   string `json:"message"`
}

func (h *Handler) post(c *gin.Context) {
	var req postReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{
			{"field": "body", "message": "Invalid request body"},
		}})
		return
	}

	fieldErrors := []gin.H{}
	if strings.TrimSpace(req.ProjectID) == "" {
		fieldErrors = append(fieldErrors, gin.H{"field": "projectId", "message": "Project ID is required"})
	}
	if strings.TrimSpace(req.Message) == "" {
		fieldErrors = append(fieldErrors, gin.H{"field": "message", "message": "Message is required"})
	}
	if len(fieldErrors) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors})
		return
	}

	userID := auth.UserDBID(c)
	exchange, err := h.svc.PostMessage(c.Request.Context(), userID, strings.TrimSpace(req.ProjectID), req.Message)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          exchange.Answer,
		"userMessage":      exchange.UserMessage,
		"assistantMessage": exchange.AssistantMessage,
	})
}

func (h *Handler) history(c *gin.Context) {
	publicID := strings.TrimSpace(c.Param("public_id"))
	userID := auth.UserDBID(c)

	messages, err := h.svc.History(c.Request.Context(), userID, publicID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// writeError maps orchestrator failures onto the wire contract. Internal
// detail is logged, never returned.
func (h *Handler) writeError(c *gin.Context, err error) {
	var upstream *llm.UpstreamError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
	case errors.Is(err, domain.ErrEmptyContent):
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{
			{"field": "message", "message": "Message is required"},
		}})
	case errors.Is(err, llm.ErrNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"message": "OpenRouter API key not configured"})
	case errors.As(err, &upstream):
		msg := upstream.Message
		if msg == "" {
			msg = "Error generating response"
		}
		log.Printf("chat: provider error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msg})
	default:
		log.Printf("chat: internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error generating response"})
	}
}
