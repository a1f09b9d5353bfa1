package projects

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chatbot-platform/chatbot-backend/internal/auth"
)

type Handler struct {
	repo *Repo
}

func Register(rg *gin.RouterGroup, repo *Repo) {
	h := &Handler{repo: repo}

	rg.GET("", h.list)
	rg.GET("/:public_id", h.get)
	rg.POST("", h.create)
	rg.PUT("/:public_id", h.update)
	rg.DELETE("/:public_id", h.delete)
}

type createReq struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Provider     string `json:"llmProvider"`
	Model        string `json:"model"`
	SystemPrompt string `json:"systemPrompt"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{
			{"field": "name", "message": "Project name is required"},
		}})
		return
	}
	if req.Provider != "" && !SupportedProvider(req.Provider) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{
			{"field": "llmProvider", "message": "Unsupported provider"},
		}})
		return
	}

	userID := auth.UserDBID(c)
	p, err := h.repo.Create(c.Request.Context(), userID, CreateInput{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Provider:     req.Provider,
		Model:        req.Model,
		SystemPrompt: req.SystemPrompt,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"project": p})
}

func (h *Handler) list(c *gin.Context) {
	userID := auth.UserDBID(c)
	items, err := h.repo.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": items})
}

func (h *Handler) get(c *gin.Context) {
	publicID := strings.TrimSpace(c.Param("public_id"))
	userID := auth.UserDBID(c)

	p, err := h.repo.FindOwned(c.Request.Context(), userID, publicID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": p})
}

type updateReq struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	Provider     *string `json:"llmProvider"`
	Model        *string `json:"model"`
	SystemPrompt *string `json:"systemPrompt"`
}

func (h *Handler) update(c *gin.Context) {
	publicID := strings.TrimSpace(c.Param("public_id"))

	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{
			{"field": "body", "message": "Invalid request body"},
		}})
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{
			{"field": "name", "message": "Project name cannot be empty"},
		}})
		return
	}
	if req.Provider != nil && !SupportedProvider(*req.Provider) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{
			{"field": "llmProvider", "message": "Unsupported provider"},
		}})
		return
	}

	userID := auth.UserDBID(c)
	p, err := h.repo.Update(c.Request.Context(), userID, publicID, UpdateInput{
		Name:         req.Name,
		Description:  req.Description,
		Provider:     req.Provider,
		Model:        req.Model,
		SystemPrompt: req.SystemPrompt,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": p})
}

func (h *Handler) delete(c *gin.Context) {
	publicID := strings.TrimSpace(c.Param("public_id"))
	userID := auth.UserDBID(c)

	ok, err := h.repo.SoftDelete(c.Request.Context(), userID, publicID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}
