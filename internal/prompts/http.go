package prompts

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chatbot-platform/chatbot-backend/internal/auth"
	"github.com/chatbot-platform/chatbot-backend/internal/projects"
)

type Handler struct {
	repo        *Repo
	projectRepo *projects.Repo
}

func Register(rg *gin.RouterGroup, repo *Repo, projectRepo *projects.Repo) {
	h := &Handler{repo: repo, projectRepo: projectRepo}

	rg.GET("/project/:public_id", h.listForProject)
	rg.POST("", h.create)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)
}

func (h *Handler) listForProject(c *gin.Context) {
	publicID := strings.TrimSpace(c.Param("public_id"))
	userID := auth.UserDBID(c)

	if _, err := h.projectRepo.FindOwned(c.Request.Context(), userID, publicID); err != nil {
		if errors.Is(err, projects.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	items, err := h.repo.ListForProject(c.Request.Context(), userID, publicID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"prompts": items})
}

type createReq struct {
	Name      string `json:"name"`
	Content   string `json:"content"`
	ProjectID string `json:"project"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{
			{"field": "body", "message": "Invalid request body"},
		}})
		return
	}

	fieldErrors := []gin.H{}
	if strings.TrimSpace(req.Name) == "" {
		fieldErrors = append(fieldErrors, gin.H{"field": "name", "message": "Prompt name is required"})
	}
	if req.Content == "" {
		fieldErrors = append(fieldErrors, gin.H{"field": "content", "message": "Prompt content is required"})
	}
	if strings.TrimSpace(req.ProjectID) == "" {
		fieldErrors = append(fieldErrors, gin.H{"field": "project", "message": "Project ID is required"})
	}
	if len(fieldErrors) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors})
		return
	}

	userID := auth.UserDBID(c)
	if _, err := h.projectRepo.FindOwned(c.Request.Context(), userID, strings.TrimSpace(req.ProjectID)); err != nil {
		if errors.Is(err, projects.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	p, err := h.repo.Create(c.Request.Context(), userID, strings.TrimSpace(req.ProjectID), strings.TrimSpace(req.Name), req.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"prompt": p})
}

type updateReq struct {
	Name    *string `json:"name"`
	Content *string `json:"content"`
}

func (h *Handler) update(c *gin.Context) {
	promptID := strings.TrimSpace(c.Param("id"))

	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{
			{"field": "body", "message": "Invalid request body"},
		}})
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{
			{"field": "name", "message": "Prompt name cannot be empty"},
		}})
		return
	}
	if req.Content != nil && *req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{
			{"field": "content", "message": "Prompt content cannot be empty"},
		}})
		return
	}

	userID := auth.UserDBID(c)
	p, err := h.repo.Update(c.Request.Context(), userID, promptID, req.Name, req.Content)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Prompt not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"prompt": p})
}

func (h *Handler) delete(c *gin.Context) {
	promptID := strings.TrimSpace(c.Param("id"))
	userID := auth.UserDBID(c)

	ok, err := h.repo.Delete(c.Request.Context(), userID, promptID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Prompt not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Prompt deleted successfully"})
}
