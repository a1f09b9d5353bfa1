package files

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chatbot-platform/chatbot-backend/internal/auth"
	"github.com/chatbot-platform/chatbot-backend/internal/projects"
)

// 50MB upload cap, matching what clients were built against.
const maxUploadBytes = 50 << 20

type Handler struct {
	repo        *Repo
	projectRepo *projects.Repo
	client      *OpenAIClient
}

func Register(rg *gin.RouterGroup, repo *Repo, projectRepo *projects.Repo, client *OpenAIClient) {
	h := &Handler{repo: repo, projectRepo: projectRepo, client: client}

	rg.POST("/upload/:public_id", h.upload)
	rg.GET("/:public_id", h.list)
	rg.DELETE("/:public_id/:file_id", h.delete)
}

func (h *Handler) findOwnedProject(c *gin.Context) (string, bool) {
	publicID := strings.TrimSpace(c.Param("public_id"))
	userID := auth.UserDBID(c)

	if _, err := h.projectRepo.FindOwned(c.Request.Context(), userID, publicID); err != nil {
		if errors.Is(err, projects.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
			return "", false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return "", false
	}
	return publicID, true
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
		return
	}

	publicID, ok := h.findOwnedProject(c)
	if !ok {
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	defer src.Close()

	providerFileID, err := h.client.Upload(c.Request.Context(), fileHeader.Filename, src)
	if err != nil {
		if errors.Is(err, ErrNoAPIKey) {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "OpenAI API key not configured"})
			return
		}
		log.Printf("files: upload failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error uploading file"})
		return
	}

	userID := auth.UserDBID(c)
	f, err := h.repo.Add(c.Request.Context(), userID, publicID, providerFileID, fileHeader.Filename)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"file": f})
}

func (h *Handler) list(c *gin.Context) {
	publicID, ok := h.findOwnedProject(c)
	if !ok {
		return
	}

	items, err := h.repo.ListForProject(c.Request.Context(), publicID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": items})
}

func (h *Handler) delete(c *gin.Context) {
	fileID := strings.TrimSpace(c.Param("file_id"))

	publicID, ok := h.findOwnedProject(c)
	if !ok {
		return
	}

	if _, err := h.repo.FindByProviderID(c.Request.Context(), publicID, fileID); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "File not found in project"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	// Best effort: the local record goes away even when the upstream
	// deletion fails, so a re-upload is always possible.
	if err := h.client.Delete(c.Request.Context(), fileID); err != nil {
		log.Printf("files: upstream delete failed: %v", err)
	}

	removed, err := h.repo.Remove(c.Request.Context(), publicID, fileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"message": "File not found in project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}
