package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chatbot-platform/chatbot-backend/internal/users"
)

const (
	CtxFirebaseUID = "firebase_uid"
	CtxUserDBID    = "user_db_id"
	CtxEmail       = "email"
)

// WithUser resolves the caller to a database user row. The Firebase
// middleware normally supplies the uid; without Firebase configured the
// X-User-Id header is trusted instead (local development only).
func WithUser(userRepo *users.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		fuid := c.GetString(CtxFirebaseUID)
		if fuid == "" {
			fuid = strings.TrimSpace(c.GetHeader("X-User-Id"))
		}
		if fuid == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthenticated"})
			c.Abort()
			return
		}

		uid, err := userRepo.EnsureUser(c.Request.Context(), users.UpsertUser{
			FirebaseUID: fuid,
			Email:       c.GetString(CtxEmail),
			DisplayName: c.GetHeader("X-User-Name"),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			c.Abort()
			return
		}

		c.Set(CtxFirebaseUID, fuid)
		c.Set(CtxUserDBID, uid)
		c.Next()
	}
}

func UserDBID(c *gin.Context) string {
	v := c.GetString(CtxUserDBID)
	if strings.TrimSpace(v) == "" {
		return ""
	}
	return v
}
