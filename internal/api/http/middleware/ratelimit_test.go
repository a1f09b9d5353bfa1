package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatbot-platform/chatbot-backend/internal/auth"
)

func setupRateLimitRouter(t *testing.T, perMinute int) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := gin.New()
	r.POST("/chat",
		func(c *gin.Context) {
			c.Set(auth.CtxUserDBID, c.GetHeader("X-Test-User"))
			c.Next()
		},
		ChatRateLimit(client, perMinute),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "ok"})
		},
	)
	return r, mr
}

func doPost(r *gin.Engine, user string) int {
	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	req.Header.Set("X-Test-User", user)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr.Code
}

func TestChatRateLimit(t *testing.T) {
	r, _ := setupRateLimitRouter(t, 2)

	assert.Equal(t, http.StatusOK, doPost(r, "user-1"))
	assert.Equal(t, http.StatusOK, doPost(r, "user-1"))
	assert.Equal(t, http.StatusTooManyRequests, doPost(r, "user-1"))
}

func TestChatRateLimit_PerUser(t *testing.T) {
	r, _ := setupRateLimitRouter(t, 1)

	require.Equal(t, http.StatusOK, doPost(r, "user-1"))
	assert.Equal(t, http.StatusTooManyRequests, doPost(r, "user-1"))

	// Another user has an independent counter.
	assert.Equal(t, http.StatusOK, doPost(r, "user-2"))
}

func TestChatRateLimit_WindowExpiry(t *testing.T) {
	r, mr := setupRateLimitRouter(t, 1)

	require.Equal(t, http.StatusOK, doPost(r, "user-1"))
	require.Equal(t, http.StatusTooManyRequests, doPost(r, "user-1"))

	// Counter key expires with the window.
	mr.FastForward(2 * time.Minute)
	assert.Equal(t, http.StatusOK, doPost(r, "user-1"))
}

func TestChatRateLimit_DisabledWithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/chat",
		ChatRateLimit(nil, 1),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doPost(r, "user-1"))
	}
}
