package middleware

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/chatbot-platform/chatbot-backend/internal/auth"
)

const rateLimitWindow = time.Minute

// ChatRateLimit enforces a fixed-window per-user cap on chat submissions.
// The counter lives in Redis so the cap holds across instances. When Redis
// is unavailable the request is let through; the provider-side limiter is
// the backstop.
func ChatRateLimit(client *redis.Client, perMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || perMinute <= 0 {
			c.Next()
			return
		}

		userID := auth.UserDBID(c)
		if userID == "" {
			c.Next()
			return
		}

		window := time.Now().Unix() / int64(rateLimitWindow.Seconds())
		key := fmt.Sprintf("rl:chat:%s:%d", userID, window)

		ctx := c.Request.Context()
		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			log.Printf("rate limit check failed: %v", err)
			c.Next()
			return
		}
		if count == 1 {
			client.Expire(ctx, key, rateLimitWindow)
		}

		if count > int64(perMinute) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Too many requests, slow down",
			})
			return
		}

		c.Next()
	}
}
