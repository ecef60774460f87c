package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iksnae/chat-dashboard/internal"
)

// AdminAuth protects the API with a shared key sent as X-Admin-Key or as a
// bearer token. An empty key disables the check.
func AdminAuth(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}

		apiKey := c.GetHeader("X-Admin-Key")
		if apiKey == "" {
			auth := c.GetHeader("Authorization")
			if len(auth) > 7 && strings.HasPrefix(auth, "Bearer ") {
				apiKey = auth[7:]
			}
		}

		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing admin API key",
				"hint":  "Add X-Admin-Key header or Authorization: Bearer <key>",
			})
			return
		}

		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid admin API key",
			})
			return
		}

		c.Next()
	}
}

// requestLogger logs each request through the leveled logger
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		msg := "%s %s -> %d (%s)"
		args := []interface{}{c.Request.Method, c.Request.URL.Path, status, time.Since(start).Round(time.Millisecond)}
		switch {
		case status >= http.StatusInternalServerError:
			internal.LogError(msg, args...)
		case status >= http.StatusBadRequest:
			internal.LogWarn(msg, args...)
		default:
			internal.LogDebug(msg, args...)
		}
	}
}
