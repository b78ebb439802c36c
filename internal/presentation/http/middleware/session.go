package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const sessionContextKey = "flipkraftSessionID"

// SessionMiddleware extracts the visitor session ID from the
// X-FlipKraft-Session-ID header. EventSource and WebSocket clients
// cannot set custom headers, so the session_id query parameter is
// accepted as a fallback.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("X-FlipKraft-Session-ID")
		if sessionID == "" {
			sessionID = c.Query("session_id")
		}
		if sessionID != "" {
			c.Set(sessionContextKey, sessionID)
		}
		c.Next()
	}
}

// GetSessionID returns the session ID extracted by SessionMiddleware.
func GetSessionID(c *gin.Context) (string, bool) {
	sessionID := c.GetString(sessionContextKey)
	return sessionID, sessionID != ""
}

// RequireSession aborts with 400 when no session ID accompanies the request.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetSessionID(c); !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Missing X-FlipKraft-Session-ID header"})
			return
		}
		c.Next()
	}
}
