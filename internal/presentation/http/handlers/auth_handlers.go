package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/flipkraft/flipkraft-go/internal/application/services"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
)

// AuthHandlers contains admin authentication handlers.
type AuthHandlers struct {
	authService *services.AuthService
	logger      *logging.ChanneledLogger
}

// NewAuthHandlers creates auth handlers with injected dependencies.
func NewAuthHandlers(authService *services.AuthService, logger *logging.ChanneledLogger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		logger:      logger,
	}
}

// PostLogin handles POST /api/v1/admin/login - admin authentication.
func (h *AuthHandlers) PostLogin(c *gin.Context) {
	start := time.Now()

	var loginReq struct {
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&loginReq); err != nil {
		h.logger.Auth().Error("Login request JSON binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result := h.authService.AuthenticateAdmin(loginReq.Password)
	if !result.Success {
		h.logger.Auth().Warn("Login attempt failed", "error", result.Error, "duration", time.Since(start))
		c.JSON(http.StatusUnauthorized, gin.H{"error": result.Error})
		return
	}

	c.SetCookie(
		"admin_auth", // name
		result.Token, // value
		86400,        // maxAge (24 hours in seconds)
		"/",          // path
		"",           // domain (empty for current domain)
		false,        // secure (set to true in production)
		true,         // httpOnly
	)

	h.logger.Auth().Info("Login successful", "role", result.Role, "duration", time.Since(start))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"role":    result.Role,
		"token":   result.Token,
		"message": "Login successful",
	})
}

// PostLogout handles POST /api/v1/admin/logout - clears the auth cookie.
func (h *AuthHandlers) PostLogout(c *gin.Context) {
	c.SetCookie("admin_auth", "", -1, "/", "", false, true)

	h.logger.Auth().Info("Logout completed")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logout successful",
	})
}

// GetAuthStatus handles GET /api/v1/admin/status - reports whether the
// caller holds a valid admin token.
func (h *AuthHandlers) GetAuthStatus(c *gin.Context) {
	token, source := h.extractToken(c)

	if token == "" || !h.authService.ValidateAdminToken(token) {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"role":          "admin",
		"authMethod":    source,
	})
}

// AuthMiddleware guards admin-only routes.
func (h *AuthHandlers) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := h.extractToken(c)

		if token == "" || !h.authService.ValidateAdminToken(token) {
			h.logger.Auth().Warn("Unauthorized access attempt", "path", c.Request.URL.Path)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// extractToken pulls the admin token from the Authorization header or the
// admin_auth cookie.
func (h *AuthHandlers) extractToken(c *gin.Context) (token, source string) {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer "), "bearer"
	}

	if cookie, err := c.Cookie("admin_auth"); err == nil && cookie != "" {
		return cookie, "cookie"
	}

	return "", ""
}
