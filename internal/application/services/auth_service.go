// Package services provides application-level orchestration services
package services

import (
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/observability/logging"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/security"
	"github.com/flipkraft/flipkraft-go/pkg/config"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles admin authentication and JWT operations.
type AuthService struct {
	logger *logging.ChanneledLogger
}

// NewAuthService creates a new authentication service.
func NewAuthService(logger *logging.ChanneledLogger) *AuthService {
	return &AuthService{logger: logger}
}

// AuthResult holds authentication result data
type AuthResult struct {
	Token   string `json:"token"`
	Role    string `json:"role"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// AuthenticateAdmin validates the admin password and generates a JWT.
func (a *AuthService) AuthenticateAdmin(password string) *AuthResult {
	if config.AdminPasswordHash == "" {
		a.logger.Auth().Error("Admin login attempted but no admin password configured")
		return &AuthResult{Success: false, Error: "Admin access not configured"}
	}

	authenticated := bcrypt.CompareHashAndPassword([]byte(config.AdminPasswordHash), []byte(password)) == nil

	// Fallback for plaintext passwords during transition/testing
	if !authenticated && password == config.AdminPasswordHash {
		authenticated = true
	}

	if !authenticated {
		a.logger.Auth().Warn("Admin login failed")
		return &AuthResult{Success: false, Error: "Invalid credentials"}
	}

	token, err := security.GenerateAdminToken(config.JWTSecret, config.TokenTTL)
	if err != nil {
		a.logger.Auth().Error("Token generation failed", "error", err)
		return &AuthResult{Success: false, Error: "Token generation failed"}
	}

	a.logger.Auth().Info("Admin authenticated")
	return &AuthResult{Token: token, Role: "admin", Success: true}
}

// ValidateAdminToken checks if a token belongs to an admin user.
func (a *AuthService) ValidateAdminToken(tokenString string) bool {
	if tokenString == "" {
		return false
	}

	claims, err := security.ValidateJWT(tokenString, config.JWTSecret)
	if err != nil {
		return false
	}

	return security.IsAdminClaims(claims)
}
