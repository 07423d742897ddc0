package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/pantry/backend/internal/apperr"
	"github.com/pageza/pantry/backend/internal/models"
	"github.com/pageza/pantry/backend/internal/types"
)

// Cookie names and context keys
const (
	TokenCookie    = "token"
	LoggedInCookie = "isLoggedIn"
	UserIDKey      = "user_id"
	PrincipalKey   = "principal"
)

// TokenVerifier is an interface for validating session tokens
type TokenVerifier interface {
	Verify(token string) (*types.TokenClaims, error)
}

// PrincipalLoader loads the full user for an authenticated id
type PrincipalLoader interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// AuthMiddleware rejects requests without a valid session cookie
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(TokenCookie)
		if err != nil || token == "" {
			abort(c, http.StatusUnauthorized, "Not authenticated")
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			abort(c, http.StatusUnauthorized, apperr.Message(err))
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}

// OptionalAuth sets the user id when a valid cookie is present and never aborts
func OptionalAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(TokenCookie); err == nil && token != "" {
			if claims, err := verifier.Verify(token); err == nil {
				c.Set(UserIDKey, claims.UserID)
			}
		}
		c.Next()
	}
}

// RequireRole loads the principal and rejects it unless it holds one of roles.
// It must run after AuthMiddleware.
func RequireRole(loader PrincipalLoader, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "Not authenticated")
			return
		}

		user, err := loader.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				abort(c, http.StatusUnauthorized, "Not authenticated")
				return
			}
			abort(c, http.StatusInternalServerError, "Failed to verify user role")
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Set(PrincipalKey, user)
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "Admin access required")
	}
}

// GetUserID returns the authenticated user id stored by AuthMiddleware or OptionalAuth
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// GetPrincipal returns the user stored by RequireRole
func GetPrincipal(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(PrincipalKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}
