package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/pantry/backend/internal/database"
	"github.com/pageza/pantry/backend/internal/middleware"
	"github.com/pageza/pantry/backend/internal/service"
)

// Version is reported by the health endpoint
const Version = "v1.0.0"

// Deps collects everything the HTTP layer needs
type Deps struct {
	DB         *gorm.DB
	Tokens     middleware.TokenVerifier
	Auth       service.IAuthService
	Users      service.IUserService
	Engagement service.IEngagementService
	Activity   service.IActivityService
	Recipes    service.IRecipeService
	Shops      service.IShopService
	// Uploads is nil when object storage is not configured
	Uploads service.IUploadService

	// Limiters are nil when Redis is unavailable
	LoginLimiter *middleware.RateLimiter
	ResetLimiter *middleware.RateLimiter

	SecureCookies bool
	Log           *zap.Logger
}

// HealthCheck reports whether the API and its database are reachable
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := database.HealthCheck(ctx, db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database is unreachable",
				"version": Version,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Pantry API is running",
			"version": Version,
		})
	}
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, d Deps) {
	router.GET("/health", HealthCheck(d.DB))

	v1 := router.Group("/api/v1")
	v1.GET("/health", HealthCheck(d.DB))

	NewAuthHandler(d.Auth, d.Tokens, d.LoginLimiter, d.ResetLimiter, d.SecureCookies, d.Log).RegisterRoutes(v1)
	NewRecipeHandler(d.Recipes, d.Auth, d.Tokens, d.Log).RegisterRoutes(v1)
	NewEngagementHandler(d.Engagement, d.Auth, d.Tokens, d.Log).RegisterRoutes(v1)
	NewActivityHandler(d.Activity, d.Auth, d.Tokens, d.Log).RegisterRoutes(v1)
	NewShopHandler(d.Shops, d.Auth, d.Tokens, d.Log).RegisterRoutes(v1)
	NewAdminHandler(d.Users, d.Recipes, d.Shops, d.Auth, d.Tokens, d.Log).RegisterRoutes(v1)
	NewUploadHandler(d.Uploads, d.Tokens, d.Log).RegisterRoutes(v1)
}
