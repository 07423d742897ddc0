package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/pantry/backend/internal/apperr"
	"github.com/pageza/pantry/backend/internal/middleware"
	"github.com/pageza/pantry/backend/internal/service"
	"github.com/pageza/pantry/backend/internal/types"
)

// EngagementHandler serves ratings, comments and favorites
type EngagementHandler struct {
	engagement service.IEngagementService
	users      middleware.PrincipalLoader
	tokens     middleware.TokenVerifier
	log        *zap.Logger
}

func NewEngagementHandler(engagement service.IEngagementService, users middleware.PrincipalLoader, tokens middleware.TokenVerifier, log *zap.Logger) *EngagementHandler {
	return &EngagementHandler{
		engagement: engagement,
		users:      users,
		tokens:     tokens,
		log:        log,
	}
}

func (h *EngagementHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.AuthMiddleware(h.tokens)

	recipes := router.Group("/recipes/:id")
	{
		recipes.POST("/rate", requireAuth, h.Rate)
		recipes.GET("/rate", middleware.OptionalAuth(h.tokens), h.GetRating)
		recipes.POST("/comment", requireAuth, h.AddComment)
		recipes.GET("/comment", h.ListComments)
	}

	favorites := router.Group("/favorites")
	favorites.Use(requireAuth)
	{
		favorites.POST("", h.AddFavorite)
		favorites.DELETE("", h.RemoveFavorite)
		favorites.GET("", h.ListFavorites)
	}
}

func (h *EngagementHandler) Rate(c *gin.Context) {
	recipeID, err := parseID(c, "id", "recipe")
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	userID, _ := middleware.GetUserID(c)

	var req types.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest("Rating must be an integer between 1 and 5").write(c, h.log)
		return
	}

	agg, err := h.engagement.UpsertRating(c.Request.Context(), recipeID, userID, req.Rating)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"averageRating": agg.AverageRating,
		"ratingsCount":  agg.RatingsCount,
	})
}

func (h *EngagementHandler) GetRating(c *gin.Context) {
	recipeID, err := parseID(c, "id", "recipe")
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}

	var viewer *uuid.UUID
	if userID, ok := middleware.GetUserID(c); ok {
		viewer = &userID
	}

	summary, err := h.engagement.RatingSummary(c.Request.Context(), recipeID, viewer)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	Ok(http.StatusOK, summary).write(c, h.log)
}

// AddComment responds with the bare comment object
func (h *EngagementHandler) AddComment(c *gin.Context) {
	recipeID, err := parseID(c, "id", "recipe")
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	userID, _ := middleware.GetUserID(c)

	var req types.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest("Comment text is required").write(c, h.log)
		return
	}

	comment, err := h.engagement.AddComment(c.Request.Context(), recipeID, userID, req.Text)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *EngagementHandler) ListComments(c *gin.Context) {
	recipeID, err := parseID(c, "id", "recipe")
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}

	comments, err := h.engagement.ListComments(c.Request.Context(), recipeID)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	Ok(http.StatusOK, comments).write(c, h.log)
}

func (h *EngagementHandler) AddFavorite(c *gin.Context) {
	var req types.FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest("Recipe is required").write(c, h.log)
		return
	}

	userID, recipeID, err := h.favoriteTarget(c, req.User, req.Recipe)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}

	favorite, err := h.engagement.AddFavorite(c.Request.Context(), userID, recipeID, req.Notes)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	Ok(http.StatusCreated, favorite).write(c, h.log)
}

func (h *EngagementHandler) RemoveFavorite(c *gin.Context) {
	var req types.FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest("Recipe is required").write(c, h.log)
		return
	}

	userID, recipeID, err := h.favoriteTarget(c, req.User, req.Recipe)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}

	if err := h.engagement.RemoveFavorite(c.Request.Context(), userID, recipeID); err != nil {
		Fail(err).write(c, h.log)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Removed from favorites"})
}

// ListFavorites responds with a bare array of recipes
func (h *EngagementHandler) ListFavorites(c *gin.Context) {
	userID, err := h.actingFor(c, c.Query("user"))
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}

	favorites, err := h.engagement.ListFavoriteRecipes(c.Request.Context(), userID)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	c.JSON(http.StatusOK, favorites)
}

func (h *EngagementHandler) favoriteTarget(c *gin.Context, user, recipe string) (uuid.UUID, uuid.UUID, error) {
	recipeID, err := uuid.Parse(recipe)
	if err != nil {
		return uuid.Nil, uuid.Nil, apperr.E(apperr.ErrValidation, "Invalid recipe id")
	}
	userID, err := h.actingFor(c, user)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, recipeID, nil
}

// actingFor resolves the user a favorites request targets. It defaults to the
// caller; naming someone else requires the admin role.
func (h *EngagementHandler) actingFor(c *gin.Context, user string) (uuid.UUID, error) {
	callerID, _ := middleware.GetUserID(c)
	if user == "" {
		return callerID, nil
	}

	target, err := uuid.Parse(user)
	if err != nil {
		return uuid.Nil, apperr.E(apperr.ErrValidation, "Invalid user id")
	}
	if target == callerID {
		return target, nil
	}

	caller, err := principalOf(c, h.users)
	if err != nil {
		return uuid.Nil, err
	}
	if !caller.IsAdmin() {
		return uuid.Nil, apperr.E(apperr.ErrForbidden, "Cannot act on another user's favorites")
	}
	return target, nil
}
