package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/pantry/backend/internal/apperr"
	"github.com/pageza/pantry/backend/internal/middleware"
	"github.com/pageza/pantry/backend/internal/models"
	"github.com/pageza/pantry/backend/internal/service"
	"github.com/pageza/pantry/backend/internal/types"
)

type RecipeHandler struct {
	recipes service.IRecipeService
	users   middleware.PrincipalLoader
	tokens  middleware.TokenVerifier
	log     *zap.Logger
}

func NewRecipeHandler(recipes service.IRecipeService, users middleware.PrincipalLoader, tokens middleware.TokenVerifier, log *zap.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipes: recipes,
		users:   users,
		tokens:  tokens,
		log:     log,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.AuthMiddleware(h.tokens)
	optionalAuth := middleware.OptionalAuth(h.tokens)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optionalAuth, h.ListRecipes)
		recipes.GET("/:id", optionalAuth, h.GetRecipe)
		recipes.POST("", requireAuth, h.CreateRecipe)
		recipes.PUT("/:id", requireAuth, h.UpdateRecipe)
		recipes.DELETE("/:id", requireAuth, h.DeleteRecipe)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	viewer, err := viewerOf(c, h.users)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}

	filters := &service.RecipeFilters{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Query:    c.Query("q"),
	}
	filters.Limit, filters.Offset = paging(c)
	if v := c.Query("author"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			badRequest("Invalid author id").write(c, h.log)
			return
		}
		filters.AuthorID = &id
	}
	if v := c.Query("shop"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			badRequest("Invalid shop id").write(c, h.log)
			return
		}
		filters.ShopID = &id
	}

	recipes, err := h.recipes.ListRecipes(c.Request.Context(), filters, viewer)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	Ok(http.StatusOK, recipes).write(c, h.log)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := parseID(c, "id", "recipe")
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	viewer, err := viewerOf(c, h.users)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}

	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id, viewer)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	Ok(http.StatusOK, recipe).write(c, h.log)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	actor, err := principalOf(c, h.users)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}

	var req types.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest("Title, ingredients and instructions are required").write(c, h.log)
		return
	}

	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), actor, &req)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	Ok(http.StatusCreated, recipe).write(c, h.log)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, err := parseID(c, "id", "recipe")
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	actor, err := principalOf(c, h.users)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}

	var req types.UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest("Invalid request body").write(c, h.log)
		return
	}

	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), actor, id, &req)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	Ok(http.StatusOK, recipe).write(c, h.log)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := parseID(c, "id", "recipe")
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	actor, err := principalOf(c, h.users)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}

	if err := h.recipes.DeleteRecipe(c.Request.Context(), actor, id); err != nil {
		Fail(err).write(c, h.log)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Recipe deleted"})
}

// principalOf loads the authenticated user, reusing the one RequireRole stored
func principalOf(c *gin.Context, users middleware.PrincipalLoader) (*models.User, error) {
	if user, ok := middleware.GetPrincipal(c); ok {
		return user, nil
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return nil, apperr.E(apperr.ErrUnauthenticated, "Not authenticated")
	}
	user, err := users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.E(apperr.ErrUnauthenticated, "Not authenticated")
		}
		return nil, err
	}
	c.Set(middleware.PrincipalKey, user)
	return user, nil
}

// viewerOf is principalOf for routes behind OptionalAuth; it returns nil for anonymous callers
func viewerOf(c *gin.Context, users middleware.PrincipalLoader) (*models.User, error) {
	if _, ok := middleware.GetUserID(c); !ok {
		return nil, nil
	}
	return principalOf(c, users)
}
