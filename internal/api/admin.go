package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/pantry/backend/internal/middleware"
	"github.com/pageza/pantry/backend/internal/models"
	"github.com/pageza/pantry/backend/internal/service"
	"github.com/pageza/pantry/backend/internal/types"
)

// AdminHandler serves moderation and account management; every route requires the admin role
type AdminHandler struct {
	users   service.IUserService
	recipes service.IRecipeService
	shops   service.IShopService
	loader  middleware.PrincipalLoader
	tokens  middleware.TokenVerifier
	log     *zap.Logger
}

func NewAdminHandler(users service.IUserService, recipes service.IRecipeService, shops service.IShopService, loader middleware.PrincipalLoader, tokens middleware.TokenVerifier, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		users:   users,
		recipes: recipes,
		shops:   shops,
		loader:  loader,
		tokens:  tokens,
		log:     log,
	}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin")
	admin.Use(middleware.AuthMiddleware(h.tokens), middleware.RequireRole(h.loader, models.RoleAdmin))
	{
		admin.GET("/users", h.ListUsers)
		admin.PUT("/users/:id/role", h.SetUserRole)
		admin.PUT("/users/:id/status", h.SetUserStatus)

		admin.GET("/shops", h.ListShops)
		admin.PUT("/shops/:id/status", h.SetShopStatus)
		admin.DELETE("/shops/:id", h.DeleteShop)

		admin.GET("/recipes", h.ListRecipes)
		admin.PUT("/recipes/:id/status", h.SetRecipeStatus)
		admin.DELETE("/recipes/:id", h.DeleteRecipe)
	}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, offset := paging(c)
	users, total, err := h.users.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	c.Header("X-Total-Count", strconv.FormatInt(total, 10))
	Ok(http.StatusOK, users).write(c, h.log)
}

func (h *AdminHandler) SetUserRole(c *gin.Context) {
	id, err := parseID(c, "id", "user")
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	var req types.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest("Role must be admin or user").write(c, h.log)
		return
	}

	actor, _ := middleware.GetPrincipal(c)
	user, err := h.users.SetRole(c.Request.Context(), actor, id, req.Role)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	Ok(http.StatusOK, user).write(c, h.log)
}

func (h *AdminHandler) SetUserStatus(c *gin.Context) {
	id, err := parseID(c, "id", "user")
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	var req types.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest("Status is required").write(c, h.log)
		return
	}

	actor, _ := middleware.GetPrincipal(c)
	user, err := h.users.SetStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	Ok(http.StatusOK, user).write(c, h.log)
}

// ListShops defaults to the pending moderation queue
func (h *AdminHandler) ListShops(c *gin.Context) {
	status := c.DefaultQuery("status", models.ModerationPending)
	if status == "all" {
		status = ""
	}
	shops, err := h.shops.ListShops(c.Request.Context(), nil, status)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	Ok(http.StatusOK, shops).write(c, h.log)
}

func (h *AdminHandler) SetShopStatus(c *gin.Context) {
	id, err := parseID(c, "id", "shop")
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	var req types.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest("Status is required").write(c, h.log)
		return
	}

	actor, _ := middleware.GetPrincipal(c)
	shop, err := h.shops.SetShopStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	Ok(http.StatusOK, shop).write(c, h.log)
}

// ListRecipes defaults to the pending moderation queue
func (h *AdminHandler) ListRecipes(c *gin.Context) {
	status := c.DefaultQuery("status", models.ModerationPending)
	if status == "all" {
		status = ""
	}
	filters := &service.RecipeFilters{Status: status}
	filters.Limit, filters.Offset = paging(c)

	actor, _ := middleware.GetPrincipal(c)
	recipes, err := h.recipes.ListRecipes(c.Request.Context(), filters, actor)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	Ok(http.StatusOK, recipes).write(c, h.log)
}

func (h *AdminHandler) SetRecipeStatus(c *gin.Context) {
	id, err := parseID(c, "id", "recipe")
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	var req types.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest("Status is required").write(c, h.log)
		return
	}

	actor, _ := middleware.GetPrincipal(c)
	recipe, err := h.recipes.SetRecipeStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	Ok(http.StatusOK, recipe).write(c, h.log)
}

func (h *AdminHandler) DeleteShop(c *gin.Context) {
	id, err := parseID(c, "id", "shop")
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	actor, _ := middleware.GetPrincipal(c)
	if err := h.shops.DeleteShop(c.Request.Context(), actor, id); err != nil {
		Fail(err).write(c, h.log)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Shop deleted"})
}

func (h *AdminHandler) DeleteRecipe(c *gin.Context) {
	id, err := parseID(c, "id", "recipe")
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	actor, _ := middleware.GetPrincipal(c)
	if err := h.recipes.DeleteRecipe(c.Request.Context(), actor, id); err != nil {
		Fail(err).write(c, h.log)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Recipe deleted"})
}
