package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/pantry/backend/internal/middleware"
	"github.com/pageza/pantry/backend/internal/models"
	"github.com/pageza/pantry/backend/internal/service"
	"github.com/pageza/pantry/backend/internal/types"
)

type ShopHandler struct {
	shops  service.IShopService
	users  middleware.PrincipalLoader
	tokens middleware.TokenVerifier
	log    *zap.Logger
}

func NewShopHandler(shops service.IShopService, users middleware.PrincipalLoader, tokens middleware.TokenVerifier, log *zap.Logger) *ShopHandler {
	return &ShopHandler{
		shops:  shops,
		users:  users,
		tokens: tokens,
		log:    log,
	}
}

func (h *ShopHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.AuthMiddleware(h.tokens)

	shops := router.Group("/shops")
	{
		shops.GET("", h.ListShops)
		shops.GET("/nearby", h.NearbyShops)
		shops.GET("/:id", h.GetShop)
		shops.POST("", requireAuth, h.CreateShop)
		shops.PUT("/:id", requireAuth, h.UpdateShop)
		shops.DELETE("/:id", requireAuth, h.DeleteShop)
	}
}

// ListShops only shows approved shops; pending ones are reached through /admin/shops
func (h *ShopHandler) ListShops(c *gin.Context) {
	var owner *uuid.UUID
	if v := c.Query("owner"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			badRequest("Invalid owner id").write(c, h.log)
			return
		}
		owner = &id
	}

	shops, err := h.shops.ListShops(c.Request.Context(), owner, models.ModerationApproved)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	Ok(http.StatusOK, shops).write(c, h.log)
}

func (h *ShopHandler) NearbyShops(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		badRequest("lat and lng are required").write(c, h.log)
		return
	}

	radius := 0.0
	if v := c.Query("radius"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			badRequest("Invalid radius").write(c, h.log)
			return
		}
		radius = r
	}

	shops, err := h.shops.NearbyShops(c.Request.Context(), lat, lng, radius)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	Ok(http.StatusOK, shops).write(c, h.log)
}

func (h *ShopHandler) GetShop(c *gin.Context) {
	id, err := parseID(c, "id", "shop")
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}

	shop, err := h.shops.GetShop(c.Request.Context(), id)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	Ok(http.StatusOK, shop).write(c, h.log)
}

func (h *ShopHandler) CreateShop(c *gin.Context) {
	actor, err := principalOf(c, h.users)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}

	var req types.CreateShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest("Shop name and valid coordinates are required").write(c, h.log)
		return
	}

	shop, err := h.shops.CreateShop(c.Request.Context(), actor, &req)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	Ok(http.StatusCreated, shop).write(c, h.log)
}

func (h *ShopHandler) UpdateShop(c *gin.Context) {
	id, err := parseID(c, "id", "shop")
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	actor, err := principalOf(c, h.users)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}

	var req types.UpdateShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest("Invalid request body").write(c, h.log)
		return
	}

	shop, err := h.shops.UpdateShop(c.Request.Context(), actor, id, &req)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	Ok(http.StatusOK, shop).write(c, h.log)
}

func (h *ShopHandler) DeleteShop(c *gin.Context) {
	id, err := parseID(c, "id", "shop")
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	actor, err := principalOf(c, h.users)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}

	if err := h.shops.DeleteShop(c.Request.Context(), actor, id); err != nil {
		Fail(err).write(c, h.log)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Shop deleted"})
}
