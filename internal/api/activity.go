package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/pantry/backend/internal/apperr"
	"github.com/pageza/pantry/backend/internal/middleware"
	"github.com/pageza/pantry/backend/internal/models"
	"github.com/pageza/pantry/backend/internal/service"
	"github.com/pageza/pantry/backend/internal/types"
)

type ActivityHandler struct {
	activity service.IActivityService
	users    middleware.PrincipalLoader
	tokens   middleware.TokenVerifier
	log      *zap.Logger
}

func NewActivityHandler(activity service.IActivityService, users middleware.PrincipalLoader, tokens middleware.TokenVerifier, log *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		activity: activity,
		users:    users,
		tokens:   tokens,
		log:      log,
	}
}

func (h *ActivityHandler) RegisterRoutes(router *gin.RouterGroup) {
	logs := router.Group("/log")
	logs.Use(middleware.AuthMiddleware(h.tokens))
	{
		logs.POST("", h.Record)
		logs.GET("", middleware.RequireRole(h.users, models.RoleAdmin), h.List)
	}
}

// Record persists one entry synchronously so validation errors reach the caller.
// Only admins may attribute an entry to someone else.
func (h *ActivityHandler) Record(c *gin.Context) {
	var req types.ActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest("Invalid request body").write(c, h.log)
		return
	}

	var userID uuid.UUID
	if req.User != "" {
		id, err := uuid.Parse(req.User)
		if err != nil {
			badRequest("Invalid user id").write(c, h.log)
			return
		}
		userID = id
	}
	if caller, _ := middleware.GetUserID(c); userID != uuid.Nil && userID != caller {
		actor, err := principalOf(c, h.users)
		if err != nil {
			Fail(err).write(c, h.log)
			return
		}
		if !actor.IsAdmin() {
			Fail(apperr.E(apperr.ErrForbidden, "Cannot record activity for another user")).write(c, h.log)
			return
		}
	}

	entry := &models.ActivityLog{
		UserID:     userID,
		UserName:   req.UserName,
		ActionType: req.ActionType,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		EntityName: req.EntityName,
		Detail:     req.Detail,
	}
	if err := h.activity.Record(c.Request.Context(), entry); err != nil {
		Fail(err).write(c, h.log)
		return
	}
	Ok(http.StatusCreated, entry).write(c, h.log)
}

// List returns entries newest first; the total count goes in X-Total-Count
func (h *ActivityHandler) List(c *gin.Context) {
	filters := &models.ActivityFilters{
		UserID:     c.Query("user"),
		EntityType: c.Query("entityType"),
		ActionType: c.Query("actionType"),
	}
	filters.Limit, filters.Offset = paging(c)

	entries, total, err := h.activity.List(c.Request.Context(), filters)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	c.Header("X-Total-Count", strconv.FormatInt(total, 10))
	Ok(http.StatusOK, entries).write(c, h.log)
}

// paging reads limit and offset query parameters, ignoring malformed values
func paging(c *gin.Context) (int, int) {
	limit, offset := 0, 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
