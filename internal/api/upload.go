package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/pantry/backend/internal/middleware"
	"github.com/pageza/pantry/backend/internal/service"
	"github.com/pageza/pantry/backend/internal/types"
)

type UploadHandler struct {
	uploads service.IUploadService
	tokens  middleware.TokenVerifier
	log     *zap.Logger
}

// NewUploadHandler accepts a nil service when object storage is not configured
func NewUploadHandler(uploads service.IUploadService, tokens middleware.TokenVerifier, log *zap.Logger) *UploadHandler {
	return &UploadHandler{
		uploads: uploads,
		tokens:  tokens,
		log:     log,
	}
}

func (h *UploadHandler) RegisterRoutes(router *gin.RouterGroup) {
	uploads := router.Group("/uploads")
	uploads.Use(middleware.AuthMiddleware(h.tokens))
	{
		uploads.POST("/presign", h.Presign)
	}
}

func (h *UploadHandler) Presign(c *gin.Context) {
	if h.uploads == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Uploads are not configured"})
		return
	}

	var req types.PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest("kind and contentType are required").write(c, h.log)
		return
	}

	userID, _ := middleware.GetUserID(c)
	resp, err := h.uploads.Presign(c.Request.Context(), userID, req.Kind, req.ContentType)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	Ok(http.StatusOK, resp).write(c, h.log)
}
