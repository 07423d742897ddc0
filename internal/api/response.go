package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/pantry/backend/internal/apperr"
)

// Result is either a success carrying data or a failure carrying an error kind.
type Result struct {
	Status  int
	Data    any
	Message string
	Err     error
}

// Ok builds a successful result
func Ok(status int, data any) Result {
	return Result{Status: status, Data: data}
}

// Fail builds a failed result; the status is derived from the error kind
func Fail(err error) Result {
	return Result{Status: statusFor(err), Err: err}
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (r Result) write(c *gin.Context, log *zap.Logger) {
	if r.Err == nil {
		c.JSON(r.Status, envelope{Success: true, Data: r.Data, Message: r.Message})
		return
	}

	msg := apperr.Message(r.Err)
	if r.Status == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(r.Err),
		)
		msg = "Internal server error"
	}
	c.JSON(r.Status, envelope{Success: false, Error: msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrInvalidCredentials), errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrInvalidOrExpiredToken), errors.Is(err, apperr.ErrWeakPassword):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(msg string) Result {
	return Fail(apperr.E(apperr.ErrValidation, "%s", msg))
}

// parseID reads a uuid path parameter
func parseID(c *gin.Context, param, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return uuid.Nil, apperr.E(apperr.ErrValidation, "Invalid %s id", what)
	}
	return id, nil
}
