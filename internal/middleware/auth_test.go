package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/pantry/backend/internal/apperr"
	"github.com/pageza/pantry/backend/internal/middleware"
	"github.com/pageza/pantry/backend/internal/models"
	"github.com/pageza/pantry/backend/internal/service"
)

type stubLoader map[uuid.UUID]*models.User

func (s stubLoader) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, apperr.E(apperr.ErrNotFound, "User not found")
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		id, ok := middleware.GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id, "authenticated": ok})
	})
	r.GET("/", handlers...)
	return r
}

func do(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tokens := service.NewTokenService("test-secret")
	userID := uuid.New()
	valid, err := tokens.Issue(userID)
	require.NoError(t, err)

	other, err := service.NewTokenService("other-secret").Issue(userID)
	require.NoError(t, err)

	r := newRouter(middleware.AuthMiddleware(tokens))

	t.Run("missing cookie", func(t *testing.T) {
		w := do(r, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"])
		assert.NotEmpty(t, body["error"])
	})

	t.Run("malformed token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do(r, "not-a-token").Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do(r, other).Code)
	})

	t.Run("valid token", func(t *testing.T) {
		w := do(r, valid)
		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, userID.String(), body["user_id"])
	})
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	issuedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	token, err := service.NewTokenService("test-secret", service.WithClock(func() time.Time { return issuedAt })).Issue(userID)
	require.NoError(t, err)

	later := service.NewTokenService("test-secret", service.WithClock(func() time.Time { return issuedAt.Add(25 * time.Hour) }))
	w := do(newRouter(middleware.AuthMiddleware(later)), token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	tokens := service.NewTokenService("test-secret")
	userID := uuid.New()
	valid, err := tokens.Issue(userID)
	require.NoError(t, err)

	r := newRouter(middleware.OptionalAuth(tokens))

	for _, token := range []string{"", "garbage"} {
		w := do(r, token)
		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, false, body["authenticated"])
	}

	w := do(r, valid)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, userID.String(), body["user_id"])
}

func TestRequireRole(t *testing.T) {
	tokens := service.NewTokenService("test-secret")
	admin := &models.User{ID: uuid.New(), Name: "Admin", Role: models.RoleAdmin}
	user := &models.User{ID: uuid.New(), Name: "User", Role: models.RoleUser}
	loader := stubLoader{admin.ID: admin, user.ID: user}

	r := newRouter(middleware.AuthMiddleware(tokens), middleware.RequireRole(loader, models.RoleAdmin))

	adminToken, _ := tokens.Issue(admin.ID)
	userToken, _ := tokens.Issue(user.ID)
	ghostToken, _ := tokens.Issue(uuid.New())

	assert.Equal(t, http.StatusOK, do(r, adminToken).Code)
	assert.Equal(t, http.StatusForbidden, do(r, userToken).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, ghostToken).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)
}
