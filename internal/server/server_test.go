package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/pantry/backend/config"
	"github.com/pageza/pantry/backend/internal/api"
	"github.com/pageza/pantry/backend/internal/mocks"
	"github.com/pageza/pantry/backend/internal/server"
	"github.com/pageza/pantry/backend/internal/service"
	"github.com/pageza/pantry/backend/internal/testhelpers"
)

func newServer(t *testing.T) *server.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDB(t)
	log := zap.NewNop()
	tokens := service.NewTokenService("test-secret-that-is-long-enough-for-hs256")
	recorder := service.NopRecorder{}

	cfg := &config.Config{
		Environment:    config.Test,
		ServerHost:     "127.0.0.1",
		ServerPort:     "0",
		AllowedOrigins: []string{"http://localhost:3000"},
	}
	return server.New(cfg, api.Deps{
		DB:         db,
		Tokens:     tokens,
		Auth:       service.NewAuthService(db, tokens, mocks.NewQuietEmailService(), recorder, log),
		Users:      service.NewUserService(db, recorder),
		Engagement: service.NewEngagementService(db),
		Activity:   service.NewActivityService(db),
		Recipes:    service.NewRecipeService(db, recorder),
		Shops:      service.NewShopService(db, recorder),
		Log:        log,
	})
}

func TestNew(t *testing.T) {
	srv := newServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv := newServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestUploadsWithoutStorage(t *testing.T) {
	srv := newServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/presign", nil)
	srv.Handler().ServeHTTP(w, req)

	// the session check runs before the storage check
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStartShutdown(t *testing.T) {
	srv := newServer(t)

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
