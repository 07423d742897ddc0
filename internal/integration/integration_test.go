package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/pantry/backend/config"
	"github.com/pageza/pantry/backend/internal/api"
	"github.com/pageza/pantry/backend/internal/mocks"
	"github.com/pageza/pantry/backend/internal/models"
	"github.com/pageza/pantry/backend/internal/server"
	"github.com/pageza/pantry/backend/internal/service"
	"github.com/pageza/pantry/backend/internal/testhelpers"
)

type stack struct {
	url      string
	db       *gorm.DB
	recorder *service.Recorder
}

// setup runs the full server against a PostgreSQL container
func setup(t *testing.T) *stack {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupPostgres(t)
	log := zap.NewNop()

	activity := service.NewActivityService(db)
	recorder := service.NewRecorder(activity, 64, log)
	tokens := service.NewTokenService("integration-secret-long-enough-for-hs256")

	srv := server.New(&config.Config{Environment: config.Test}, api.Deps{
		DB:         db,
		Tokens:     tokens,
		Auth:       service.NewAuthService(db, tokens, mocks.NewQuietEmailService(), recorder, log),
		Users:      service.NewUserService(db, recorder),
		Engagement: service.NewEngagementService(db),
		Activity:   activity,
		Recipes:    service.NewRecipeService(db, recorder),
		Shops:      service.NewShopService(db, recorder),
		Log:        log,
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &stack{url: ts.URL + "/api/v1", db: db, recorder: recorder}
}

// client keeps its own session cookies, like a browser
func (s *stack) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

func (s *stack) call(t *testing.T, c *http.Client, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.url+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

// rate is safe to call from goroutines other than the test's
func (s *stack) rate(c *http.Client, recipeID string, value int) error {
	body, err := json.Marshal(map[string]int{"rating": value})
	if err != nil {
		return err
	}
	resp, err := c.Post(s.url+"/recipes/"+recipeID+"/rate", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rate %d: status %d", value, resp.StatusCode)
	}
	return nil
}

func (s *stack) signIn(t *testing.T, name, email string) *http.Client {
	t.Helper()
	c := s.client(t)
	code, body := s.call(t, c, http.MethodPost, "/auth/signup", map[string]string{
		"name": name, "email": email, "password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, code, body)
	code, body = s.call(t, c, http.MethodPost, "/auth/login", map[string]string{
		"email": email, "password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, code, body)
	return c
}

func TestRecipeEngagementFlow(t *testing.T) {
	s := setup(t)

	author := s.signIn(t, "Author", "author@example.com")
	admin := s.signIn(t, "Admin", "admin@example.com")
	require.NoError(t, s.db.Model(&models.User{}).Where("email = ?", "admin@example.com").
		Update("role", models.RoleAdmin).Error)

	code, body := s.call(t, author, http.MethodPost, "/recipes", map[string]any{
		"title":        "Lentil Soup",
		"ingredients":  []string{"lentils", "onion"},
		"instructions": []string{"simmer"},
	})
	require.Equal(t, http.StatusCreated, code, body)
	recipeID := body["data"].(map[string]any)["_id"].(string)

	code, _ = s.call(t, admin, http.MethodPut, "/admin/recipes/"+recipeID+"/status",
		map[string]string{"status": models.ModerationApproved})
	require.Equal(t, http.StatusOK, code)

	// concurrent raters, each rating twice; only the last value per user counts
	const raters = 6
	clients := make([]*http.Client, raters)
	for i := range clients {
		clients[i] = s.signIn(t, fmt.Sprintf("Rater %d", i), fmt.Sprintf("rater%d@example.com", i))
	}
	var wg sync.WaitGroup
	errs := make(chan error, 2*raters)
	for i, c := range clients {
		wg.Add(1)
		go func(i int, c *http.Client) {
			defer wg.Done()
			errs <- s.rate(c, recipeID, 1)
			errs <- s.rate(c, recipeID, i%5+1)
		}(i, c)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var recipe models.Recipe
	require.NoError(t, s.db.First(&recipe, "id = ?", recipeID).Error)
	assert.Equal(t, int64(raters), recipe.RatingsCount)
	// ratings 1,2,3,4,5,1
	assert.InDelta(t, 16.0/6.0, recipe.AverageRating, 1e-9)

	code, body = s.call(t, clients[0], http.MethodGet, "/recipes/"+recipeID+"/rate", nil)
	require.Equal(t, http.StatusOK, code)
	summary := body["data"].(map[string]any)
	assert.EqualValues(t, 1, summary["userRating"])

	code, _ = s.call(t, clients[1], http.MethodPost, "/favorites", map[string]string{"recipe": recipeID})
	assert.Equal(t, http.StatusCreated, code)
	code, _ = s.call(t, clients[1], http.MethodPost, "/favorites", map[string]string{"recipe": recipeID})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.call(t, clients[2], http.MethodPost, "/recipes/"+recipeID+"/comment", map[string]string{"text": "  lovely  "})
	assert.Equal(t, http.StatusOK, code)

	s.recorder.Close()
	var logged int64
	require.NoError(t, s.db.Model(&models.ActivityLog{}).Where("entity_id = ?", recipeID).Count(&logged).Error)
	assert.Equal(t, int64(2), logged, "create and approve")

	code, _ = s.call(t, author, http.MethodDelete, "/recipes/"+recipeID, nil)
	require.Equal(t, http.StatusOK, code)
	var ratings int64
	require.NoError(t, s.db.Model(&models.Rating{}).Count(&ratings).Error)
	assert.Zero(t, ratings)
}
