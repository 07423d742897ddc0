package api_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/pantry/backend/internal/models"
	"github.com/pageza/pantry/backend/internal/testhelpers"
)

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	_, userCookies := s.user(t, "Ann", "ann@example.com")
	_, adminCookies := s.admin(t)

	for _, path := range []string{"/api/v1/admin/users", "/api/v1/admin/shops", "/api/v1/log"} {
		w := s.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)

		w = s.do(http.MethodGet, path, nil, userCookies...)
		assert.Equal(t, http.StatusForbidden, w.Code, path)

		w = s.do(http.MethodGet, path, nil, adminCookies...)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestActivityLog(t *testing.T) {
	s := newTestServer(t)
	user, cookies := s.user(t, "Ann", "ann@example.com")
	_, adminCookies := s.admin(t)

	valid := map[string]string{
		"user":       user.ID.String(),
		"userName":   user.Name,
		"actionType": models.ActionCreate,
		"entityType": models.EntityRecipe,
		"entityId":   "r-1",
		"entityName": "Bread",
	}
	w := s.do(http.MethodPost, "/api/v1/log", valid, cookies...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	tests := []struct {
		name   string
		mutate func(map[string]string)
	}{
		{"missing user", func(b map[string]string) { delete(b, "user") }},
		{"missing entity name", func(b map[string]string) { b["entityName"] = "" }},
		{"unknown action", func(b map[string]string) { b["actionType"] = "explode" }},
		{"unknown entity", func(b map[string]string) { b["entityType"] = "planet" }},
		{"malformed user", func(b map[string]string) { b["user"] = "not-a-uuid" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := map[string]string{}
			for k, v := range valid {
				body[k] = v
			}
			tt.mutate(body)

			w := s.do(http.MethodPost, "/api/v1/log", body, cookies...)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	w = s.do(http.MethodGet, "/api/v1/log?entityType=recipe", nil, adminCookies...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Total-Count"))
	entries := decode(t, w)["data"].([]any)
	require.Len(t, entries, 1)
	assert.Equal(t, "Bread", entries[0].(map[string]any)["entityName"])

	other, _ := s.user(t, "Bob", "bob@example.com")
	forged := map[string]string{}
	for k, v := range valid {
		forged[k] = v
	}
	forged["user"] = other.ID.String()
	forged["userName"] = other.Name

	w = s.do(http.MethodPost, "/api/v1/log", forged, cookies...)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/v1/log", forged, adminCookies...)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/log?user="+other.ID.String(), nil, adminCookies...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Total-Count"))
}

func TestRecipeModeration(t *testing.T) {
	s := newTestServer(t)
	_, authorCookies := s.user(t, "Author", "author@example.com")
	_, otherCookies := s.user(t, "Other", "other@example.com")
	_, adminCookies := s.admin(t)

	w := s.do(http.MethodPost, "/api/v1/recipes", map[string]any{
		"title":        "Soup",
		"ingredients":  []string{"water", "salt"},
		"instructions": []string{"boil"},
	}, authorCookies...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	recipe := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, models.ModerationPending, recipe["status"])
	path := "/api/v1/recipes/" + recipe["_id"].(string)

	// pending recipes are hidden from everyone but the author and admins
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, nil, otherCookies...).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, path, nil, authorCookies...).Code)

	w = s.do(http.MethodPut, path, map[string]string{"title": "Hijacked"}, otherCookies...)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/v1/admin/recipes", nil, adminCookies...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"].([]any), 1)

	w = s.do(http.MethodPut, "/api/v1/admin/recipes/"+recipe["_id"].(string)+"/status",
		map[string]string{"status": models.ModerationApproved}, adminCookies...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, path, nil).Code)

	w = s.do(http.MethodDelete, path, nil, authorCookies...)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, nil).Code)
}

func TestShops(t *testing.T) {
	s := newTestServer(t)
	owner, cookies := s.user(t, "Owner", "owner@example.com")
	_, adminCookies := s.admin(t)

	testhelpers.CreateTestShop(t, s.db, owner, "Downtown", 40.7128, -74.0060)
	testhelpers.CreateTestShop(t, s.db, owner, "Brooklyn", 40.6782, -73.9442)
	testhelpers.CreateTestShop(t, s.db, owner, "Boston", 42.3601, -71.0589)

	w := s.do(http.MethodGet, "/api/v1/shops/nearby?lat=40.7128&lng=-74.0060&radius=20", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	nearby := decode(t, w)["data"].([]any)
	require.Len(t, nearby, 2)
	assert.Equal(t, "Downtown", nearby[0].(map[string]any)["name"])
	assert.Equal(t, "Brooklyn", nearby[1].(map[string]any)["name"])

	w = s.do(http.MethodGet, "/api/v1/shops/nearby?lat=abc&lng=1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/shops", map[string]any{
		"name":      "Queens",
		"latitude":  40.7282,
		"longitude": -73.7949,
	}, cookies...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	shopID := decode(t, w)["data"].(map[string]any)["_id"].(string)

	w = s.do(http.MethodGet, "/api/v1/shops", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"].([]any), 3)

	w = s.do(http.MethodPut, "/api/v1/admin/shops/"+shopID+"/status", map[string]string{"status": "bogus"}, adminCookies...)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/api/v1/admin/shops/"+shopID+"/status", map[string]string{"status": models.ModerationApproved}, adminCookies...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/shops", nil)
	assert.Len(t, decode(t, w)["data"].([]any), 4)

	w = s.do(http.MethodDelete, "/api/v1/admin/shops/"+shopID, nil, cookies...)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(http.MethodDelete, "/api/v1/admin/shops/"+shopID, nil, adminCookies...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/shops/"+shopID, nil).Code)
}

func TestAdminSetRole(t *testing.T) {
	s := newTestServer(t)
	user, _ := s.user(t, "Ann", "ann@example.com")
	admin, adminCookies := s.admin(t)

	w := s.do(http.MethodPut, "/api/v1/admin/users/"+user.ID.String()+"/role", map[string]string{"role": "superuser"}, adminCookies...)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/api/v1/admin/users/"+user.ID.String()+"/role", map[string]string{"role": models.RoleAdmin}, adminCookies...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.RoleAdmin, decode(t, w)["data"].(map[string]any)["role"])

	w = s.do(http.MethodPut, "/api/v1/admin/users/"+admin.ID.String()+"/role", map[string]string{"role": models.RoleUser}, adminCookies...)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPresignUpload(t *testing.T) {
	s := newTestServer(t)
	user, cookies := s.user(t, "Ann", "ann@example.com")

	s.uploads.On("PresignPut", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "avatars/"+user.ID.String()+"/") && strings.HasSuffix(key, ".png")
	}), "image/png", mock.Anything).Return("https://bucket.example.com/signed", nil).Once()
	s.uploads.On("PublicURL", mock.Anything).Return("https://cdn.example.com/avatar.png").Once()

	w := s.do(http.MethodPost, "/api/v1/uploads/presign", map[string]string{
		"kind":        "avatar",
		"contentType": "image/png",
	}, cookies...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "https://bucket.example.com/signed", data["url"])
	assert.Equal(t, "https://cdn.example.com/avatar.png", data["publicUrl"])
	s.uploads.AssertExpectations(t)

	w = s.do(http.MethodPost, "/api/v1/uploads/presign", map[string]string{
		"kind":        "avatar",
		"contentType": "application/pdf",
	}, cookies...)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
