package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/pantry/backend/internal/models"
)

func TestSetupTestDB(t *testing.T) {
	db := SetupTestDB(t)
	require.NotNil(t, db)

	user := CreateTestUser(t, db, "Test User", "test@example.com", models.RoleUser)
	assert.NotZero(t, user.ID)

	recipe := CreateTestRecipe(t, db, user, "Bread")
	assert.NotZero(t, recipe.ID)

	var loaded models.Recipe
	require.NoError(t, db.First(&loaded, "id = ?", recipe.ID).Error)
	assert.Equal(t, models.StringList{"flour", "water"}, loaded.Ingredients)
	assert.Equal(t, user.ID, loaded.AuthorID)
}

func TestSetupTestDBIsolated(t *testing.T) {
	first := SetupTestDB(t)
	second := SetupTestDB(t)

	CreateTestUser(t, first, "One", "one@example.com", models.RoleUser)

	var count int64
	require.NoError(t, second.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}
