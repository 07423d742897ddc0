package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/pantry/backend/internal/database"
	"github.com/pageza/pantry/backend/internal/models"
	"github.com/pageza/pantry/backend/internal/testhelpers"
)

func TestUniqueIndexes(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user := testhelpers.CreateTestUser(t, db, "Ada", "ada@example.com", models.RoleUser)
	recipe := testhelpers.CreateTestRecipe(t, db, user, "Soup")

	dup := &models.User{Name: "Other", Email: "ada@example.com", PasswordHash: "x", Role: models.RoleUser, Status: models.StatusUnverified}
	err := db.Create(dup).Error
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))

	require.NoError(t, db.Create(&models.Favorite{UserID: user.ID, RecipeID: recipe.ID}).Error)
	err = db.Create(&models.Favorite{UserID: user.ID, RecipeID: recipe.ID}).Error
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, database.IsUniqueViolation(nil))
	assert.False(t, database.IsUniqueViolation(errors.New("boom")))
	assert.True(t, database.IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, database.IsUniqueViolation(errors.New("UNIQUE constraint failed: users.email")))
}

func TestHealthCheck(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	assert.NoError(t, database.HealthCheck(context.Background(), db))
}

func TestPostgresMigrations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	db := testhelpers.SetupPostgres(t)

	user := testhelpers.CreateTestUser(t, db, "Grace", "grace@example.com", models.RoleAdmin)
	recipe := testhelpers.CreateTestRecipe(t, db, user, "Stew")

	rating := &models.Rating{RecipeID: recipe.ID, UserID: user.ID, Rating: 6}
	assert.Error(t, db.Create(rating).Error, "check constraint should reject ratings above 5")

	require.NoError(t, db.Create(&models.Rating{RecipeID: recipe.ID, UserID: user.ID, Rating: 4}).Error)
	err := db.Create(&models.Rating{RecipeID: recipe.ID, UserID: user.ID, Rating: 3}).Error
	assert.True(t, database.IsUniqueViolation(err))

	var loaded models.Recipe
	require.NoError(t, db.First(&loaded, "id = ?", recipe.ID).Error)
	assert.Equal(t, models.StringList{"flour", "water"}, loaded.Ingredients)
}
