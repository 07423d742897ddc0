package testhelpers

import (
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/pantry/backend/internal/models"
)

// TestPassword is the plaintext password of every fixture user
const TestPassword = "password123"

// CreateTestUser inserts a user with TestPassword and the given role
func CreateTestUser(t *testing.T, db *gorm.DB, name, email, role string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       models.StatusVerified,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// CreateTestRecipe inserts an approved recipe authored by author
func CreateTestRecipe(t *testing.T, db *gorm.DB, author *models.User, title string) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		Title:        title,
		Description:  "A test recipe",
		Category:     "dinner",
		Ingredients:  models.StringList{"flour", "water"},
		Instructions: models.StringList{"mix", "bake"},
		AuthorID:     author.ID,
		Status:       models.ModerationApproved,
	}
	if err := db.Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}
	return recipe
}

// CreateTestShop inserts an approved shop at the given coordinates
func CreateTestShop(t *testing.T, db *gorm.DB, owner *models.User, name string, lat, lng float64) *models.Shop {
	t.Helper()

	shop := &models.Shop{
		ID:        uuid.New(),
		Name:      name,
		Latitude:  lat,
		Longitude: lng,
		OwnerID:   owner.ID,
		Status:    models.ModerationApproved,
	}
	if err := db.Create(shop).Error; err != nil {
		t.Fatalf("failed to create shop: %v", err)
	}
	return shop
}
