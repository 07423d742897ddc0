package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/pantry/backend/internal/models"
	"github.com/pageza/pantry/backend/internal/types"
)

// ITokenService issues and verifies session tokens
type ITokenService interface {
	Issue(userID uuid.UUID) (string, error)
	Verify(token string) (*types.TokenClaims, error)
}

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	CreateUser(ctx context.Context, name, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	BeginPasswordReset(ctx context.Context, email string) error
	CompletePasswordReset(ctx context.Context, token, password string) error
	ResolvePrincipal(ctx context.Context, token string) (*models.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*models.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error
}

// IUserService defines the admin operations on user accounts
type IUserService interface {
	ListUsers(ctx context.Context, limit, offset int) ([]models.User, int64, error)
	SetRole(ctx context.Context, actor *models.User, userID uuid.UUID, role string) (*models.User, error)
	SetStatus(ctx context.Context, actor *models.User, userID uuid.UUID, status string) (*models.User, error)
}

// IEngagementService defines ratings, favorites and comments
type IEngagementService interface {
	UpsertRating(ctx context.Context, recipeID, userID uuid.UUID, value int) (*types.RatingAggregate, error)
	RatingSummary(ctx context.Context, recipeID uuid.UUID, viewer *uuid.UUID) (*types.RatingSummary, error)
	AddFavorite(ctx context.Context, userID, recipeID uuid.UUID, notes string) (*models.Favorite, error)
	RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error
	ListFavoriteRecipes(ctx context.Context, userID uuid.UUID) ([]types.FavoriteRecipe, error)
	AddComment(ctx context.Context, recipeID, userID uuid.UUID, text string) (*types.CommentResponse, error)
	ListComments(ctx context.Context, recipeID uuid.UUID) ([]types.CommentResponse, error)
}

// IActivityService defines the interface for the activity log
type IActivityService interface {
	Record(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, filters *models.ActivityFilters) ([]models.ActivityLog, int64, error)
}

// ActivityRecorder accepts activity entries without blocking the caller
type ActivityRecorder interface {
	Enqueue(entry models.ActivityLog)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, actor *models.User, req *types.CreateRecipeRequest) (*models.Recipe, error)
	GetRecipe(ctx context.Context, id uuid.UUID, viewer *models.User) (*models.Recipe, error)
	ListRecipes(ctx context.Context, filters *RecipeFilters, viewer *models.User) ([]models.Recipe, error)
	UpdateRecipe(ctx context.Context, actor *models.User, id uuid.UUID, req *types.UpdateRecipeRequest) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, actor *models.User, id uuid.UUID) error
	SetRecipeStatus(ctx context.Context, actor *models.User, id uuid.UUID, status string) (*models.Recipe, error)
}

// IShopService defines the interface for shop operations
type IShopService interface {
	CreateShop(ctx context.Context, actor *models.User, req *types.CreateShopRequest) (*models.Shop, error)
	GetShop(ctx context.Context, id uuid.UUID) (*models.Shop, error)
	ListShops(ctx context.Context, owner *uuid.UUID, status string) ([]models.Shop, error)
	NearbyShops(ctx context.Context, lat, lng, radiusKm float64) ([]types.NearbyShop, error)
	UpdateShop(ctx context.Context, actor *models.User, id uuid.UUID, req *types.UpdateShopRequest) (*models.Shop, error)
	DeleteShop(ctx context.Context, actor *models.User, id uuid.UUID) error
	SetShopStatus(ctx context.Context, actor *models.User, id uuid.UUID, status string) (*models.Shop, error)
}

// IUploadService hands out presigned upload URLs
type IUploadService interface {
	Presign(ctx context.Context, userID uuid.UUID, kind, contentType string) (*types.PresignResponse, error)
}

// IEmailService defines the interface for email operations
type IEmailService interface {
	SendEmail(to, subject, body string) error
	SendPasswordResetEmail(user *models.User, token string, expiresIn time.Duration) error
	SendWelcomeEmail(user *models.User) error
}
