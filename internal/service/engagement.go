package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/pantry/backend/internal/apperr"
	"github.com/pageza/pantry/backend/internal/database"
	"github.com/pageza/pantry/backend/internal/models"
	"github.com/pageza/pantry/backend/internal/types"
)

const (
	MinRating = 1
	MaxRating = 5
)

// EngagementService owns ratings, favorites and comments
type EngagementService struct {
	db *gorm.DB
}

func NewEngagementService(db *gorm.DB) *EngagementService {
	return &EngagementService{db: db}
}

// UpsertRating replaces the user's rating for the recipe and rewrites the
// recipe's aggregate. Both steps share one transaction, holding the recipe
// row lock so concurrent raters recompute in turn.
func (s *EngagementService) UpsertRating(ctx context.Context, recipeID, userID uuid.UUID, value int) (*types.RatingAggregate, error) {
	if value < MinRating || value > MaxRating {
		return nil, apperr.E(apperr.ErrValidation, "Rating must be between %d and %d", MinRating, MaxRating)
	}

	var agg types.RatingAggregate
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").First(&recipe, "id = ?", recipeID).Error
		if err != nil {
			return notFoundOr(err, "Recipe not found")
		}

		rating := models.Rating{RecipeID: recipeID, UserID: userID, Rating: value}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "recipe_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "updated_at"}),
		}).Create(&rating).Error
		if err != nil {
			return fmt.Errorf("failed to upsert rating: %w", err)
		}

		err = tx.Model(&models.Rating{}).
			Select("COALESCE(AVG(rating), 0) AS average_rating, COUNT(*) AS ratings_count").
			Where("recipe_id = ?", recipeID).
			Scan(&agg).Error
		if err != nil {
			return fmt.Errorf("failed to compute rating aggregate: %w", err)
		}

		err = tx.Model(&models.Recipe{}).Where("id = ?", recipeID).UpdateColumns(map[string]interface{}{
			"average_rating": agg.AverageRating,
			"ratings_count":  agg.RatingsCount,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to store rating aggregate: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

// RatingSummary reads the cached aggregate and, when viewer is set, the viewer's own rating
func (s *EngagementService) RatingSummary(ctx context.Context, recipeID uuid.UUID, viewer *uuid.UUID) (*types.RatingSummary, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Select("id", "average_rating", "ratings_count").First(&recipe, "id = ?", recipeID).Error; err != nil {
		return nil, notFoundOr(err, "Recipe not found")
	}

	summary := &types.RatingSummary{
		AverageRating: recipe.AverageRating,
		RatingsCount:  recipe.RatingsCount,
	}

	if viewer != nil {
		var rating models.Rating
		err := s.db.WithContext(ctx).Where("recipe_id = ? AND user_id = ?", recipeID, *viewer).First(&rating).Error
		switch {
		case err == nil:
			summary.UserRating = &rating.Rating
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("failed to load user rating: %w", err)
		}
	}
	return summary, nil
}

// AddFavorite rejects a second favorite of the same recipe with ErrConflict
func (s *EngagementService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID, notes string) (*models.Favorite, error) {
	db := s.db.WithContext(ctx)
	if err := recipeExists(db, recipeID); err != nil {
		return nil, err
	}

	var count int64
	if err := db.Model(&models.Favorite{}).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check favorite: %w", err)
	}
	if count > 0 {
		return nil, apperr.E(apperr.ErrConflict, "Recipe already in favorites")
	}

	favorite := &models.Favorite{
		UserID:   userID,
		RecipeID: recipeID,
		Notes:    strings.TrimSpace(notes),
	}
	if err := db.Create(favorite).Error; err != nil {
		// the unique index catches a concurrent insert that passed the check above
		if database.IsUniqueViolation(err) {
			return nil, apperr.E(apperr.ErrConflict, "Recipe already in favorites")
		}
		return nil, fmt.Errorf("failed to add favorite: %w", err)
	}
	return favorite, nil
}

func (s *EngagementService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&models.Favorite{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove favorite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.E(apperr.ErrNotFound, "Favorite not found")
	}
	return nil
}

// ListFavoriteRecipes returns the user's favorites, most recently added first
func (s *EngagementService) ListFavoriteRecipes(ctx context.Context, userID uuid.UUID) ([]types.FavoriteRecipe, error) {
	db := s.db.WithContext(ctx)

	var favorites []models.Favorite
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&favorites).Error; err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	if len(favorites) == 0 {
		return []types.FavoriteRecipe{}, nil
	}

	recipeIDs := make([]uuid.UUID, 0, len(favorites))
	for _, f := range favorites {
		recipeIDs = append(recipeIDs, f.RecipeID)
	}
	var recipes []models.Recipe
	if err := db.Where("id IN ?", recipeIDs).Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to load favorite recipes: %w", err)
	}
	byID := make(map[uuid.UUID]models.Recipe, len(recipes))
	authorIDs := make([]uuid.UUID, 0, len(recipes))
	for _, r := range recipes {
		byID[r.ID] = r
		authorIDs = append(authorIDs, r.AuthorID)
	}

	authors, err := loadUsers(db, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]types.FavoriteRecipe, 0, len(favorites))
	for _, f := range favorites {
		recipe, ok := byID[f.RecipeID]
		if !ok {
			continue
		}
		out = append(out, types.FavoriteRecipe{
			Recipe:        recipe,
			Notes:         f.Notes,
			FavoritedAt:   f.CreatedAt,
			AuthorDetails: types.NewAuthorDetails(authors[recipe.AuthorID]),
		})
	}
	return out, nil
}

// AddComment trims text and returns the comment with its author populated
func (s *EngagementService) AddComment(ctx context.Context, recipeID, userID uuid.UUID, text string) (*types.CommentResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.E(apperr.ErrValidation, "Comment text is required")
	}
	if utf8.RuneCountInString(text) > models.CommentMaxLength {
		return nil, apperr.E(apperr.ErrValidation, "Comment must be at most %d characters", models.CommentMaxLength)
	}

	db := s.db.WithContext(ctx)
	if err := recipeExists(db, recipeID); err != nil {
		return nil, err
	}

	var author models.User
	if err := db.First(&author, "id = ?", userID).Error; err != nil {
		return nil, notFoundOr(err, "User not found")
	}

	comment := &models.Comment{RecipeID: recipeID, UserID: userID, Text: text}
	if err := db.Omit(clause.Associations).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	comment.User = &author

	resp := newCommentResponse(comment)
	return &resp, nil
}

// ListComments returns a recipe's comments newest first
func (s *EngagementService) ListComments(ctx context.Context, recipeID uuid.UUID) ([]types.CommentResponse, error) {
	db := s.db.WithContext(ctx)
	if err := recipeExists(db, recipeID); err != nil {
		return nil, err
	}

	var comments []models.Comment
	if err := db.Preload("User").Where("recipe_id = ?", recipeID).Order("created_at DESC").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	out := make([]types.CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, newCommentResponse(&comments[i]))
	}
	return out, nil
}

func newCommentResponse(c *models.Comment) types.CommentResponse {
	return types.CommentResponse{
		ID:        c.ID,
		Recipe:    c.RecipeID,
		Text:      c.Text,
		User:      types.NewAuthorDetails(c.User),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func recipeExists(db *gorm.DB, recipeID uuid.UUID) error {
	var count int64
	if err := db.Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to load recipe: %w", err)
	}
	if count == 0 {
		return apperr.E(apperr.ErrNotFound, "Recipe not found")
	}
	return nil
}

func loadUsers(db *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	out := make(map[uuid.UUID]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

// notFoundOr maps gorm.ErrRecordNotFound to apperr.ErrNotFound and wraps anything else
func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.E(apperr.ErrNotFound, "%s", msg)
	}
	return fmt.Errorf("query failed: %w", err)
}
