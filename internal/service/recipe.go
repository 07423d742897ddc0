package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/pantry/backend/internal/apperr"
	"github.com/pageza/pantry/backend/internal/models"
	"github.com/pageza/pantry/backend/internal/types"
)

// RecipeFilters narrows recipe listings
type RecipeFilters struct {
	Status   string
	AuthorID *uuid.UUID
	ShopID   *uuid.UUID
	Category string
	Query    string
	Limit    int
	Offset   int
}

// RecipeService handles recipe operations
type RecipeService struct {
	db       *gorm.DB
	recorder ActivityRecorder
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, recorder ActivityRecorder) *RecipeService {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &RecipeService{
		db:       db,
		recorder: recorder,
	}
}

// CreateRecipe stores a new recipe authored by actor, pending moderation
func (s *RecipeService) CreateRecipe(ctx context.Context, actor *models.User, req *types.CreateRecipeRequest) (*models.Recipe, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperr.E(apperr.ErrValidation, "Title is required")
	}
	ingredients := cleanList(req.Ingredients)
	instructions := cleanList(req.Instructions)
	if len(ingredients) == 0 || len(instructions) == 0 {
		return nil, apperr.E(apperr.ErrValidation, "Ingredients and instructions are required")
	}

	recipe := &models.Recipe{
		Title:        title,
		Description:  strings.TrimSpace(req.Description),
		Category:     strings.TrimSpace(req.Category),
		Image:        strings.TrimSpace(req.Image),
		Ingredients:  ingredients,
		Instructions: instructions,
		AuthorID:     actor.ID,
		Status:       models.ModerationPending,
	}

	if req.Shop != "" {
		shopID, err := uuid.Parse(req.Shop)
		if err != nil {
			return nil, apperr.E(apperr.ErrValidation, "Invalid shop id")
		}
		var shop models.Shop
		if err := s.db.WithContext(ctx).First(&shop, "id = ?", shopID).Error; err != nil {
			return nil, notFoundOr(err, "Shop not found")
		}
		if shop.OwnerID != actor.ID && !actor.IsAdmin() {
			return nil, apperr.E(apperr.ErrForbidden, "You do not own this shop")
		}
		recipe.ShopID = &shopID
	}

	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	s.recorder.Enqueue(newActivity(actor, models.ActionCreate, models.EntityRecipe, recipe.ID.String(), recipe.Title, ""))
	return recipe, nil
}

// GetRecipe hides unapproved recipes from everyone but their author and admins
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID, viewer *models.User) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "Recipe not found")
	}
	if recipe.Status != models.ModerationApproved && !canModify(viewer, recipe.AuthorID) {
		return nil, apperr.E(apperr.ErrNotFound, "Recipe not found")
	}
	return &recipe, nil
}

// ListRecipes lists recipes newest first. Non-admins see approved recipes plus their own.
func (s *RecipeService) ListRecipes(ctx context.Context, filters *RecipeFilters, viewer *models.User) ([]models.Recipe, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	switch {
	case viewer != nil && viewer.IsAdmin():
	case viewer != nil:
		query = query.Where("status = ? OR author_id = ?", models.ModerationApproved, viewer.ID)
	default:
		query = query.Where("status = ?", models.ModerationApproved)
	}

	limit := 50
	if filters != nil {
		if filters.Status != "" {
			query = query.Where("status = ?", filters.Status)
		}
		if filters.AuthorID != nil {
			query = query.Where("author_id = ?", *filters.AuthorID)
		}
		if filters.ShopID != nil {
			query = query.Where("shop_id = ?", *filters.ShopID)
		}
		if filters.Category != "" {
			query = query.Where("category = ?", filters.Category)
		}
		if q := strings.TrimSpace(filters.Query); q != "" {
			like := "%" + strings.ToLower(q) + "%"
			query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
		}
		if filters.Limit > 0 {
			limit = min(filters.Limit, 200)
		}
		if filters.Offset > 0 {
			query = query.Offset(filters.Offset)
		}
	}

	var recipes []models.Recipe
	if err := query.Order("created_at DESC").Limit(limit).Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

// UpdateRecipe applies the present fields; only the author or an admin may edit
func (s *RecipeService) UpdateRecipe(ctx context.Context, actor *models.User, id uuid.UUID, req *types.UpdateRecipeRequest) (*models.Recipe, error) {
	recipe, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(actor, recipe.AuthorID) {
		return nil, apperr.E(apperr.ErrForbidden, "Not allowed to modify this recipe")
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperr.E(apperr.ErrValidation, "Title is required")
		}
		updates["title"] = title
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		updates["category"] = strings.TrimSpace(*req.Category)
	}
	if req.Image != nil {
		updates["image"] = strings.TrimSpace(*req.Image)
	}
	if req.Ingredients != nil {
		list := cleanList(req.Ingredients)
		if len(list) == 0 {
			return nil, apperr.E(apperr.ErrValidation, "Ingredients are required")
		}
		updates["ingredients"] = models.StringList(list)
	}
	if req.Instructions != nil {
		list := cleanList(req.Instructions)
		if len(list) == 0 {
			return nil, apperr.E(apperr.ErrValidation, "Instructions are required")
		}
		updates["instructions"] = models.StringList(list)
	}
	if len(updates) == 0 {
		return recipe, nil
	}

	if err := s.db.WithContext(ctx).Model(recipe).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}

	s.recorder.Enqueue(newActivity(actor, models.ActionUpdate, models.EntityRecipe, recipe.ID.String(), recipe.Title, ""))
	return s.load(ctx, id)
}

// DeleteRecipe removes the recipe and its engagement records
func (s *RecipeService) DeleteRecipe(ctx context.Context, actor *models.User, id uuid.UUID) error {
	recipe, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(actor, recipe.AuthorID) {
		return apperr.E(apperr.ErrForbidden, "Not allowed to delete this recipe")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Rating{}, &models.Favorite{}, &models.Comment{}} {
			if err := tx.Where("recipe_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Recipe{}, "id = ?", id).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	s.recorder.Enqueue(newActivity(actor, models.ActionDelete, models.EntityRecipe, recipe.ID.String(), recipe.Title, ""))
	return nil
}

// SetRecipeStatus moves a recipe between pending and approved
func (s *RecipeService) SetRecipeStatus(ctx context.Context, actor *models.User, id uuid.UUID, status string) (*models.Recipe, error) {
	action, err := moderationAction(status)
	if err != nil {
		return nil, err
	}
	recipe, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(recipe).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update recipe status: %w", err)
	}
	recipe.Status = status

	s.recorder.Enqueue(newActivity(actor, action, models.EntityRecipe, recipe.ID.String(), recipe.Title, "status set to "+status))
	return recipe, nil
}

func (s *RecipeService) load(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "Recipe not found")
	}
	return &recipe, nil
}

// canModify reports whether actor is the owner or an admin
func canModify(actor *models.User, owner uuid.UUID) bool {
	if actor == nil {
		return false
	}
	return actor.ID == owner || actor.IsAdmin()
}

// moderationAction maps a moderation status onto the activity action it emits
func moderationAction(status string) (string, error) {
	switch status {
	case models.ModerationApproved:
		return models.ActionApprove, nil
	case models.ModerationPending:
		return models.ActionPending, nil
	}
	return "", apperr.E(apperr.ErrValidation, "Status must be %q or %q", models.ModerationPending, models.ModerationApproved)
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
