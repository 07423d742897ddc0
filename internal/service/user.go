package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/pantry/backend/internal/apperr"
	"github.com/pageza/pantry/backend/internal/models"
)

// UserService backs the admin user-management endpoints
type UserService struct {
	db       *gorm.DB
	recorder ActivityRecorder
}

func NewUserService(db *gorm.DB, recorder ActivityRecorder) *UserService {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &UserService{db: db, recorder: recorder}
}

// ListUsers returns users newest first with the total count
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

func (s *UserService) SetRole(ctx context.Context, actor *models.User, userID uuid.UUID, role string) (*models.User, error) {
	if role != models.RoleAdmin && role != models.RoleUser {
		return nil, apperr.E(apperr.ErrValidation, "Role must be %q or %q", models.RoleAdmin, models.RoleUser)
	}
	if actor.ID == userID && role != models.RoleAdmin {
		return nil, apperr.E(apperr.ErrValidation, "Admins cannot demote themselves")
	}
	return s.update(ctx, actor, userID, "role", role)
}

func (s *UserService) SetStatus(ctx context.Context, actor *models.User, userID uuid.UUID, status string) (*models.User, error) {
	if status != models.StatusVerified && status != models.StatusUnverified {
		return nil, apperr.E(apperr.ErrValidation, "Status must be %q or %q", models.StatusUnverified, models.StatusVerified)
	}
	return s.update(ctx, actor, userID, "status", status)
}

func (s *UserService) update(ctx context.Context, actor *models.User, userID uuid.UUID, column, value string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	if err := s.db.WithContext(ctx).Model(&user).Update(column, value).Error; err != nil {
		return nil, fmt.Errorf("failed to update user %s: %w", column, err)
	}

	action := models.ActionUpdate
	if column == "status" {
		action = models.ActionPending
		if value == models.StatusVerified {
			action = models.ActionApprove
		}
	}
	s.recorder.Enqueue(newActivity(actor, action, models.EntityUser, user.ID.String(), user.Name, column+" set to "+value))
	return &user, nil
}
