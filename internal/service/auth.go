package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/pantry/backend/internal/apperr"
	"github.com/pageza/pantry/backend/internal/database"
	"github.com/pageza/pantry/backend/internal/models"
	"github.com/pageza/pantry/backend/internal/types"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 72 // bcrypt input limit, in bytes
	MaxNameLength     = 100
	ResetTokenTTL     = time.Hour
	resetTokenBytes   = 32
)

// dummyHash is compared against when the email is unknown so both login
// failures cost one bcrypt comparison
var dummyHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("pantry-dummy-password"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
})

type AuthService struct {
	db       *gorm.DB
	tokens   *TokenService
	email    IEmailService
	recorder ActivityRecorder
	log      *zap.Logger
}

func NewAuthService(db *gorm.DB, tokens *TokenService, email IEmailService, recorder ActivityRecorder, log *zap.Logger) *AuthService {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &AuthService{
		db:       db,
		tokens:   tokens,
		email:    email,
		recorder: recorder,
		log:      log,
	}
}

// CreateUser registers a new account with a bcrypt-hashed password
func (s *AuthService) CreateUser(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" {
		return nil, apperr.E(apperr.ErrValidation, "Name is required")
	}
	if len(name) > MaxNameLength {
		return nil, apperr.E(apperr.ErrValidation, "Name must be at most %d characters", MaxNameLength)
	}
	if _, err := mail.ParseAddress(email); err != nil || strings.ContainsAny(email, "<> ") {
		return nil, apperr.E(apperr.ErrValidation, "A valid email is required")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	// Check if user already exists
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if count > 0 {
		return nil, apperr.E(apperr.ErrConflict, "User already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleUser,
		Status:       models.StatusUnverified,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.E(apperr.ErrConflict, "User already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.recorder.Enqueue(newActivity(user, models.ActionRegister, models.EntityUser, user.ID.String(), user.Name, "signed up"))

	if err := s.email.SendWelcomeEmail(user); err != nil {
		s.log.Warn("failed to send welcome email", zap.Error(err), zap.String("user_id", user.ID.String()))
	}

	return user, nil
}

// Authenticate returns ErrInvalidCredentials for both an unknown email and a wrong password
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", strings.TrimSpace(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.ErrInvalidCredentials
	}

	return &user, nil
}

// Login authenticates and issues a session token
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.recorder.Enqueue(newActivity(user, models.ActionLogin, models.EntityUser, user.ID.String(), user.Name, "logged in"))
	return user, token, nil
}

// BeginPasswordReset stores a hashed reset token and mails the raw one.
// Unknown emails are a silent no-op so callers cannot enumerate accounts.
func (s *AuthService) BeginPasswordReset(ctx context.Context, email string) error {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", strings.TrimSpace(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	raw, err := generateResetToken()
	if err != nil {
		return err
	}
	hashed := hashResetToken(raw)
	expiry := s.tokens.Now().Add(ResetTokenTTL)

	err = s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"reset_token":        hashed,
		"reset_token_expiry": expiry,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.email.SendPasswordResetEmail(&user, raw, ResetTokenTTL); err != nil {
		s.log.Error("failed to send password reset email", zap.Error(err), zap.String("user_id", user.ID.String()))
	}
	return nil
}

// CompletePasswordReset consumes a reset token and sets a new password
func (s *AuthService) CompletePasswordReset(ctx context.Context, token, password string) error {
	if token == "" {
		return apperr.ErrInvalidOrExpiredToken
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where("reset_token = ? AND reset_token_expiry > ?", hashResetToken(token), s.tokens.Now()).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("failed to load reset token: %w", err)
	}

	if err := validatePassword(password); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"password_hash":      string(hashedPassword),
		"reset_token":        nil,
		"reset_token_expiry": nil,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.recorder.Enqueue(newActivity(&user, models.ActionUpdate, models.EntityUser, user.ID.String(), user.Name, "password reset"))
	return nil
}

// ResolvePrincipal verifies token and loads the user it names
func (s *AuthService) ResolvePrincipal(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, claims.UserID)
}

func (s *AuthService) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Shops").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.E(apperr.ErrNotFound, "User not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || len(name) > MaxNameLength {
			return nil, apperr.E(apperr.ErrValidation, "Name must be between 1 and %d characters", MaxNameLength)
		}
		updates["name"] = name
	}
	if req.Avatar != nil {
		updates["avatar"] = strings.TrimSpace(*req.Avatar)
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.recorder.Enqueue(newActivity(user, models.ActionUpdate, models.EntityUser, user.ID.String(), user.Name, "profile updated"))
	return s.GetUserByID(ctx, userID)
}

// ChangePassword requires the current password before setting a new one
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return apperr.E(apperr.ErrValidation, "Current password is incorrect")
	}
	if err := validatePassword(next); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", string(hashedPassword)).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperr.ErrWeakPassword
	}
	if len(password) > MaxPasswordLength {
		return apperr.E(apperr.ErrValidation, "Password must be at most %d bytes", MaxPasswordLength)
	}
	return nil
}

func generateResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
