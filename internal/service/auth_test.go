package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/pantry/backend/internal/apperr"
	"github.com/pageza/pantry/backend/internal/mocks"
	"github.com/pageza/pantry/backend/internal/models"
	"github.com/pageza/pantry/backend/internal/service"
	"github.com/pageza/pantry/backend/internal/testhelpers"
	"github.com/pageza/pantry/backend/internal/types"
)

type authFixture struct {
	auth     *service.AuthService
	email    *mocks.MockEmailService
	recorder *captureRecorder
}

func newAuthFixture(t *testing.T, opts ...service.TokenOption) (*authFixture, *testDB) {
	t.Helper()
	db := &testDB{DB: testhelpers.SetupTestDB(t)}
	email := mocks.NewQuietEmailService()
	recorder := &captureRecorder{}
	tokens := service.NewTokenService(testSecret, opts...)
	return &authFixture{
		auth:     service.NewAuthService(db.DB, tokens, email, recorder, zap.NewNop()),
		email:    email,
		recorder: recorder,
	}, db
}

func TestCreateUser(t *testing.T) {
	f, db := newAuthFixture(t)
	ctx := context.Background()

	user, err := f.auth.CreateUser(ctx, "  Ann  ", "ann@example.com", "secret12")
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.StatusUnverified, user.Status)
	assert.NotEqual(t, "secret12", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret12")))
	assert.Equal(t, []string{models.ActionRegister}, f.recorder.actions())
	f.email.AssertCalled(t, "SendWelcomeEmail", mock.AnythingOfType("*models.User"))

	_, err = f.auth.CreateUser(ctx, "Ann Again", "ann@example.com", "secret12")
	assert.True(t, errors.Is(err, apperr.ErrConflict))
	assert.Equal(t, int64(1), db.count(t, &models.User{}))

	tests := []struct {
		name, userName, email, password string
		want                            error
	}{
		{"empty name", "", "x@example.com", "secret12", apperr.ErrValidation},
		{"bad email", "X", "not-an-email", "secret12", apperr.ErrValidation},
		{"short password", "X", "x@example.com", "12345", apperr.ErrWeakPassword},
		{"password over bcrypt limit", "X", "x@example.com", strings.Repeat("a", service.MaxPasswordLength+1), apperr.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.CreateUser(ctx, tt.userName, tt.email, tt.password)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestCreateUserWelcomeEmailFailure(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	email := &mocks.MockEmailService{}
	email.On("SendWelcomeEmail", mock.Anything).Return(errors.New("smtp down"))
	auth := service.NewAuthService(db, service.NewTokenService(testSecret), email, nil, zap.NewNop())

	user, err := auth.CreateUser(context.Background(), "Ann", "ann@example.com", "secret12")
	require.NoError(t, err)
	assert.NotNil(t, user)
}

func TestLoginUniformFailure(t *testing.T) {
	f, db := newAuthFixture(t)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db.DB, "Ann", "ann@example.com", models.RoleUser)

	_, _, errWrong := f.auth.Login(ctx, user.Email, "wrong-password")

	// an unknown email still pays for a bcrypt comparison
	start := time.Now()
	_, _, errUnknown := f.auth.Login(ctx, "nobody@example.com", testhelpers.TestPassword)
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
	assert.Equal(t, apperr.ErrInvalidCredentials, errWrong)
	assert.Equal(t, apperr.ErrInvalidCredentials, errUnknown)
	assert.Empty(t, f.recorder.actions())

	got, token, err := f.auth.Login(ctx, user.Email, testhelpers.TestPassword)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, token)
	assert.Equal(t, []string{models.ActionLogin}, f.recorder.actions())

	principal, err := f.auth.ResolvePrincipal(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.ID)
}

func TestResolvePrincipalDeletedUser(t *testing.T) {
	f, db := newAuthFixture(t)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db.DB, "Ann", "ann@example.com", models.RoleUser)

	_, token, err := f.auth.Login(ctx, user.Email, testhelpers.TestPassword)
	require.NoError(t, err)
	require.NoError(t, db.Delete(user).Error)

	_, err = f.auth.ResolvePrincipal(ctx, token)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestPasswordReset(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	f, db := newAuthFixture(t, service.WithClock(func() time.Time { return clock }))
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db.DB, "Ann", "ann@example.com", models.RoleUser)

	var raw string
	f.email.On("SendPasswordResetEmail", mock.MatchedBy(func(u *models.User) bool { return u.ID == user.ID }), mock.AnythingOfType("string"), service.ResetTokenTTL).
		Run(func(args mock.Arguments) { raw = args.String(1) }).
		Return(nil)

	require.NoError(t, f.auth.BeginPasswordReset(ctx, user.Email))
	require.NotEmpty(t, raw)

	t.Run("unknown email is silent", func(t *testing.T) {
		assert.NoError(t, f.auth.BeginPasswordReset(ctx, "nobody@example.com"))
		f.email.AssertNumberOfCalls(t, "SendPasswordResetEmail", 1)
	})

	t.Run("weak password keeps the token", func(t *testing.T) {
		err := f.auth.CompletePasswordReset(ctx, raw, "123")
		assert.Equal(t, apperr.ErrWeakPassword, err)
	})

	t.Run("password over bcrypt limit keeps the token", func(t *testing.T) {
		err := f.auth.CompletePasswordReset(ctx, raw, strings.Repeat("a", service.MaxPasswordLength+1))
		assert.True(t, errors.Is(err, apperr.ErrValidation), "got %v", err)
	})

	t.Run("wrong token", func(t *testing.T) {
		err := f.auth.CompletePasswordReset(ctx, "deadbeef", "brand-new-pass")
		assert.Equal(t, apperr.ErrInvalidOrExpiredToken, err)
	})

	t.Run("expired token", func(t *testing.T) {
		clock = now.Add(service.ResetTokenTTL + time.Second)
		defer func() { clock = now }()
		err := f.auth.CompletePasswordReset(ctx, raw, "brand-new-pass")
		assert.Equal(t, apperr.ErrInvalidOrExpiredToken, err)
	})

	require.NoError(t, f.auth.CompletePasswordReset(ctx, raw, "brand-new-pass"))

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.Nil(t, stored.ResetToken)
	assert.Nil(t, stored.ResetTokenExpiry)

	_, err := f.auth.Authenticate(ctx, user.Email, "brand-new-pass")
	assert.NoError(t, err)
	assert.Equal(t, apperr.ErrInvalidOrExpiredToken, f.auth.CompletePasswordReset(ctx, raw, "yet-another-pass"))
}

func TestUpdateProfileAndChangePassword(t *testing.T) {
	f, db := newAuthFixture(t)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db.DB, "Ann", "ann@example.com", models.RoleUser)

	name, avatar := "Annie", "https://cdn.example.com/a.png"
	updated, err := f.auth.UpdateProfile(ctx, user.ID, &types.UpdateProfileRequest{Name: &name, Avatar: &avatar})
	require.NoError(t, err)
	assert.Equal(t, "Annie", updated.Name)
	assert.Equal(t, avatar, updated.Avatar)

	blank := "  "
	_, err = f.auth.UpdateProfile(ctx, user.ID, &types.UpdateProfileRequest{Name: &blank})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	err = f.auth.ChangePassword(ctx, user.ID, "wrong-password", "brand-new-pass")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	err = f.auth.ChangePassword(ctx, user.ID, testhelpers.TestPassword, "123")
	assert.Equal(t, apperr.ErrWeakPassword, err)
	err = f.auth.ChangePassword(ctx, user.ID, testhelpers.TestPassword, strings.Repeat("a", service.MaxPasswordLength+1))
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	require.NoError(t, f.auth.ChangePassword(ctx, user.ID, testhelpers.TestPassword, "brand-new-pass"))

	_, err = f.auth.Authenticate(ctx, user.Email, "brand-new-pass")
	assert.NoError(t, err)
}
