package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/pantry/backend/internal/models"
)

// MockEmailService is a mock implementation of service.IEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendEmail(to, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}

func (m *MockEmailService) SendPasswordResetEmail(user *models.User, token string, expiresIn time.Duration) error {
	args := m.Called(user, token, expiresIn)
	return args.Error(0)
}

func (m *MockEmailService) SendWelcomeEmail(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

// NewQuietEmailService returns a mock that accepts welcome emails and
// leaves every other call unexpected
func NewQuietEmailService() *MockEmailService {
	m := &MockEmailService{}
	m.On("SendWelcomeEmail", mock.Anything).Return(nil).Maybe()
	return m
}
