package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Verification statuses.
const (
	StatusUnverified = "unverified"
	StatusVerified   = "verified"
)

// User is the credential record. Password and reset token never leave the server.
type User struct {
	ID               uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"_id"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	Name             string     `gorm:"size:100;not null" json:"name"`
	Email            string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash     string     `gorm:"not null" json:"-"`
	Role             string     `gorm:"size:16;not null;default:'user'" json:"role"`
	Status           string     `gorm:"size:16;not null;default:'unverified'" json:"status"`
	Avatar           string     `gorm:"size:512" json:"avatar,omitempty"`
	Shops            []Shop     `gorm:"foreignKey:OwnerID" json:"shops,omitempty"`
	ResetToken       *string    `gorm:"size:64;index" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns an id when the caller did not.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
