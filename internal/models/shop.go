package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Moderation statuses shared by shops and recipes.
const (
	ModerationPending  = "pending"
	ModerationApproved = "approved"
)

type Shop struct {
	ID          uuid.UUID `gorm:"type:varchar(36);primarykey" json:"_id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Name        string    `gorm:"size:120;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Address     string    `gorm:"size:255" json:"address"`
	Latitude    float64   `gorm:"not null;default:0" json:"latitude"`
	Longitude   float64   `gorm:"not null;default:0" json:"longitude"`
	OwnerID     uuid.UUID `gorm:"type:varchar(36);not null;index" json:"owner"`
	Status      string    `gorm:"size:16;not null;default:'pending'" json:"status"`
}

func (Shop) TableName() string {
	return "shops"
}

func (s *Shop) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
