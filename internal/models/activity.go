package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Activity action kinds.
const (
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionApprove  = "approve"
	ActionPending  = "pending"
	ActionLogin    = "login"
	ActionRegister = "register"
)

// Activity entity types.
const (
	EntityUser   = "user"
	EntityShop   = "shop"
	EntityRecipe = "recipe"
)

// ActivityLog is append-only; there is no update or delete path.
type ActivityLog struct {
	ID         uuid.UUID `gorm:"type:varchar(36);primarykey" json:"_id"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
	UserID     uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user"`
	UserName   string    `gorm:"size:100;not null" json:"userName"`
	ActionType string    `gorm:"size:16;not null" json:"actionType"`
	EntityType string    `gorm:"size:16;not null;index" json:"entityType"`
	EntityID   string    `gorm:"size:36;not null" json:"entityId"`
	EntityName string    `gorm:"size:255;not null" json:"entityName"`
	Detail     string    `gorm:"type:text" json:"detail"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ActivityFilters narrows activity listings.
type ActivityFilters struct {
	UserID     string `json:"user,omitempty"`
	EntityType string `json:"entityType,omitempty"`
	ActionType string `json:"actionType,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}

// IsValidAction reports whether kind is one of the enumerated action kinds.
func IsValidAction(kind string) bool {
	switch kind {
	case ActionCreate, ActionUpdate, ActionDelete, ActionApprove, ActionPending, ActionLogin, ActionRegister:
		return true
	}
	return false
}

// IsValidEntity reports whether kind is one of the enumerated entity types.
func IsValidEntity(kind string) bool {
	switch kind {
	case EntityUser, EntityShop, EntityRecipe:
		return true
	}
	return false
}
