package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rating is unique per (recipe, user) and is only ever upserted.
type Rating struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"_id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	RecipeID  uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_ratings_recipe_user" json:"recipe"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_ratings_recipe_user" json:"user"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
}

func (Rating) TableName() string {
	return "ratings"
}

func (r *Rating) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Favorite is unique per (user, recipe). Duplicates are rejected, not merged.
type Favorite struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"_id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorites_user_recipe" json:"user"`
	RecipeID  uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorites_user_recipe" json:"recipe"`
	Notes     string    `gorm:"type:text" json:"notes,omitempty"`
}

func (Favorite) TableName() string {
	return "favorites"
}

func (f *Favorite) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// CommentMaxLength bounds Comment.Text after trimming.
const CommentMaxLength = 1000

type Comment struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"_id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	RecipeID  uuid.UUID `gorm:"type:varchar(36);not null;index" json:"recipe"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null" json:"-"`
	User      *User     `gorm:"foreignKey:UserID" json:"-"`
	Text      string    `gorm:"size:1000;not null" json:"text"`
}

func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
