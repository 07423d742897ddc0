package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StringList stores a string slice as a JSON array column.
type StringList []string

// Value implements the driver.Valuer interface
func (a StringList) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *StringList) Scan(value interface{}) error {
	if value == nil {
		*a = StringList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for StringList", value)
	}

	return json.Unmarshal(bytes, a)
}

// Recipe carries the rating aggregate denormalised from the ratings table.
type Recipe struct {
	ID            uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"_id"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	Title         string     `gorm:"size:255;not null" json:"title"`
	Description   string     `gorm:"type:text" json:"description"`
	Category      string     `gorm:"size:50;index" json:"category"`
	Image         string     `gorm:"size:512" json:"image,omitempty"`
	Ingredients   StringList `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Instructions  StringList `gorm:"type:jsonb;not null;default:'[]'" json:"instructions"`
	AuthorID      uuid.UUID  `gorm:"type:varchar(36);not null;index" json:"author"`
	ShopID        *uuid.UUID `gorm:"type:varchar(36);index" json:"shop,omitempty"`
	Status        string     `gorm:"size:16;not null;default:'pending';index" json:"status"`
	AverageRating float64    `gorm:"not null;default:0" json:"averageRating"`
	RatingsCount  int64      `gorm:"not null;default:0" json:"ratingsCount"`
}

func (Recipe) TableName() string {
	return "recipes"
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
