package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/pageza/pantry/backend/internal/models"
)

// UserSummary is the public part of a user returned by signup and login
type UserSummary struct {
	ID     uuid.UUID `json:"_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Status string    `json:"status"`
}

// AuthorDetails is the author annotation on recipes and comments
type AuthorDetails struct {
	ID     uuid.UUID `json:"_id"`
	Name   string    `json:"name"`
	Avatar string    `json:"avatar,omitempty"`
}

// RatingAggregate mirrors the denormalised fields on a recipe
type RatingAggregate struct {
	AverageRating float64 `json:"averageRating"`
	RatingsCount  int64   `json:"ratingsCount"`
}

// RatingSummary is returned by GET /recipes/:id/rate
type RatingSummary struct {
	AverageRating float64 `json:"averageRating"`
	RatingsCount  int64   `json:"ratingsCount"`
	UserRating    *int    `json:"userRating"`
}

// FavoriteRecipe is a recipe in a user's favorites list
type FavoriteRecipe struct {
	models.Recipe
	Notes         string        `json:"notes,omitempty"`
	FavoritedAt   time.Time     `json:"favoritedAt"`
	AuthorDetails AuthorDetails `json:"authorDetails"`
}

type CommentResponse struct {
	ID        uuid.UUID     `json:"_id"`
	Recipe    uuid.UUID     `json:"recipe"`
	Text      string        `json:"text"`
	User      AuthorDetails `json:"user"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// NearbyShop is a shop annotated with its distance from the query point
type NearbyShop struct {
	models.Shop
	DistanceKm float64 `json:"distanceKm"`
}

type PresignResponse struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	PublicURL string `json:"publicUrl"`
}

// NewUserSummary builds the summary for u
func NewUserSummary(u *models.User) UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Status: u.Status}
}

// NewAuthorDetails builds the author annotation for u
func NewAuthorDetails(u *models.User) AuthorDetails {
	if u == nil {
		return AuthorDetails{}
	}
	return AuthorDetails{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}
