package types

// SignupRequest represents the request body for POST /auth/signup
type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest represents the request body for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword"`
}

// UpdateProfileRequest only touches the fields that are present
type UpdateProfileRequest struct {
	Name   *string `json:"name,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

type RateRequest struct {
	Rating int `json:"rating"`
}

type FavoriteRequest struct {
	User   string `json:"user"`
	Recipe string `json:"recipe" binding:"required"`
	Notes  string `json:"notes"`
}

type CommentRequest struct {
	Text string `json:"text"`
}

// ActivityRequest represents the request body for POST /log
type ActivityRequest struct {
	User       string `json:"user"`
	UserName   string `json:"userName"`
	ActionType string `json:"actionType"`
	EntityType string `json:"entityType"`
	EntityID   string `json:"entityId"`
	EntityName string `json:"entityName"`
	Detail     string `json:"detail"`
}

// CreateRecipeRequest represents the request body for creating a recipe
type CreateRecipeRequest struct {
	Title        string   `json:"title" binding:"required,max=255"`
	Description  string   `json:"description"`
	Category     string   `json:"category" binding:"max=50"`
	Image        string   `json:"image"`
	Ingredients  []string `json:"ingredients" binding:"required,min=1"`
	Instructions []string `json:"instructions" binding:"required,min=1"`
	Shop         string   `json:"shop"`
}

// UpdateRecipeRequest represents the request body for updating a recipe
type UpdateRecipeRequest struct {
	Title        *string  `json:"title,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Category     *string  `json:"category,omitempty"`
	Image        *string  `json:"image,omitempty"`
	Ingredients  []string `json:"ingredients,omitempty"`
	Instructions []string `json:"instructions,omitempty"`
}

type CreateShopRequest struct {
	Name        string  `json:"name" binding:"required,max=120"`
	Description string  `json:"description"`
	Address     string  `json:"address"`
	Latitude    float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude   float64 `json:"longitude" binding:"min=-180,max=180"`
}

type UpdateShopRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Address     *string  `json:"address,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// StatusRequest is used by the admin moderation endpoints
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type RoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin user"`
}

type PresignRequest struct {
	Kind        string `json:"kind" binding:"required,oneof=avatar recipe"`
	ContentType string `json:"contentType" binding:"required"`
}
