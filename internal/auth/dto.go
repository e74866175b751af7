package auth

import "github.com/angelmondragon/storefront-backend/internal/users"

// RegisterRequest is the public sign-up payload.
type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email,max=254"`
	Password string  `json:"password" validate:"required"`
	Name     string  `json:"name" validate:"required,max=100"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the refresh token issued with the access token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse contains the token pair and the signed-in user.
type TokenResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user,omitempty"`
}
