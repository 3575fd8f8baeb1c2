package dto

import (
	"time"

	"essay-hub/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// GoogleUserInfo holds user information obtained from Google.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
	Locale        string `json:"locale"`
}

// AuthClaims defines the custom claims for JWT.
type AuthClaims struct {
	UserID    string `json:"user_id"`
	TokenType string `json:"token_type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// RegisterRequest is the body of POST /auth/register.
// @Description Request body for email/password sign-up
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse represents the response containing access and refresh tokens.
// @Description Response body for authentication tokens
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse is returned by register, login and the Google callback.
type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

// RefreshTokenRequest represents the request body for refreshing a token.
// @Description Request body for refreshing JWT tokens
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UserResponse is the caller's own profile.
type UserResponse struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	Location          string    `json:"location,omitempty"`
	Bio               string    `json:"bio,omitempty"`
	ProfilePictureURL string    `json:"profile_picture_url,omitempty"`
	GoogleLinked      bool      `json:"google_linked"`
	CreatedAt         time.Time `json:"created_at"`
}

// PublicUserResponse is what other users see.
type PublicUserResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email,omitempty"`
	Location          string `json:"location,omitempty"`
	Bio               string `json:"bio,omitempty"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
}

// UpdateProfileRequest is the body of PUT /users/me. Omitted fields are unchanged.
type UpdateProfileRequest struct {
	Name              *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email             *string `json:"email" validate:"omitempty,email,max=255"`
	Location          *string `json:"location" validate:"omitempty,max=100"`
	Bio               *string `json:"bio" validate:"omitempty,max=500"`
	ProfilePictureURL *string `json:"profile_picture_url" validate:"omitempty,url,max=1024"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// MessageResponse represents a generic message response.
// @Description Generic message response
type MessageResponse struct {
	Message string `json:"message"`
}

// Pagination defines parameters for paginated requests.
type Pagination struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:                u.ID,
		Email:             u.Email,
		Name:              u.Name,
		Location:          u.Location,
		Bio:               u.Bio,
		ProfilePictureURL: u.ProfilePictureURL,
		GoogleLinked:      u.GoogleID != "",
		CreatedAt:         u.CreatedAt,
	}
}

func NewPublicUserResponse(u *domain.User) PublicUserResponse {
	return PublicUserResponse{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Location:          u.Location,
		Bio:               u.Bio,
		ProfilePictureURL: u.ProfilePictureURL,
	}
}

func NewPublicUserList(users []*domain.User) []PublicUserResponse {
	out := make([]PublicUserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewPublicUserResponse(u))
	}
	return out
}
