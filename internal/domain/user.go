package domain

import (
	"context"
	"strings"
	"time"
)

// User represents a domain user object
type User struct {
	ID                string
	GoogleID          string
	Email             string
	Name              string
	PasswordHash      string
	Location          string
	Bio               string
	ProfilePictureURL string
	// Google OAuth tokens, AES-GCM encrypted before they reach the store.
	EncryptedAccessToken  string
	EncryptedRefreshToken string
	TokenExpiresAt        *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
	DeletedAt             *time.Time
}

// NewUser creates a new User instance for an email/password account.
func NewUser(name, email, passwordHash string) *User {
	now := time.Now()
	return &User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         strings.TrimSpace(name),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate validates the user
func (u *User) Validate() error {
	var errs ValidationErrors
	if u.Email == "" {
		errs = append(errs, NewMissingFieldError("email"))
	}
	if u.Name == "" {
		errs = append(errs, NewMissingFieldError("name"))
	}
	if u.GoogleID == "" && u.PasswordHash == "" {
		errs = append(errs, NewMissingFieldError("password"))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UserRepository defines the interface for user data persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, userID string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*User, error)
	UpdateUser(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	SearchUsers(ctx context.Context, query string, limit int) ([]*User, error)
}
