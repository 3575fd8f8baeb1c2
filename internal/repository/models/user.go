package models

import (
	"database/sql"
	"time"
)

// User represents a row of the users table.
type User struct {
	ID                    string         `db:"ID"`                      // ULID
	GoogleID              sql.NullString `db:"GOOGLE_ID"`               // Google's unique identifier, NULL for password accounts
	Email                 string         `db:"EMAIL"`                   // Lowercased, unique
	Name                  sql.NullString `db:"NAME"`                    // Display name
	PasswordHash          sql.NullString `db:"PASSWORD_HASH"`           // bcrypt hash, NULL for Google accounts
	Location              sql.NullString `db:"LOCATION"`                // Free-form profile location
	Bio                   sql.NullString `db:"BIO"`                     // Free-form profile text
	ProfilePictureURL     sql.NullString `db:"PROFILE_PICTURE_URL"`     // URL of the user's profile picture
	EncryptedAccessToken  sql.NullString `db:"ENCRYPTED_ACCESS_TOKEN"`  // Encrypted Google OAuth access token
	EncryptedRefreshToken sql.NullString `db:"ENCRYPTED_REFRESH_TOKEN"` // Encrypted Google OAuth refresh token
	TokenExpiresAt        sql.NullTime   `db:"TOKEN_EXPIRES_AT"`        // Expiry time for the access token
	CreatedAt             time.Time      `db:"CREATED_AT"`              // Timestamp of user creation
	UpdatedAt             time.Time      `db:"UPDATED_AT"`              // Timestamp of last update
	DeletedAt             sql.NullTime   `db:"DELETED_AT"`              // Timestamp of soft deletion, if applicable
}

func (User) TableName() string {
	return "USERS"
}
