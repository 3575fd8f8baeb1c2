package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"essay-hub/internal/domain"
	"essay-hub/internal/repository/models"
	"essay-hub/internal/util"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, google_id, email, name, password_hash, location, bio, profile_picture_url,
	encrypted_access_token, encrypted_refresh_token, token_expires_at, created_at, updated_at, deleted_at`

// sqlxUserRepository implements domain.UserRepository using sqlx.
type sqlxUserRepository struct {
	db *sqlx.DB
}

// NewSQLXUserRepository creates a new instance of sqlxUserRepository.
func NewSQLXUserRepository(db *sqlx.DB) domain.UserRepository {
	return &sqlxUserRepository{db: db}
}

// toDomainUser converts a models.User to a domain.User
func toDomainUser(m *models.User) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		ID:                    m.ID,
		GoogleID:              m.GoogleID.String,
		Email:                 m.Email,
		Name:                  m.Name.String,
		PasswordHash:          m.PasswordHash.String,
		Location:              m.Location.String,
		Bio:                   m.Bio.String,
		ProfilePictureURL:     m.ProfilePictureURL.String,
		EncryptedAccessToken:  m.EncryptedAccessToken.String,
		EncryptedRefreshToken: m.EncryptedRefreshToken.String,
		TokenExpiresAt:        util.NullTimeToPtr(m.TokenExpiresAt),
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
		DeletedAt:             util.NullTimeToPtr(m.DeletedAt),
	}
}

// fromDomainUser converts a domain.User to a models.User
func fromDomainUser(u *domain.User) *models.User {
	if u == nil {
		return nil
	}
	m := &models.User{
		ID:                    u.ID,
		GoogleID:              util.StringToNullString(u.GoogleID),
		Email:                 u.Email,
		Name:                  util.StringToNullString(u.Name),
		PasswordHash:          util.StringToNullString(u.PasswordHash),
		Location:              util.StringToNullString(u.Location),
		Bio:                   util.StringToNullString(u.Bio),
		ProfilePictureURL:     util.StringToNullString(u.ProfilePictureURL),
		EncryptedAccessToken:  util.StringToNullString(u.EncryptedAccessToken),
		EncryptedRefreshToken: util.StringToNullString(u.EncryptedRefreshToken),
		CreatedAt:             u.CreatedAt,
		UpdatedAt:             u.UpdatedAt,
	}
	if u.TokenExpiresAt != nil {
		m.TokenExpiresAt = util.TimeToNullTime(*u.TokenExpiresAt)
	}
	if u.DeletedAt != nil {
		m.DeletedAt = util.TimeToNullTime(*u.DeletedAt)
	}
	return m
}

// CreateUser inserts a new user. A duplicate email or google id maps to EMAIL_ALREADY_EXISTS.
func (r *sqlxUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = util.NewULID()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	query := `INSERT INTO users (id, google_id, email, name, password_hash, location, bio, profile_picture_url,
	            encrypted_access_token, encrypted_refresh_token, token_expires_at, created_at, updated_at)
	          VALUES (:ID, :GOOGLE_ID, :EMAIL, :NAME, :PASSWORD_HASH, :LOCATION, :BIO, :PROFILE_PICTURE_URL,
	            :ENCRYPTED_ACCESS_TOKEN, :ENCRYPTED_REFRESH_TOKEN, :TOKEN_EXPIRES_AT, :CREATED_AT, :UPDATED_AT)`

	_, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, fromDomainUser(user))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewError(domain.CodeEmailTaken, "Email is already registered", err)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *sqlxUserRepository) getOne(ctx context.Context, where string, arg interface{}) (*domain.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where + ` AND deleted_at IS NULL`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &user, query, arg); err != nil {
		if isNoRows(err) {
			return nil, nil // Return nil, nil for not found, services can handle this
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return toDomainUser(&user), nil
}

// GetUserByID retrieves a user by their internal ID.
func (r *sqlxUserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.getOne(ctx, "id = :1", userID)
}

// GetUserByEmail matches the lowercased address.
func (r *sqlxUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "email = :1", strings.ToLower(strings.TrimSpace(email)))
}

// GetUserByGoogleID retrieves a user by their Google ID.
func (r *sqlxUserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	return r.getOne(ctx, "google_id = :1", googleID)
}

// UpdateUser writes the profile and OAuth token columns.
func (r *sqlxUserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now()

	query := `UPDATE users SET
				email = :EMAIL,
	            name = :NAME,
	            google_id = :GOOGLE_ID,
	            location = :LOCATION,
	            bio = :BIO,
	            profile_picture_url = :PROFILE_PICTURE_URL,
	            encrypted_access_token = :ENCRYPTED_ACCESS_TOKEN,
	            encrypted_refresh_token = :ENCRYPTED_REFRESH_TOKEN,
	            token_expires_at = :TOKEN_EXPIRES_AT,
	            updated_at = :UPDATED_AT
	          WHERE id = :ID AND deleted_at IS NULL`

	result, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, fromDomainUser(user))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewError(domain.CodeEmailTaken, "Email is already registered", err)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireAffected(result, domain.NewUserNotFoundError(user.ID))
}

func (r *sqlxUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	query := `UPDATE users SET password_hash = :1, updated_at = :2 WHERE id = :3 AND deleted_at IS NULL`
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, passwordHash, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return requireAffected(result, domain.NewUserNotFoundError(userID))
}

// SearchUsers matches name or email case-insensitively.
func (r *sqlxUserRepository) SearchUsers(ctx context.Context, query string, limit int) ([]*domain.User, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	sqlQuery := `SELECT ` + userColumns + ` FROM users
	             WHERE deleted_at IS NULL AND (LOWER(name) LIKE :1 OR LOWER(email) LIKE :2)
	             ORDER BY name
	             FETCH FIRST :3 ROWS ONLY`

	var rows []models.User
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, sqlQuery, pattern, pattern, limit); err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return toDomainUsers(rows), nil
}

func toDomainUsers(rows []models.User) []*domain.User {
	users := make([]*domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, toDomainUser(&rows[i]))
	}
	return users
}
