package service

import (
	"context"
	"strings"
	"time"

	"essay-hub/internal/domain"
	"essay-hub/internal/logger"

	"go.uber.org/zap"
)

// ProfileUpdate carries the profile fields a user may change. Nil fields are
// left untouched.
type ProfileUpdate struct {
	Name              *string
	Email             *string
	Location          *string
	Bio               *string
	ProfilePictureURL *string
}

// UserService defines the interface for user-related operations.
type UserService interface {
	GetMe(ctx context.Context, userID string) (*domain.User, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*domain.User, error)
}

type userServiceImpl struct {
	userRepo domain.UserRepository
}

// NewUserService creates a new instance of UserService.
func NewUserService(userRepo domain.UserRepository) UserService {
	return &userServiceImpl{userRepo: userRepo}
}

func (s *userServiceImpl) GetMe(ctx context.Context, userID string) (*domain.User, error) {
	return s.GetUser(ctx, userID)
}

// GetUser returns the user or USER_NOT_FOUND. Soft-deleted users are not found.
func (s *userServiceImpl) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get user", err)
	}
	if user == nil {
		return nil, domain.NewUserNotFoundError(userID)
	}
	return user, nil
}

func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*domain.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*update.Email))
		if email != user.Email {
			existing, err := s.userRepo.GetUserByEmail(ctx, email)
			if err != nil {
				return nil, domain.NewInternalError("Failed to check email", err)
			}
			if existing != nil && existing.ID != user.ID {
				return nil, domain.NewError(domain.CodeEmailTaken, "Email is already registered", nil)
			}
			user.Email = email
		}
	}
	if update.Name != nil {
		user.Name = strings.TrimSpace(*update.Name)
	}
	if update.Location != nil {
		user.Location = strings.TrimSpace(*update.Location)
	}
	if update.Bio != nil {
		user.Bio = strings.TrimSpace(*update.Bio)
	}
	if update.ProfilePictureURL != nil {
		user.ProfilePictureURL = strings.TrimSpace(*update.ProfilePictureURL)
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	user.UpdatedAt = time.Now()
	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return nil, repoError("Failed to update user", err)
	}
	logger.Get().Info("Profile updated", zap.String("userID", userID))
	return user, nil
}
