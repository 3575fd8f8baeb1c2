package handler

import (
	"essay-hub/internal/dto"
	"essay-hub/internal/logger"
	"essay-hub/internal/middleware"
	"essay-hub/internal/service"
	"essay-hub/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService service.UserService
	validator   *validation.Validator
}

func NewUserHandler(userService service.UserService, validator *validation.Validator) *UserHandler {
	return &UserHandler{userService: userService, validator: validator}
}

// GetMyProfile retrieves the profile of the currently authenticated user.
// @Summary Get My Profile
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /users/me [get]
func (h *UserHandler) GetMyProfile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	user, err := h.userService.GetMe(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// UpdateMyProfile changes the caller's profile fields.
// @Summary Update My Profile
// @Tags users
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param body body dto.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 409 {object} middleware.ErrorResponse "Email already registered"
// @Router /users/me [put]
func (h *UserHandler) UpdateMyProfile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := middleware.ParseBody(c, h.validator, &req); err != nil {
		return err
	}

	user, err := h.userService.UpdateProfile(c.UserContext(), userID, service.ProfileUpdate{
		Name:              req.Name,
		Email:             req.Email,
		Location:          req.Location,
		Bio:               req.Bio,
		ProfilePictureURL: req.ProfilePictureURL,
	})
	if err != nil {
		return err
	}
	logger.Get().Info("User profile updated", zap.String("userID", userID))
	return c.JSON(dto.NewUserResponse(user))
}

// GetUser returns another user's public profile.
// @Summary Get user
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} dto.PublicUserResponse
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.userService.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPublicUserResponse(user))
}
