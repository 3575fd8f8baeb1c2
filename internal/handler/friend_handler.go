package handler

import (
	"context"

	"essay-hub/internal/domain"
	"essay-hub/internal/dto"
	"essay-hub/internal/middleware"
	"essay-hub/internal/service"
	"essay-hub/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type FriendHandler struct {
	friendService service.FriendService
	validator     *validation.Validator
}

func NewFriendHandler(friendService service.FriendService, validator *validation.Validator) *FriendHandler {
	return &FriendHandler{friendService: friendService, validator: validator}
}

// SendRequest sends a friend request, or accepts the mirrored one when the
// receiver already asked the caller.
// @Summary Send friend request
// @Tags friends
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param body body dto.SendFriendRequest true "Receiver"
// @Success 201 {object} dto.SendFriendRequestResponse
// @Failure 400 {object} middleware.ErrorResponse "Self request"
// @Failure 404 {object} middleware.ErrorResponse "Receiver not found"
// @Failure 409 {object} middleware.ErrorResponse "Already friends or already requested"
// @Router /friends/requests [post]
func (h *FriendHandler) SendRequest(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req dto.SendFriendRequest
	if err := middleware.ParseBody(c, h.validator, &req); err != nil {
		return err
	}

	result, err := h.friendService.SendRequest(c.UserContext(), userID, req.ReceiverID)
	if err != nil {
		return err
	}
	resp := dto.SendFriendRequestResponse{AutoAccepted: result.AutoAccepted, Message: "Friend request sent"}
	if result.AutoAccepted {
		resp.Message = "You are now friends"
	}
	if result.Request != nil {
		r := dto.NewFriendRequestResponse(result.Request)
		resp.Request = &r
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// AcceptRequest accepts a pending request addressed to the caller.
// @Summary Accept friend request
// @Tags friends
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} dto.FriendRequestResponse
// @Failure 403 {object} middleware.ErrorResponse "Not the receiver"
// @Failure 409 {object} middleware.ErrorResponse "Not pending"
// @Router /friends/requests/{id}/accept [post]
func (h *FriendHandler) AcceptRequest(c *fiber.Ctx) error {
	return h.resolve(c, h.friendService.AcceptRequest)
}

// RejectRequest rejects a pending request addressed to the caller.
// @Summary Reject friend request
// @Tags friends
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} dto.FriendRequestResponse
// @Router /friends/requests/{id}/reject [post]
func (h *FriendHandler) RejectRequest(c *fiber.Ctx) error {
	return h.resolve(c, h.friendService.RejectRequest)
}

// CancelRequest withdraws a pending request the caller sent.
// @Summary Cancel friend request
// @Tags friends
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} dto.FriendRequestResponse
// @Router /friends/requests/{id}/cancel [post]
func (h *FriendHandler) CancelRequest(c *fiber.Ctx) error {
	return h.resolve(c, h.friendService.CancelRequest)
}

func (h *FriendHandler) resolve(c *fiber.Ctx, op func(ctx context.Context, requestID, userID string) (*domain.FriendRequest, error)) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	req, err := op(c.UserContext(), c.Params("id"), userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewFriendRequestResponse(req))
}

// RemoveFriend deletes the friendship with :id.
// @Summary Remove friend
// @Tags friends
// @Security ApiKeyAuth
// @Param id path string true "Friend's user ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse "Not friends"
// @Router /friends/{id} [delete]
func (h *FriendHandler) RemoveFriend(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	if err := h.friendService.RemoveFriend(c.UserContext(), userID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListFriends lists the caller's friends.
// @Summary List friends
// @Tags friends
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.FriendListResponse
// @Router /friends [get]
func (h *FriendHandler) ListFriends(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	friends, err := h.friendService.ListFriends(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.FriendListResponse{Friends: dto.NewPublicUserList(friends)})
}

// ListPendingRequests lists pending requests addressed to the caller.
// @Summary Incoming friend requests
// @Tags friends
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.FriendRequestListResponse
// @Router /friends/requests/pending [get]
func (h *FriendHandler) ListPendingRequests(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	requests, err := h.friendService.ListPendingRequests(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewFriendRequestList(requests))
}

// ListSentRequests lists pending requests the caller sent.
// @Summary Outgoing friend requests
// @Tags friends
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.FriendRequestListResponse
// @Router /friends/requests/sent [get]
func (h *FriendHandler) ListSentRequests(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	requests, err := h.friendService.ListSentRequests(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewFriendRequestList(requests))
}

// GetStatus reports the relationship between the caller and :userId.
// @Summary Friendship status
// @Tags friends
// @Security ApiKeyAuth
// @Produce json
// @Param userId path string true "Other user's ID"
// @Success 200 {object} dto.FriendStatusResponse
// @Router /friends/status/{userId} [get]
func (h *FriendHandler) GetStatus(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	otherID := c.Params("userId")
	status, err := h.friendService.GetStatus(c.UserContext(), userID, otherID)
	if err != nil {
		return err
	}
	return c.JSON(dto.FriendStatusResponse{UserID: otherID, Status: status})
}

// Suggestions lists friends-of-friends the caller is not connected to.
// @Summary Friend suggestions
// @Tags friends
// @Security ApiKeyAuth
// @Produce json
// @Param limit query int false "Max suggestions"
// @Success 200 {object} dto.SuggestionsResponse
// @Router /friends/suggestions [get]
func (h *FriendHandler) Suggestions(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	users, err := h.friendService.Suggestions(c.UserContext(), userID, c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return c.JSON(dto.SuggestionsResponse{Suggestions: dto.NewPublicUserList(users)})
}
