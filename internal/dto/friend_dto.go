package dto

import (
	"time"

	"essay-hub/internal/domain"
)

type SendFriendRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required,ulid"`
}

type FriendRequestResponse struct {
	ID         string                     `json:"id"`
	SenderID   string                     `json:"sender_id"`
	ReceiverID string                     `json:"receiver_id"`
	Status     domain.FriendRequestStatus `json:"status"`
	CreatedAt  time.Time                  `json:"created_at"`
	ResolvedAt *time.Time                 `json:"resolved_at,omitempty"`
	Sender     *PublicUserResponse        `json:"sender,omitempty"`
	Receiver   *PublicUserResponse        `json:"receiver,omitempty"`
}

type SendFriendRequestResponse struct {
	Request      *FriendRequestResponse `json:"request,omitempty"`
	AutoAccepted bool                   `json:"auto_accepted"`
	Message      string                 `json:"message"`
}

type FriendRequestListResponse struct {
	Requests []FriendRequestResponse `json:"requests"`
}

type FriendListResponse struct {
	Friends []PublicUserResponse `json:"friends"`
}

type FriendStatusResponse struct {
	UserID string                  `json:"user_id"`
	Status domain.FriendshipStatus `json:"status"`
}

type SuggestionsResponse struct {
	Suggestions []PublicUserResponse `json:"suggestions"`
}

func NewFriendRequestResponse(r *domain.FriendRequest) FriendRequestResponse {
	resp := FriendRequestResponse{
		ID:         r.ID,
		SenderID:   r.SenderID,
		ReceiverID: r.ReceiverID,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt,
		ResolvedAt: r.ResolvedAt,
	}
	if r.Sender != nil {
		sender := NewPublicUserResponse(r.Sender)
		resp.Sender = &sender
	}
	if r.Receiver != nil {
		receiver := NewPublicUserResponse(r.Receiver)
		resp.Receiver = &receiver
	}
	return resp
}

func NewFriendRequestList(requests []*domain.FriendRequest) FriendRequestListResponse {
	out := FriendRequestListResponse{Requests: make([]FriendRequestResponse, 0, len(requests))}
	for _, r := range requests {
		out.Requests = append(out.Requests, NewFriendRequestResponse(r))
	}
	return out
}
