package domain

import (
	"context"
	"time"
)

// FriendRequestStatus is the lifecycle state of a friend request.
// pending -> accepted | rejected | cancelled. Only pending is non-terminal.
type FriendRequestStatus string

const (
	RequestPending   FriendRequestStatus = "pending"
	RequestAccepted  FriendRequestStatus = "accepted"
	RequestRejected  FriendRequestStatus = "rejected"
	RequestCancelled FriendRequestStatus = "cancelled"
)

// FriendshipStatus is the relationship between two users as seen by one of them.
type FriendshipStatus string

const (
	FriendshipNone            FriendshipStatus = "none"
	FriendshipPendingSent     FriendshipStatus = "pending_sent"
	FriendshipPendingReceived FriendshipStatus = "pending_received"
	FriendshipFriends         FriendshipStatus = "friends"
)

type FriendRequest struct {
	ID         string
	SenderID   string
	ReceiverID string
	Status     FriendRequestStatus
	CreatedAt  time.Time
	ResolvedAt *time.Time

	// Sender is filled in for incoming request listings.
	Sender *User
	// Receiver is filled in for outgoing request listings.
	Receiver *User
}

func (r *FriendRequest) IsPending() bool {
	return r.Status == RequestPending
}

// Friendship is the single symmetric edge between two users.
type Friendship struct {
	UserLow   string
	UserHigh  string
	CreatedAt time.Time
}

// PairKey returns the canonical key for an unordered pair of user ids.
func PairKey(a, b string) string {
	low, high := OrderedPair(a, b)
	return low + ":" + high
}

// OrderedPair returns the two ids in canonical order.
func OrderedPair(a, b string) (string, string) {
	if a <= b {
		return a, b
	}
	return b, a
}

// FriendRequestResult is returned by SendRequest.
type FriendRequestResult struct {
	Request      *FriendRequest `json:"request,omitempty"`
	AutoAccepted bool           `json:"auto_accepted"`
}

type FriendRepository interface {
	CreateRequest(ctx context.Context, req *FriendRequest) error
	// GetRequestForUpdate locks the row for the surrounding transaction.
	GetRequestForUpdate(ctx context.Context, id string) (*FriendRequest, error)
	GetRequestByID(ctx context.Context, id string) (*FriendRequest, error)
	FindPendingRequest(ctx context.Context, senderID, receiverID string) (*FriendRequest, error)
	UpdateRequestStatus(ctx context.Context, id string, status FriendRequestStatus, resolvedAt time.Time) error
	CancelPairRequests(ctx context.Context, userA, userB string, resolvedAt time.Time) (int64, error)
	ListIncomingPending(ctx context.Context, userID string) ([]*FriendRequest, error)
	ListOutgoingPending(ctx context.Context, userID string) ([]*FriendRequest, error)

	CreateFriendship(ctx context.Context, userA, userB string) error
	DeleteFriendship(ctx context.Context, userA, userB string) (bool, error)
	AreFriends(ctx context.Context, userA, userB string) (bool, error)
	ListFriends(ctx context.Context, userID string) ([]*User, error)
	ListSuggestions(ctx context.Context, userID string, limit int) ([]*User, error)
}

// TransactionManager runs fn so that every repository call made with the
// context it receives commits or rolls back together.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
