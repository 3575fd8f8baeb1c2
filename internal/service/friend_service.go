package service

import (
	"context"
	"time"

	"essay-hub/internal/config"
	"essay-hub/internal/domain"
	"essay-hub/internal/logger"
	"essay-hub/internal/metrics"

	"go.uber.org/zap"
)

const (
	defaultSuggestionLimit = 10
	maxSuggestionLimit     = 50
)

// FriendService is the friend relationship state machine.
type FriendService interface {
	SendRequest(ctx context.Context, senderID, receiverID string) (*domain.FriendRequestResult, error)
	AcceptRequest(ctx context.Context, requestID, userID string) (*domain.FriendRequest, error)
	RejectRequest(ctx context.Context, requestID, userID string) (*domain.FriendRequest, error)
	CancelRequest(ctx context.Context, requestID, userID string) (*domain.FriendRequest, error)
	RemoveFriend(ctx context.Context, userID, friendID string) error

	ListFriends(ctx context.Context, userID string) ([]*domain.User, error)
	ListPendingRequests(ctx context.Context, userID string) ([]*domain.FriendRequest, error)
	ListSentRequests(ctx context.Context, userID string) ([]*domain.FriendRequest, error)
	GetStatus(ctx context.Context, userID, otherID string) (domain.FriendshipStatus, error)
	Suggestions(ctx context.Context, userID string, limit int) ([]*domain.User, error)
}

type friendServiceImpl struct {
	friendRepo domain.FriendRepository
	userRepo   domain.UserRepository
	txManager  domain.TransactionManager
	notifier   domain.Notifier
	cfg        config.FriendsConfig
}

func NewFriendService(
	friendRepo domain.FriendRepository,
	userRepo domain.UserRepository,
	txManager domain.TransactionManager,
	notifier domain.Notifier,
	cfg config.FriendsConfig,
) FriendService {
	return &friendServiceImpl{
		friendRepo: friendRepo,
		userRepo:   userRepo,
		txManager:  txManager,
		notifier:   notifier,
		cfg:        cfg,
	}
}

func (s *friendServiceImpl) SendRequest(ctx context.Context, senderID, receiverID string) (*domain.FriendRequestResult, error) {
	if senderID == receiverID {
		return nil, domain.NewError(domain.CodeSelfFriendRequest, "Cannot send a friend request to yourself", nil)
	}

	receiver, err := s.userRepo.GetUserByID(ctx, receiverID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load receiver", err)
	}
	if receiver == nil {
		return nil, domain.NewUserNotFoundError(receiverID)
	}

	friends, err := s.friendRepo.AreFriends(ctx, senderID, receiverID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to check friendship", err)
	}
	if friends {
		return nil, domain.NewError(domain.CodeAlreadyFriends, "Already friends", nil)
	}

	sent, err := s.friendRepo.FindPendingRequest(ctx, senderID, receiverID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to check pending requests", err)
	}
	if sent != nil {
		return nil, domain.NewError(domain.CodeRequestAlreadySent, "Friend request already sent", nil).
			WithContext("request_id", sent.ID)
	}

	mirrored, err := s.friendRepo.FindPendingRequest(ctx, receiverID, senderID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to check pending requests", err)
	}
	if mirrored != nil {
		if !s.cfg.AutoAcceptMutual {
			return nil, domain.NewError(domain.CodeRequestAlreadyRecvd, "This user has already sent you a friend request", nil).
				WithContext("request_id", mirrored.ID)
		}
		// The sender is the receiver of the mirrored request, so accepting it on
		// their behalf passes the ownership check.
		accepted, err := s.AcceptRequest(ctx, mirrored.ID, senderID)
		if err != nil {
			return nil, err
		}
		logger.Get().Info("Mutual friend request auto-accepted",
			zap.String("requestID", mirrored.ID),
			zap.String("senderID", senderID),
			zap.String("receiverID", receiverID))
		return &domain.FriendRequestResult{Request: accepted, AutoAccepted: true}, nil
	}

	req := &domain.FriendRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     domain.RequestPending,
		CreatedAt:  time.Now(),
	}
	if err := s.friendRepo.CreateRequest(ctx, req); err != nil {
		return nil, repoError("Failed to create friend request", err)
	}
	metrics.FriendTransitions.WithLabelValues("sent").Inc()
	logger.Get().Info("Friend request sent", zap.String("requestID", req.ID), zap.String("senderID", senderID), zap.String("receiverID", receiverID))

	s.notifier.Notify(ctx, receiverID, domain.NotificationFriendRequest, map[string]interface{}{
		"request_id": req.ID,
		"sender_id":  senderID,
	})
	return &domain.FriendRequestResult{Request: req}, nil
}

func (s *friendServiceImpl) AcceptRequest(ctx context.Context, requestID, userID string) (*domain.FriendRequest, error) {
	req, err := s.resolve(ctx, requestID, userID, domain.RequestAccepted)
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, req.SenderID, domain.NotificationFriendAccept, map[string]interface{}{
		"request_id": req.ID,
		"user_id":    req.ReceiverID,
	})
	return req, nil
}

func (s *friendServiceImpl) RejectRequest(ctx context.Context, requestID, userID string) (*domain.FriendRequest, error) {
	return s.resolve(ctx, requestID, userID, domain.RequestRejected)
}

func (s *friendServiceImpl) CancelRequest(ctx context.Context, requestID, userID string) (*domain.FriendRequest, error) {
	return s.resolve(ctx, requestID, userID, domain.RequestCancelled)
}

// resolve moves a pending request to a terminal status inside one transaction.
// Accept and reject belong to the receiver, cancel to the sender. Accept also
// inserts the friendship edge.
func (s *friendServiceImpl) resolve(ctx context.Context, requestID, userID string, to domain.FriendRequestStatus) (*domain.FriendRequest, error) {
	var resolved *domain.FriendRequest
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req, err := s.friendRepo.GetRequestForUpdate(txCtx, requestID)
		if err != nil {
			return domain.NewInternalError("Failed to load friend request", err)
		}
		if req == nil {
			return domain.NewFriendRequestNotFoundError(requestID)
		}

		if to == domain.RequestCancelled {
			if req.SenderID != userID {
				return domain.NewError(domain.CodeNotRequestSender, "Only the sender can cancel this request", nil)
			}
		} else if req.ReceiverID != userID {
			return domain.NewError(domain.CodeNotRequestReceiver, "Only the receiver can respond to this request", nil)
		}

		if !req.IsPending() {
			return domain.NewRequestNotPendingError(req.ID, req.Status)
		}

		now := time.Now()
		if err := s.friendRepo.UpdateRequestStatus(txCtx, req.ID, to, now); err != nil {
			return repoError("Failed to update friend request", err)
		}
		if to == domain.RequestAccepted {
			if err := s.friendRepo.CreateFriendship(txCtx, req.SenderID, req.ReceiverID); err != nil {
				return repoError("Failed to create friendship", err)
			}
		}

		req.Status = to
		req.ResolvedAt = &now
		resolved = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.FriendTransitions.WithLabelValues(string(to)).Inc()
	logger.Get().Info("Friend request resolved",
		zap.String("requestID", resolved.ID),
		zap.String("status", string(to)),
		zap.String("actingUserID", userID))
	return resolved, nil
}

// RemoveFriend deletes the edge and cancels every pending or accepted request
// of the pair in the same transaction.
func (s *friendServiceImpl) RemoveFriend(ctx context.Context, userID, friendID string) error {
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		removed, err := s.friendRepo.DeleteFriendship(txCtx, userID, friendID)
		if err != nil {
			return domain.NewInternalError("Failed to remove friendship", err)
		}
		if !removed {
			return domain.NewError(domain.CodeNotFriends, "You are not friends with this user", nil)
		}
		if _, err := s.friendRepo.CancelPairRequests(txCtx, userID, friendID, time.Now()); err != nil {
			return domain.NewInternalError("Failed to close friend requests", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.FriendTransitions.WithLabelValues("removed").Inc()
	logger.Get().Info("Friend removed", zap.String("userID", userID), zap.String("friendID", friendID))
	return nil
}

func (s *friendServiceImpl) ListFriends(ctx context.Context, userID string) ([]*domain.User, error) {
	friends, err := s.friendRepo.ListFriends(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list friends", err)
	}
	return friends, nil
}

func (s *friendServiceImpl) ListPendingRequests(ctx context.Context, userID string) ([]*domain.FriendRequest, error) {
	requests, err := s.friendRepo.ListIncomingPending(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list friend requests", err)
	}
	return requests, nil
}

func (s *friendServiceImpl) ListSentRequests(ctx context.Context, userID string) ([]*domain.FriendRequest, error) {
	requests, err := s.friendRepo.ListOutgoingPending(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list sent requests", err)
	}
	return requests, nil
}

func (s *friendServiceImpl) GetStatus(ctx context.Context, userID, otherID string) (domain.FriendshipStatus, error) {
	if userID == otherID {
		return domain.FriendshipNone, nil
	}

	friends, err := s.friendRepo.AreFriends(ctx, userID, otherID)
	if err != nil {
		return "", domain.NewInternalError("Failed to check friendship", err)
	}
	if friends {
		return domain.FriendshipFriends, nil
	}

	sent, err := s.friendRepo.FindPendingRequest(ctx, userID, otherID)
	if err != nil {
		return "", domain.NewInternalError("Failed to check pending requests", err)
	}
	if sent != nil {
		return domain.FriendshipPendingSent, nil
	}

	received, err := s.friendRepo.FindPendingRequest(ctx, otherID, userID)
	if err != nil {
		return "", domain.NewInternalError("Failed to check pending requests", err)
	}
	if received != nil {
		return domain.FriendshipPendingReceived, nil
	}
	return domain.FriendshipNone, nil
}

func (s *friendServiceImpl) Suggestions(ctx context.Context, userID string, limit int) ([]*domain.User, error) {
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}
	if limit > maxSuggestionLimit {
		limit = maxSuggestionLimit
	}
	users, err := s.friendRepo.ListSuggestions(ctx, userID, limit)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list suggestions", err)
	}
	return users, nil
}
