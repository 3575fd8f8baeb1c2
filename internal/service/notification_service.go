package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"essay-hub/internal/cache"
	"essay-hub/internal/config"
	"essay-hub/internal/domain"
	"essay-hub/internal/logger"
	"essay-hub/internal/metrics"
	"essay-hub/internal/util"

	"go.uber.org/zap"
)

// NotificationService manages a user's notifications. It is also the
// domain.Notifier handed to the friend and post services.
type NotificationService interface {
	domain.Notifier
	List(ctx context.Context, userID string, limit int, unreadOnly bool) ([]*domain.Notification, int64, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, notificationID string) error
	Subscribe(ctx context.Context, userID string) (<-chan *domain.Notification, func(), error)
}

type notificationServiceImpl struct {
	store     domain.NotificationStore
	publisher domain.NotificationPublisher // nil disables realtime delivery
	cache     domain.Cache                 // nil disables the unread-count cache
	unreadTTL time.Duration
}

func NewNotificationService(store domain.NotificationStore, publisher domain.NotificationPublisher, cache domain.Cache, cfg config.CacheConfig) NotificationService {
	return &notificationServiceImpl{
		store:     store,
		publisher: publisher,
		cache:     cache,
		unreadTTL: cfg.UnreadTTL,
	}
}

// Notify is best-effort: failures are logged and never reach the caller.
func (s *notificationServiceImpl) Notify(ctx context.Context, userID string, typ domain.NotificationType, data map[string]interface{}) {
	l := logger.Get()
	n := &domain.Notification{
		ID:        util.NewULID(),
		UserID:    userID,
		Type:      typ,
		Data:      data,
		CreatedAt: time.Now(),
	}
	if n.Data == nil {
		n.Data = map[string]interface{}{}
	}

	if err := s.store.Insert(ctx, n); err != nil {
		l.Warn("Failed to store notification", zap.String("userID", userID), zap.String("type", string(typ)), zap.Error(err))
		return
	}
	metrics.NotificationsSent.WithLabelValues(string(typ)).Inc()
	s.invalidateUnread(ctx, userID)

	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, n); err != nil {
		l.Warn("Failed to publish notification", zap.String("userID", userID), zap.String("notificationID", n.ID), zap.Error(err))
	}
}

func (s *notificationServiceImpl) List(ctx context.Context, userID string, limit int, unreadOnly bool) ([]*domain.Notification, int64, error) {
	items, err := s.store.List(ctx, userID, pageLimit(limit), unreadOnly)
	if err != nil {
		return nil, 0, domain.NewInternalError("Failed to list notifications", err)
	}
	unread, err := s.UnreadCount(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return items, unread, nil
}

func (s *notificationServiceImpl) UnreadCount(ctx context.Context, userID string) (int64, error) {
	key := cache.UnreadCountKey(userID)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			if n, convErr := strconv.ParseInt(cached, 10, 64); convErr == nil {
				metrics.CacheHits.WithLabelValues("unread_count").Inc()
				return n, nil
			}
		case errors.Is(err, domain.ErrCacheMiss):
			metrics.CacheMisses.WithLabelValues("unread_count").Inc()
		default:
			logger.Get().Warn("Unread count cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	n, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, domain.NewInternalError("Failed to count unread notifications", err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, strconv.FormatInt(n, 10), s.unreadTTL); err != nil {
			logger.Get().Warn("Unread count cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return n, nil
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, userID, notificationID string) error {
	ok, err := s.store.MarkRead(ctx, userID, notificationID)
	if err != nil {
		return domain.NewInternalError("Failed to mark notification read", err)
	}
	if !ok {
		return notificationNotFound(notificationID)
	}
	s.invalidateUnread(ctx, userID)
	return nil
}

func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.store.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, domain.NewInternalError("Failed to mark notifications read", err)
	}
	s.invalidateUnread(ctx, userID)
	return n, nil
}

func (s *notificationServiceImpl) Delete(ctx context.Context, userID, notificationID string) error {
	ok, err := s.store.Delete(ctx, userID, notificationID)
	if err != nil {
		return domain.NewInternalError("Failed to delete notification", err)
	}
	if !ok {
		return notificationNotFound(notificationID)
	}
	s.invalidateUnread(ctx, userID)
	return nil
}

func (s *notificationServiceImpl) Subscribe(ctx context.Context, userID string) (<-chan *domain.Notification, func(), error) {
	if s.publisher == nil {
		return nil, nil, domain.NewError(domain.CodeInternal, "Realtime notifications are not configured", nil)
	}
	return s.publisher.Subscribe(ctx, userID)
}

func (s *notificationServiceImpl) invalidateUnread(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.UnreadCountKey(userID)); err != nil {
		logger.Get().Warn("Failed to invalidate unread count", zap.String("userID", userID), zap.Error(err))
	}
}

func notificationNotFound(id string) error {
	return domain.NewError(domain.CodeNotificationNotFound, "Notification not found", nil).WithContext("notification_id", id)
}
