package domain

import (
	"context"
	"time"
)

type NotificationType string

const (
	NotificationLike          NotificationType = "like"
	NotificationComment       NotificationType = "comment"
	NotificationShare         NotificationType = "share"
	NotificationFriendRequest NotificationType = "friend_request"
	NotificationFriendAccept  NotificationType = "friend_accept"
)

type Notification struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	Type      NotificationType       `json:"type"`
	Data      map[string]interface{} `json:"data"`
	Read      bool                   `json:"read"`
	CreatedAt time.Time              `json:"created_at"`
}

// NotificationStore persists notifications. Every call is scoped to userID.
type NotificationStore interface {
	Insert(ctx context.Context, n *Notification) error
	List(ctx context.Context, userID string, limit int, unreadOnly bool) ([]*Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, id string) (bool, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
}

// NotificationPublisher fans out freshly created notifications to live clients.
type NotificationPublisher interface {
	Publish(ctx context.Context, n *Notification) error
	Subscribe(ctx context.Context, userID string) (<-chan *Notification, func(), error)
}

// Notifier is the narrow dependency handed to services that emit notifications.
type Notifier interface {
	Notify(ctx context.Context, userID string, typ NotificationType, data map[string]interface{})
}
