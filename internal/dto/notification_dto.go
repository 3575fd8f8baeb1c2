package dto

import "essay-hub/internal/domain"

type NotificationListResponse struct {
	Notifications []*domain.Notification `json:"notifications"`
	UnreadCount   int64                  `json:"unread_count"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// StreamMessage is one frame on the notification websocket.
type StreamMessage struct {
	Type         string               `json:"type"`
	Notification *domain.Notification `json:"notification,omitempty"`
	UnreadCount  *int64               `json:"unread_count,omitempty"`
	Error        string               `json:"error,omitempty"`
}
