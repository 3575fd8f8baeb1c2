package handler

import (
	"context"

	"essay-hub/internal/dto"
	"essay-hub/internal/logger"
	"essay-hub/internal/metrics"
	"essay-hub/internal/middleware"
	"essay-hub/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const (
	streamTypeNotification = "notification"
	streamTypeUnread       = "unread_count"
	streamTypeError        = "error"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// ListNotifications godoc
// @Summary List notifications
// @Tags notifications
// @Security ApiKeyAuth
// @Produce json
// @Param limit query int false "Max notifications (default 20, max 100)"
// @Param unread_only query bool false "Only unread notifications"
// @Success 200 {object} dto.NotificationListResponse
// @Router /notifications [get]
func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	items, unread, err := h.notificationService.List(c.UserContext(), userID, parsePagination(c).Limit, c.QueryBool("unread_only", false))
	if err != nil {
		return err
	}
	return c.JSON(dto.NotificationListResponse{Notifications: items, UnreadCount: unread})
}

// UnreadCount godoc
// @Summary Unread notification count
// @Tags notifications
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.UnreadCountResponse
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	count, err := h.notificationService.UnreadCount(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.UnreadCountResponse{Count: count})
}

// MarkRead godoc
// @Summary Mark a notification read
// @Tags notifications
// @Security ApiKeyAuth
// @Param id path string true "Notification ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse "Notification not found"
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	if err := h.notificationService.MarkRead(c.UserContext(), userID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkAllRead godoc
// @Summary Mark every notification read
// @Tags notifications
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.MarkAllReadResponse
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	updated, err := h.notificationService.MarkAllRead(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.MarkAllReadResponse{Updated: updated})
}

// DeleteNotification godoc
// @Summary Delete a notification
// @Tags notifications
// @Security ApiKeyAuth
// @Param id path string true "Notification ID"
// @Success 204
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) DeleteNotification(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	if err := h.notificationService.Delete(c.UserContext(), userID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RequireUpgrade rejects plain HTTP requests on websocket routes.
func RequireUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// Stream pushes the caller's notifications over a websocket. The first frame
// carries the unread count. The route must sit behind
// middleware.ProtectedQuery so the user ID is in Locals.
func (h *NotificationHandler) Stream(conn *websocket.Conn) {
	l := logger.Get()
	userID, _ := conn.Locals(middleware.UserIDKey).(string)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifications, stop, err := h.notificationService.Subscribe(ctx, userID)
	if err != nil {
		l.Error("Failed to subscribe to notifications", zap.String("userID", userID), zap.Error(err))
		_ = conn.WriteJSON(dto.StreamMessage{Type: streamTypeError, Error: "Notification stream unavailable"})
		return
	}
	defer stop()

	metrics.WebSocketClients.Inc()
	defer metrics.WebSocketClients.Dec()
	l.Info("Notification stream opened", zap.String("userID", userID))
	defer l.Info("Notification stream closed", zap.String("userID", userID))

	if count, err := h.notificationService.UnreadCount(ctx, userID); err == nil {
		if err := conn.WriteJSON(dto.StreamMessage{Type: streamTypeUnread, UnreadCount: &count}); err != nil {
			return
		}
	}

	// Clients never send anything meaningful; reading only detects close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-notifications:
			if !ok {
				return
			}
			if err := conn.WriteJSON(dto.StreamMessage{Type: streamTypeNotification, Notification: n}); err != nil {
				l.Debug("Notification stream write failed", zap.String("userID", userID), zap.Error(err))
				return
			}
		}
	}
}
