package adapter

import (
	"context"
	"encoding/json"
	"fmt"

	"essay-hub/internal/cache"
	"essay-hub/internal/domain"
	"essay-hub/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisNotificationPublisher fans notifications out over Redis pub/sub so that
// every API instance can push them to its own websocket clients.
type RedisNotificationPublisher struct {
	client *redis.Client
}

func NewRedisNotificationPublisher(client *redis.Client) domain.NotificationPublisher {
	return &RedisNotificationPublisher{client: client}
}

func (p *RedisNotificationPublisher) Publish(ctx context.Context, n *domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := p.client.Publish(ctx, cache.NotificationChannel(n.UserID), payload).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Subscribe streams userID's notifications until ctx is done or the returned
// stop func is called.
func (p *RedisNotificationPublisher) Subscribe(ctx context.Context, userID string) (<-chan *domain.Notification, func(), error) {
	sub := p.client.Subscribe(ctx, cache.NotificationChannel(userID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("subscribe notifications: %w", err)
	}

	out := make(chan *domain.Notification, 16)
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var n domain.Notification
				if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
					logger.Get().Warn("Dropping malformed notification payload",
						zap.String("channel", msg.Channel), zap.Error(err))
					continue
				}
				select {
				case out <- &n:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, cancel, nil
}
