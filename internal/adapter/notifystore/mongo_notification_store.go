// Package notifystore keeps user notifications in MongoDB.
package notifystore

import (
	"context"
	"fmt"
	"time"

	"essay-hub/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "notifications"
	defaultLimit   = 50
	maxLimit       = 200
)

type notificationDocument struct {
	ID        string                 `bson:"_id"`
	UserID    string                 `bson:"user_id"`
	Type      string                 `bson:"type"`
	Data      map[string]interface{} `bson:"data"`
	Read      bool                   `bson:"read"`
	CreatedAt time.Time              `bson:"created_at"`
}

func (d notificationDocument) toDomain() *domain.Notification {
	data := d.Data
	if data == nil {
		data = map[string]interface{}{}
	}
	return &domain.Notification{
		ID:        d.ID,
		UserID:    d.UserID,
		Type:      domain.NotificationType(d.Type),
		Data:      data,
		Read:      d.Read,
		CreatedAt: d.CreatedAt,
	}
}

type mongoNotificationStore struct {
	collection *mongo.Collection
}

func NewMongoNotificationStore(db *mongo.Database) domain.NotificationStore {
	return &mongoNotificationStore{collection: db.Collection(CollectionName)}
}

// EnsureIndexes creates the listing index. It is safe to call on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(CollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "read", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create notification index: %w", err)
	}
	return nil
}

func (s *mongoNotificationStore) Insert(ctx context.Context, n *domain.Notification) error {
	doc := notificationDocument{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      string(n.Type),
		Data:      n.Data,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *mongoNotificationStore) List(ctx context.Context, userID string, limit int, unreadOnly bool) ([]*domain.Notification, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	filter := bson.M{"user_id": userID}
	if unreadOnly {
		filter["read"] = false
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []notificationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}
	out := make([]*domain.Notification, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (s *mongoNotificationStore) CountUnread(ctx context.Context, userID string) (int64, error) {
	n, err := s.collection.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}

func (s *mongoNotificationStore) MarkRead(ctx context.Context, userID, id string) (bool, error) {
	res, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (s *mongoNotificationStore) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := s.collection.UpdateMany(ctx,
		bson.M{"user_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return res.ModifiedCount, nil
}

func (s *mongoNotificationStore) Delete(ctx context.Context, userID, id string) (bool, error) {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return false, fmt.Errorf("delete notification: %w", err)
	}
	return res.DeletedCount > 0, nil
}
