package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"barterhub/internal/models"
	"barterhub/internal/repositories/interfaces"
	"barterhub/internal/utils"
)

const (
	NotificationCollection = "notifications"
	unreadCountCacheTTL    = 10 * time.Minute
)

type notificationRepository struct {
	collection *mongo.Collection
	cache      CacheService
}

func NewNotificationRepository(db *mongo.Database, cache CacheService) interfaces.NotificationRepository {
	return &notificationRepository{
		collection: db.Collection(NotificationCollection),
		cache:      cache,
	}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	notification.ID = primitive.NewObjectID()
	notification.CreatedAt = time.Now()
	notification.UpdatedAt = notification.CreatedAt

	_, err := r.collection.InsertOne(ctx, notification)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	r.invalidateUnreadCountCache(ctx, notification.RecipientID)

	return nil
}

func (r *notificationRepository) List(ctx context.Context, recipientID primitive.ObjectID, isRead *bool, params *utils.PaginationParams) ([]*models.Notification, int64, error) {
	filter := bson.M{"recipient_id": recipientID}
	if isRead != nil {
		filter["is_read"] = *isRead
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find notifications: %w", err)
	}
	defer cursor.Close(ctx)

	notifications := make([]*models.Notification, 0, params.GetLimit())
	for cursor.Next(ctx) {
		var notification models.Notification
		if err := cursor.Decode(&notification); err != nil {
			return nil, 0, fmt.Errorf("failed to decode notification: %w", err)
		}
		notifications = append(notifications, &notification)
	}

	return notifications, total, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	cacheKey := unreadCountCacheKey(recipientID)
	if r.cache != nil {
		var count int64
		if err := r.cache.Get(ctx, cacheKey, &count); err == nil {
			return count, nil
		}
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"recipient_id": recipientID, "is_read": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	if r.cache != nil {
		r.cache.Set(ctx, cacheKey, count, unreadCountCacheTTL)
	}

	return count, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, recipientID primitive.ObjectID) error {
	now := time.Now()
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "recipient_id": recipientID},
		bson.M{"$set": bson.M{"is_read": true, "read_at": now, "updated_at": now}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrNotFound
	}

	r.invalidateUnreadCountCache(ctx, recipientID)

	return nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	now := time.Now()
	result, err := r.collection.UpdateMany(
		ctx,
		bson.M{"recipient_id": recipientID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": now, "updated_at": now}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications as read: %w", err)
	}

	r.invalidateUnreadCountCache(ctx, recipientID)

	return result.ModifiedCount, nil
}

func (r *notificationRepository) invalidateUnreadCountCache(ctx context.Context, recipientID primitive.ObjectID) {
	if r.cache != nil {
		r.cache.Delete(ctx, unreadCountCacheKey(recipientID))
	}
}

func unreadCountCacheKey(recipientID primitive.ObjectID) string {
	return fmt.Sprintf("unread_count_%s", recipientID.Hex())
}
