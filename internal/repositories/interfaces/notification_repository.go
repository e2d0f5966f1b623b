package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"barterhub/internal/models"
	"barterhub/internal/utils"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	// List filters on read state when isRead is not nil.
	List(ctx context.Context, recipientID primitive.ObjectID, isRead *bool, params *utils.PaginationParams) ([]*models.Notification, int64, error)
	CountUnread(ctx context.Context, recipientID primitive.ObjectID) (int64, error)
	MarkAsRead(ctx context.Context, id, recipientID primitive.ObjectID) error
	MarkAllAsRead(ctx context.Context, recipientID primitive.ObjectID) (int64, error)
}
