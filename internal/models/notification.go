package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationTypeBarterRequest   NotificationType = "barter_request"
	NotificationTypeBarterAccepted  NotificationType = "barter_accepted"
	NotificationTypeBarterRejected  NotificationType = "barter_rejected"
	NotificationTypeBarterCountered NotificationType = "barter_countered"
	NotificationTypeBarterCancelled NotificationType = "barter_cancelled"
	NotificationTypeBarterCompleted NotificationType = "barter_completed"
	NotificationTypeReviewReceived  NotificationType = "review_received"
)

type Notification struct {
	ID          primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	RecipientID primitive.ObjectID     `json:"recipient_id" bson:"recipient_id" validate:"required"`
	SenderID    *primitive.ObjectID    `json:"sender_id,omitempty" bson:"sender_id,omitempty"`
	Type        NotificationType       `json:"type" bson:"type" validate:"required"`
	Message     string                 `json:"message" bson:"message" validate:"required"`
	Link        string                 `json:"link,omitempty" bson:"link,omitempty"`
	Data        map[string]interface{} `json:"data,omitempty" bson:"data,omitempty"`
	IsRead      bool                   `json:"is_read" bson:"is_read"`
	ReadAt      *time.Time             `json:"read_at,omitempty" bson:"read_at,omitempty"`
	CreatedAt   time.Time              `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at" bson:"updated_at"`
}
