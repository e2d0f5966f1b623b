package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Conversation struct {
	ID            primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Participants  []primitive.ObjectID `json:"participants" bson:"participants" validate:"required,len=2"`
	BarterID      *primitive.ObjectID  `json:"barter_id,omitempty" bson:"barter_id,omitempty"`
	LastMessageAt *time.Time           `json:"last_message_at,omitempty" bson:"last_message_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at" bson:"updated_at"`
}
