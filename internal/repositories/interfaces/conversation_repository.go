package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"barterhub/internal/models"
)

type ConversationRepository interface {
	// GetOrCreate returns the conversation between the two users for the
	// given barter, creating it on first use.
	GetOrCreate(ctx context.Context, userA, userB primitive.ObjectID, barterID *primitive.ObjectID) (*models.Conversation, error)
}
