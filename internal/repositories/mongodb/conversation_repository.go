package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"barterhub/internal/models"
	"barterhub/internal/repositories/interfaces"
)

const ConversationCollection = "conversations"

type conversationRepository struct {
	collection *mongo.Collection
}

func NewConversationRepository(db *mongo.Database) interfaces.ConversationRepository {
	return &conversationRepository{
		collection: db.Collection(ConversationCollection),
	}
}

// GetOrCreate upserts on the ordered participant pair and barter so two
// concurrent callers end up with the same conversation. Equality fields of the
// filter are copied into the inserted document.
func (r *conversationRepository) GetOrCreate(ctx context.Context, userA, userB primitive.ObjectID, barterID *primitive.ObjectID) (*models.Conversation, error) {
	participants := orderedPair(userA, userB)
	filter := bson.M{"participants": participants}
	if barterID != nil {
		filter["barter_id"] = *barterID
	}

	now := time.Now()
	update := bson.M{
		"$setOnInsert": bson.M{"created_at": now},
		"$set":         bson.M{"updated_at": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var conversation models.Conversation
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&conversation); err != nil {
		return nil, fmt.Errorf("failed to get or create conversation: %w", err)
	}

	return &conversation, nil
}

func orderedPair(a, b primitive.ObjectID) []primitive.ObjectID {
	if a.Hex() > b.Hex() {
		a, b = b, a
	}
	return []primitive.ObjectID{a, b}
}
