package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"barterhub/internal/models"
	"barterhub/internal/repositories/interfaces"
	"barterhub/internal/utils"
)

const BarterCollection = "barter_requests"

type barterRepository struct {
	collection *mongo.Collection
}

func NewBarterRepository(db *mongo.Database) interfaces.BarterRepository {
	return &barterRepository{
		collection: db.Collection(BarterCollection),
	}
}

func (r *barterRepository) Create(ctx context.Context, barter *models.BarterRequest) error {
	barter.ID = primitive.NewObjectID()
	barter.CreatedAt = time.Now()
	barter.UpdatedAt = barter.CreatedAt
	if barter.Status == "" {
		barter.Status = models.BarterStatusPending
	}

	_, err := r.collection.InsertOne(ctx, barter)
	if err != nil {
		if isDuplicateKey(err) {
			return interfaces.ErrDuplicate
		}
		return fmt.Errorf("failed to create barter request: %w", err)
	}

	return nil
}

func (r *barterRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.BarterRequest, error) {
	var barter models.BarterRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&barter)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get barter request: %w", err)
	}

	return &barter, nil
}

func (r *barterRepository) ExistsPending(ctx context.Context, senderID, receiverID, offeredSkillID, requestedSkillID primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"sender_id":          senderID,
		"receiver_id":        receiverID,
		"offered_skill_id":   offeredSkillID,
		"requested_skill_id": requestedSkillID,
		"status":             models.BarterStatusPending,
	}

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check pending barter request: %w", err)
	}

	return count > 0, nil
}

func (r *barterRepository) UpdateIfStatus(ctx context.Context, id primitive.ObjectID, allowedFrom []models.BarterStatus, update interfaces.BarterUpdate) (*models.BarterRequest, error) {
	set := bson.M{"updated_at": time.Now()}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	if update.CounterOffer != nil {
		set["counter_offer"] = update.CounterOffer
	}
	if update.RejectionReason != nil {
		set["rejection_reason"] = *update.RejectionReason
	}
	if update.CompletedAt != nil {
		set["completed_at"] = *update.CompletedAt
	}

	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": allowedFrom},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var barter models.BarterRequest
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&barter)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrStatusChanged
		}
		return nil, fmt.Errorf("failed to update barter request: %w", err)
	}

	return &barter, nil
}

func (r *barterRepository) SetConversation(ctx context.Context, id, conversationID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"conversation_id": conversationID, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to link conversation: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrNotFound
	}

	return nil
}

func (r *barterRepository) List(ctx context.Context, filter interfaces.BarterListFilter, params *utils.PaginationParams) ([]*models.BarterRequest, int64, error) {
	query := participantFilter(filter.UserID, filter.Direction)
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count barter requests: %w", err)
	}

	cursor, err := r.collection.Find(ctx, query, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find barter requests: %w", err)
	}
	defer cursor.Close(ctx)

	barters := make([]*models.BarterRequest, 0, params.GetLimit())
	for cursor.Next(ctx) {
		var barter models.BarterRequest
		if err := cursor.Decode(&barter); err != nil {
			return nil, 0, fmt.Errorf("failed to decode barter request: %w", err)
		}
		barters = append(barters, &barter)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate barter requests: %w", err)
	}

	return barters, total, nil
}

// CountStatusesForUser groups every request touching the user by status and
// by whether the user sent it. One pipeline gives a single snapshot, so the
// sent, received and per-status totals always agree.
func (r *barterRepository) CountStatusesForUser(ctx context.Context, userID primitive.ObjectID) ([]models.BarterStatusCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: participantFilter(userID, interfaces.BarterDirectionAll)}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"status": "$status",
				"sent":   bson.M{"$eq": bson.A{"$sender_id", userID}},
			},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":    0,
			"status": "$_id.status",
			"sent":   "$_id.sent",
			"count":  1,
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate barter statistics: %w", err)
	}
	defer cursor.Close(ctx)

	var counts []models.BarterStatusCount
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode barter statistics: %w", err)
	}

	return counts, nil
}

func (r *barterRepository) CountCompletedForUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	filter := participantFilter(userID, interfaces.BarterDirectionAll)
	filter["status"] = models.BarterStatusCompleted

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed barters: %w", err)
	}

	return count, nil
}

func (r *barterRepository) CompletedParticipants(ctx context.Context) ([]primitive.ObjectID, error) {
	filter := bson.M{"status": models.BarterStatusCompleted}

	senders, err := r.collection.Distinct(ctx, "sender_id", filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed senders: %w", err)
	}
	receivers, err := r.collection.Distinct(ctx, "receiver_id", filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed receivers: %w", err)
	}

	seen := make(map[primitive.ObjectID]struct{}, len(senders)+len(receivers))
	var ids []primitive.ObjectID
	for _, raw := range append(senders, receivers...) {
		id, ok := raw.(primitive.ObjectID)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids, nil
}

func participantFilter(userID primitive.ObjectID, direction interfaces.BarterDirection) bson.M {
	switch direction {
	case interfaces.BarterDirectionSent:
		return bson.M{"sender_id": userID}
	case interfaces.BarterDirectionReceived:
		return bson.M{"receiver_id": userID}
	default:
		return bson.M{"$or": bson.A{
			bson.M{"sender_id": userID},
			bson.M{"receiver_id": userID},
		}}
	}
}
