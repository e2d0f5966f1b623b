package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"barterhub/internal/models"
	"barterhub/internal/repositories/interfaces"
)

const (
	UserCollection = "users"
	userCacheTTL   = 5 * time.Minute
)

type userRepository struct {
	collection *mongo.Collection
	cache      CacheService
}

func NewUserRepository(db *mongo.Database, cache CacheService) interfaces.UserRepository {
	return &userRepository{
		collection: db.Collection(UserCollection),
		cache:      cache,
	}
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if user := r.getUserFromCache(ctx, id); user != nil {
		return user, nil
	}

	return r.Reload(ctx, id)
}

func (r *userRepository) Reload(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	r.cacheUser(ctx, &user)

	return &user, nil
}

func (r *userRepository) IncrementTotalBarters(ctx context.Context, id primitive.ObjectID, delta int64) error {
	return r.update(ctx, id, bson.M{
		"$inc": bson.M{"total_barters": delta},
		"$set": bson.M{"updated_at": time.Now()},
	})
}

func (r *userRepository) SetTotalBarters(ctx context.Context, id primitive.ObjectID, total int64) error {
	return r.update(ctx, id, bson.M{
		"$set": bson.M{"total_barters": total, "updated_at": time.Now()},
	})
}

func (r *userRepository) UpdateRatingSummary(ctx context.Context, id primitive.ObjectID, summary models.RatingSummary) error {
	return r.update(ctx, id, bson.M{
		"$set": bson.M{
			"average_rating": summary.AverageRating,
			"total_reviews":  summary.TotalReviews,
			"updated_at":     time.Now(),
		},
	})
}

func (r *userRepository) update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrNotFound
	}

	r.invalidateUserCache(ctx, id)

	return nil
}

// Cache operations
func (r *userRepository) cacheUser(ctx context.Context, user *models.User) {
	if r.cache != nil {
		r.cache.Set(ctx, userCacheKey(user.ID), user, userCacheTTL)
	}
}

func (r *userRepository) getUserFromCache(ctx context.Context, id primitive.ObjectID) *models.User {
	if r.cache == nil {
		return nil
	}

	var user models.User
	if err := r.cache.Get(ctx, userCacheKey(id), &user); err != nil {
		return nil
	}

	return &user
}

func (r *userRepository) invalidateUserCache(ctx context.Context, id primitive.ObjectID) {
	if r.cache != nil {
		r.cache.Delete(ctx, userCacheKey(id))
	}
}

func userCacheKey(id primitive.ObjectID) string {
	return fmt.Sprintf("user_%s", id.Hex())
}
