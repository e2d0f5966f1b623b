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

const ReviewCollection = "reviews"

type reviewRepository struct {
	collection *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) interfaces.ReviewRepository {
	return &reviewRepository{
		collection: db.Collection(ReviewCollection),
	}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	review.ID = primitive.NewObjectID()
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt

	_, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		if isDuplicateKey(err) {
			return interfaces.ErrDuplicate
		}
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var review models.Review
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return &review, nil
}

func (r *reviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if result.DeletedCount == 0 {
		return interfaces.ErrNotFound
	}

	return nil
}

func (r *reviewRepository) ExistsForReviewer(ctx context.Context, reviewerID, barterID primitive.ObjectID) (bool, error) {
	filter := bson.M{"reviewer_id": reviewerID, "barter_id": barterID}

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check existing review: %w", err)
	}

	return count > 0, nil
}

func (r *reviewRepository) ListByReviewee(ctx context.Context, revieweeID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Review, int64, error) {
	return r.findReviewsWithFilter(ctx, bson.M{"reviewee_id": revieweeID}, params)
}

func (r *reviewRepository) ListByReviewer(ctx context.Context, reviewerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Review, int64, error) {
	return r.findReviewsWithFilter(ctx, bson.M{"reviewer_id": reviewerID}, params)
}

func (r *reviewRepository) SummaryForReviewee(ctx context.Context, revieweeID primitive.ObjectID) (models.RatingSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"reviewee_id": revieweeID}}},
		{{Key: "$group", Value: bson.M{
			"_id":            nil,
			"average_rating": bson.M{"$avg": "$rating"},
			"total_reviews":  bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return models.RatingSummary{}, fmt.Errorf("failed to calculate average rating: %w", err)
	}
	defer cursor.Close(ctx)

	var summary models.RatingSummary
	if cursor.Next(ctx) {
		if err := cursor.Decode(&summary); err != nil {
			return models.RatingSummary{}, fmt.Errorf("failed to decode rating summary: %w", err)
		}
	}
	if err := cursor.Err(); err != nil {
		return models.RatingSummary{}, fmt.Errorf("failed to read rating summary: %w", err)
	}

	return summary, nil
}

func (r *reviewRepository) Reviewees(ctx context.Context) ([]primitive.ObjectID, error) {
	values, err := r.collection.Distinct(ctx, "reviewee_id", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list reviewees: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(values))
	for _, value := range values {
		if id, ok := value.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}

	return ids, nil
}

func (r *reviewRepository) findReviewsWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Review, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := make([]*models.Review, 0, params.GetLimit())
	for cursor.Next(ctx) {
		var review models.Review
		if err := cursor.Decode(&review); err != nil {
			return nil, 0, fmt.Errorf("failed to decode review: %w", err)
		}
		reviews = append(reviews, &review)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate reviews: %w", err)
	}

	return reviews, total, nil
}
