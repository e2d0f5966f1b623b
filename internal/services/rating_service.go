package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"barterhub/internal/models"
	"barterhub/internal/repositories/interfaces"
)

// RatingService keeps a user's average_rating and total_reviews in line with
// the reviews on record.
type RatingService interface {
	Recompute(ctx context.Context, revieweeID primitive.ObjectID) (models.RatingSummary, error)
}

type ratingService struct {
	reviewRepo interfaces.ReviewRepository
	userRepo   interfaces.UserRepository
}

func NewRatingService(reviewRepo interfaces.ReviewRepository, userRepo interfaces.UserRepository) RatingService {
	return &ratingService{
		reviewRepo: reviewRepo,
		userRepo:   userRepo,
	}
}

// Recompute aggregates every review of the user from scratch. With no reviews
// left the summary is zero.
func (s *ratingService) Recompute(ctx context.Context, revieweeID primitive.ObjectID) (models.RatingSummary, error) {
	summary, err := s.reviewRepo.SummaryForReviewee(ctx, revieweeID)
	if err != nil {
		return models.RatingSummary{}, internalError(err)
	}

	if summary.TotalReviews == 0 {
		summary = models.RatingSummary{}
	} else {
		summary.AverageRating = models.RoundRating(summary.AverageRating)
	}

	if err := s.userRepo.UpdateRatingSummary(ctx, revieweeID, summary); err != nil {
		return models.RatingSummary{}, internalError(err)
	}

	return summary, nil
}
