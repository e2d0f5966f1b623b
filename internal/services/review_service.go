package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"barterhub/internal/apperrors"
	"barterhub/internal/models"
	"barterhub/internal/repositories/interfaces"
	"barterhub/internal/utils"
	"barterhub/pkg/logger"
)

type CreateReviewInput struct {
	BarterID primitive.ObjectID
	Rating   int
	Comment  string
}

type ReviewService interface {
	CanReview(ctx context.Context, barterID, userID primitive.ObjectID) (*models.ReviewEligibility, error)
	CreateReview(ctx context.Context, reviewerID primitive.ObjectID, input CreateReviewInput) (*models.Review, error)
	DeleteReview(ctx context.Context, reviewID, actorID primitive.ObjectID, isAdmin bool) error

	ListUserReviews(ctx context.Context, revieweeID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Review, int64, error)
	ListMyReviews(ctx context.Context, reviewerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Review, int64, error)
}

type reviewService struct {
	reviewRepo interfaces.ReviewRepository
	barterRepo interfaces.BarterRepository
	ratings    RatingService
	events     EventPublisher
	log        *logger.Logger
	audit      *logger.AuditLogger
}

func NewReviewService(
	reviewRepo interfaces.ReviewRepository,
	barterRepo interfaces.BarterRepository,
	ratings RatingService,
	events EventPublisher,
	log *logger.Logger,
) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		barterRepo: barterRepo,
		ratings:    ratings,
		events:     events,
		log:        log.WithField("service", "review"),
		audit:      logger.NewAuditLogger(log),
	}
}

func (s *reviewService) CanReview(ctx context.Context, barterID, userID primitive.ObjectID) (*models.ReviewEligibility, error) {
	barter, err := s.getBarter(ctx, barterID)
	if err != nil {
		return nil, err
	}

	return s.eligibility(ctx, barter, userID)
}

func (s *reviewService) CreateReview(ctx context.Context, reviewerID primitive.ObjectID, input CreateReviewInput) (*models.Review, error) {
	if input.Rating < models.MinRating || input.Rating > models.MaxRating {
		return nil, apperrors.Validation("Rating must be between 1 and 5")
	}

	comment := strings.TrimSpace(input.Comment)
	if utf8.RuneCountInString(comment) > models.MaxReviewCommentLength {
		return nil, apperrors.Validation("Comment cannot exceed 500 characters")
	}

	barter, err := s.getBarter(ctx, input.BarterID)
	if err != nil {
		return nil, err
	}

	eligibility, err := s.eligibility(ctx, barter, reviewerID)
	if err != nil {
		return nil, err
	}
	if !eligibility.CanReview {
		return nil, apperrors.InvalidOperation("Only participants of a completed barter can leave a review")
	}
	if eligibility.AlreadyReviewed {
		return nil, duplicateReviewError()
	}

	review := &models.Review{
		ReviewerID: reviewerID,
		RevieweeID: barter.OtherParty(reviewerID),
		BarterID:   barter.ID,
		Rating:     input.Rating,
		Comment:    comment,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, interfaces.ErrDuplicate) {
			return nil, duplicateReviewError()
		}
		return nil, internalError(err)
	}

	s.recompute(ctx, review.RevieweeID)

	s.log.LogReviewEvent(review.ID, "created", review.Rating, review.RevieweeID)
	s.events.Publish(models.NewReviewEvent(models.EventReviewCreated, review, reviewerID))

	return review, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, reviewID, actorID primitive.ObjectID, isAdmin bool) error {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return apperrors.NotFound("Review not found")
		}
		return internalError(err)
	}

	if review.ReviewerID != actorID && !isAdmin {
		return apperrors.Forbidden("Not authorized to delete this review")
	}

	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return apperrors.NotFound("Review not found")
		}
		return internalError(err)
	}

	s.recompute(ctx, review.RevieweeID)

	if review.ReviewerID != actorID {
		s.audit.LogAction("delete", "review", &actorID, map[string]interface{}{
			"review_id":   review.ID.Hex(),
			"reviewer_id": review.ReviewerID.Hex(),
		})
	}
	s.log.LogReviewEvent(review.ID, "deleted", review.Rating, review.RevieweeID)
	s.events.Publish(models.NewReviewEvent(models.EventReviewDeleted, review, actorID))

	return nil
}

func (s *reviewService) ListUserReviews(ctx context.Context, revieweeID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Review, int64, error) {
	reviews, total, err := s.reviewRepo.ListByReviewee(ctx, revieweeID, params)
	if err != nil {
		return nil, 0, internalError(err)
	}
	return reviews, total, nil
}

func (s *reviewService) ListMyReviews(ctx context.Context, reviewerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Review, int64, error) {
	reviews, total, err := s.reviewRepo.ListByReviewer(ctx, reviewerID, params)
	if err != nil {
		return nil, 0, internalError(err)
	}
	return reviews, total, nil
}

func (s *reviewService) eligibility(ctx context.Context, barter *models.BarterRequest, userID primitive.ObjectID) (*models.ReviewEligibility, error) {
	exists, err := s.reviewRepo.ExistsForReviewer(ctx, userID, barter.ID)
	if err != nil {
		return nil, internalError(err)
	}

	return &models.ReviewEligibility{
		CanReview:       barter.Status == models.BarterStatusCompleted && barter.IsParticipant(userID),
		AlreadyReviewed: exists,
	}, nil
}

// recompute failures leave the review in place; the reconciler repairs the
// summary on its next run.
func (s *reviewService) recompute(ctx context.Context, revieweeID primitive.ObjectID) {
	if _, err := s.ratings.Recompute(ctx, revieweeID); err != nil {
		s.log.WithUserID(revieweeID).WithError(err).Error("Failed to recompute rating summary")
	}
}

func (s *reviewService) getBarter(ctx context.Context, barterID primitive.ObjectID) (*models.BarterRequest, error) {
	barter, err := s.barterRepo.GetByID(ctx, barterID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, apperrors.NotFound("Barter request not found")
		}
		return nil, internalError(err)
	}
	return barter, nil
}

func duplicateReviewError() error {
	return apperrors.Conflict("You have already reviewed this barter")
}
