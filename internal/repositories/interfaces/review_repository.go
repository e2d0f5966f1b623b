package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"barterhub/internal/models"
	"barterhub/internal/utils"
)

type ReviewRepository interface {
	// Create returns ErrDuplicate when the reviewer already reviewed the barter.
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ExistsForReviewer(ctx context.Context, reviewerID, barterID primitive.ObjectID) (bool, error)

	ListByReviewee(ctx context.Context, revieweeID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Review, int64, error)
	ListByReviewer(ctx context.Context, reviewerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Review, int64, error)

	// SummaryForReviewee aggregates every review the user received. The
	// average is not rounded.
	SummaryForReviewee(ctx context.Context, revieweeID primitive.ObjectID) (models.RatingSummary, error)
	Reviewees(ctx context.Context) ([]primitive.ObjectID, error)
}
