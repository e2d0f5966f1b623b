package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"barterhub/internal/models"
)

type UserRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// Reload skips the cache and refreshes it from the stored document.
	Reload(ctx context.Context, id primitive.ObjectID) (*models.User, error)

	// Denormalized counters
	IncrementTotalBarters(ctx context.Context, id primitive.ObjectID, delta int64) error
	SetTotalBarters(ctx context.Context, id primitive.ObjectID, total int64) error
	UpdateRatingSummary(ctx context.Context, id primitive.ObjectID, summary models.RatingSummary) error
}
