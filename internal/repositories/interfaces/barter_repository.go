package interfaces

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"barterhub/internal/models"
	"barterhub/internal/utils"
)

type BarterDirection string

const (
	BarterDirectionAll      BarterDirection = "all"
	BarterDirectionSent     BarterDirection = "sent"
	BarterDirectionReceived BarterDirection = "received"
)

type BarterListFilter struct {
	UserID    primitive.ObjectID
	Direction BarterDirection
	// Empty matches every status.
	Status models.BarterStatus
}

// BarterUpdate lists the fields a conditional update may set. Nil fields are
// left untouched.
type BarterUpdate struct {
	Status          *models.BarterStatus
	CounterOffer    *models.CounterOffer
	RejectionReason *string
	CompletedAt     *time.Time
}

type BarterRepository interface {
	// Create returns ErrDuplicate when a pending request already exists for
	// the same sender, receiver and skill pair.
	Create(ctx context.Context, barter *models.BarterRequest) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.BarterRequest, error)
	ExistsPending(ctx context.Context, senderID, receiverID, offeredSkillID, requestedSkillID primitive.ObjectID) (bool, error)

	// UpdateIfStatus applies update only while the stored status is one of
	// allowedFrom and returns the document after the write. ErrStatusChanged
	// means nothing was written.
	UpdateIfStatus(ctx context.Context, id primitive.ObjectID, allowedFrom []models.BarterStatus, update BarterUpdate) (*models.BarterRequest, error)
	SetConversation(ctx context.Context, id, conversationID primitive.ObjectID) error

	List(ctx context.Context, filter BarterListFilter, params *utils.PaginationParams) ([]*models.BarterRequest, int64, error)

	// Statistics
	CountStatusesForUser(ctx context.Context, userID primitive.ObjectID) ([]models.BarterStatusCount, error)
	CountCompletedForUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	CompletedParticipants(ctx context.Context) ([]primitive.ObjectID, error)
}
