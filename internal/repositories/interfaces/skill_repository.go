package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"barterhub/internal/models"
	"barterhub/internal/utils"
)

type SkillListFilter struct {
	CategoryID   *primitive.ObjectID
	OfferedBy    *primitive.ObjectID
	Level        models.SkillLevel
	DeliveryMode models.DeliveryMode
	Search       string
	// IncludeUnverified lists active skills whatever their verification
	// status. Otherwise only approved skills are returned.
	IncludeUnverified bool
}

type SkillRepository interface {
	Create(ctx context.Context, skill *models.Skill) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Skill, error)
	// Delete removes the skill and returns the document as it was.
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Skill, error)
	UpdateVerificationStatus(ctx context.Context, id primitive.ObjectID, status models.VerificationStatus) (*models.Skill, error)
	List(ctx context.Context, filter SkillListFilter, params *utils.PaginationParams) ([]*models.Skill, int64, error)
}

type CategoryRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	IncrementSkillCount(ctx context.Context, id primitive.ObjectID, delta int64) error
}
