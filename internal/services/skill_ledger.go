package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"barterhub/internal/apperrors"
	"barterhub/internal/models"
	"barterhub/internal/repositories/interfaces"
)

// SkillLedger answers which user currently owns a skill.
type SkillLedger interface {
	// VerifyOwnership returns the skill when it exists, is active and is
	// offered by userID.
	VerifyOwnership(ctx context.Context, skillID, userID primitive.ObjectID) (*models.Skill, error)
}

type skillLedger struct {
	skillRepo interfaces.SkillRepository
}

func NewSkillLedger(skillRepo interfaces.SkillRepository) SkillLedger {
	return &skillLedger{skillRepo: skillRepo}
}

func (l *skillLedger) VerifyOwnership(ctx context.Context, skillID, userID primitive.ObjectID) (*models.Skill, error) {
	skill, err := l.skillRepo.GetByID(ctx, skillID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, apperrors.NotFound("Skill not found")
		}
		return nil, internalError(err)
	}

	if !skill.IsActive {
		return nil, apperrors.NotFound("Skill not found")
	}

	if !skill.IsOwnedBy(userID) {
		return nil, apperrors.Forbidden("Skill is not offered by this user")
	}

	return skill, nil
}
