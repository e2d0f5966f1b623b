package services

import (
	"context"
	"errors"
	"fmt"

	"barterhub/internal/models"
	"barterhub/internal/repositories/interfaces"
	"barterhub/pkg/logger"
)

// SkillCounter keeps Category.SkillCount in step with active skills. It runs
// as an event handler after the skill write has committed.
type SkillCounter interface {
	HandleSkillEvent(ctx context.Context, event *models.DomainEvent) error
}

type skillCounter struct {
	categoryRepo interfaces.CategoryRepository
	log          *logger.Logger
}

func NewSkillCounter(categoryRepo interfaces.CategoryRepository, log *logger.Logger) SkillCounter {
	return &skillCounter{
		categoryRepo: categoryRepo,
		log:          log.WithField("handler", "skill_counter"),
	}
}

func (c *skillCounter) HandleSkillEvent(ctx context.Context, event *models.DomainEvent) error {
	skill := event.Skill
	if skill == nil || !skill.IsActive || skill.CategoryID.IsZero() {
		return nil
	}

	var delta int64
	switch event.Type {
	case models.EventSkillCreated:
		delta = 1
	case models.EventSkillDeleted:
		delta = -1
	default:
		return nil
	}

	if err := c.categoryRepo.IncrementSkillCount(ctx, skill.CategoryID, delta); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			c.log.WithField("category_id", skill.CategoryID.Hex()).Warn("Skill count not updated, category is gone")
			return nil
		}
		return fmt.Errorf("failed to update skill count: %w", err)
	}

	return nil
}
