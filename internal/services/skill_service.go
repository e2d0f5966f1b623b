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

const (
	maxSkillTitleLength       = 100
	maxSkillDescriptionLength = 2000
)

type CreateSkillInput struct {
	Title        string
	Description  string
	CategoryID   primitive.ObjectID
	Tags         []string
	Level        models.SkillLevel
	DeliveryMode models.DeliveryMode
}

// SkillViewer identifies who is looking at skills. A zero UserID is an
// anonymous visitor.
type SkillViewer struct {
	UserID  primitive.ObjectID
	IsAdmin bool
}

type SkillService interface {
	CreateSkill(ctx context.Context, ownerID primitive.ObjectID, input CreateSkillInput) (*models.Skill, error)
	GetSkill(ctx context.Context, skillID primitive.ObjectID, viewer SkillViewer) (*models.Skill, error)
	ListSkills(ctx context.Context, filter interfaces.SkillListFilter, viewer SkillViewer, params *utils.PaginationParams) ([]*models.Skill, int64, error)
	DeleteSkill(ctx context.Context, skillID primitive.ObjectID, viewer SkillViewer) error
	SetVerificationStatus(ctx context.Context, skillID, adminID primitive.ObjectID, status models.VerificationStatus) (*models.Skill, error)
}

type skillService struct {
	skillRepo    interfaces.SkillRepository
	categoryRepo interfaces.CategoryRepository
	events       EventPublisher
	log          *logger.Logger
}

func NewSkillService(
	skillRepo interfaces.SkillRepository,
	categoryRepo interfaces.CategoryRepository,
	events EventPublisher,
	log *logger.Logger,
) SkillService {
	return &skillService{
		skillRepo:    skillRepo,
		categoryRepo: categoryRepo,
		events:       events,
		log:          log.WithField("service", "skill"),
	}
}

func (s *skillService) CreateSkill(ctx context.Context, ownerID primitive.ObjectID, input CreateSkillInput) (*models.Skill, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || utf8.RuneCountInString(title) > maxSkillTitleLength {
		return nil, apperrors.Validation("Title is required and cannot exceed 100 characters")
	}
	description := strings.TrimSpace(input.Description)
	if utf8.RuneCountInString(description) > maxSkillDescriptionLength {
		return nil, apperrors.Validation("Description cannot exceed 2000 characters")
	}
	if input.Level != "" && !input.Level.IsValid() {
		return nil, apperrors.Validation("Unknown skill level")
	}
	if input.DeliveryMode != "" && !input.DeliveryMode.IsValid() {
		return nil, apperrors.Validation("Unknown delivery mode")
	}

	category, err := s.categoryRepo.GetByID(ctx, input.CategoryID)
	if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		return nil, internalError(err)
	}
	if category == nil || !category.IsActive {
		return nil, apperrors.Validation("Invalid or inactive category")
	}

	skill := &models.Skill{
		Title:              title,
		Description:        description,
		CategoryID:         category.ID,
		Tags:               input.Tags,
		OfferedBy:          ownerID,
		Level:              input.Level,
		DeliveryMode:       input.DeliveryMode,
		IsActive:           true,
		VerificationStatus: models.VerificationStatusPending,
	}
	if skill.Level == "" {
		skill.Level = models.SkillLevelBeginner
	}
	if skill.DeliveryMode == "" {
		skill.DeliveryMode = models.DeliveryModeOnline
	}

	if err := s.skillRepo.Create(ctx, skill); err != nil {
		return nil, internalError(err)
	}

	s.log.LogUserAction(ownerID, "create_skill", map[string]interface{}{
		"skill_id":    skill.ID.Hex(),
		"category_id": skill.CategoryID.Hex(),
	})
	s.events.Publish(models.NewSkillEvent(models.EventSkillCreated, skill, ownerID))

	return skill, nil
}

// GetSkill hides skills that are not publicly listable from everyone but
// their owner and admins.
func (s *skillService) GetSkill(ctx context.Context, skillID primitive.ObjectID, viewer SkillViewer) (*models.Skill, error) {
	skill, err := s.getSkill(ctx, skillID)
	if err != nil {
		return nil, err
	}

	if !skill.IsListable() && !viewer.IsAdmin && !skill.IsOwnedBy(viewer.UserID) {
		return nil, apperrors.NotFound("Skill not found")
	}

	return skill, nil
}

func (s *skillService) ListSkills(ctx context.Context, filter interfaces.SkillListFilter, viewer SkillViewer, params *utils.PaginationParams) ([]*models.Skill, int64, error) {
	if filter.Level != "" && !filter.Level.IsValid() {
		return nil, 0, apperrors.Validation("Unknown skill level")
	}
	if filter.DeliveryMode != "" && !filter.DeliveryMode.IsValid() {
		return nil, 0, apperrors.Validation("Unknown delivery mode")
	}

	// pending and rejected skills are only listed for admins and for owners
	// browsing their own listings
	ownListing := filter.OfferedBy != nil && !viewer.UserID.IsZero() && *filter.OfferedBy == viewer.UserID
	if filter.IncludeUnverified && !viewer.IsAdmin && !ownListing {
		filter.IncludeUnverified = false
	}

	skills, total, err := s.skillRepo.List(ctx, filter, params)
	if err != nil {
		return nil, 0, internalError(err)
	}

	return skills, total, nil
}

func (s *skillService) DeleteSkill(ctx context.Context, skillID primitive.ObjectID, viewer SkillViewer) error {
	skill, err := s.getSkill(ctx, skillID)
	if err != nil {
		return err
	}

	if !skill.IsOwnedBy(viewer.UserID) && !viewer.IsAdmin {
		return apperrors.Forbidden("Not authorized to delete this skill")
	}

	deleted, err := s.skillRepo.Delete(ctx, skillID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return apperrors.NotFound("Skill not found")
		}
		return internalError(err)
	}

	s.log.LogUserAction(viewer.UserID, "delete_skill", map[string]interface{}{
		"skill_id": deleted.ID.Hex(),
		"owner_id": deleted.OfferedBy.Hex(),
	})
	s.events.Publish(models.NewSkillEvent(models.EventSkillDeleted, deleted, viewer.UserID))

	return nil
}

func (s *skillService) SetVerificationStatus(ctx context.Context, skillID, adminID primitive.ObjectID, status models.VerificationStatus) (*models.Skill, error) {
	if !status.IsValid() {
		return nil, apperrors.Validation("Verification status must be pending, approved or rejected")
	}

	skill, err := s.skillRepo.UpdateVerificationStatus(ctx, skillID, status)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, apperrors.NotFound("Skill not found")
		}
		return nil, internalError(err)
	}

	s.log.LogUserAction(adminID, "verify_skill", map[string]interface{}{
		"skill_id": skill.ID.Hex(),
		"status":   status,
	})

	return skill, nil
}

func (s *skillService) getSkill(ctx context.Context, skillID primitive.ObjectID) (*models.Skill, error) {
	skill, err := s.skillRepo.GetByID(ctx, skillID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, apperrors.NotFound("Skill not found")
		}
		return nil, internalError(err)
	}
	return skill, nil
}
