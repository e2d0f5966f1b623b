package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"barterhub/internal/apperrors"
	"barterhub/internal/models"
	"barterhub/internal/repositories/interfaces"
	"barterhub/internal/utils"
	"barterhub/pkg/logger"
)

type CreateBarterInput struct {
	ReceiverID       primitive.ObjectID
	OfferedSkillID   primitive.ObjectID
	RequestedSkillID primitive.ObjectID
	Message          string
}

type CounterOfferInput struct {
	Message        string
	OfferedSkillID primitive.ObjectID
}

type BarterService interface {
	CreateBarter(ctx context.Context, senderID primitive.ObjectID, input CreateBarterInput) (*models.BarterRequest, error)

	// Lifecycle
	Accept(ctx context.Context, barterID, actorID primitive.ObjectID) (*models.BarterRequest, error)
	Reject(ctx context.Context, barterID, actorID primitive.ObjectID, reason string) (*models.BarterRequest, error)
	CounterOffer(ctx context.Context, barterID, actorID primitive.ObjectID, input CounterOfferInput) (*models.BarterRequest, error)
	Cancel(ctx context.Context, barterID, actorID primitive.ObjectID) (*models.BarterRequest, error)
	Complete(ctx context.Context, barterID, actorID primitive.ObjectID) (*models.BarterRequest, error)

	// Queries
	GetBarter(ctx context.Context, barterID, userID primitive.ObjectID) (*models.BarterRequest, error)
	ListMyBarters(ctx context.Context, filter interfaces.BarterListFilter, params *utils.PaginationParams) ([]*models.BarterRequest, int64, error)
}

type barterService struct {
	barterRepo interfaces.BarterRepository
	userRepo   interfaces.UserRepository
	ledger     SkillLedger
	stats      StatsService
	events     EventPublisher
	log        *logger.Logger
}

func NewBarterService(
	barterRepo interfaces.BarterRepository,
	userRepo interfaces.UserRepository,
	ledger SkillLedger,
	stats StatsService,
	events EventPublisher,
	log *logger.Logger,
) BarterService {
	return &barterService{
		barterRepo: barterRepo,
		userRepo:   userRepo,
		ledger:     ledger,
		stats:      stats,
		events:     events,
		log:        log.WithField("service", "barter"),
	}
}

func (s *barterService) CreateBarter(ctx context.Context, senderID primitive.ObjectID, input CreateBarterInput) (*models.BarterRequest, error) {
	if senderID == input.ReceiverID {
		return nil, apperrors.Validation("You cannot send a barter request to yourself")
	}

	message := strings.TrimSpace(input.Message)
	if utf8.RuneCountInString(message) > models.MaxBarterMessageLength {
		return nil, apperrors.Validation("Message cannot exceed 500 characters")
	}

	// cached profiles can lag a deactivation
	receiver, err := s.userRepo.Reload(ctx, input.ReceiverID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, apperrors.NotFound("Receiver not found")
		}
		return nil, internalError(err)
	}
	if !receiver.IsActive {
		return nil, apperrors.NotFound("Receiver not found")
	}

	if _, err := s.ledger.VerifyOwnership(ctx, input.OfferedSkillID, senderID); err != nil {
		return nil, err
	}
	if _, err := s.ledger.VerifyOwnership(ctx, input.RequestedSkillID, input.ReceiverID); err != nil {
		return nil, err
	}

	exists, err := s.barterRepo.ExistsPending(ctx, senderID, input.ReceiverID, input.OfferedSkillID, input.RequestedSkillID)
	if err != nil {
		return nil, internalError(err)
	}
	if exists {
		return nil, duplicatePendingError()
	}

	barter := &models.BarterRequest{
		SenderID:         senderID,
		ReceiverID:       input.ReceiverID,
		OfferedSkillID:   input.OfferedSkillID,
		RequestedSkillID: input.RequestedSkillID,
		Message:          message,
		Status:           models.BarterStatusPending,
	}

	if err := s.barterRepo.Create(ctx, barter); err != nil {
		// lost a race against an identical request
		if errors.Is(err, interfaces.ErrDuplicate) {
			return nil, duplicatePendingError()
		}
		return nil, internalError(err)
	}

	s.log.LogBarterEvent(barter.ID, "created", map[string]interface{}{
		"sender_id":   senderID.Hex(),
		"receiver_id": input.ReceiverID.Hex(),
	})
	s.events.Publish(models.NewBarterEvent(models.EventBarterCreated, barter, senderID))

	return barter, nil
}

func (s *barterService) Accept(ctx context.Context, barterID, actorID primitive.ObjectID) (*models.BarterRequest, error) {
	return s.transition(ctx, barterID, actorID, actionAccept, nil)
}

func (s *barterService) Reject(ctx context.Context, barterID, actorID primitive.ObjectID, reason string) (*models.BarterRequest, error) {
	return s.transition(ctx, barterID, actorID, actionReject, func(ctx context.Context, barter *models.BarterRequest) (interfaces.BarterUpdate, error) {
		update := interfaces.BarterUpdate{}

		reason = strings.TrimSpace(reason)
		if reason == "" {
			return update, nil
		}
		if n := utf8.RuneCountInString(reason); n < models.MinReasonLength || n > models.MaxReasonLength {
			return update, apperrors.Validation("Reason must be between 10 and 500 characters")
		}

		update.RejectionReason = &reason
		return update, nil
	})
}

func (s *barterService) CounterOffer(ctx context.Context, barterID, actorID primitive.ObjectID, input CounterOfferInput) (*models.BarterRequest, error) {
	return s.transition(ctx, barterID, actorID, actionCounter, func(ctx context.Context, barter *models.BarterRequest) (interfaces.BarterUpdate, error) {
		message := strings.TrimSpace(input.Message)
		if n := utf8.RuneCountInString(message); n < models.MinReasonLength || n > models.MaxReasonLength {
			return interfaces.BarterUpdate{}, apperrors.Validation("Counter offer message must be between 10 and 500 characters")
		}

		// the counter skill must belong to the receiver, who is the actor here
		if _, err := s.ledger.VerifyOwnership(ctx, input.OfferedSkillID, actorID); err != nil {
			return interfaces.BarterUpdate{}, err
		}

		return interfaces.BarterUpdate{
			CounterOffer: &models.CounterOffer{
				Message:        message,
				OfferedSkillID: input.OfferedSkillID,
				CreatedAt:      time.Now(),
			},
		}, nil
	})
}

func (s *barterService) Cancel(ctx context.Context, barterID, actorID primitive.ObjectID) (*models.BarterRequest, error) {
	return s.transition(ctx, barterID, actorID, actionCancel, nil)
}

func (s *barterService) Complete(ctx context.Context, barterID, actorID primitive.ObjectID) (*models.BarterRequest, error) {
	ctx = logger.ContextWithBarterID(ctx, barterID)
	barter, err := s.transition(ctx, barterID, actorID, actionComplete, func(ctx context.Context, barter *models.BarterRequest) (interfaces.BarterUpdate, error) {
		now := time.Now()
		return interfaces.BarterUpdate{CompletedAt: &now}, nil
	})
	if err != nil {
		return nil, err
	}

	// the status write is committed; counters must not follow a client disconnect
	s.stats.RecordCompletion(context.WithoutCancel(ctx), barter.SenderID, barter.ReceiverID)

	return barter, nil
}

func (s *barterService) GetBarter(ctx context.Context, barterID, userID primitive.ObjectID) (*models.BarterRequest, error) {
	barter, err := s.getBarter(ctx, barterID)
	if err != nil {
		return nil, err
	}

	if !barter.IsParticipant(userID) {
		return nil, apperrors.Forbidden("Not authorized to view this barter request")
	}

	return barter, nil
}

func (s *barterService) ListMyBarters(ctx context.Context, filter interfaces.BarterListFilter, params *utils.PaginationParams) ([]*models.BarterRequest, int64, error) {
	switch filter.Direction {
	case "":
		filter.Direction = interfaces.BarterDirectionAll
	case interfaces.BarterDirectionAll, interfaces.BarterDirectionSent, interfaces.BarterDirectionReceived:
	default:
		return nil, 0, apperrors.Validation("Type must be one of sent, received or all")
	}

	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, apperrors.Validation("Unknown barter status")
	}

	barters, total, err := s.barterRepo.List(ctx, filter, params)
	if err != nil {
		return nil, 0, internalError(err)
	}

	return barters, total, nil
}

type prepareUpdate func(ctx context.Context, barter *models.BarterRequest) (interfaces.BarterUpdate, error)

// transition runs one lifecycle action. It loads the request, checks the
// actor's role and then the status, builds the update and writes it with a
// status precondition. When another writer got there first
// the request is re-read and the caller learns the status that won.
func (s *barterService) transition(ctx context.Context, barterID, actorID primitive.ObjectID, action barterAction, prepare prepareUpdate) (*models.BarterRequest, error) {
	rule := actionRules[action]

	barter, err := s.getBarter(ctx, barterID)
	if err != nil {
		return nil, err
	}

	if err := rule.authorize(action, barter, actorID); err != nil {
		return nil, err
	}

	update := interfaces.BarterUpdate{}
	if prepare != nil {
		if update, err = prepare(ctx, barter); err != nil {
			return nil, err
		}
	}
	if rule.changesStatus() {
		to := rule.to
		update.Status = &to
	}

	updated, err := s.barterRepo.UpdateIfStatus(ctx, barterID, rule.from, update)
	if err != nil {
		if errors.Is(err, interfaces.ErrStatusChanged) {
			return nil, s.staleTransition(ctx, barterID, action)
		}
		return nil, internalError(err)
	}

	s.log.WithUserID(actorID).LogBarterEvent(updated.ID, string(action), map[string]interface{}{
		"from":   barter.Status,
		"status": updated.Status,
	})
	s.events.Publish(models.NewBarterEvent(rule.event, updated, actorID))

	return updated, nil
}

func (s *barterService) staleTransition(ctx context.Context, barterID primitive.ObjectID, action barterAction) error {
	current, err := s.getBarter(ctx, barterID)
	if err != nil {
		return err
	}
	s.log.WithBarterID(barterID).WithField("status", current.Status).Debugf("Lost %s to a concurrent update", action)
	return apperrors.InvalidTransition(string(action), current.Status)
}

func (s *barterService) getBarter(ctx context.Context, barterID primitive.ObjectID) (*models.BarterRequest, error) {
	barter, err := s.barterRepo.GetByID(ctx, barterID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, apperrors.NotFound("Barter request not found")
		}
		return nil, internalError(err)
	}
	return barter, nil
}

func duplicatePendingError() error {
	return apperrors.Conflict("You already have a pending request for this skill exchange")
}
