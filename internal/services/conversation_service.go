package services

import (
	"context"
	"fmt"

	"barterhub/internal/models"
	"barterhub/internal/repositories/interfaces"
)

// ConversationService opens the chat thread between two users once their
// barter is accepted.
type ConversationService interface {
	HandleBarterAccepted(ctx context.Context, event *models.DomainEvent) error
}

type conversationService struct {
	conversationRepo interfaces.ConversationRepository
	barterRepo       interfaces.BarterRepository
}

func NewConversationService(conversationRepo interfaces.ConversationRepository, barterRepo interfaces.BarterRepository) ConversationService {
	return &conversationService{
		conversationRepo: conversationRepo,
		barterRepo:       barterRepo,
	}
}

func (s *conversationService) HandleBarterAccepted(ctx context.Context, event *models.DomainEvent) error {
	barter := event.Barter
	if barter == nil || barter.Status != models.BarterStatusAccepted {
		return nil
	}

	barterID := barter.ID
	conversation, err := s.conversationRepo.GetOrCreate(ctx, barter.SenderID, barter.ReceiverID, &barterID)
	if err != nil {
		return err
	}

	if err := s.barterRepo.SetConversation(ctx, barterID, conversation.ID); err != nil {
		return fmt.Errorf("failed to link conversation to barter %s: %w", barterID.Hex(), err)
	}

	return nil
}
