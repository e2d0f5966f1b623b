package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"barterhub/internal/apperrors"
	"barterhub/internal/models"
	"barterhub/internal/repositories/interfaces"
	"barterhub/internal/utils"
	"barterhub/pkg/logger"
)

type NotificationService interface {
	// HandleEvent turns a domain event into a stored notification for the
	// affected user and pushes it on that user's channel.
	HandleEvent(ctx context.Context, event *models.DomainEvent) error

	List(ctx context.Context, userID primitive.ObjectID, isRead *bool, params *utils.PaginationParams) ([]*models.Notification, int64, error)
	UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkAsRead(ctx context.Context, notificationID, userID primitive.ObjectID) error
	MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type notificationTemplate struct {
	notificationType models.NotificationType
	format           string
}

var notificationTemplates = map[models.EventType]notificationTemplate{
	models.EventBarterCreated:   {models.NotificationTypeBarterRequest, "%s sent you a barter request"},
	models.EventBarterAccepted:  {models.NotificationTypeBarterAccepted, "%s accepted your barter request"},
	models.EventBarterRejected:  {models.NotificationTypeBarterRejected, "%s declined your barter request"},
	models.EventBarterCountered: {models.NotificationTypeBarterCountered, "%s sent you a counter offer"},
	models.EventBarterCancelled: {models.NotificationTypeBarterCancelled, "%s cancelled the barter request"},
	models.EventBarterCompleted: {models.NotificationTypeBarterCompleted, "%s marked your barter as completed"},
	models.EventReviewCreated:   {models.NotificationTypeReviewReceived, "%s left you a review"},
}

type notificationService struct {
	notificationRepo interfaces.NotificationRepository
	userRepo         interfaces.UserRepository
	publisher        MessagePublisher
	channelPrefix    string
	log              *logger.Logger
}

func NewNotificationService(
	notificationRepo interfaces.NotificationRepository,
	userRepo interfaces.UserRepository,
	publisher MessagePublisher,
	channelPrefix string,
	log *logger.Logger,
) NotificationService {
	if channelPrefix == "" {
		channelPrefix = "notifications"
	}

	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		publisher:        publisher,
		channelPrefix:    channelPrefix,
		log:              log.WithField("service", "notification"),
	}
}

func (s *notificationService) HandleEvent(ctx context.Context, event *models.DomainEvent) error {
	template, ok := notificationTemplates[event.Type]
	if !ok {
		return nil
	}
	if event.RecipientID.IsZero() || event.RecipientID == event.ActorID {
		return nil
	}

	actorID := event.ActorID
	notification := &models.Notification{
		RecipientID: event.RecipientID,
		SenderID:    &actorID,
		Type:        template.notificationType,
		Message:     fmt.Sprintf(template.format, s.displayName(ctx, actorID)),
		Data:        map[string]interface{}{"event_id": event.ID},
	}

	switch {
	case event.Barter != nil:
		notification.Link = "/barters/" + event.Barter.ID.Hex()
		notification.Data["barter_id"] = event.Barter.ID.Hex()
		notification.Data["status"] = event.Barter.Status
	case event.Review != nil:
		notification.Link = "/reviews"
		notification.Data["review_id"] = event.Review.ID.Hex()
		notification.Data["rating"] = event.Review.Rating
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, s.channelFor(notification.RecipientID), notification); err != nil {
			// stored already; clients pick it up on their next fetch
			s.log.WithUserID(notification.RecipientID).WithError(err).Warn("Failed to publish notification")
		}
	}

	return nil
}

func (s *notificationService) List(ctx context.Context, userID primitive.ObjectID, isRead *bool, params *utils.PaginationParams) ([]*models.Notification, int64, error) {
	notifications, total, err := s.notificationRepo.List(ctx, userID, isRead, params)
	if err != nil {
		return nil, 0, internalError(err)
	}
	return notifications, total, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, internalError(err)
	}
	return count, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, notificationID, userID primitive.ObjectID) error {
	if err := s.notificationRepo.MarkAsRead(ctx, notificationID, userID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return apperrors.NotFound("Notification not found")
		}
		return internalError(err)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := s.notificationRepo.MarkAllAsRead(ctx, userID)
	if err != nil {
		return 0, internalError(err)
	}
	return count, nil
}

func (s *notificationService) displayName(ctx context.Context, userID primitive.ObjectID) string {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user.Name == "" {
		return "Someone"
	}
	return user.Name
}

func (s *notificationService) channelFor(userID primitive.ObjectID) string {
	return fmt.Sprintf("%s:user_%s", s.channelPrefix, userID.Hex())
}
