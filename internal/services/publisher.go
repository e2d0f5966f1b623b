package services

import (
	"context"

	"barterhub/internal/apperrors"
	"barterhub/internal/models"
)

// EventPublisher hands domain events to asynchronous subscribers.
type EventPublisher interface {
	Publish(event *models.DomainEvent)
}

// MessagePublisher delivers a JSON payload on a named channel (Redis pub/sub
// in production).
type MessagePublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

func internalError(err error) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	return apperrors.Internal(err)
}
