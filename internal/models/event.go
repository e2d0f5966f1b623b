package models

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventType string

const (
	EventBarterCreated   EventType = "barter.created"
	EventBarterAccepted  EventType = "barter.accepted"
	EventBarterRejected  EventType = "barter.rejected"
	EventBarterCountered EventType = "barter.countered"
	EventBarterCancelled EventType = "barter.cancelled"
	EventBarterCompleted EventType = "barter.completed"
	EventReviewCreated   EventType = "review.created"
	EventReviewDeleted   EventType = "review.deleted"
	EventSkillCreated    EventType = "skill.created"
	EventSkillDeleted    EventType = "skill.deleted"
)

// DomainEvent records something that already happened to a barter, review or
// skill.
// Subscribers react to it after the originating write has committed.
type DomainEvent struct {
	ID          string                 `json:"id"`
	Type        EventType              `json:"type"`
	ActorID     primitive.ObjectID     `json:"actor_id"`
	RecipientID primitive.ObjectID     `json:"recipient_id"`
	Barter      *BarterRequest         `json:"barter,omitempty"`
	Review      *Review                `json:"review,omitempty"`
	Skill       *Skill                 `json:"skill,omitempty"`
	Data        map[string]interface{} `json:"data,omitempty"`
	OccurredAt  time.Time              `json:"occurred_at"`
}

func NewBarterEvent(eventType EventType, barter *BarterRequest, actorID primitive.ObjectID) *DomainEvent {
	return &DomainEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		ActorID:     actorID,
		RecipientID: barter.OtherParty(actorID),
		Barter:      barter,
		OccurredAt:  time.Now(),
	}
}

func NewReviewEvent(eventType EventType, review *Review, actorID primitive.ObjectID) *DomainEvent {
	return &DomainEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		ActorID:     actorID,
		RecipientID: review.RevieweeID,
		Review:      review,
		OccurredAt:  time.Now(),
	}
}

func NewSkillEvent(eventType EventType, skill *Skill, actorID primitive.ObjectID) *DomainEvent {
	return &DomainEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		ActorID:     actorID,
		RecipientID: skill.OfferedBy,
		Skill:       skill,
		OccurredAt:  time.Now(),
	}
}
