package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BarterStatus string
type BarterRole string

const (
	BarterStatusPending   BarterStatus = "pending"
	BarterStatusAccepted  BarterStatus = "accepted"
	BarterStatusRejected  BarterStatus = "rejected"
	BarterStatusCancelled BarterStatus = "cancelled"
	BarterStatusCompleted BarterStatus = "completed"

	BarterRoleSender   BarterRole = "sender"
	BarterRoleReceiver BarterRole = "receiver"
	BarterRoleNone     BarterRole = ""
)

const (
	MaxBarterMessageLength = 500
	MinReasonLength        = 10
	MaxReasonLength        = 500
)

// AllBarterStatuses lists every status in lifecycle order.
var AllBarterStatuses = []BarterStatus{
	BarterStatusPending,
	BarterStatusAccepted,
	BarterStatusRejected,
	BarterStatusCancelled,
	BarterStatusCompleted,
}

var barterTransitions = map[BarterStatus][]BarterStatus{
	BarterStatusPending:  {BarterStatusAccepted, BarterStatusRejected, BarterStatusCancelled},
	BarterStatusAccepted: {BarterStatusCompleted, BarterStatusCancelled},
}

type CounterOffer struct {
	Message        string             `json:"message" bson:"message"`
	OfferedSkillID primitive.ObjectID `json:"offered_skill_id" bson:"offered_skill_id"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
}

type BarterRequest struct {
	ID               primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	SenderID         primitive.ObjectID  `json:"sender_id" bson:"sender_id" validate:"required"`
	ReceiverID       primitive.ObjectID  `json:"receiver_id" bson:"receiver_id" validate:"required"`
	OfferedSkillID   primitive.ObjectID  `json:"offered_skill_id" bson:"offered_skill_id" validate:"required"`
	RequestedSkillID primitive.ObjectID  `json:"requested_skill_id" bson:"requested_skill_id" validate:"required"`
	Message          string              `json:"message,omitempty" bson:"message,omitempty" validate:"max=500"`
	Status           BarterStatus        `json:"status" bson:"status"`
	CounterOffer     *CounterOffer       `json:"counter_offer,omitempty" bson:"counter_offer,omitempty"`
	ConversationID   *primitive.ObjectID `json:"conversation_id,omitempty" bson:"conversation_id,omitempty"`
	RejectionReason  string              `json:"rejection_reason,omitempty" bson:"rejection_reason,omitempty"`
	CompletedAt      *time.Time          `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	CreatedAt        time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at" bson:"updated_at"`
}

// BarterStats is the per-user view over every request the user sent or received.
type BarterStats struct {
	Total    int64                  `json:"total"`
	Sent     int64                  `json:"sent"`
	Received int64                  `json:"received"`
	ByStatus map[BarterStatus]int64 `json:"by_status"`
}

// BarterStatusCount is one row of the per-user status aggregation.
type BarterStatusCount struct {
	Status BarterStatus `bson:"status"`
	Sent   bool         `bson:"sent"`
	Count  int64        `bson:"count"`
}

func (s BarterStatus) IsValid() bool {
	for _, status := range AllBarterStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (s BarterStatus) IsTerminal() bool {
	return s.IsValid() && len(barterTransitions[s]) == 0
}

func (s BarterStatus) CanTransitionTo(next BarterStatus) bool {
	for _, allowed := range barterTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (b *BarterRequest) RoleOf(userID primitive.ObjectID) BarterRole {
	switch userID {
	case b.SenderID:
		return BarterRoleSender
	case b.ReceiverID:
		return BarterRoleReceiver
	default:
		return BarterRoleNone
	}
}

func (b *BarterRequest) IsParticipant(userID primitive.ObjectID) bool {
	return b.RoleOf(userID) != BarterRoleNone
}

// OtherParty returns the participant that is not userID.
func (b *BarterRequest) OtherParty(userID primitive.ObjectID) primitive.ObjectID {
	if userID == b.SenderID {
		return b.ReceiverID
	}
	return b.SenderID
}

func (b *BarterRequest) IsActive() bool {
	return b.Status == BarterStatusPending || b.Status == BarterStatusAccepted
}
