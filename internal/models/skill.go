package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SkillLevel string
type DeliveryMode string
type VerificationStatus string

const (
	SkillLevelBeginner     SkillLevel = "beginner"
	SkillLevelIntermediate SkillLevel = "intermediate"
	SkillLevelAdvanced     SkillLevel = "advanced"

	DeliveryModeOnline   DeliveryMode = "online"
	DeliveryModeInPerson DeliveryMode = "in-person"
	DeliveryModeBoth     DeliveryMode = "both"

	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusApproved VerificationStatus = "approved"
	VerificationStatusRejected VerificationStatus = "rejected"
)

type Skill struct {
	ID                 primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title              string             `json:"title" bson:"title" validate:"required,max=100"`
	Description        string             `json:"description" bson:"description" validate:"max=2000"`
	CategoryID         primitive.ObjectID `json:"category_id" bson:"category_id"`
	Tags               []string           `json:"tags" bson:"tags"`
	OfferedBy          primitive.ObjectID `json:"offered_by" bson:"offered_by" validate:"required"`
	Level              SkillLevel         `json:"level" bson:"level"`
	DeliveryMode       DeliveryMode       `json:"delivery_mode" bson:"delivery_mode"`
	IsActive           bool               `json:"is_active" bson:"is_active"`
	VerificationStatus VerificationStatus `json:"verification_status" bson:"verification_status"`
	CreatedAt          time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" bson:"updated_at"`
}

// IsListable reports whether the skill may appear in public listings.
func (s *Skill) IsListable() bool {
	return s.IsActive && s.VerificationStatus == VerificationStatusApproved
}

func (s *Skill) IsOwnedBy(userID primitive.ObjectID) bool {
	return s.OfferedBy == userID
}

func (l SkillLevel) IsValid() bool {
	switch l {
	case SkillLevelBeginner, SkillLevelIntermediate, SkillLevelAdvanced:
		return true
	}
	return false
}

func (m DeliveryMode) IsValid() bool {
	switch m {
	case DeliveryModeOnline, DeliveryModeInPerson, DeliveryModeBoth:
		return true
	}
	return false
}

func (v VerificationStatus) IsValid() bool {
	switch v {
	case VerificationStatusPending, VerificationStatusApproved, VerificationStatusRejected:
		return true
	}
	return false
}
