package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinRating              = 1
	MaxRating              = 5
	MaxReviewCommentLength = 500
)

type Review struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ReviewerID primitive.ObjectID `json:"reviewer_id" bson:"reviewer_id" validate:"required"`
	RevieweeID primitive.ObjectID `json:"reviewee_id" bson:"reviewee_id" validate:"required"`
	BarterID   primitive.ObjectID `json:"barter_id" bson:"barter_id" validate:"required"`
	Rating     int                `json:"rating" bson:"rating" validate:"required,min=1,max=5"`
	Comment    string             `json:"comment,omitempty" bson:"comment,omitempty" validate:"max=500"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}

type ReviewEligibility struct {
	CanReview       bool `json:"can_review"`
	AlreadyReviewed bool `json:"already_reviewed"`
}

// RatingSummary is the aggregate written back onto the reviewed user.
type RatingSummary struct {
	AverageRating float64 `json:"average_rating" bson:"average_rating"`
	TotalReviews  int64   `json:"total_reviews" bson:"total_reviews"`
}

// RoundRating rounds an average to one decimal place.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
