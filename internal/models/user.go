package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name" validate:"required,min=2,max=50"`
	Email         string             `json:"email" bson:"email" validate:"required,email"`
	Role          UserRole           `json:"role" bson:"role"`
	IsActive      bool               `json:"is_active" bson:"is_active"`
	AverageRating float64            `json:"average_rating" bson:"average_rating"`
	TotalReviews  int64              `json:"total_reviews" bson:"total_reviews"`
	TotalBarters  int64              `json:"total_barters" bson:"total_barters"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
