package validators

type CreateReviewRequest struct {
	BarterID string `json:"barter_id" validate:"required,object_id"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Comment  string `json:"comment" validate:"omitempty,max=500"`
}

func ValidateCreateReview(req *CreateReviewRequest) ValidationErrors {
	req.Comment = SanitizeInput(req.Comment)
	return ValidateStruct(req)
}
