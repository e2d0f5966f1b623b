package validators

type CreateBarterRequest struct {
	ReceiverID       string `json:"receiver_id" validate:"required,object_id"`
	OfferedSkillID   string `json:"offered_skill_id" validate:"required,object_id"`
	RequestedSkillID string `json:"requested_skill_id" validate:"required,object_id"`
	Message          string `json:"message" validate:"omitempty,max=500"`
}

type RejectBarterRequest struct {
	Reason string `json:"reason" validate:"omitempty,min=10,max=500"`
}

type CounterOfferRequest struct {
	Message        string `json:"message" validate:"required,min=10,max=500"`
	OfferedSkillID string `json:"offered_skill_id" validate:"required,object_id"`
}

type ListBartersQuery struct {
	Type   string `form:"type" validate:"omitempty,oneof=sent received all"`
	Status string `form:"status" validate:"omitempty,barter_status"`
}

func ValidateCreateBarter(req *CreateBarterRequest) ValidationErrors {
	req.Message = SanitizeInput(req.Message)
	return ValidateStruct(req)
}

func ValidateRejectBarter(req *RejectBarterRequest) ValidationErrors {
	req.Reason = SanitizeInput(req.Reason)
	return ValidateStruct(req)
}

func ValidateCounterOffer(req *CounterOfferRequest) ValidationErrors {
	req.Message = SanitizeInput(req.Message)
	return ValidateStruct(req)
}
