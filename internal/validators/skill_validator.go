package validators

type CreateSkillRequest struct {
	Title        string   `json:"title" validate:"required,max=100"`
	Description  string   `json:"description" validate:"omitempty,max=2000"`
	CategoryID   string   `json:"category_id" validate:"required,object_id"`
	Tags         []string `json:"tags" validate:"omitempty,max=10,dive,max=30"`
	Level        string   `json:"level" validate:"omitempty,skill_level"`
	DeliveryMode string   `json:"delivery_mode" validate:"omitempty,delivery_mode"`
}

type ListSkillsQuery struct {
	Category     string `form:"category" validate:"omitempty,object_id"`
	UserID       string `form:"user_id" validate:"omitempty,object_id"`
	Level        string `form:"level" validate:"omitempty,skill_level"`
	DeliveryMode string `form:"delivery_mode" validate:"omitempty,delivery_mode"`
	Search       string `form:"search" validate:"omitempty,max=100"`
	ShowPending  bool   `form:"show_pending"`
}

type VerifySkillRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

func ValidateCreateSkill(req *CreateSkillRequest) ValidationErrors {
	req.Title = SanitizeInput(req.Title)
	req.Description = SanitizeInput(req.Description)
	for i := range req.Tags {
		req.Tags[i] = SanitizeInput(req.Tags[i])
	}
	return ValidateStruct(req)
}
