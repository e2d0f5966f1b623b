package handlers

import (
	"github.com/gin-gonic/gin"

	"barterhub/internal/middleware"
	"barterhub/internal/models"
	"barterhub/internal/repositories/interfaces"
	"barterhub/internal/services"
	"barterhub/internal/utils"
	"barterhub/internal/validators"
)

type SkillHandler struct {
	skillService services.SkillService
}

func NewSkillHandler(skillService services.SkillService) *SkillHandler {
	return &SkillHandler{
		skillService: skillService,
	}
}

// viewer describes the caller; anonymous on public routes without a token.
func viewer(c *gin.Context) services.SkillViewer {
	userID, _ := middleware.GetUserID(c)
	return services.SkillViewer{UserID: userID, IsAdmin: middleware.IsAdmin(c)}
}

// CreateSkill lists a new skill for the caller. It stays pending until an
// admin approves it.
func (h *SkillHandler) CreateSkill(c *gin.Context) {
	ownerID, ok := currentUser(c)
	if !ok {
		return
	}

	var req validators.CreateSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateCreateSkill(&req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	skill, err := h.skillService.CreateSkill(c.Request.Context(), ownerID, services.CreateSkillInput{
		Title:        req.Title,
		Description:  req.Description,
		CategoryID:   mustObjectID(req.CategoryID),
		Tags:         req.Tags,
		Level:        models.SkillLevel(req.Level),
		DeliveryMode: models.DeliveryMode(req.DeliveryMode),
	})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Skill created successfully", skill)
}

// ListSkills browses approved skills. show_pending widens the listing for
// admins and for owners filtering on their own user_id.
func (h *SkillHandler) ListSkills(c *gin.Context) {
	var query validators.ListSkillsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequestResponse(c, "Invalid query parameters")
		return
	}
	if errs := validators.ValidateStruct(&query); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	filter := interfaces.SkillListFilter{
		Level:             models.SkillLevel(query.Level),
		DeliveryMode:      models.DeliveryMode(query.DeliveryMode),
		Search:            query.Search,
		IncludeUnverified: query.ShowPending,
	}
	if query.Category != "" {
		categoryID := mustObjectID(query.Category)
		filter.CategoryID = &categoryID
	}
	if query.UserID != "" {
		ownerID := mustObjectID(query.UserID)
		filter.OfferedBy = &ownerID
	}

	params := utils.GetPaginationParams(c, "title", "updated_at")
	skills, total, err := h.skillService.ListSkills(c.Request.Context(), filter, viewer(c), params)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Skills retrieved successfully", skills, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

func (h *SkillHandler) GetSkill(c *gin.Context) {
	skillID, ok := paramObjectID(c, "id", "skill")
	if !ok {
		return
	}

	skill, err := h.skillService.GetSkill(c.Request.Context(), skillID, viewer(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Skill retrieved successfully", skill)
}

// DeleteSkill removes a skill. Only its owner or an admin may do so.
func (h *SkillHandler) DeleteSkill(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}
	skillID, ok := paramObjectID(c, "id", "skill")
	if !ok {
		return
	}

	if err := h.skillService.DeleteSkill(c.Request.Context(), skillID, viewer(c)); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Skill deleted successfully", nil)
}

// VerifySkill sets the verification status of a skill (admin only)
func (h *SkillHandler) VerifySkill(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}
	skillID, ok := paramObjectID(c, "id", "skill")
	if !ok {
		return
	}

	var req validators.VerifySkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateStruct(&req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	skill, err := h.skillService.SetVerificationStatus(c.Request.Context(), skillID, adminID, models.VerificationStatus(req.Status))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Skill verification updated", skill)
}
