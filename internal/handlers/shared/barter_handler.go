package handlers

import (
	"github.com/gin-gonic/gin"

	"barterhub/internal/models"
	"barterhub/internal/repositories/interfaces"
	"barterhub/internal/services"
	"barterhub/internal/utils"
	"barterhub/internal/validators"
)

type BarterHandler struct {
	barterService services.BarterService
	statsService  services.StatsService
}

func NewBarterHandler(barterService services.BarterService, statsService services.StatsService) *BarterHandler {
	return &BarterHandler{
		barterService: barterService,
		statsService:  statsService,
	}
}

// CreateBarter sends a new barter request to another user
func (h *BarterHandler) CreateBarter(c *gin.Context) {
	senderID, ok := currentUser(c)
	if !ok {
		return
	}

	var req validators.CreateBarterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateCreateBarter(&req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	barter, err := h.barterService.CreateBarter(c.Request.Context(), senderID, services.CreateBarterInput{
		ReceiverID:       mustObjectID(req.ReceiverID),
		OfferedSkillID:   mustObjectID(req.OfferedSkillID),
		RequestedSkillID: mustObjectID(req.RequestedSkillID),
		Message:          req.Message,
	})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Barter request sent successfully", barter)
}

// GetBarterStats returns the caller's request counts by direction and status
func (h *BarterHandler) GetBarterStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.statsService.StatsFor(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Barter statistics retrieved successfully", stats)
}

// GetMyBarters lists requests the caller sent and/or received
func (h *BarterHandler) GetMyBarters(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var query validators.ListBartersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequestResponse(c, "Invalid query parameters")
		return
	}
	if errs := validators.ValidateStruct(&query); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	params := utils.GetPaginationParams(c, "updated_at", "status")
	filter := interfaces.BarterListFilter{
		UserID:    userID,
		Direction: interfaces.BarterDirection(query.Type),
		Status:    models.BarterStatus(query.Status),
	}

	barters, total, err := h.barterService.ListMyBarters(c.Request.Context(), filter, params)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Barter requests retrieved successfully", barters, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// GetBarter returns one request the caller takes part in
func (h *BarterHandler) GetBarter(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	barterID, ok := paramObjectID(c, "id", "barter")
	if !ok {
		return
	}

	barter, err := h.barterService.GetBarter(c.Request.Context(), barterID, userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Barter request retrieved successfully", barter)
}

func (h *BarterHandler) AcceptBarter(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	barterID, ok := paramObjectID(c, "id", "barter")
	if !ok {
		return
	}

	barter, err := h.barterService.Accept(c.Request.Context(), barterID, userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Barter request accepted", barter)
}

// RejectBarter declines a pending request. The reason is optional.
func (h *BarterHandler) RejectBarter(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	barterID, ok := paramObjectID(c, "id", "barter")
	if !ok {
		return
	}

	var req validators.RejectBarterRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateRejectBarter(&req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	barter, err := h.barterService.Reject(c.Request.Context(), barterID, userID, req.Reason)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Barter request rejected", barter)
}

func (h *BarterHandler) CounterBarter(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	barterID, ok := paramObjectID(c, "id", "barter")
	if !ok {
		return
	}

	var req validators.CounterOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateCounterOffer(&req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	barter, err := h.barterService.CounterOffer(c.Request.Context(), barterID, userID, services.CounterOfferInput{
		Message:        req.Message,
		OfferedSkillID: mustObjectID(req.OfferedSkillID),
	})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Counter offer sent", barter)
}

func (h *BarterHandler) CancelBarter(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	barterID, ok := paramObjectID(c, "id", "barter")
	if !ok {
		return
	}

	barter, err := h.barterService.Cancel(c.Request.Context(), barterID, userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Barter request cancelled", barter)
}

func (h *BarterHandler) CompleteBarter(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	barterID, ok := paramObjectID(c, "id", "barter")
	if !ok {
		return
	}

	barter, err := h.barterService.Complete(c.Request.Context(), barterID, userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Barter marked as completed", barter)
}
