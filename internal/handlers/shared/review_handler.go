package handlers

import (
	"github.com/gin-gonic/gin"

	"barterhub/internal/middleware"
	"barterhub/internal/services"
	"barterhub/internal/utils"
	"barterhub/internal/validators"
)

type ReviewHandler struct {
	reviewService services.ReviewService
}

func NewReviewHandler(reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

// CreateReview rates the other participant of a completed barter
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	reviewerID, ok := currentUser(c)
	if !ok {
		return
	}

	var req validators.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateCreateReview(&req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), reviewerID, services.CreateReviewInput{
		BarterID: mustObjectID(req.BarterID),
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Review submitted successfully", review)
}

// CheckCanReview reports whether the caller may review the barter
func (h *ReviewHandler) CheckCanReview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	barterID, ok := paramObjectID(c, "barterId", "barter")
	if !ok {
		return
	}

	eligibility, err := h.reviewService.CanReview(c.Request.Context(), barterID, userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Review eligibility retrieved successfully", eligibility)
}

func (h *ReviewHandler) GetMyReviews(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c, "rating")
	reviews, total, err := h.reviewService.ListMyReviews(c.Request.Context(), userID, params)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Reviews retrieved successfully", reviews, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

func (h *ReviewHandler) GetUserReviews(c *gin.Context) {
	revieweeID, ok := paramObjectID(c, "userId", "user")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c, "rating")
	reviews, total, err := h.reviewService.ListUserReviews(c.Request.Context(), revieweeID, params)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Reviews retrieved successfully", reviews, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// DeleteReview removes a review. Only its author or an admin may do so.
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	reviewID, ok := paramObjectID(c, "id", "review")
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), reviewID, userID, middleware.IsAdmin(c)); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Review deleted successfully", nil)
}
