package routes

import (
	"github.com/gin-gonic/gin"

	handlers "barterhub/internal/handlers/shared"
)

// SetupReviewRoutes registers public profile reviews and the authenticated
// review operations.
func SetupReviewRoutes(public, protected *gin.RouterGroup, reviewHandler *handlers.ReviewHandler) {
	public.GET("/reviews/user/:userId", reviewHandler.GetUserReviews)

	reviews := protected.Group("/reviews")
	{
		reviews.POST("", reviewHandler.CreateReview)
		reviews.GET("/my", reviewHandler.GetMyReviews)
		reviews.GET("/check/:barterId", reviewHandler.CheckCanReview)
		reviews.DELETE("/:id", reviewHandler.DeleteReview)
	}
}
