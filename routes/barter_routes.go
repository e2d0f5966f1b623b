package routes

import (
	"github.com/gin-gonic/gin"

	handlers "barterhub/internal/handlers/shared"
)

// SetupBarterRoutes expects r to be behind AuthRequired.
func SetupBarterRoutes(r *gin.RouterGroup, barterHandler *handlers.BarterHandler) {
	barters := r.Group("/barters")
	{
		barters.POST("", barterHandler.CreateBarter)
		barters.GET("/stats", barterHandler.GetBarterStats)
		barters.GET("/my", barterHandler.GetMyBarters)
		barters.GET("/:id", barterHandler.GetBarter)

		// Lifecycle
		barters.PUT("/:id/accept", barterHandler.AcceptBarter)
		barters.PUT("/:id/reject", barterHandler.RejectBarter)
		barters.PUT("/:id/counter", barterHandler.CounterBarter)
		barters.PUT("/:id/cancel", barterHandler.CancelBarter)
		barters.PUT("/:id/complete", barterHandler.CompleteBarter)
	}
}
