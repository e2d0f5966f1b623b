package routes

import (
	"github.com/gin-gonic/gin"

	handlers "barterhub/internal/handlers/shared"
)

func SetupNotificationRoutes(r *gin.RouterGroup, notificationHandler *handlers.NotificationHandler) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", notificationHandler.GetNotifications)
		notifications.PUT("/read-all", notificationHandler.MarkAllAsRead)
		notifications.PUT("/:id/read", notificationHandler.MarkAsRead)
	}
}
