package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"barterhub/internal/services"
	"barterhub/internal/utils"
)

type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// GetNotifications lists the caller's notifications, optionally filtered by is_read
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var isRead *bool
	if raw := c.Query("is_read"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			utils.BadRequestResponse(c, "is_read must be true or false")
			return
		}
		isRead = &value
	}

	params := utils.GetPaginationParams(c)
	notifications, total, err := h.notificationService.List(c.Request.Context(), userID, isRead, params)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	unread, err := h.notificationService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Notifications retrieved successfully", gin.H{
		"notifications": notifications,
		"unread_count":  unread,
	}, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	notificationID, ok := paramObjectID(c, "id", "notification")
	if !ok {
		return
	}

	if err := h.notificationService.MarkAsRead(c.Request.Context(), notificationID, userID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Notification marked as read", nil)
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	count, err := h.notificationService.MarkAllAsRead(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "All notifications marked as read", gin.H{"updated": count})
}
