package controllers

import (
	"net/http"
	"strconv"

	"github.com/Njoroge/sokoni-api/middlewares"
	"github.com/Njoroge/sokoni-api/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type NotificationController struct {
	db *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{db: db}
}

func (c *NotificationController) GetNotifications(ctx *gin.Context) {
	user, _ := middlewares.CurrentUser(ctx)

	var notifications []models.Notification
	result := c.db.Where("user_id = ?", user.ID).Order("created_at desc").Find(&notifications)
	if result.Error != nil {
		log.Error().Err(result.Error).Msg("failed to fetch notifications")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch notifications")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"notifications": notifications})
}

func (c *NotificationController) MarkRead(ctx *gin.Context) {
	user, _ := middlewares.CurrentUser(ctx)

	notificationId, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	result := c.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationId, user.ID).
		Update("read", true)
	if result.Error != nil {
		log.Error().Err(result.Error).Msg("notification update error")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update notification")
		return
	}
	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusNotFound, "Notification not found")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (c *NotificationController) GetUnreadCount(ctx *gin.Context) {
	user, _ := middlewares.CurrentUser(ctx)

	var count int64
	result := c.db.Model(&models.Notification{}).
		Where("user_id = ? AND `read` = ?", user.ID, false).
		Count(&count)
	if result.Error != nil {
		log.Error().Err(result.Error).Msg("notification count error")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to count notifications")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"unreadCount": count})
}
