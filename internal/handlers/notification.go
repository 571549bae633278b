package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/MpenduloXulu/TTI-Website/db"
	"github.com/MpenduloXulu/TTI-Website/internal/models"
	"github.com/MpenduloXulu/TTI-Website/internal/types"
	"github.com/MpenduloXulu/TTI-Website/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// notifyUser records an in-app notification. Failures are logged only; a
// notification never blocks the operation that raised it.
func notifyUser(userID uint, notificationType, title, message string) {
	notification := models.Notification{
		UserID:  userID,
		Type:    notificationType,
		Title:   title,
		Message: message,
	}

	if err := db.DB.Create(&notification).Error; err != nil {
		log.Printf("Failed to create notification for user %d: %v", userID, err)
	}
}

// notifyAdmins fans one notification out to every admin account.
func notifyAdmins(notificationType, title, message string) {
	var admins []models.User

	if err := db.DB.Where("role = ?", types.RoleAdmin).Find(&admins).Error; err != nil {
		log.Printf("Failed to load admins for notification: %v", err)
		return
	}

	for _, admin := range admins {
		notifyUser(admin.ID, notificationType, title, message)
	}
}

type NotificationResponse struct {
	ID        uint   `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	IsRead    bool   `json:"isRead"`
	CreatedAt string `json:"createdAt"`
}

func ListNotifications(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var notifications []models.Notification

	err = db.DB.Where("user_id = ?", currentUser.ID).
		Order("created_at DESC").
		Limit(100).
		Find(&notifications).Error

	if err != nil {
		log.Printf("Failed to list notifications for user %d: %v", currentUser.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}

	response := make([]NotificationResponse, 0, len(notifications))

	for _, notification := range notifications {
		response = append(response, NotificationResponse{
			ID:        notification.ID,
			Type:      notification.Type,
			Title:     notification.Title,
			Message:   notification.Message,
			IsRead:    notification.IsRead,
			CreatedAt: notification.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func MarkNotificationRead(ctx *gin.Context) {
	notificationID, err := utils.GetNotificationID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var notification models.Notification

	err = db.DB.Where("id = ? AND user_id = ?", notificationID, currentUser.ID).
		First(&notification).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		} else {
			log.Printf("Failed to fetch notification %d: %v", notificationID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notification"})
		}
		return
	}

	if err := db.DB.Model(&notification).Update("is_read", true).Error; err != nil {
		log.Printf("Failed to mark notification %d read: %v", notificationID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}
