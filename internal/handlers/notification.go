package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thesishub-dev/thesishub/db"
	"github.com/thesishub-dev/thesishub/internal/models"
	"github.com/thesishub-dev/thesishub/internal/utils"
	"gorm.io/gorm"
)

type NotificationResponse struct {
	ID          uint   `json:"id"`
	Type        string `json:"type"`
	SenderID    uint   `json:"sender_id"`
	SenderName  string `json:"sender_name"`
	SenderPhoto string `json:"sender_photo,omitempty"`
	ProjectID   *uint  `json:"project_id,omitempty"`
	CommentID   string `json:"comment_id,omitempty"`
	Message     string `json:"message"`
	Read        bool   `json:"read"`
	CreatedAt   string `json:"created_at"`
}

func ListNotifications(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		fail(ctx, http.StatusUnauthorized, codeUnauthenticated, "User not authenticated")
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	query := db.DB.Where("user_id = ?", currentUser.ID)

	if ctx.Query("unread") == "true" {
		query = query.Where("read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Order("created_at desc").Limit(limit).Find(&notifications).Error; err != nil {
		log.Printf("Failed to list notifications: %v", err)
		fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}

	response := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		response = append(response, NotificationResponse{
			ID:          n.ID,
			Type:        n.Type,
			SenderID:    n.SenderID,
			SenderName:  n.SenderName,
			SenderPhoto: n.SenderPhoto,
			ProjectID:   n.ProjectID,
			CommentID:   n.CommentID,
			Message:     n.Message,
			Read:        n.Read,
			CreatedAt:   n.CreatedAt.Format(time.RFC3339),
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"notifications": response})
}

func UnreadNotificationCount(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		fail(ctx, http.StatusUnauthorized, codeUnauthenticated, "User not authenticated")
		return
	}

	var count int64
	if err := db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", currentUser.ID, false).
		Count(&count).Error; err != nil {
		log.Printf("Failed to count unread notifications: %v", err)
		fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"unread": count})
}

func MarkNotificationRead(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		fail(ctx, http.StatusUnauthorized, codeUnauthenticated, "User not authenticated")
		return
	}

	var notification models.Notification

	err = db.DB.Where("id = ? AND user_id = ?", ctx.Param("id"), currentUser.ID).
		First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(ctx, http.StatusNotFound, codeNotFound, "Notification not found")
		} else {
			log.Printf("Failed to fetch notification: %v", err)
			fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		}
		return
	}

	if err := db.DB.Model(&notification).Update("read", true).Error; err != nil {
		log.Printf("Failed to mark notification read: %v", err)
		fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func MarkAllNotificationsRead(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		fail(ctx, http.StatusUnauthorized, codeUnauthenticated, "User not authenticated")
		return
	}

	if err := db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", currentUser.ID, false).
		Update("read", true).Error; err != nil {
		log.Printf("Failed to mark notifications read: %v", err)
		fail(ctx, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}
