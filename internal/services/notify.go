package services

import (
	"log"

	"github.com/thesishub-dev/thesishub/db"
	"github.com/thesishub-dev/thesishub/internal/models"
)

// SystemSenderID is the sentinel sender for automated confirmations. It is
// exempt from self-notification suppression.
const SystemSenderID uint = 0

const systemSenderName = "ThesisHub"

type NotificationInput struct {
	Recipient   uint
	Type        string
	SenderID    uint // SystemSenderID for automated messages
	SenderName  string
	SenderPhoto string
	ProjectID   *uint
	CommentID   string
	Message     string
}

// suppressed reports whether the notification is a self-notification.
// System messages are never suppressed.
func suppressed(in NotificationInput) bool {
	return in.SenderID != SystemSenderID && in.SenderID == in.Recipient
}

func buildNotification(in NotificationInput) models.Notification {
	senderName := in.SenderName
	senderPhoto := in.SenderPhoto

	if in.SenderID == SystemSenderID {
		senderName = systemSenderName
		senderPhoto = ""
	}

	return models.Notification{
		UserID:      in.Recipient,
		Type:        in.Type,
		SenderID:    in.SenderID,
		SenderName:  senderName,
		SenderPhoto: senderPhoto,
		ProjectID:   in.ProjectID,
		CommentID:   in.CommentID,
		Message:     in.Message,
	}
}

// Dispatch records a notification asynchronously. Failures are logged and
// swallowed: the triggering operation never observes them.
func Dispatch(in NotificationInput) {
	if suppressed(in) {
		return
	}

	notification := buildNotification(in)

	go func() {
		if err := db.DB.Create(&notification).Error; err != nil {
			log.Printf("notify: failed to record %s notification for user %d: %v", in.Type, in.Recipient, err)
		}
	}()
}
