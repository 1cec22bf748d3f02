package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thesishub-dev/thesishub/internal/models"
)

func TestSuppressedSelfNotification(t *testing.T) {
	assert.True(t, suppressed(NotificationInput{
		Recipient:  5,
		SenderID:   5,
		SenderName: "Aisha",
		Type:       models.NotificationLike,
	}))

	assert.False(t, suppressed(NotificationInput{
		Recipient:  5,
		SenderID:   6,
		SenderName: "Bekzat",
		Type:       models.NotificationLike,
	}))
}

func TestSystemSenderNeverSuppressed(t *testing.T) {
	// Automated confirmations go to the acting user themselves.
	assert.False(t, suppressed(NotificationInput{
		Recipient: 5,
		SenderID:  SystemSenderID,
		Type:      models.NotificationSubmission,
	}))
}

func TestBuildNotificationSystemSender(t *testing.T) {
	projectID := uint(9)

	n := buildNotification(NotificationInput{
		Recipient: 5,
		Type:      models.NotificationStatusUpdate,
		SenderID:  SystemSenderID,
		// Caller-supplied sender fields are ignored for system messages.
		SenderName:  "should-be-overridden",
		SenderPhoto: "x.png",
		ProjectID:   &projectID,
		Message:     "Your project was approved",
	})

	assert.Equal(t, uint(5), n.UserID)
	assert.Equal(t, SystemSenderID, n.SenderID)
	assert.Equal(t, "ThesisHub", n.SenderName)
	assert.Empty(t, n.SenderPhoto)
	assert.Equal(t, &projectID, n.ProjectID)
	assert.False(t, n.Read)
}

func TestBuildNotificationUserSender(t *testing.T) {
	n := buildNotification(NotificationInput{
		Recipient:   5,
		Type:        models.NotificationComment,
		SenderID:    7,
		SenderName:  "Bekzat",
		SenderPhoto: "https://cdn.example.com/b.png",
		CommentID:   "c-123",
		Message:     "Bekzat commented on your project",
	})

	assert.Equal(t, uint(7), n.SenderID)
	assert.Equal(t, "Bekzat", n.SenderName)
	assert.Equal(t, "https://cdn.example.com/b.png", n.SenderPhoto)
	assert.Equal(t, "c-123", n.CommentID)
}
