package models

import "gorm.io/gorm"

const (
	NotificationSubmission   = "submission"
	NotificationStatusUpdate = "status-update"
	NotificationRequest      = "request"
	NotificationResponse     = "response"
	NotificationLike         = "like"
	NotificationComment      = "comment"
	NotificationReply        = "reply"
	NotificationTeamInvite   = "team-invite"
)

// Notification is immutable after creation except for the Read flag.
// ProjectID and CommentID carry no foreign-key constraint: a hard project
// delete leaves its notifications dangling, readers must tolerate that.
type Notification struct {
	gorm.Model

	UserID      uint   `gorm:"not null;index"` // recipient
	Type        string `gorm:"not null"`
	SenderID    uint   `gorm:"not null;default:0"` // 0 is the system sender
	SenderName  string
	SenderPhoto string
	ProjectID   *uint
	CommentID   string
	Message     string
	Read        bool `gorm:"not null;default:false;index"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
