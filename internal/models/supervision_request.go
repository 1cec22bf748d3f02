package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// SupervisionRequest is the student -> supervisor collaboration request.
// At most one pending row may exist per (student, supervisor, project)
// triple; this is checked at creation time, not by a storage constraint.
type SupervisionRequest struct {
	gorm.Model

	StudentID    uint  `gorm:"not null;index"`
	SupervisorID uint  `gorm:"not null;index"`
	ProjectID    *uint `gorm:"index"`
	Message      string
	Status       string `gorm:"not null;default:pending;index"`
	Response     string
	RespondedAt  *time.Time

	// Relationships
	Student    User `gorm:"foreignKey:StudentID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Supervisor User `gorm:"foreignKey:SupervisorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
