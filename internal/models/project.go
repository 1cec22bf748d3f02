package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ProjectStatusPending  = "pending"
	ProjectStatusApproved = "approved"
	ProjectStatusRejected = "rejected"

	// Legacy labels, accepted only as supervisor-browse filter values.
	ProjectStatusCompleted = "completed"
	ProjectStatusArchived  = "archived"
)

type Project struct {
	gorm.Model

	Title     string         `gorm:"not null"`
	Abstract  string         `gorm:"not null"`
	TechStack datatypes.JSON `gorm:"type:jsonb"`
	Tags      datatypes.JSON `gorm:"type:jsonb"`

	AuthorID   uint   `gorm:"not null;index"`
	AuthorName string `gorm:"not null"` // denormalized; re-synced on every write that touches the author
	Year       int    `gorm:"not null"`
	GithubURL  string
	PdfURL     string

	Status string `gorm:"not null;default:pending;index"`

	// Denormalized supervisor triple, kept in sync as a unit: assignment
	// via an approved request or a verified edit sets all three, a
	// free-text name edit clears the id and department.
	SupervisorID         *uint `gorm:"index"`
	SupervisorName       string
	SupervisorDepartment string

	LikeCount    int            `gorm:"not null;default:0"`
	ViewCount    int            `gorm:"not null;default:0"`
	CommentCount int            `gorm:"not null;default:0"`
	Comments     datatypes.JSON `gorm:"type:jsonb"` // embedded two-level thread

	// Relationships
	Author    User              `gorm:"foreignKey:AuthorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Likes     []ProjectLike     `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Bookmarks []ProjectBookmark `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// ValidProjectStatus reports whether s is one of the three lifecycle
// labels. Transitions between them are deliberately not constrained.
func ValidProjectStatus(s string) bool {
	switch s {
	case ProjectStatusPending, ProjectStatusApproved, ProjectStatusRejected:
		return true
	}
	return false
}

// ValidBrowseStatus additionally accepts the legacy labels still used by
// the supervisor browse filter.
func ValidBrowseStatus(s string) bool {
	switch s {
	case ProjectStatusCompleted, ProjectStatusArchived:
		return true
	}
	return ValidProjectStatus(s)
}
