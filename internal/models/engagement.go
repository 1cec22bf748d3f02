package models

import (
	"time"

	"gorm.io/gorm"
)

type ProjectLike struct {
	gorm.Model

	UserID    uint `gorm:"not null;uniqueIndex:idx_like_user_project"`
	ProjectID uint `gorm:"not null;uniqueIndex:idx_like_user_project"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

type ProjectBookmark struct {
	gorm.Model

	UserID    uint `gorm:"not null;uniqueIndex:idx_bookmark_user_project"`
	ProjectID uint `gorm:"not null;uniqueIndex:idx_bookmark_user_project"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// ProjectView is one entry of a user's recent-view history. The list is
// capped at RecentViewLimit entries and deduplicated by delete-then-insert,
// so ViewedAt ordering is also recency-of-reinsertion ordering.
type ProjectView struct {
	gorm.Model

	UserID    uint      `gorm:"not null;index"`
	ProjectID uint      `gorm:"not null"`
	ViewedAt  time.Time `gorm:"not null;index"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

const RecentViewLimit = 20
