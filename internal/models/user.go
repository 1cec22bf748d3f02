package models

import (
	"os"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleStudent    = "student"
	RoleSupervisor = "supervisor"
	RoleAdmin      = "admin"
)

type User struct {
	gorm.Model

	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;default:student"`
	IsAdmin      bool   `gorm:"not null;default:false"`

	Bio           string
	PhotoURL      string
	Department    string
	ResearchAreas datatypes.JSON `gorm:"type:jsonb"`
	MaxStudents   int            `gorm:"not null;default:5"`

	// Project ids this user supervises, appended when a supervision
	// request with an attached project is approved.
	SupervisedProjectIDs datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	Projects      []Project      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Notifications []Notification `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

func studentEmailDomain() string {
	if d := os.Getenv("STUDENT_EMAIL_DOMAIN"); d != "" {
		return d
	}
	return "students.university.edu"
}

func staffEmailDomain() string {
	if d := os.Getenv("STAFF_EMAIL_DOMAIN"); d != "" {
		return d
	}
	return "university.edu"
}

// DeriveRole maps an email address to its canonical role by domain.
// Unknown domains default to student.
func DeriveRole(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return RoleStudent
	}

	domain := strings.ToLower(email[at+1:])

	switch domain {
	case studentEmailDomain():
		return RoleStudent
	case staffEmailDomain():
		return RoleSupervisor
	default:
		return RoleStudent
	}
}

// CanonicalRole returns the role the user should hold. An explicit admin
// role is never overridden by the email-derived one.
func (u *User) CanonicalRole() string {
	if u.Role == RoleAdmin {
		return RoleAdmin
	}
	return DeriveRole(u.Email)
}
