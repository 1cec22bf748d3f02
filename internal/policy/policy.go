// Package policy is the single source of truth for project visibility and
// mutation rights. Handlers and operator tooling both go through it.
package policy

import (
	"github.com/thesishub-dev/thesishub/internal/models"
	"gorm.io/gorm"
)

// Caller is the identity behind the current request. The zero value is an
// anonymous caller. IsAdmin comes from the user row loaded per request,
// never from token claims, so operator grants apply immediately.
type Caller struct {
	ID      uint
	Name    string
	Role    string
	IsAdmin bool
}

func (c Caller) Authenticated() bool {
	return c.ID != 0
}

// VisibleProjects returns the caller-specific visibility scope for project
// list queries: anonymous callers see approved projects only, authenticated
// callers additionally see their own pending projects, admins see all.
func VisibleProjects(caller Caller) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if caller.IsAdmin {
			return tx
		}

		if !caller.Authenticated() {
			return tx.Where("status = ?", models.ProjectStatusApproved)
		}

		return tx.Where(
			"status = ? OR (status = ? AND author_id = ?)",
			models.ProjectStatusApproved, models.ProjectStatusPending, caller.ID,
		)
	}
}

// CanView reports whether the caller may read a single project. Unlike the
// list scope, the owner can also read their own rejected project.
func CanView(caller Caller, project *models.Project) bool {
	if project.Status == models.ProjectStatusApproved {
		return true
	}
	if caller.IsAdmin {
		return true
	}
	return caller.Authenticated() && project.AuthorID == caller.ID
}

// CanMutate reports whether the caller may edit, delete or change the
// status of a project.
func CanMutate(caller Caller, project *models.Project) bool {
	if !caller.Authenticated() {
		return false
	}
	return caller.IsAdmin || project.AuthorID == caller.ID
}
