package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveRole(t *testing.T) {
	t.Setenv("STUDENT_EMAIL_DOMAIN", "students.university.edu")
	t.Setenv("STAFF_EMAIL_DOMAIN", "university.edu")

	tests := []struct {
		email string
		want  string
	}{
		{"aisha@students.university.edu", RoleStudent},
		{"prof.kim@university.edu", RoleSupervisor},
		{"PROF.KIM@UNIVERSITY.EDU", RoleSupervisor},
		{"someone@gmail.com", RoleStudent},
		{"malformed-address", RoleStudent},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DeriveRole(tt.email), tt.email)
	}
}

func TestCanonicalRoleRepairsDrift(t *testing.T) {
	t.Setenv("STUDENT_EMAIL_DOMAIN", "students.university.edu")
	t.Setenv("STAFF_EMAIL_DOMAIN", "university.edu")

	// Stored role drifted from the email-derived one.
	u := &User{Email: "prof.kim@university.edu", Role: RoleStudent}
	assert.Equal(t, RoleSupervisor, u.CanonicalRole())

	// Repair is idempotent.
	u.Role = u.CanonicalRole()
	assert.Equal(t, RoleSupervisor, u.CanonicalRole())
}

func TestCanonicalRoleKeepsAdmin(t *testing.T) {
	t.Setenv("STAFF_EMAIL_DOMAIN", "university.edu")

	// An explicit admin role survives any email domain.
	u := &User{Email: "ops@students.university.edu", Role: RoleAdmin}
	assert.Equal(t, RoleAdmin, u.CanonicalRole())
}

func TestValidProjectStatus(t *testing.T) {
	assert.True(t, ValidProjectStatus(ProjectStatusPending))
	assert.True(t, ValidProjectStatus(ProjectStatusApproved))
	assert.True(t, ValidProjectStatus(ProjectStatusRejected))
	assert.False(t, ValidProjectStatus(ProjectStatusCompleted))
	assert.False(t, ValidProjectStatus("unknown"))

	assert.True(t, ValidBrowseStatus(ProjectStatusCompleted))
	assert.True(t, ValidBrowseStatus(ProjectStatusArchived))
	assert.True(t, ValidBrowseStatus(ProjectStatusApproved))
	assert.False(t, ValidBrowseStatus("unknown"))
}
