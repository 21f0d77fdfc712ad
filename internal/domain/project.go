package domain

import "time"

// ProjectStatus enumerates lifecycle states for a project.
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusArchived  ProjectStatus = "archived"
	ProjectStatusCompleted ProjectStatus = "completed"
)

// Valid reports whether the status is a known value.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusArchived, ProjectStatusCompleted:
		return true
	}
	return false
}

// Project groups tasks inside a tenant. CreatedBy is nil once the creating
// user has been deleted; such projects remain manageable by tenant admins.
type Project struct {
	ID          string
	TenantID    string
	Name        string
	Description string
	Status      ProjectStatus
	CreatedBy   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Aggregates populated on list queries.
	CreatorName        *string
	TaskCount          int
	CompletedTaskCount int
}
