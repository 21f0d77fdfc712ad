package domain

import "time"

// TenantStatus enumerates lifecycle states for a tenant organization.
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
	TenantStatusCancelled TenantStatus = "cancelled"
)

// Valid reports whether the status is a known value.
func (s TenantStatus) Valid() bool {
	switch s {
	case TenantStatusActive, TenantStatusSuspended, TenantStatusCancelled:
		return true
	}
	return false
}

// Tenant is an isolated customer organization. All users, projects and tasks
// belong to exactly one tenant.
type Tenant struct {
	ID               string
	Name             string
	Subdomain        string
	Status           TenantStatus
	SubscriptionPlan string
	MaxUsers         int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
