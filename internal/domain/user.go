package domain

import "time"

// User is a member of a tenant. A super_admin carries no tenant and operates
// across all tenants; every other role must reference exactly one tenant.
type User struct {
	ID           string
	TenantID     *string
	Email        string
	PasswordHash string
	FullName     string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
