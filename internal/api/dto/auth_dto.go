package dto

// RegisterTenantRequest payload for tenant self-registration.
type RegisterTenantRequest struct {
	TenantName    string `json:"tenantName"`
	Subdomain     string `json:"subdomain"`
	AdminEmail    string `json:"adminEmail"`
	AdminPassword string `json:"adminPassword"`
	AdminFullName string `json:"adminFullName"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	TenantSubdomain string `json:"tenantSubdomain"`
}

// PasswordResetRequest payload for requesting a reset token.
type PasswordResetRequest struct {
	Email           string `json:"email"`
	TenantSubdomain string `json:"tenantSubdomain"`
}

// PasswordResetConfirm payload for consuming a reset token.
type PasswordResetConfirm struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	FullName string  `json:"fullName"`
	Role     string  `json:"role"`
	TenantID *string `json:"tenantId"`
	IsActive bool    `json:"isActive"`
}

// TenantResponse is the public view of a tenant.
type TenantResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Subdomain        string `json:"subdomain"`
	Status           string `json:"status"`
	SubscriptionPlan string `json:"subscriptionPlan"`
	MaxUsers         int    `json:"maxUsers"`
}
