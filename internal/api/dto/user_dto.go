package dto

// AddUserRequest payload for adding a tenant member.
type AddUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

// UpdateUserRequest payload for partial user updates. Pointers distinguish
// omitted fields from zero values.
type UpdateUserRequest struct {
	FullName *string `json:"fullName"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}
