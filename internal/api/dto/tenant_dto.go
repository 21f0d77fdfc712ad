package dto

// UpdateTenantStatusRequest payload for the super-admin status change.
type UpdateTenantStatusRequest struct {
	Status string `json:"status"`
}
