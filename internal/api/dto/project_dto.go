package dto

// CreateProjectRequest payload for a new project.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// UpdateProjectRequest payload for partial project updates.
type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// ProjectResponse is the public view of a project.
type ProjectResponse struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Description        string  `json:"description"`
	Status             string  `json:"status"`
	CreatedBy          *string `json:"createdBy"`
	CreatorName        *string `json:"creatorName,omitempty"`
	TaskCount          int     `json:"taskCount"`
	CompletedTaskCount int     `json:"completedTaskCount"`
}
