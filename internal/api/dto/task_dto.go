package dto

import "time"

// CreateTaskRequest payload for a new task.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	AssignedTo  *string    `json:"assignedTo"`
}

// UpdateTaskRequest payload for partial task updates. Double pointers let a
// caller explicitly null out the assignee or due date.
type UpdateTaskRequest struct {
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	Status      *string     `json:"status"`
	Priority    *string     `json:"priority"`
	AssignedTo  **string    `json:"assignedTo"`
	DueDate     **time.Time `json:"dueDate"`
}

// UpdateTaskStatusRequest payload for the status-only transition.
type UpdateTaskStatusRequest struct {
	Status string `json:"status"`
}

// TaskResponse is the public view of a task.
type TaskResponse struct {
	ID             string     `json:"id"`
	ProjectID      string     `json:"projectId"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	DueDate        *time.Time `json:"dueDate"`
	AssignedTo     *string    `json:"assignedTo"`
	AssignedToName *string    `json:"assignedToName,omitempty"`
}
