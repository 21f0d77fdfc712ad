package events

import (
	"time"

	"github.com/spec-kit/tenant-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTenantRegistered  EventType = "tenant_registered"
	EventUserAdded         EventType = "user_added"
	EventProjectCreated    EventType = "project_created"
	EventTaskStatusChanged EventType = "task_status_changed"
)

// Event represents a domain event emitted by services. TenantID is empty for
// events without a tenant context.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TenantID  string      `json:"tenant_id,omitempty"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TenantRegisteredPayload payload.
type TenantRegisteredPayload struct {
	TenantName string `json:"tenant_name"`
	Subdomain  string `json:"subdomain"`
	AdminEmail string `json:"admin_email"`
}

// UserAddedPayload payload.
type UserAddedPayload struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
}

// ProjectCreatedPayload payload.
type ProjectCreatedPayload struct {
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
}

// TaskStatusChangedPayload payload.
type TaskStatusChangedPayload struct {
	TaskID    string            `json:"task_id"`
	ProjectID string            `json:"project_id"`
	OldStatus domain.TaskStatus `json:"old_status"`
	NewStatus domain.TaskStatus `json:"new_status"`
}
