package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/tenant-service/internal/domain"
	"github.com/spec-kit/tenant-service/internal/events"
	"github.com/spec-kit/tenant-service/internal/repository"
	apperrors "github.com/spec-kit/tenant-service/pkg/util"
)

// CreateTaskInput carries the payload for a new task.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    domain.TaskPriority
	DueDate     *time.Time
	AssignedTo  *string
}

// TaskService manages tasks inside projects. Every operation verifies the
// parent project and any assignee belong to the caller's tenant.
type TaskService struct {
	tasks      repository.TaskRepository
	projects   repository.ProjectRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// NewTaskService builds the service.
func NewTaskService(tasks repository.TaskRepository, projects repository.ProjectRepository, users repository.UserRepository, dispatcher events.Dispatcher) *TaskService {
	return &TaskService{tasks: tasks, projects: projects, users: users, dispatcher: dispatcher}
}

// CreateTask creates a task under a project of the scoped tenant.
func (s *TaskService) CreateTask(ctx context.Context, tenantID, projectID string, input CreateTaskInput) (*domain.Task, error) {
	if input.Title == "" {
		return nil, apperrors.NewValidationError("Task title is required")
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TaskPriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("Invalid priority")
	}

	if err := s.checkProjectInTenant(ctx, tenantID, projectID); err != nil {
		return nil, err
	}
	if err := s.checkAssigneeInTenant(ctx, tenantID, input.AssignedTo); err != nil {
		return nil, err
	}

	task := &domain.Task{
		ProjectID:   projectID,
		TenantID:    tenantID,
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.TaskStatusTodo,
		Priority:    priority,
		DueDate:     input.DueDate,
		AssignedTo:  input.AssignedTo,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks returns the tasks of a project in the scoped tenant.
func (s *TaskService) ListTasks(ctx context.Context, tenantID, projectID string, filter repository.TaskFilter) ([]domain.Task, error) {
	if err := s.checkProjectInTenant(ctx, tenantID, projectID); err != nil {
		return nil, err
	}
	return s.tasks.ListByProject(ctx, tenantID, projectID, filter)
}

// UpdateTask applies a partial update to a task in the scoped tenant.
func (s *TaskService) UpdateTask(ctx context.Context, tenantID, taskID string, patch repository.TaskPatch) (*domain.Task, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, apperrors.NewValidationError("Invalid status")
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, apperrors.NewValidationError("Invalid priority")
	}

	// Confirm the task is visible in scope before validating the assignee so
	// cross-tenant probes always read as NotFound.
	existing, err := s.tasks.GetByID(ctx, tenantID, taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Task not found")
		}
		return nil, err
	}

	if patch.AssignedTo != nil {
		if err := s.checkAssigneeInTenant(ctx, tenantID, *patch.AssignedTo); err != nil {
			return nil, err
		}
	}

	task, err := s.tasks.Update(ctx, tenantID, taskID, patch)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmptyPatch):
			return nil, apperrors.NewValidationError("No fields to update")
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.NewNotFound("Task not found")
		}
		return nil, err
	}

	if patch.Status != nil && *patch.Status != existing.Status {
		s.publishStatusChange(ctx, existing, task)
	}
	return task, nil
}

// UpdateTaskStatus transitions only the workflow status.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, tenantID, taskID string, status domain.TaskStatus) (*domain.Task, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("Invalid status")
	}

	existing, err := s.tasks.GetByID(ctx, tenantID, taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Task not found")
		}
		return nil, err
	}

	task, err := s.tasks.UpdateStatus(ctx, tenantID, taskID, status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Task not found")
		}
		return nil, err
	}

	if task.Status != existing.Status {
		s.publishStatusChange(ctx, existing, task)
	}
	return task, nil
}

// DeleteTask removes a task in the scoped tenant.
func (s *TaskService) DeleteTask(ctx context.Context, tenantID, taskID string) error {
	if err := s.tasks.Delete(ctx, tenantID, taskID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Task not found")
		}
		return err
	}
	return nil
}

func (s *TaskService) checkProjectInTenant(ctx context.Context, tenantID, projectID string) error {
	if _, err := s.projects.GetByID(ctx, tenantID, projectID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Project not found in this tenant")
		}
		return err
	}
	return nil
}

func (s *TaskService) checkAssigneeInTenant(ctx context.Context, tenantID string, assignedTo *string) error {
	if assignedTo == nil || *assignedTo == "" {
		return nil
	}
	user, err := s.users.GetByID(ctx, *assignedTo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("Assigned user not in this tenant")
		}
		return err
	}
	if user.TenantID == nil || *user.TenantID != tenantID {
		return apperrors.NewValidationError("Assigned user not in this tenant")
	}
	return nil
}

func (s *TaskService) publishStatusChange(ctx context.Context, old, updated *domain.Task) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTaskStatusChanged,
		TenantID:  updated.TenantID,
		Timestamp: time.Now(),
		Payload: events.TaskStatusChangedPayload{
			TaskID:    updated.ID,
			ProjectID: updated.ProjectID,
			OldStatus: old.Status,
			NewStatus: updated.Status,
		},
	})
}
