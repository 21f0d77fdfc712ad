package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/tenant-service/internal/auth"
	"github.com/spec-kit/tenant-service/internal/domain"
	"github.com/spec-kit/tenant-service/internal/events"
	"github.com/spec-kit/tenant-service/internal/repository"
	apperrors "github.com/spec-kit/tenant-service/pkg/util"
)

// CreateProjectInput carries the payload for a new project.
type CreateProjectInput struct {
	Name        string
	Description string
	Status      domain.ProjectStatus
}

// ProjectService manages tenant projects. Mutations beyond creation require
// the caller to be tenant_admin or the project's creator.
type ProjectService struct {
	projects   repository.ProjectRepository
	dispatcher events.Dispatcher
}

// NewProjectService builds the service.
func NewProjectService(projects repository.ProjectRepository, dispatcher events.Dispatcher) *ProjectService {
	return &ProjectService{projects: projects, dispatcher: dispatcher}
}

// CreateProject creates a project in the scoped tenant, owned by the caller.
func (s *ProjectService) CreateProject(ctx context.Context, tenantID string, identity *auth.Identity, input CreateProjectInput) (*domain.Project, error) {
	if input.Name == "" {
		return nil, apperrors.NewValidationError("Project name is required")
	}
	status := input.Status
	if status == "" {
		status = domain.ProjectStatusActive
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("Invalid project status")
	}

	project := &domain.Project{
		TenantID:    tenantID,
		Name:        input.Name,
		Description: input.Description,
		Status:      status,
		CreatedBy:   &identity.UserID,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventProjectCreated,
			TenantID:  tenantID,
			ActorID:   identity.UserID,
			Timestamp: time.Now(),
			Payload:   events.ProjectCreatedPayload{ProjectID: project.ID, Name: project.Name},
		})
	}
	return project, nil
}

// ListProjects returns all projects of the scoped tenant with task counts.
func (s *ProjectService) ListProjects(ctx context.Context, tenantID string) ([]domain.Project, error) {
	return s.projects.ListByTenant(ctx, tenantID)
}

// UpdateProject applies a partial update after an ownership check.
func (s *ProjectService) UpdateProject(ctx context.Context, tenantID string, identity *auth.Identity, projectID string, patch repository.ProjectPatch) (*domain.Project, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, apperrors.NewValidationError("Invalid project status")
	}

	if err := s.authorizeMutation(ctx, tenantID, identity, projectID, "Only tenant admin or project creator can update"); err != nil {
		return nil, err
	}

	project, err := s.projects.Update(ctx, tenantID, projectID, patch)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmptyPatch):
			return nil, apperrors.NewValidationError("No fields to update")
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.NewNotFound("Project not found")
		}
		return nil, err
	}
	return project, nil
}

// DeleteProject removes a project after an ownership check.
func (s *ProjectService) DeleteProject(ctx context.Context, tenantID string, identity *auth.Identity, projectID string) error {
	if err := s.authorizeMutation(ctx, tenantID, identity, projectID, "Only tenant admin or project creator can delete"); err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, tenantID, projectID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Project not found")
		}
		return err
	}
	return nil
}

// authorizeMutation fetches the project inside the tenant scope and verifies
// the caller may modify it. A project in another tenant surfaces as NotFound.
// A project whose creator was deleted is tenant_admin territory.
func (s *ProjectService) authorizeMutation(ctx context.Context, tenantID string, identity *auth.Identity, projectID, denyMessage string) error {
	project, err := s.projects.GetByID(ctx, tenantID, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Project not found")
		}
		return err
	}
	if identity.Role == domain.RoleTenantAdmin {
		return nil
	}
	if project.CreatedBy == nil || *project.CreatedBy != identity.UserID {
		return apperrors.NewForbidden(denyMessage)
	}
	return nil
}
