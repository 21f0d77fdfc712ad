package service_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/tenant-service/internal/auth"
	"github.com/spec-kit/tenant-service/internal/domain"
	"github.com/spec-kit/tenant-service/internal/events"
	"github.com/spec-kit/tenant-service/internal/repository"
	"github.com/spec-kit/tenant-service/internal/service"
)

func identityFor(userID, tenantID string, role domain.Role) *auth.Identity {
	return &auth.Identity{UserID: userID, TenantID: &tenantID, Role: role}
}

func TestCreateProject(t *testing.T) {
	ctx := context.Background()

	t.Run("creates project owned by caller", func(t *testing.T) {
		dispatcher := events.NewInMemoryDispatcher()
		var published []events.Event
		dispatcher.Subscribe(events.EventProjectCreated, func(_ context.Context, event events.Event) error {
			published = append(published, event)
			return nil
		})
		projects := newFakeProjectRepo()
		svc := service.NewProjectService(projects, dispatcher)

		project, err := svc.CreateProject(ctx, "tenant-1", identityFor("u1", "tenant-1", domain.RoleUser),
			service.CreateProjectInput{Name: "Launch", Description: "Q3 launch"})
		require.NoError(t, err)
		assert.Equal(t, domain.ProjectStatusActive, project.Status)
		require.NotNil(t, project.CreatedBy)
		assert.Equal(t, "u1", *project.CreatedBy)
		assert.Equal(t, "tenant-1", project.TenantID)

		require.Len(t, published, 1)
		assert.Equal(t, "tenant-1", published[0].TenantID)
	})

	t.Run("requires a name", func(t *testing.T) {
		svc := service.NewProjectService(newFakeProjectRepo(), nil)
		_, err := svc.CreateProject(ctx, "tenant-1", identityFor("u1", "tenant-1", domain.RoleUser),
			service.CreateProjectInput{})
		assertDomainError(t, err, http.StatusBadRequest, "Project name is required")
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		svc := service.NewProjectService(newFakeProjectRepo(), nil)
		_, err := svc.CreateProject(ctx, "tenant-1", identityFor("u1", "tenant-1", domain.RoleUser),
			service.CreateProjectInput{Name: "Launch", Status: "paused"})
		assertDomainError(t, err, http.StatusBadRequest, "Invalid project status")
	})
}

func TestUpdateProject(t *testing.T) {
	ctx := context.Background()

	seed := func() (*service.ProjectService, *fakeProjectRepo, *domain.Project) {
		projects := newFakeProjectRepo()
		project := projects.add(&domain.Project{
			TenantID:  "tenant-1",
			Name:      "Launch",
			Status:    domain.ProjectStatusActive,
			CreatedBy: strPtr("creator"),
		})
		return service.NewProjectService(projects, nil), projects, project
	}

	t.Run("creator can update", func(t *testing.T) {
		svc, _, project := seed()
		name := "Relaunch"
		updated, err := svc.UpdateProject(ctx, "tenant-1", identityFor("creator", "tenant-1", domain.RoleUser),
			project.ID, repository.ProjectPatch{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Relaunch", updated.Name)
	})

	t.Run("tenant admin can update any project", func(t *testing.T) {
		svc, _, project := seed()
		status := domain.ProjectStatusArchived
		updated, err := svc.UpdateProject(ctx, "tenant-1", identityFor("admin", "tenant-1", domain.RoleTenantAdmin),
			project.ID, repository.ProjectPatch{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, domain.ProjectStatusArchived, updated.Status)
	})

	t.Run("other members are forbidden", func(t *testing.T) {
		svc, _, project := seed()
		name := "Takeover"
		_, err := svc.UpdateProject(ctx, "tenant-1", identityFor("stranger", "tenant-1", domain.RoleUser),
			project.ID, repository.ProjectPatch{Name: &name})
		assertDomainError(t, err, http.StatusForbidden, "Only tenant admin or project creator can update")
	})

	t.Run("cross-tenant update reads as not found", func(t *testing.T) {
		svc, _, project := seed()
		name := "Cross"
		_, err := svc.UpdateProject(ctx, "tenant-2", identityFor("admin", "tenant-2", domain.RoleTenantAdmin),
			project.ID, repository.ProjectPatch{Name: &name})
		assertDomainError(t, err, http.StatusNotFound, "Project not found")
	})

	t.Run("empty patch", func(t *testing.T) {
		svc, _, project := seed()
		_, err := svc.UpdateProject(ctx, "tenant-1", identityFor("creator", "tenant-1", domain.RoleUser),
			project.ID, repository.ProjectPatch{})
		assertDomainError(t, err, http.StatusBadRequest, "No fields to update")
	})

	t.Run("project whose creator was deleted stays manageable by admins", func(t *testing.T) {
		projects := newFakeProjectRepo()
		orphan := projects.add(&domain.Project{
			TenantID: "tenant-1",
			Name:     "Orphaned",
			Status:   domain.ProjectStatusActive,
		})
		svc := service.NewProjectService(projects, nil)

		name := "Member attempt"
		_, err := svc.UpdateProject(ctx, "tenant-1", identityFor("member", "tenant-1", domain.RoleUser),
			orphan.ID, repository.ProjectPatch{Name: &name})
		assertDomainError(t, err, http.StatusForbidden, "Only tenant admin or project creator can update")

		name = "Reclaimed"
		updated, err := svc.UpdateProject(ctx, "tenant-1", identityFor("admin", "tenant-1", domain.RoleTenantAdmin),
			orphan.ID, repository.ProjectPatch{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Reclaimed", updated.Name)
		assert.Nil(t, updated.CreatedBy)
	})
}

func TestDeleteProject(t *testing.T) {
	ctx := context.Background()

	t.Run("creator can delete", func(t *testing.T) {
		projects := newFakeProjectRepo()
		project := projects.add(&domain.Project{TenantID: "tenant-1", Name: "Launch", CreatedBy: strPtr("creator")})
		svc := service.NewProjectService(projects, nil)

		require.NoError(t, svc.DeleteProject(ctx, "tenant-1", identityFor("creator", "tenant-1", domain.RoleUser), project.ID))

		remaining, err := svc.ListProjects(ctx, "tenant-1")
		require.NoError(t, err)
		assert.Empty(t, remaining)
	})

	t.Run("non-owner member is forbidden", func(t *testing.T) {
		projects := newFakeProjectRepo()
		project := projects.add(&domain.Project{TenantID: "tenant-1", Name: "Launch", CreatedBy: strPtr("creator")})
		svc := service.NewProjectService(projects, nil)

		err := svc.DeleteProject(ctx, "tenant-1", identityFor("stranger", "tenant-1", domain.RoleUser), project.ID)
		assertDomainError(t, err, http.StatusForbidden, "Only tenant admin or project creator can delete")
	})

	t.Run("cross-tenant delete reads as not found", func(t *testing.T) {
		projects := newFakeProjectRepo()
		project := projects.add(&domain.Project{TenantID: "tenant-1", Name: "Launch", CreatedBy: strPtr("creator")})
		svc := service.NewProjectService(projects, nil)

		err := svc.DeleteProject(ctx, "tenant-2", identityFor("creator", "tenant-2", domain.RoleTenantAdmin), project.ID)
		assertDomainError(t, err, http.StatusNotFound, "Project not found")
	})
}
