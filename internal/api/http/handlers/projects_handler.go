package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tenant-service/internal/api/dto"
	"github.com/spec-kit/tenant-service/internal/domain"
	"github.com/spec-kit/tenant-service/internal/repository"
	"github.com/spec-kit/tenant-service/internal/service"
	apperrors "github.com/spec-kit/tenant-service/pkg/util"
)

// ProjectsHandler exposes tenant-scoped project endpoints.
type ProjectsHandler struct {
	projects *service.ProjectService
}

// NewProjectsHandler constructs handler.
func NewProjectsHandler(projectService *service.ProjectService) *ProjectsHandler {
	return &ProjectsHandler{projects: projectService}
}

// CreateProject POST /api/projects.
func (h *ProjectsHandler) CreateProject(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	scope, err := requireScope(c)
	if err != nil {
		return err
	}
	var req dto.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	project, err := h.projects.CreateProject(c.Context(), scope, identity, service.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      domain.ProjectStatus(req.Status),
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Project created successfully", fiber.Map{"project": projectResponse(project)})
}

// ListProjects GET /api/projects.
func (h *ProjectsHandler) ListProjects(c *fiber.Ctx) error {
	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	projects, err := h.projects.ListProjects(c.Context(), scope)
	if err != nil {
		return err
	}
	items := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		items = append(items, projectResponse(&projects[i]))
	}
	return respond(c, http.StatusOK, "Projects fetched successfully", fiber.Map{"projects": items})
}

// UpdateProject PUT /api/projects/:projectId.
func (h *ProjectsHandler) UpdateProject(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	scope, err := requireScope(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	patch := repository.ProjectPatch{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Status != nil {
		status := domain.ProjectStatus(*req.Status)
		patch.Status = &status
	}

	project, err := h.projects.UpdateProject(c.Context(), scope, identity, c.Params("projectId"), patch)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Project updated", fiber.Map{"project": projectResponse(project)})
}

// DeleteProject DELETE /api/projects/:projectId.
func (h *ProjectsHandler) DeleteProject(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	if err := h.projects.DeleteProject(c.Context(), scope, identity, c.Params("projectId")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Project deleted successfully", fiber.Map{})
}
