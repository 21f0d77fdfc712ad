package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tenant-service/internal/api/dto"
	"github.com/spec-kit/tenant-service/internal/auth"
	"github.com/spec-kit/tenant-service/internal/domain"
	apperrors "github.com/spec-kit/tenant-service/pkg/util"
)

// respond writes the success envelope shared by every endpoint.
func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// requireIdentity returns the authenticated caller or an Unauthorized error.
func requireIdentity(c *fiber.Ctx) (*auth.Identity, error) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("Unauthorized")
	}
	return identity, nil
}

// requireScope returns the tenant scope attached by the isolation guard.
// Tenant-scoped endpoints reject unscoped (super_admin) callers rather than
// guessing a tenant from request input.
func requireScope(c *fiber.Ctx) (string, error) {
	scope, ok := auth.TenantScopeFromContext(c)
	if !ok {
		return "", apperrors.NewForbidden("Tenant scope required")
	}
	return scope, nil
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     string(user.Role),
		TenantID: user.TenantID,
		IsActive: user.IsActive,
	}
}

func tenantResponse(tenant *domain.Tenant) dto.TenantResponse {
	return dto.TenantResponse{
		ID:               tenant.ID,
		Name:             tenant.Name,
		Subdomain:        tenant.Subdomain,
		Status:           string(tenant.Status),
		SubscriptionPlan: tenant.SubscriptionPlan,
		MaxUsers:         tenant.MaxUsers,
	}
}

func projectResponse(project *domain.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:                 project.ID,
		Name:               project.Name,
		Description:        project.Description,
		Status:             string(project.Status),
		CreatedBy:          project.CreatedBy,
		CreatorName:        project.CreatorName,
		TaskCount:          project.TaskCount,
		CompletedTaskCount: project.CompletedTaskCount,
	}
}

func taskResponse(task *domain.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:             task.ID,
		ProjectID:      task.ProjectID,
		Title:          task.Title,
		Description:    task.Description,
		Status:         string(task.Status),
		Priority:       string(task.Priority),
		DueDate:        task.DueDate,
		AssignedTo:     task.AssignedTo,
		AssignedToName: task.AssignedToName,
	}
}
