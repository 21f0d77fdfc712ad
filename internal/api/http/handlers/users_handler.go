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

// UsersHandler exposes tenant membership endpoints (tenant_admin only).
// The :tenantId path segment is decorative: scoping always comes from the
// verified token, never from the URL.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// AddUser POST /api/tenants/:tenantId/users.
func (h *UsersHandler) AddUser(c *fiber.Ctx) error {
	scope, err := requireScope(c)
	if err != nil {
		return err
	}
	var req dto.AddUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	user, err := h.users.AddUser(c.Context(), scope, service.AddUserInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "User created", fiber.Map{"user": userResponse(user)})
}

// ListUsers GET /api/tenants/:tenantId/users.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	users, err := h.users.ListUsers(c.Context(), scope)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return respond(c, http.StatusOK, "Users list", fiber.Map{"users": items})
}

// UpdateUser PUT /api/users/:userId.
func (h *UsersHandler) UpdateUser(c *fiber.Ctx) error {
	scope, err := requireScope(c)
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	patch := repository.UserPatch{
		FullName: req.FullName,
		IsActive: req.IsActive,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		patch.Role = &role
	}

	user, err := h.users.UpdateUser(c.Context(), scope, c.Params("userId"), patch)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User updated", fiber.Map{"user": userResponse(user)})
}

// DeleteUser DELETE /api/users/:userId.
func (h *UsersHandler) DeleteUser(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	if err := h.users.DeleteUser(c.Context(), scope, c.Params("userId"), identity.UserID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User deleted", fiber.Map{})
}
