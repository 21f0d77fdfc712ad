package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tenant-service/internal/api/dto"
	"github.com/spec-kit/tenant-service/internal/domain"
	"github.com/spec-kit/tenant-service/internal/service"
	apperrors "github.com/spec-kit/tenant-service/pkg/util"
)

// AdminTenantsHandler exposes the super-admin tenant administration surface.
// Routes using it are guarded by RequireRole(super_admin) and run unscoped.
type AdminTenantsHandler struct {
	tenants *service.TenantService
}

// NewAdminTenantsHandler constructs handler.
func NewAdminTenantsHandler(tenantService *service.TenantService) *AdminTenantsHandler {
	return &AdminTenantsHandler{tenants: tenantService}
}

// ListTenants GET /api/admin/tenants.
func (h *AdminTenantsHandler) ListTenants(c *fiber.Ctx) error {
	tenants, err := h.tenants.ListTenants(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.TenantResponse, 0, len(tenants))
	for i := range tenants {
		items = append(items, tenantResponse(&tenants[i]))
	}
	return respond(c, http.StatusOK, "Tenants fetched successfully", fiber.Map{"tenants": items})
}

// UpdateTenantStatus PATCH /api/admin/tenants/:tenantId/status.
func (h *AdminTenantsHandler) UpdateTenantStatus(c *fiber.Ctx) error {
	var req dto.UpdateTenantStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	tenant, err := h.tenants.SetTenantStatus(c.Context(), c.Params("tenantId"), domain.TenantStatus(req.Status))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Tenant status updated", fiber.Map{"tenant": tenantResponse(tenant)})
}
