package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tenant-service/internal/domain"
	apperrors "github.com/spec-kit/tenant-service/pkg/util"
)

// TenantIsolation derives the effective tenant scope from the verified
// identity and attaches it to the request. A super_admin is unscoped; every
// other role must carry a tenant in its token. Handlers must never accept a
// tenant identifier from the path or body in place of this scope.
func TenantIsolation() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("Unauthorized")
		}

		if identity.Role == domain.RoleSuperAdmin {
			// Unscoped: super-admin endpoints decide for themselves whether
			// an explicit tenant parameter is required.
			return c.Next()
		}

		if identity.TenantID == nil || *identity.TenantID == "" {
			return apperrors.NewForbidden("Tenant ID missing from token")
		}

		c.Locals(tenantScopeKey, *identity.TenantID)
		return c.Next()
	}
}

// TenantScopeFromContext returns the tenant scope for the request. ok is
// false for unscoped (super_admin) requests.
func TenantScopeFromContext(c *fiber.Ctx) (string, bool) {
	val := c.Locals(tenantScopeKey)
	if val == nil {
		return "", false
	}
	scope, ok := val.(string)
	return scope, ok && scope != ""
}
