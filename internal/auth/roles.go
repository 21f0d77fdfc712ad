package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tenant-service/internal/domain"
	apperrors "github.com/spec-kit/tenant-service/pkg/util"
)

// RequireRole rejects callers whose role is outside the allow-set. The set is
// bound once at route registration.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("Unauthorized")
		}
		if _, exists := allowedSet[identity.Role]; !exists {
			return apperrors.NewForbidden("Forbidden: Insufficient permissions")
		}
		return c.Next()
	}
}
