package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tenant-service/internal/domain"
	apperrors "github.com/spec-kit/tenant-service/pkg/util"
)

const (
	identityKey    = "auth_identity"
	tenantScopeKey = "auth_tenant_scope"
)

// Identity is the verified caller attached to a request by Authenticate.
// It is derived solely from the signed token, never from request input.
type Identity struct {
	UserID   string
	TenantID *string
	Role     domain.Role
}

// Authenticate extracts and verifies the bearer token, attaching the decoded
// identity to the request. Missing or invalid tokens terminate the chain.
func Authenticate(tokens *TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return apperrors.NewUnauthorized("Authorization token required")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return apperrors.NewUnauthorized("Authorization token required")
		}

		claims, err := tokens.Parse(parts[1])
		if err != nil {
			return apperrors.NewUnauthorized("Invalid or expired token")
		}

		c.Locals(identityKey, &Identity{
			UserID:   claims.UserID,
			TenantID: claims.TenantID,
			Role:     claims.Role,
		})
		return c.Next()
	}
}

// IdentityFromContext retrieves the authenticated caller.
func IdentityFromContext(c *fiber.Ctx) (*Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*Identity)
	return identity, ok
}
