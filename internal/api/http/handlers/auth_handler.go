package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tenant-service/internal/api/dto"
	"github.com/spec-kit/tenant-service/internal/service"
	apperrors "github.com/spec-kit/tenant-service/pkg/util"
)

// AuthHandler exposes registration, login and identity endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// RegisterTenant POST /api/auth/register-tenant.
func (h *AuthHandler) RegisterTenant(c *fiber.Ctx) error {
	var req dto.RegisterTenantRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	reg, err := h.auth.RegisterTenant(c.Context(), service.RegisterTenantInput{
		TenantName:    req.TenantName,
		Subdomain:     req.Subdomain,
		AdminEmail:    req.AdminEmail,
		AdminPassword: req.AdminPassword,
		AdminFullName: req.AdminFullName,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "Tenant registered successfully", fiber.Map{
		"tenantId":  reg.Tenant.ID,
		"subdomain": reg.Tenant.Subdomain,
		"adminUser": userResponse(reg.Admin),
		"token":     reg.Token,
		"expiresIn": int(time.Until(reg.ExpiresAt).Seconds()),
	})
}

// Login POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	user, token, expiresAt, err := h.auth.Login(c.Context(), req.Email, req.Password, req.TenantSubdomain)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Login successful", fiber.Map{
		"user":      userResponse(user),
		"token":     token,
		"expiresIn": int(time.Until(expiresAt).Seconds()),
	})
}

// Me GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}

	user, tenant, err := h.auth.CurrentUser(c.Context(), identity.UserID)
	if err != nil {
		return err
	}

	data := fiber.Map{"user": userResponse(user)}
	if tenant != nil {
		data["tenant"] = tenantResponse(tenant)
	}
	return respond(c, http.StatusOK, "Current user fetched successfully", data)
}

// RequestPasswordReset POST /api/auth/password/reset/request.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	token, err := h.auth.RequestPasswordReset(c.Context(), req.Email, req.TenantSubdomain)
	if err != nil {
		return err
	}

	// The token would be delivered out of band; returning it here keeps the
	// flow usable without a mail backend.
	return respond(c, http.StatusCreated, "Password reset requested", fiber.Map{
		"token":     token.Token,
		"expiresAt": token.ExpiresAt,
	})
}

// ConfirmPasswordReset POST /api/auth/password/reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirm
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	if req.Token == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("token and newPassword required")
	}

	if err := h.auth.ConfirmPasswordReset(c.Context(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Password updated", fiber.Map{})
}
