package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler exposes liveness checks.
type HealthHandler struct{}

// NewHealthHandler constructs handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Health GET /api/health.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return respond(c, http.StatusOK, "Backend is alive", fiber.Map{"status": "ok"})
}
