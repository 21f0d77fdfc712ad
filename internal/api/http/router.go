package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tenant-service/internal/api/http/handlers"
	"github.com/spec-kit/tenant-service/internal/auth"
	"github.com/spec-kit/tenant-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health       *handlers.HealthHandler
	Auth         *handlers.AuthHandler
	Users        *handlers.UsersHandler
	Projects     *handlers.ProjectsHandler
	Tasks        *handlers.TasksHandler
	AdminTenants *handlers.AdminTenantsHandler
	TokenManager *auth.TokenManager
}

// RegisterRoutes wires HTTP routes. Protected groups compose the guard chain
// Authenticate -> TenantIsolation -> RequireRole; a failure in any guard
// short-circuits the rest.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	authenticate := auth.Authenticate(cfg.TokenManager)
	isolate := auth.TenantIsolation()

	api := app.Group("/api")
	api.Get("/health", cfg.Health.Health)

	authGroup := api.Group("/auth")
	authGroup.Post("/register-tenant", cfg.Auth.RegisterTenant)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Get("/me", authenticate, cfg.Auth.Me)

	// Tenant membership management, tenant_admin only. The :tenantId path
	// segment is never used for scoping.
	adminOnly := auth.RequireRole(domain.RoleTenantAdmin)
	api.Post("/tenants/:tenantId/users", authenticate, isolate, adminOnly, cfg.Users.AddUser)
	api.Get("/tenants/:tenantId/users", authenticate, isolate, adminOnly, cfg.Users.ListUsers)
	api.Put("/users/:userId", authenticate, isolate, adminOnly, cfg.Users.UpdateUser)
	api.Delete("/users/:userId", authenticate, isolate, adminOnly, cfg.Users.DeleteUser)

	projects := api.Group("/projects", authenticate, isolate)
	projects.Post("/", cfg.Projects.CreateProject)
	projects.Get("/", cfg.Projects.ListProjects)
	projects.Put("/:projectId", cfg.Projects.UpdateProject)
	projects.Delete("/:projectId", cfg.Projects.DeleteProject)
	projects.Post("/:projectId/tasks", cfg.Tasks.CreateTask)
	projects.Get("/:projectId/tasks", cfg.Tasks.ListTasks)

	tasks := api.Group("/tasks", authenticate, isolate)
	tasks.Put("/:taskId", cfg.Tasks.UpdateTask)
	tasks.Patch("/:taskId/status", cfg.Tasks.UpdateTaskStatus)
	tasks.Delete("/:taskId", cfg.Tasks.DeleteTask)

	admin := api.Group("/admin", authenticate, auth.RequireRole(domain.RoleSuperAdmin))
	admin.Get("/tenants", cfg.AdminTenants.ListTenants)
	admin.Patch("/tenants/:tenantId/status", cfg.AdminTenants.UpdateTenantStatus)
}
