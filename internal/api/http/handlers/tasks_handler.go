package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tenant-service/internal/api/dto"
	"github.com/spec-kit/tenant-service/internal/domain"
	"github.com/spec-kit/tenant-service/internal/repository"
	"github.com/spec-kit/tenant-service/internal/service"
	apperrors "github.com/spec-kit/tenant-service/pkg/util"
)

// TasksHandler exposes tenant-scoped task endpoints.
type TasksHandler struct {
	tasks *service.TaskService
}

// NewTasksHandler constructs handler.
func NewTasksHandler(taskService *service.TaskService) *TasksHandler {
	return &TasksHandler{tasks: taskService}
}

// CreateTask POST /api/projects/:projectId/tasks.
func (h *TasksHandler) CreateTask(c *fiber.Ctx) error {
	scope, err := requireScope(c)
	if err != nil {
		return err
	}
	var req dto.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	task, err := h.tasks.CreateTask(c.Context(), scope, c.Params("projectId"), service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.TaskPriority(req.Priority),
		DueDate:     req.DueDate,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Task created successfully", fiber.Map{"task": taskResponse(task)})
}

// ListTasks GET /api/projects/:projectId/tasks.
func (h *TasksHandler) ListTasks(c *fiber.Ctx) error {
	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	tasks, err := h.tasks.ListTasks(c.Context(), scope, c.Params("projectId"), parseTaskQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		items = append(items, taskResponse(&tasks[i]))
	}
	return respond(c, http.StatusOK, "Tasks fetched successfully", fiber.Map{"tasks": items})
}

// UpdateTask PUT /api/tasks/:taskId.
func (h *TasksHandler) UpdateTask(c *fiber.Ctx) error {
	scope, err := requireScope(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	patch := repository.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		patch.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		patch.Priority = &priority
	}

	task, err := h.tasks.UpdateTask(c.Context(), scope, c.Params("taskId"), patch)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Task updated successfully", fiber.Map{"task": taskResponse(task)})
}

// UpdateTaskStatus PATCH /api/tasks/:taskId/status.
func (h *TasksHandler) UpdateTaskStatus(c *fiber.Ctx) error {
	scope, err := requireScope(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTaskStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	task, err := h.tasks.UpdateTaskStatus(c.Context(), scope, c.Params("taskId"), domain.TaskStatus(req.Status))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Task status updated", fiber.Map{"task": taskResponse(task)})
}

// DeleteTask DELETE /api/tasks/:taskId.
func (h *TasksHandler) DeleteTask(c *fiber.Ctx) error {
	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	if err := h.tasks.DeleteTask(c.Context(), scope, c.Params("taskId")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Task deleted successfully", fiber.Map{})
}

func parseTaskQuery(c *fiber.Ctx) repository.TaskFilter {
	filter := repository.TaskFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TaskStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TaskPriority(strings.TrimSpace(part)))
		}
	}
	if assignee := c.Query("assignedTo"); assignee != "" {
		filter.AssignedTo = &assignee
	}
	return filter
}
