package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/tenant-service/internal/domain"
)

// TaskFilter captures optional list parameters.
type TaskFilter struct {
	Statuses   []domain.TaskStatus
	Priorities []domain.TaskPriority
	AssignedTo *string
}

// TaskPatch carries optional field updates. Pointer-to-pointer fields
// distinguish "leave unchanged" from "set to null".
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	Priority    *domain.TaskPriority
	AssignedTo  **string
	DueDate     **time.Time
}

// TaskRepository encapsulates task persistence, always tenant-filtered.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.Task, error)
	ListByProject(ctx context.Context, tenantID, projectID string, filter TaskFilter) ([]domain.Task, error)
	Update(ctx context.Context, tenantID, id string, patch TaskPatch) (*domain.Task, error)
	UpdateStatus(ctx context.Context, tenantID, id string, status domain.TaskStatus) (*domain.Task, error)
	Delete(ctx context.Context, tenantID, id string) error
}

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id, project_id, tenant_id, title, description, status, priority, due_date, assigned_to, created_at, updated_at`

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	const query = `
        INSERT INTO tasks (project_id, tenant_id, title, description, status, priority, due_date, assigned_to)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		task.ProjectID,
		task.TenantID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		task.AssignedTo,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

func (r *taskRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Task, error) {
	const query = `SELECT ` + taskColumns + ` FROM tasks WHERE id=$1 AND tenant_id=$2`
	var task domain.Task
	if err := scanTask(r.pool.QueryRow(ctx, query, id, tenantID), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) ListByProject(ctx context.Context, tenantID, projectID string, filter TaskFilter) ([]domain.Task, error) {
	base := `SELECT t.id, t.project_id, t.tenant_id, t.title, t.description, t.status, t.priority,
                    t.due_date, t.assigned_to, t.created_at, t.updated_at, u.full_name
             FROM tasks t
             LEFT JOIN users u ON t.assigned_to = u.id`
	args := []any{projectID, tenantID}
	clauses := []string{"t.project_id=$1", "t.tenant_id=$2"}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("t.status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, priority := range filter.Priorities {
			args = append(args, priority)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("t.priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("t.assigned_to=$%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY t.priority DESC, t.due_date ASC NULLS LAST`,
		base, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Task
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(
			&task.ID,
			&task.ProjectID,
			&task.TenantID,
			&task.Title,
			&task.Description,
			&task.Status,
			&task.Priority,
			&task.DueDate,
			&task.AssignedTo,
			&task.CreatedAt,
			&task.UpdatedAt,
			&task.AssignedToName,
		); err != nil {
			return nil, err
		}
		result = append(result, task)
	}
	return result, rows.Err()
}

func (r *taskRepository) Update(ctx context.Context, tenantID, id string, patch TaskPatch) (*domain.Task, error) {
	fields := []string{}
	args := []any{}

	if patch.Title != nil {
		args = append(args, *patch.Title)
		fields = append(fields, fmt.Sprintf("title=$%d", len(args)))
	}
	if patch.Description != nil {
		args = append(args, *patch.Description)
		fields = append(fields, fmt.Sprintf("description=$%d", len(args)))
	}
	if patch.Status != nil {
		args = append(args, *patch.Status)
		fields = append(fields, fmt.Sprintf("status=$%d", len(args)))
	}
	if patch.Priority != nil {
		args = append(args, *patch.Priority)
		fields = append(fields, fmt.Sprintf("priority=$%d", len(args)))
	}
	if patch.AssignedTo != nil {
		args = append(args, *patch.AssignedTo)
		fields = append(fields, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if patch.DueDate != nil {
		args = append(args, *patch.DueDate)
		fields = append(fields, fmt.Sprintf("due_date=$%d", len(args)))
	}
	if len(fields) == 0 {
		return nil, ErrEmptyPatch
	}
	fields = append(fields, "updated_at=NOW()")

	args = append(args, tenantID, id)
	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE tenant_id=$%d AND id=$%d RETURNING `+taskColumns,
		strings.Join(fields, ", "), len(args)-1, len(args))

	var task domain.Task
	if err := scanTask(r.pool.QueryRow(ctx, query, args...), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) UpdateStatus(ctx context.Context, tenantID, id string, status domain.TaskStatus) (*domain.Task, error) {
	const query = `
        UPDATE tasks SET status=$1, updated_at=NOW()
        WHERE id=$2 AND tenant_id=$3
        RETURNING ` + taskColumns
	var task domain.Task
	if err := scanTask(r.pool.QueryRow(ctx, query, status, id, tenantID), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) Delete(ctx context.Context, tenantID, id string) error {
	const query = `DELETE FROM tasks WHERE tenant_id=$1 AND id=$2`
	cmd, err := r.pool.Exec(ctx, query, tenantID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTask(row pgx.Row, task *domain.Task) error {
	return row.Scan(
		&task.ID,
		&task.ProjectID,
		&task.TenantID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.DueDate,
		&task.AssignedTo,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
}
