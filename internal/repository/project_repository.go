package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/tenant-service/internal/domain"
)

// ProjectPatch carries optional field updates.
type ProjectPatch struct {
	Name        *string
	Description *string
	Status      *domain.ProjectStatus
}

// ProjectRepository encapsulates project persistence. All methods other than
// Create require the caller's tenant scope and filter by it.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.Project, error)
	ListByTenant(ctx context.Context, tenantID string) ([]domain.Project, error)
	Update(ctx context.Context, tenantID, id string, patch ProjectPatch) (*domain.Project, error)
	Delete(ctx context.Context, tenantID, id string) error
}

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository returns a Postgres-backed implementation.
func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &projectRepository{pool: pool}
}

const projectColumns = `id, tenant_id, name, description, status, created_by, created_at, updated_at`

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	const query = `
        INSERT INTO projects (tenant_id, name, description, status, created_by)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		project.TenantID,
		project.Name,
		project.Description,
		project.Status,
		project.CreatedBy,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
}

func (r *projectRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Project, error) {
	const query = `SELECT ` + projectColumns + ` FROM projects WHERE id=$1 AND tenant_id=$2`
	var project domain.Project
	if err := scanProject(r.pool.QueryRow(ctx, query, id, tenantID), &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.Project, error) {
	const query = `
        SELECT p.id, p.tenant_id, p.name, p.description, p.status, p.created_by, p.created_at, p.updated_at,
               u.full_name,
               (SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id),
               (SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id AND t.status = 'completed')
        FROM projects p
        LEFT JOIN users u ON p.created_by = u.id
        WHERE p.tenant_id = $1
        ORDER BY p.created_at DESC`
	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Project
	for rows.Next() {
		var project domain.Project
		if err := rows.Scan(
			&project.ID,
			&project.TenantID,
			&project.Name,
			&project.Description,
			&project.Status,
			&project.CreatedBy,
			&project.CreatedAt,
			&project.UpdatedAt,
			&project.CreatorName,
			&project.TaskCount,
			&project.CompletedTaskCount,
		); err != nil {
			return nil, err
		}
		result = append(result, project)
	}
	return result, rows.Err()
}

func (r *projectRepository) Update(ctx context.Context, tenantID, id string, patch ProjectPatch) (*domain.Project, error) {
	fields := []string{}
	args := []any{}

	if patch.Name != nil {
		args = append(args, *patch.Name)
		fields = append(fields, fmt.Sprintf("name=$%d", len(args)))
	}
	if patch.Description != nil {
		args = append(args, *patch.Description)
		fields = append(fields, fmt.Sprintf("description=$%d", len(args)))
	}
	if patch.Status != nil {
		args = append(args, *patch.Status)
		fields = append(fields, fmt.Sprintf("status=$%d", len(args)))
	}
	if len(fields) == 0 {
		return nil, ErrEmptyPatch
	}
	fields = append(fields, "updated_at=NOW()")

	args = append(args, tenantID, id)
	query := fmt.Sprintf(`UPDATE projects SET %s WHERE tenant_id=$%d AND id=$%d RETURNING `+projectColumns,
		strings.Join(fields, ", "), len(args)-1, len(args))

	var project domain.Project
	if err := scanProject(r.pool.QueryRow(ctx, query, args...), &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) Delete(ctx context.Context, tenantID, id string) error {
	const query = `DELETE FROM projects WHERE tenant_id=$1 AND id=$2`
	cmd, err := r.pool.Exec(ctx, query, tenantID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanProject(row pgx.Row, project *domain.Project) error {
	return row.Scan(
		&project.ID,
		&project.TenantID,
		&project.Name,
		&project.Description,
		&project.Status,
		&project.CreatedBy,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
}
