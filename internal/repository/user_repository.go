package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/tenant-service/internal/domain"
)

// UserPatch carries optional field updates. Nil fields are left untouched.
type UserPatch struct {
	FullName *string
	Role     *domain.Role
	IsActive *bool
}

// UserRepository defines persistence access for users. Every tenant-scoped
// method filters by tenant_id in the query itself.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmailAndTenant(ctx context.Context, email, tenantID string) (*domain.User, error)
	ListByTenant(ctx context.Context, tenantID string) ([]domain.User, error)
	Update(ctx context.Context, tenantID, userID string, patch UserPatch) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	Delete(ctx context.Context, tenantID, userID string) error
	CountByTenant(ctx context.Context, tenantID string) (int, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, tenant_id, email, password_hash, full_name, role, is_active, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (tenant_id, email, password_hash, full_name, role)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, is_active, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		user.TenantID,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Role,
	).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.fetchOne(ctx, query, id)
}

func (r *userRepository) GetByEmailAndTenant(ctx context.Context, email, tenantID string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email=$1 AND tenant_id=$2`
	return r.fetchOne(ctx, query, email, tenantID)
}

func (r *userRepository) fetchOne(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var user domain.User
	if err := scanUser(r.pool.QueryRow(ctx, query, args...), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE tenant_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := scanUser(rows, &user); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

func (r *userRepository) Update(ctx context.Context, tenantID, userID string, patch UserPatch) (*domain.User, error) {
	fields := []string{}
	args := []any{}

	if patch.FullName != nil {
		args = append(args, *patch.FullName)
		fields = append(fields, fmt.Sprintf("full_name=$%d", len(args)))
	}
	if patch.Role != nil {
		args = append(args, *patch.Role)
		fields = append(fields, fmt.Sprintf("role=$%d", len(args)))
	}
	if patch.IsActive != nil {
		args = append(args, *patch.IsActive)
		fields = append(fields, fmt.Sprintf("is_active=$%d", len(args)))
	}
	if len(fields) == 0 {
		return nil, ErrEmptyPatch
	}
	fields = append(fields, "updated_at=NOW()")

	args = append(args, tenantID, userID)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE tenant_id=$%d AND id=$%d RETURNING `+userColumns,
		strings.Join(fields, ", "), len(args)-1, len(args))

	var user domain.User
	if err := scanUser(r.pool.QueryRow(ctx, query, args...), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	const query = `UPDATE users SET password_hash=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, passwordHash, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, tenantID, userID string) error {
	const query = `DELETE FROM users WHERE tenant_id=$1 AND id=$2`
	cmd, err := r.pool.Exec(ctx, query, tenantID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) CountByTenant(ctx context.Context, tenantID string) (int, error) {
	const query = `SELECT COUNT(*) FROM users WHERE tenant_id=$1`
	var count int
	if err := r.pool.QueryRow(ctx, query, tenantID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanUser(row pgx.Row, user *domain.User) error {
	return row.Scan(
		&user.ID,
		&user.TenantID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
}
