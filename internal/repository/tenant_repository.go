package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/tenant-service/internal/domain"
)

// TenantRepository encapsulates tenant persistence.
type TenantRepository interface {
	// CreateWithAdmin inserts a tenant and its initial tenant_admin user in a
	// single transaction. Either both rows exist afterwards or neither does.
	CreateWithAdmin(ctx context.Context, tenant *domain.Tenant, admin *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error)
	List(ctx context.Context) ([]domain.Tenant, error)
	UpdateStatus(ctx context.Context, id string, status domain.TenantStatus) (*domain.Tenant, error)
}

type tenantRepository struct {
	pool *pgxpool.Pool
}

// NewTenantRepository returns a Postgres-backed implementation.
func NewTenantRepository(pool *pgxpool.Pool) TenantRepository {
	return &tenantRepository{pool: pool}
}

const tenantColumns = `id, name, subdomain, status, subscription_plan, max_users, created_at, updated_at`

func (r *tenantRepository) CreateWithAdmin(ctx context.Context, tenant *domain.Tenant, admin *domain.User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertTenant = `
        INSERT INTO tenants (name, subdomain)
        VALUES ($1, $2)
        RETURNING ` + tenantColumns
	if err := scanTenant(tx.QueryRow(ctx, insertTenant, tenant.Name, tenant.Subdomain), tenant); err != nil {
		return err
	}

	const insertAdmin = `
        INSERT INTO users (tenant_id, email, password_hash, full_name, role)
        VALUES ($1, $2, $3, $4, 'tenant_admin')
        RETURNING id, role, is_active, created_at, updated_at`
	admin.TenantID = &tenant.ID
	if err := tx.QueryRow(ctx, insertAdmin,
		tenant.ID,
		admin.Email,
		admin.PasswordHash,
		admin.FullName,
	).Scan(&admin.ID, &admin.Role, &admin.IsActive, &admin.CreatedAt, &admin.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *tenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	const query = `SELECT ` + tenantColumns + ` FROM tenants WHERE id=$1`
	var tenant domain.Tenant
	if err := scanTenant(r.pool.QueryRow(ctx, query, id), &tenant); err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) GetBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	const query = `SELECT ` + tenantColumns + ` FROM tenants WHERE subdomain=$1`
	var tenant domain.Tenant
	if err := scanTenant(r.pool.QueryRow(ctx, query, subdomain), &tenant); err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) List(ctx context.Context) ([]domain.Tenant, error) {
	const query = `SELECT ` + tenantColumns + ` FROM tenants ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Tenant
	for rows.Next() {
		var tenant domain.Tenant
		if err := scanTenant(rows, &tenant); err != nil {
			return nil, err
		}
		result = append(result, tenant)
	}
	return result, rows.Err()
}

func (r *tenantRepository) UpdateStatus(ctx context.Context, id string, status domain.TenantStatus) (*domain.Tenant, error) {
	const query = `
        UPDATE tenants SET status=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING ` + tenantColumns
	var tenant domain.Tenant
	if err := scanTenant(r.pool.QueryRow(ctx, query, status, id), &tenant); err != nil {
		return nil, err
	}
	return &tenant, nil
}

func scanTenant(row pgx.Row, tenant *domain.Tenant) error {
	return row.Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Subdomain,
		&tenant.Status,
		&tenant.SubscriptionPlan,
		&tenant.MaxUsers,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)
}
