package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/tenant-service/internal/domain"
	"github.com/spec-kit/tenant-service/internal/repository"
	apperrors "github.com/spec-kit/tenant-service/pkg/util"
)

// TenantService exposes the super-admin tenant administration surface. It is
// the only service that operates without a tenant scope.
type TenantService struct {
	tenants repository.TenantRepository
}

// NewTenantService builds the service.
func NewTenantService(tenants repository.TenantRepository) *TenantService {
	return &TenantService{tenants: tenants}
}

// ListTenants returns every tenant on the platform.
func (s *TenantService) ListTenants(ctx context.Context) ([]domain.Tenant, error) {
	return s.tenants.List(ctx)
}

// SetTenantStatus activates, suspends, or cancels a tenant.
func (s *TenantService) SetTenantStatus(ctx context.Context, tenantID string, status domain.TenantStatus) (*domain.Tenant, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("Invalid tenant status")
	}
	tenant, err := s.tenants.UpdateStatus(ctx, tenantID, status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Tenant not found")
		}
		return nil, err
	}
	return tenant, nil
}
