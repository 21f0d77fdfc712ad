package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/tenant-service/internal/auth"
	"github.com/spec-kit/tenant-service/internal/domain"
	"github.com/spec-kit/tenant-service/internal/events"
	"github.com/spec-kit/tenant-service/internal/repository"
	apperrors "github.com/spec-kit/tenant-service/pkg/util"
)

// AddUserInput carries the payload for adding a member to a tenant.
type AddUserInput struct {
	Email    string
	Password string
	FullName string
	Role     domain.Role
}

// UserService manages tenant membership. Every operation is bound to the
// caller's tenant scope; a user outside that scope is indistinguishable from
// one that does not exist.
type UserService struct {
	users      repository.UserRepository
	tenants    repository.TenantRepository
	dispatcher events.Dispatcher
	bcryptCost int
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, tenants repository.TenantRepository, dispatcher events.Dispatcher, bcryptCost int) *UserService {
	return &UserService{users: users, tenants: tenants, dispatcher: dispatcher, bcryptCost: bcryptCost}
}

// AddUser creates a member inside the scoped tenant, enforcing the tenant's
// subscription seat limit.
func (s *UserService) AddUser(ctx context.Context, tenantID string, input AddUserInput) (*domain.User, error) {
	if input.Email == "" || input.Password == "" || input.FullName == "" {
		return nil, apperrors.NewValidationError("Email, password, and full name required")
	}
	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if role != domain.RoleUser && role != domain.RoleTenantAdmin {
		return nil, apperrors.NewValidationError("Invalid role")
	}

	current, err := s.users.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if current >= tenant.MaxUsers {
		return nil, apperrors.NewForbidden("Subscription limit reached: max users exceeded")
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		TenantID:     &tenantID,
		Email:        input.Email,
		PasswordHash: hash,
		FullName:     input.FullName,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapUniqueViolation(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventUserAdded,
			TenantID:  tenantID,
			Timestamp: time.Now(),
			Payload:   events.UserAddedPayload{UserID: user.ID, Email: user.Email, Role: user.Role},
		})
	}
	return user, nil
}

// ListUsers returns all members of the scoped tenant.
func (s *UserService) ListUsers(ctx context.Context, tenantID string) ([]domain.User, error) {
	return s.users.ListByTenant(ctx, tenantID)
}

// UpdateUser applies a partial update to a member of the scoped tenant.
func (s *UserService) UpdateUser(ctx context.Context, tenantID, userID string, patch repository.UserPatch) (*domain.User, error) {
	if patch.Role != nil && (*patch.Role != domain.RoleUser && *patch.Role != domain.RoleTenantAdmin) {
		return nil, apperrors.NewValidationError("Invalid role")
	}

	user, err := s.users.Update(ctx, tenantID, userID, patch)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmptyPatch):
			return nil, apperrors.NewValidationError("No fields to update")
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.NewNotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a member of the scoped tenant. Admins cannot delete
// their own account.
func (s *UserService) DeleteUser(ctx context.Context, tenantID, userID, callerID string) error {
	if userID == callerID {
		return apperrors.NewForbidden("Cannot delete yourself")
	}
	if err := s.users.Delete(ctx, tenantID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("User not found")
		}
		return err
	}
	return nil
}
