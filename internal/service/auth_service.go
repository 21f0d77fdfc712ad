package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/tenant-service/internal/auth"
	"github.com/spec-kit/tenant-service/internal/config"
	"github.com/spec-kit/tenant-service/internal/domain"
	"github.com/spec-kit/tenant-service/internal/events"
	"github.com/spec-kit/tenant-service/internal/repository"
	apperrors "github.com/spec-kit/tenant-service/pkg/util"
)

const minPasswordLength = 8

// RegisterTenantInput carries the tenant self-registration payload.
type RegisterTenantInput struct {
	TenantName    string
	Subdomain     string
	AdminEmail    string
	AdminPassword string
	AdminFullName string
}

// Registration is the outcome of a successful tenant registration.
type Registration struct {
	Tenant    *domain.Tenant
	Admin     *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates registration, login and password flows.
type AuthService struct {
	tenants    repository.TenantRepository
	users      repository.UserRepository
	resets     repository.PasswordResetRepository
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
	bcryptCost int
	resetTTL   time.Duration
}

// AuthDependencies encapsulates repo requirements for the auth service.
type AuthDependencies struct {
	TenantRepo        repository.TenantRepository
	UserRepo          repository.UserRepository
	PasswordResetRepo repository.PasswordResetRepository
	Dispatcher        events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		tenants:    deps.TenantRepo,
		users:      deps.UserRepo,
		resets:     deps.PasswordResetRepo,
		dispatcher: deps.Dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLHour),
		bcryptCost: cfg.BcryptCost,
		resetTTL:   time.Duration(cfg.ResetTokenTTLMin) * time.Minute,
	}
}

// RegisterTenant creates a tenant and its initial admin atomically and
// returns a token for the new admin.
func (s *AuthService) RegisterTenant(ctx context.Context, input RegisterTenantInput) (*Registration, error) {
	if input.TenantName == "" || input.Subdomain == "" || input.AdminEmail == "" ||
		input.AdminPassword == "" || input.AdminFullName == "" {
		return nil, apperrors.NewValidationError("All fields are required")
	}
	if len(input.AdminPassword) < minPasswordLength {
		return nil, apperrors.NewValidationError("Password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(input.AdminPassword, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	tenant := &domain.Tenant{
		Name:      input.TenantName,
		Subdomain: strings.ToLower(input.Subdomain),
	}
	admin := &domain.User{
		Email:        input.AdminEmail,
		PasswordHash: hash,
		FullName:     input.AdminFullName,
		Role:         domain.RoleTenantAdmin,
	}
	if err := s.tenants.CreateWithAdmin(ctx, tenant, admin); err != nil {
		return nil, apperrors.MapUniqueViolation(err)
	}

	token, expiresAt, err := s.tokenMgr.Generate(admin)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventTenantRegistered, tenant.ID, admin.ID, events.TenantRegisteredPayload{
		TenantName: tenant.Name,
		Subdomain:  tenant.Subdomain,
		AdminEmail: admin.Email,
	})

	return &Registration{Tenant: tenant, Admin: admin, Token: token, ExpiresAt: expiresAt}, nil
}

// Login authenticates a user against a tenant identified by subdomain.
func (s *AuthService) Login(ctx context.Context, email, password, subdomain string) (*domain.User, string, time.Time, error) {
	if email == "" || password == "" || subdomain == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("Email, password, and tenant subdomain are required")
	}

	tenant, err := s.tenants.GetBySubdomain(ctx, strings.ToLower(subdomain))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewNotFound("Tenant not found")
		}
		return nil, "", time.Time{}, err
	}
	if tenant.Status != domain.TenantStatusActive {
		return nil, "", time.Time{}, apperrors.NewForbidden("Tenant is not active")
	}

	user, err := s.users.GetByEmailAndTenant(ctx, email, tenant.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("Invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if !user.IsActive {
		return nil, "", time.Time{}, apperrors.NewForbidden("Account is inactive")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("Invalid credentials")
	}

	token, expiresAt, err := s.tokenMgr.Generate(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}

// CurrentUser loads the caller's profile and, when tenant-bound, its tenant.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, *domain.Tenant, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("User not found")
		}
		return nil, nil, err
	}

	var tenant *domain.Tenant
	if user.TenantID != nil {
		tenant, err = s.tenants.GetByID(ctx, *user.TenantID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, err
		}
	}
	return user, tenant, nil
}

// RequestPasswordReset issues a single-use reset token for the user matching
// email within the tenant identified by subdomain.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email, subdomain string) (*repository.PasswordResetToken, error) {
	if email == "" || subdomain == "" {
		return nil, apperrors.NewValidationError("Email and tenant subdomain are required")
	}

	tenant, err := s.tenants.GetBySubdomain(ctx, strings.ToLower(subdomain))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Tenant not found")
		}
		return nil, err
	}

	user, err := s.users.GetByEmailAndTenant(ctx, email, tenant.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("User not found")
		}
		return nil, err
	}

	token := &repository.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// ConfirmPasswordReset validates the reset token and updates the password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apperrors.NewValidationError("Password must be at least 8 characters")
	}

	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("Invalid reset token")
		}
		return err
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return apperrors.NewValidationError("Reset token expired or already used")
	}

	// Consume the token before the password changes. MarkUsed is conditional
	// on the token being unused, so of two racing confirms only one proceeds.
	if err := s.resets.MarkUsed(ctx, token.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("Reset token expired or already used")
		}
		return err
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, token.UserID, hash)
}

// TokenManager exposes the underlying token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, tenantID, actorID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TenantID:  tenantID,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
