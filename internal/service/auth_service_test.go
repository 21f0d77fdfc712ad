package service_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/tenant-service/internal/auth"
	"github.com/spec-kit/tenant-service/internal/config"
	"github.com/spec-kit/tenant-service/internal/domain"
	"github.com/spec-kit/tenant-service/internal/events"
	"github.com/spec-kit/tenant-service/internal/service"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:          "test-secret",
		AccessTokenTTLHour: 24,
		ResetTokenTTLMin:   30,
		BcryptCost:         bcrypt.MinCost,
	}
}

type authFixture struct {
	svc     *service.AuthService
	tenants *fakeTenantRepo
	users   *fakeUserRepo
	resets  *fakeResetRepo
}

func newAuthFixture(dispatcher events.Dispatcher) *authFixture {
	tenants := newFakeTenantRepo()
	users := newFakeUserRepo()
	resets := newFakeResetRepo()
	svc := service.NewAuthService(testAuthConfig(), service.AuthDependencies{
		TenantRepo:        tenants,
		UserRepo:          users,
		PasswordResetRepo: resets,
		Dispatcher:        dispatcher,
	})
	return &authFixture{svc: svc, tenants: tenants, users: users, resets: resets}
}

func (f *authFixture) seedTenantWithUser(t *testing.T, subdomain, email, password string, userActive bool) (*domain.Tenant, *domain.User) {
	t.Helper()
	tenant := f.tenants.add(&domain.Tenant{Name: subdomain, Subdomain: subdomain})
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	user := f.users.add(&domain.User{
		TenantID:     &tenant.ID,
		Email:        email,
		PasswordHash: hash,
		FullName:     "Seed User",
		Role:         domain.RoleUser,
		IsActive:     userActive,
	})
	return tenant, user
}

func TestRegisterTenant(t *testing.T) {
	ctx := context.Background()

	t.Run("creates tenant and admin and issues scoped token", func(t *testing.T) {
		dispatcher := events.NewInMemoryDispatcher()
		var published []events.Event
		dispatcher.Subscribe(events.EventTenantRegistered, func(_ context.Context, event events.Event) error {
			published = append(published, event)
			return nil
		})
		fx := newAuthFixture(dispatcher)

		reg, err := fx.svc.RegisterTenant(ctx, service.RegisterTenantInput{
			TenantName:    "Acme Inc",
			Subdomain:     "ACME",
			AdminEmail:    "a@acme.com",
			AdminPassword: "password",
			AdminFullName: "Ada Admin",
		})
		require.NoError(t, err)

		assert.Equal(t, "acme", reg.Tenant.Subdomain)
		assert.Equal(t, domain.RoleTenantAdmin, reg.Admin.Role)
		require.NotNil(t, reg.Admin.TenantID)
		assert.Equal(t, reg.Tenant.ID, *reg.Admin.TenantID)

		claims, err := fx.svc.TokenManager().Parse(reg.Token)
		require.NoError(t, err)
		assert.Equal(t, reg.Admin.ID, claims.UserID)
		require.NotNil(t, claims.TenantID)
		assert.Equal(t, reg.Tenant.ID, *claims.TenantID)
		assert.Equal(t, domain.RoleTenantAdmin, claims.Role)
		assert.WithinDuration(t, time.Now().Add(24*time.Hour), reg.ExpiresAt, time.Minute)

		require.Len(t, published, 1)
		assert.Equal(t, reg.Tenant.ID, published[0].TenantID)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		fx := newAuthFixture(nil)
		_, err := fx.svc.RegisterTenant(ctx, service.RegisterTenantInput{
			TenantName: "Acme", Subdomain: "acme", AdminEmail: "a@acme.com",
		})
		assertDomainError(t, err, http.StatusBadRequest, "All fields are required")
	})

	t.Run("rejects short password", func(t *testing.T) {
		fx := newAuthFixture(nil)
		_, err := fx.svc.RegisterTenant(ctx, service.RegisterTenantInput{
			TenantName:    "Acme",
			Subdomain:     "acme",
			AdminEmail:    "a@acme.com",
			AdminPassword: "short",
			AdminFullName: "Ada",
		})
		assertDomainError(t, err, http.StatusBadRequest, "Password must be at least 8 characters")
	})

	t.Run("duplicate subdomain maps to conflict", func(t *testing.T) {
		fx := newAuthFixture(nil)
		fx.tenants.add(&domain.Tenant{Name: "First", Subdomain: "acme"})

		_, err := fx.svc.RegisterTenant(ctx, service.RegisterTenantInput{
			TenantName:    "Second",
			Subdomain:     "acme",
			AdminEmail:    "b@acme.com",
			AdminPassword: "password",
			AdminFullName: "Bob",
		})
		assertDomainError(t, err, http.StatusConflict, "Subdomain already taken")
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials return scoped token", func(t *testing.T) {
		fx := newAuthFixture(nil)
		tenant, user := fx.seedTenantWithUser(t, "acme", "a@acme.com", "password", true)

		got, token, expiresAt, err := fx.svc.Login(ctx, "a@acme.com", "password", "ACME")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, time.Minute)

		claims, err := fx.svc.TokenManager().Parse(token)
		require.NoError(t, err)
		require.NotNil(t, claims.TenantID)
		assert.Equal(t, tenant.ID, *claims.TenantID)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		fx := newAuthFixture(nil)
		_, _, _, err := fx.svc.Login(ctx, "a@acme.com", "password", "nosuch")
		assertDomainError(t, err, http.StatusNotFound, "Tenant not found")
	})

	t.Run("suspended tenant", func(t *testing.T) {
		fx := newAuthFixture(nil)
		tenant, _ := fx.seedTenantWithUser(t, "acme", "a@acme.com", "password", true)
		tenant.Status = domain.TenantStatusSuspended

		_, _, _, err := fx.svc.Login(ctx, "a@acme.com", "password", "acme")
		assertDomainError(t, err, http.StatusForbidden, "Tenant is not active")
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		fx := newAuthFixture(nil)
		fx.seedTenantWithUser(t, "acme", "a@acme.com", "password", true)

		_, _, _, err := fx.svc.Login(ctx, "nobody@acme.com", "password", "acme")
		assertDomainError(t, err, http.StatusUnauthorized, "Invalid credentials")

		_, _, _, err = fx.svc.Login(ctx, "a@acme.com", "wrong-password", "acme")
		assertDomainError(t, err, http.StatusUnauthorized, "Invalid credentials")
	})

	t.Run("deactivated account", func(t *testing.T) {
		fx := newAuthFixture(nil)
		fx.seedTenantWithUser(t, "acme", "a@acme.com", "password", false)

		_, _, _, err := fx.svc.Login(ctx, "a@acme.com", "password", "acme")
		assertDomainError(t, err, http.StatusForbidden, "Account is inactive")
	})

	t.Run("same email in another tenant cannot log in here", func(t *testing.T) {
		fx := newAuthFixture(nil)
		fx.seedTenantWithUser(t, "acme", "shared@example.com", "password", true)
		fx.tenants.add(&domain.Tenant{Name: "Beta", Subdomain: "beta"})

		_, _, _, err := fx.svc.Login(ctx, "shared@example.com", "password", "beta")
		assertDomainError(t, err, http.StatusUnauthorized, "Invalid credentials")
	})
}

func TestCurrentUser(t *testing.T) {
	ctx := context.Background()
	fx := newAuthFixture(nil)
	tenant, user := fx.seedTenantWithUser(t, "acme", "a@acme.com", "password", true)

	gotUser, gotTenant, err := fx.svc.CurrentUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, gotUser.ID)
	require.NotNil(t, gotTenant)
	assert.Equal(t, tenant.ID, gotTenant.ID)

	_, _, err = fx.svc.CurrentUser(ctx, "missing")
	assertDomainError(t, err, http.StatusNotFound, "User not found")
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("issued token changes the password once", func(t *testing.T) {
		fx := newAuthFixture(nil)
		fx.seedTenantWithUser(t, "acme", "a@acme.com", "old-password", true)

		token, err := fx.svc.RequestPasswordReset(ctx, "a@acme.com", "acme")
		require.NoError(t, err)
		assert.NotEmpty(t, token.Token)

		require.NoError(t, fx.svc.ConfirmPasswordReset(ctx, token.Token, "new-password"))

		_, _, _, err = fx.svc.Login(ctx, "a@acme.com", "new-password", "acme")
		require.NoError(t, err)
		_, _, _, err = fx.svc.Login(ctx, "a@acme.com", "old-password", "acme")
		assertDomainError(t, err, http.StatusUnauthorized, "Invalid credentials")

		err = fx.svc.ConfirmPasswordReset(ctx, token.Token, "another-password")
		assertDomainError(t, err, http.StatusBadRequest, "Reset token expired or already used")
	})

	t.Run("interleaved confirmations consume the token exactly once", func(t *testing.T) {
		fx := newAuthFixture(nil)
		fx.seedTenantWithUser(t, "acme", "a@acme.com", "old-password", true)

		token, err := fx.svc.RequestPasswordReset(ctx, "a@acme.com", "acme")
		require.NoError(t, err)

		// A rival confirm runs after the first confirm consumed the token but
		// before its password write lands.
		var rivalErr error
		fx.users.onUpdatePassword = func() {
			fx.users.onUpdatePassword = nil
			rivalErr = fx.svc.ConfirmPasswordReset(ctx, token.Token, "rival-password")
		}

		require.NoError(t, fx.svc.ConfirmPasswordReset(ctx, token.Token, "new-password"))
		assertDomainError(t, rivalErr, http.StatusBadRequest, "Reset token expired or already used")

		_, _, _, err = fx.svc.Login(ctx, "a@acme.com", "new-password", "acme")
		require.NoError(t, err)
		_, _, _, err = fx.svc.Login(ctx, "a@acme.com", "rival-password", "acme")
		assertDomainError(t, err, http.StatusUnauthorized, "Invalid credentials")
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		fx := newAuthFixture(nil)
		fx.seedTenantWithUser(t, "acme", "a@acme.com", "password", true)

		token, err := fx.svc.RequestPasswordReset(ctx, "a@acme.com", "acme")
		require.NoError(t, err)
		token.ExpiresAt = time.Now().Add(-time.Minute)

		err = fx.svc.ConfirmPasswordReset(ctx, token.Token, "new-password")
		assertDomainError(t, err, http.StatusBadRequest, "Reset token expired or already used")
	})

	t.Run("unknown token is rejected", func(t *testing.T) {
		fx := newAuthFixture(nil)
		err := fx.svc.ConfirmPasswordReset(ctx, "no-such-token", "new-password")
		assertDomainError(t, err, http.StatusBadRequest, "Invalid reset token")
	})

	t.Run("request requires known user in tenant", func(t *testing.T) {
		fx := newAuthFixture(nil)
		fx.seedTenantWithUser(t, "acme", "a@acme.com", "password", true)

		_, err := fx.svc.RequestPasswordReset(ctx, "nobody@acme.com", "acme")
		assertDomainError(t, err, http.StatusNotFound, "User not found")

		_, err = fx.svc.RequestPasswordReset(ctx, "a@acme.com", "nosuch")
		assertDomainError(t, err, http.StatusNotFound, "Tenant not found")
	})
}
