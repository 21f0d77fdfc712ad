package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/tenant-service/internal/domain"
	"github.com/spec-kit/tenant-service/internal/repository"
	apperrors "github.com/spec-kit/tenant-service/pkg/util"
)

// In-memory repository fakes. Misses surface as pgx.ErrNoRows like the real
// pgx-backed implementations.

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func strPtr(s string) *string {
	return &s
}

type fakeTenantRepo struct {
	tenants map[string]*domain.Tenant
	nextID  int
}

func newFakeTenantRepo() *fakeTenantRepo {
	return &fakeTenantRepo{tenants: map[string]*domain.Tenant{}}
}

func (r *fakeTenantRepo) add(tenant *domain.Tenant) *domain.Tenant {
	if tenant.ID == "" {
		r.nextID++
		tenant.ID = fmt.Sprintf("tenant-%d", r.nextID)
	}
	if tenant.Status == "" {
		tenant.Status = domain.TenantStatusActive
	}
	if tenant.MaxUsers == 0 {
		tenant.MaxUsers = 5
	}
	r.tenants[tenant.ID] = tenant
	return tenant
}

func (r *fakeTenantRepo) CreateWithAdmin(_ context.Context, tenant *domain.Tenant, admin *domain.User) error {
	for _, existing := range r.tenants {
		if existing.Subdomain == tenant.Subdomain {
			return uniqueViolation("tenants_subdomain_key")
		}
	}
	r.add(tenant)
	admin.ID = tenant.ID + "-admin"
	admin.TenantID = &tenant.ID
	admin.Role = domain.RoleTenantAdmin
	admin.IsActive = true
	return nil
}

func (r *fakeTenantRepo) GetByID(_ context.Context, id string) (*domain.Tenant, error) {
	tenant, ok := r.tenants[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return tenant, nil
}

func (r *fakeTenantRepo) GetBySubdomain(_ context.Context, subdomain string) (*domain.Tenant, error) {
	for _, tenant := range r.tenants {
		if tenant.Subdomain == subdomain {
			return tenant, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTenantRepo) List(_ context.Context) ([]domain.Tenant, error) {
	result := make([]domain.Tenant, 0, len(r.tenants))
	for _, tenant := range r.tenants {
		result = append(result, *tenant)
	}
	return result, nil
}

func (r *fakeTenantRepo) UpdateStatus(_ context.Context, id string, status domain.TenantStatus) (*domain.Tenant, error) {
	tenant, ok := r.tenants[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	tenant.Status = status
	return tenant, nil
}

type fakeUserRepo struct {
	users  map[string]*domain.User
	nextID int

	// onUpdatePassword, when set, runs before the password write. Tests use
	// it to interleave a rival operation at that point.
	onUpdatePassword func()
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (r *fakeUserRepo) add(user *domain.User) *domain.User {
	if user.ID == "" {
		r.nextID++
		user.ID = fmt.Sprintf("user-%d", r.nextID)
	}
	r.users[user.ID] = user
	return user
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, existing := range r.users {
		sameTenant := existing.TenantID != nil && user.TenantID != nil && *existing.TenantID == *user.TenantID
		if sameTenant && existing.Email == user.Email {
			return uniqueViolation("unique_email_per_tenant")
		}
	}
	user.IsActive = true
	r.add(user)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmailAndTenant(_ context.Context, email, tenantID string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email && user.TenantID != nil && *user.TenantID == tenantID {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) ListByTenant(_ context.Context, tenantID string) ([]domain.User, error) {
	var result []domain.User
	for _, user := range r.users {
		if user.TenantID != nil && *user.TenantID == tenantID {
			result = append(result, *user)
		}
	}
	return result, nil
}

func (r *fakeUserRepo) Update(_ context.Context, tenantID, userID string, patch repository.UserPatch) (*domain.User, error) {
	if patch.FullName == nil && patch.Role == nil && patch.IsActive == nil {
		return nil, repository.ErrEmptyPatch
	}
	user, ok := r.users[userID]
	if !ok || user.TenantID == nil || *user.TenantID != tenantID {
		return nil, pgx.ErrNoRows
	}
	if patch.FullName != nil {
		user.FullName = *patch.FullName
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}
	return user, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	if r.onUpdatePassword != nil {
		r.onUpdatePassword()
	}
	user, ok := r.users[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, tenantID, userID string) error {
	user, ok := r.users[userID]
	if !ok || user.TenantID == nil || *user.TenantID != tenantID {
		return pgx.ErrNoRows
	}
	delete(r.users, userID)
	return nil
}

func (r *fakeUserRepo) CountByTenant(_ context.Context, tenantID string) (int, error) {
	count := 0
	for _, user := range r.users {
		if user.TenantID != nil && *user.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

type fakeProjectRepo struct {
	projects map[string]*domain.Project
	nextID   int
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: map[string]*domain.Project{}}
}

func (r *fakeProjectRepo) add(project *domain.Project) *domain.Project {
	if project.ID == "" {
		r.nextID++
		project.ID = fmt.Sprintf("project-%d", r.nextID)
	}
	r.projects[project.ID] = project
	return project
}

func (r *fakeProjectRepo) Create(_ context.Context, project *domain.Project) error {
	r.add(project)
	return nil
}

func (r *fakeProjectRepo) GetByID(_ context.Context, tenantID, id string) (*domain.Project, error) {
	project, ok := r.projects[id]
	if !ok || project.TenantID != tenantID {
		return nil, pgx.ErrNoRows
	}
	return project, nil
}

func (r *fakeProjectRepo) ListByTenant(_ context.Context, tenantID string) ([]domain.Project, error) {
	var result []domain.Project
	for _, project := range r.projects {
		if project.TenantID == tenantID {
			result = append(result, *project)
		}
	}
	return result, nil
}

func (r *fakeProjectRepo) Update(_ context.Context, tenantID, id string, patch repository.ProjectPatch) (*domain.Project, error) {
	if patch.Name == nil && patch.Description == nil && patch.Status == nil {
		return nil, repository.ErrEmptyPatch
	}
	project, ok := r.projects[id]
	if !ok || project.TenantID != tenantID {
		return nil, pgx.ErrNoRows
	}
	if patch.Name != nil {
		project.Name = *patch.Name
	}
	if patch.Description != nil {
		project.Description = *patch.Description
	}
	if patch.Status != nil {
		project.Status = *patch.Status
	}
	return project, nil
}

func (r *fakeProjectRepo) Delete(_ context.Context, tenantID, id string) error {
	project, ok := r.projects[id]
	if !ok || project.TenantID != tenantID {
		return pgx.ErrNoRows
	}
	delete(r.projects, id)
	return nil
}

type fakeTaskRepo struct {
	tasks  map[string]*domain.Task
	nextID int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[string]*domain.Task{}}
}

func (r *fakeTaskRepo) add(task *domain.Task) *domain.Task {
	if task.ID == "" {
		r.nextID++
		task.ID = fmt.Sprintf("task-%d", r.nextID)
	}
	r.tasks[task.ID] = task
	return task
}

func (r *fakeTaskRepo) Create(_ context.Context, task *domain.Task) error {
	r.add(task)
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, tenantID, id string) (*domain.Task, error) {
	task, ok := r.tasks[id]
	if !ok || task.TenantID != tenantID {
		return nil, pgx.ErrNoRows
	}
	copied := *task
	return &copied, nil
}

func (r *fakeTaskRepo) ListByProject(_ context.Context, tenantID, projectID string, _ repository.TaskFilter) ([]domain.Task, error) {
	var result []domain.Task
	for _, task := range r.tasks {
		if task.TenantID == tenantID && task.ProjectID == projectID {
			result = append(result, *task)
		}
	}
	return result, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, tenantID, id string, patch repository.TaskPatch) (*domain.Task, error) {
	if patch.Title == nil && patch.Description == nil && patch.Status == nil &&
		patch.Priority == nil && patch.AssignedTo == nil && patch.DueDate == nil {
		return nil, repository.ErrEmptyPatch
	}
	task, ok := r.tasks[id]
	if !ok || task.TenantID != tenantID {
		return nil, pgx.ErrNoRows
	}
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.AssignedTo != nil {
		task.AssignedTo = *patch.AssignedTo
	}
	if patch.DueDate != nil {
		task.DueDate = *patch.DueDate
	}
	copied := *task
	return &copied, nil
}

func (r *fakeTaskRepo) UpdateStatus(_ context.Context, tenantID, id string, status domain.TaskStatus) (*domain.Task, error) {
	task, ok := r.tasks[id]
	if !ok || task.TenantID != tenantID {
		return nil, pgx.ErrNoRows
	}
	task.Status = status
	copied := *task
	return &copied, nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, tenantID, id string) error {
	task, ok := r.tasks[id]
	if !ok || task.TenantID != tenantID {
		return pgx.ErrNoRows
	}
	delete(r.tasks, id)
	return nil
}

type fakeResetRepo struct {
	tokens map[string]*repository.PasswordResetToken
	nextID int
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{tokens: map[string]*repository.PasswordResetToken{}}
}

func (r *fakeResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	r.nextID++
	token.ID = fmt.Sprintf("reset-%d", r.nextID)
	r.tokens[token.ID] = token
	return nil
}

func (r *fakeResetRepo) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	for _, token := range r.tokens {
		if token.Token == tokenStr {
			return token, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeResetRepo) MarkUsed(_ context.Context, id string) error {
	token, ok := r.tokens[id]
	if !ok || token.UsedAt != nil {
		return pgx.ErrNoRows
	}
	now := time.Now()
	token.UsedAt = &now
	return nil
}

// assertDomainError checks both HTTP status and caller-visible message.
func assertDomainError(t *testing.T, err error, wantStatus int, wantMessage string) {
	t.Helper()
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, wantStatus, domainErr.HTTPStatus)
	assert.Equal(t, wantMessage, domainErr.Message)
}
