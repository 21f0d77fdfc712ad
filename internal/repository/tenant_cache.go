package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/tenant-service/internal/domain"
)

const tenantCacheTTL = 5 * time.Minute

// cachedTenantRepository fronts tenant-by-subdomain lookups with Redis. The
// login path resolves a subdomain on every request, so this is the one query
// worth caching. Cache failures are logged and fall through to Postgres.
type cachedTenantRepository struct {
	TenantRepository
	client *redis.Client
	logger *zap.Logger
}

// NewCachedTenantRepository wraps inner with a Redis cache. A nil client
// returns inner unchanged.
func NewCachedTenantRepository(inner TenantRepository, client *redis.Client, logger *zap.Logger) TenantRepository {
	if client == nil {
		return inner
	}
	return &cachedTenantRepository{TenantRepository: inner, client: client, logger: logger}
}

func tenantCacheKey(subdomain string) string {
	return "tenant:subdomain:" + subdomain
}

func (r *cachedTenantRepository) GetBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	key := tenantCacheKey(subdomain)

	if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var tenant domain.Tenant
		if err := json.Unmarshal(raw, &tenant); err == nil {
			return &tenant, nil
		}
		r.logger.Warn("corrupt tenant cache entry", zap.String("key", key))
	} else if err != redis.Nil {
		r.logger.Warn("tenant cache read failed", zap.Error(err))
	}

	tenant, err := r.TenantRepository.GetBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(tenant); err == nil {
		if err := r.client.Set(ctx, key, raw, tenantCacheTTL).Err(); err != nil {
			r.logger.Warn("tenant cache write failed", zap.Error(err))
		}
	}
	return tenant, nil
}

func (r *cachedTenantRepository) UpdateStatus(ctx context.Context, id string, status domain.TenantStatus) (*domain.Tenant, error) {
	tenant, err := r.TenantRepository.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	// Invalidate so a suspended tenant cannot keep logging in from cache.
	if err := r.client.Del(ctx, tenantCacheKey(tenant.Subdomain)).Err(); err != nil {
		r.logger.Warn("tenant cache invalidation failed", zap.Error(err))
	}
	return tenant, nil
}
