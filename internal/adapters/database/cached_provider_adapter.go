package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/obikoya/care-triage-routing/internal/domain/entities"
	"github.com/obikoya/care-triage-routing/internal/domain/providers"
	"github.com/obikoya/care-triage-routing/internal/domain/repositories"
	"github.com/rs/zerolog/log"
)

// CachedProviderAdapter wraps a ProviderRepository with read-through caching.
// Capacity writes invalidate the cached entry; the capacity event bus handles
// eviction for writes made by other instances.
type CachedProviderAdapter struct {
	adapter repositories.ProviderRepository
	cache   providers.CacheProvider
}

// NewCachedProviderAdapter creates a new cached provider adapter
func NewCachedProviderAdapter(adapter repositories.ProviderRepository, cache providers.CacheProvider) repositories.ProviderRepository {
	return &CachedProviderAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// Cache TTL (in seconds). Capacity data goes stale fast; keep it short.
const providerByIDTTL = 60

// ProviderCacheKey returns the cache key for a provider record
func ProviderCacheKey(id string) string {
	return fmt.Sprintf("provider:%s", id)
}

// GetByID retrieves a provider with caching
func (a *CachedProviderAdapter) GetByID(ctx context.Context, id string) (*entities.Provider, error) {
	cacheKey := ProviderCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var provider entities.Provider
		if err := json.Unmarshal(cached, &provider); err == nil {
			return &provider, nil
		}
		log.Warn().Str("provider_id", id).Msg("Failed to unmarshal cached provider")
	}

	provider, err := a.adapter.GetByID(ctx, id)
	if err != nil || provider == nil {
		return provider, err
	}

	a.cacheProvider(cacheKey, provider)
	return provider, nil
}

// BatchGetByIDs retrieves providers, serving what it can from cache and
// fetching the remainder in one storage read
func (a *CachedProviderAdapter) BatchGetByIDs(ctx context.Context, ids []string) ([]*entities.Provider, error) {
	if len(ids) == 0 {
		return []*entities.Provider{}, nil
	}

	cacheKeys := make([]string, len(ids))
	for i, id := range ids {
		cacheKeys[i] = ProviderCacheKey(id)
	}

	cached, _ := a.cache.GetMulti(ctx, cacheKeys)

	result := make([]*entities.Provider, 0, len(ids))
	missing := make([]string, 0)
	for i, id := range ids {
		data, ok := cached[cacheKeys[i]]
		if !ok {
			missing = append(missing, id)
			continue
		}
		var provider entities.Provider
		if err := json.Unmarshal(data, &provider); err != nil {
			missing = append(missing, id)
			continue
		}
		result = append(result, &provider)
	}

	if len(missing) > 0 {
		fetched, err := a.adapter.BatchGetByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, provider := range fetched {
			a.cacheProvider(ProviderCacheKey(provider.ID), provider)
		}
		result = append(result, fetched...)
	}

	return result, nil
}

// UpdateCapacity delegates the write and evicts the cached entry
func (a *CachedProviderAdapter) UpdateCapacity(ctx context.Context, id string, patch repositories.CapacityPatch) error {
	if err := a.adapter.UpdateCapacity(ctx, id, patch); err != nil {
		return err
	}

	if err := a.cache.Delete(ctx, ProviderCacheKey(id)); err != nil {
		log.Warn().Err(err).Str("provider_id", id).Msg("Failed to invalidate cached provider")
	}
	return nil
}

// QueryByMinLoad bypasses the cache; threshold queries must see fresh loads
func (a *CachedProviderAdapter) QueryByMinLoad(ctx context.Context, threshold int) ([]*entities.Provider, error) {
	return a.adapter.QueryByMinLoad(ctx, threshold)
}

// ScanActive bypasses the cache
func (a *CachedProviderAdapter) ScanActive(ctx context.Context) ([]*entities.Provider, error) {
	return a.adapter.ScanActive(ctx)
}

// cacheProvider updates the cache asynchronously to avoid blocking the read path
func (a *CachedProviderAdapter) cacheProvider(key string, provider *entities.Provider) {
	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(provider); err == nil {
			if err := a.cache.Set(bgCtx, key, data, providerByIDTTL); err != nil {
				log.Warn().Err(err).Str("provider_id", provider.ID).Msg("Failed to cache provider")
			}
		}
	}()
}
