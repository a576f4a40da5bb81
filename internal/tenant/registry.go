// internal/tenant/registry.go
//
// Hostname → tenant resolution behind a TTL cache.
//
// Context
// -------
// The registry is the only component that touches the tenant tables on the
// request path, so its cache discipline matters: a live entry must be
// served without a store round trip, equivalent raw hostnames must share
// one cache slot (keyed by hostkey.Canonical), and a "no such tenant"
// answer is cached too, so unknown hosts do not hammer the store.
//
// Failure policy is fail-open: a store timeout or outage is logged, the
// lookup reports "not found", and the caller falls back to the
// environment-level default tenant.  Nothing on this path panics or
// propagates a transport error to handlers.
package tenant

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/vitrineio/vitrine/internal/cache"
	"github.com/vitrineio/vitrine/internal/hostkey"
	"github.com/vitrineio/vitrine/internal/metrics"
	"github.com/vitrineio/vitrine/internal/vault"
)

// ErrNotFound is returned by load when no active tenant claims a host.
var ErrNotFound = errors.New("tenant not found")

// Registry resolves hostnames to live tenants.  Safe for concurrent use.
type Registry struct {
	globalDB   *sqlx.DB
	vault      *vault.Client // nil when Vault is not configured
	cache      *cache.TTL[*Tenant]
	maxEntries int // 0 disables the cap
	sfg        singleflight.Group

	evictTicker *time.Ticker
	done        chan struct{}
}

// NewRegistry constructs a Registry and starts the background evictor.
// vc may be nil; ttl bounds entry freshness, evictEvery the sweep cadence,
// and maxEntries caps the cache size (0 means unbounded).
func NewRegistry(global *sqlx.DB, vc *vault.Client, ttl, evictEvery time.Duration, maxEntries int) *Registry {
	r := &Registry{
		globalDB:    global,
		vault:       vc,
		cache:       cache.NewTTL[*Tenant](ttl),
		maxEntries:  maxEntries,
		evictTicker: time.NewTicker(evictEvery),
		done:        make(chan struct{}),
	}
	go r.evictLoop()
	return r
}

// Resolve returns the tenant for hostname, loading it on demand.  A nil
// result means no active tenant claims the host, the cached "not found"
// sentinel is live, or the store is unreachable; in every case the caller
// is expected to fall back to defaults.
func (r *Registry) Resolve(ctx context.Context, hostname string) *Tenant {
	key := hostkey.Canonical(hostname)

	if ten, ok := r.cache.Get(key); ok {
		metrics.TenantCacheHitTotal.Inc()
		return ten // may be the nil not-found sentinel
	}

	v, err, _ := r.sfg.Do(key, func() (interface{}, error) {
		// Double-check after singleflight barrier.
		if ten, ok := r.cache.Get(key); ok {
			metrics.TenantCacheHitTotal.Inc()
			return ten, nil
		}

		ten, err := r.load(ctx, hostname)
		if errors.Is(err, ErrNotFound) {
			// Cache the miss so unknown hosts stay off the store.
			r.cacheSet(key, nil)
			return (*Tenant)(nil), nil
		}
		if err != nil {
			metrics.TenantLoadErrorsTotal.Inc()
			return nil, err
		}

		r.cacheSet(key, ten)
		metrics.TenantLoadTotal.Inc()
		return ten, nil
	})
	if err != nil {
		// Store unavailable.  Fail open: behave as "not found" and let the
		// caller drop to the fallback tenant.  Failures are not cached.
		zap.L().Warn("tenant store unavailable, failing open",
			zap.String("hostname", hostname), zap.Error(err))
		return nil
	}
	return v.(*Tenant)
}

// cacheSet stores an entry, honoring the size cap.  When the cache is
// full a stale sweep runs first; if it is still full the entry is served
// uncached rather than evicting a live tenant mid-flight.
func (r *Registry) cacheSet(key string, ten *Tenant) {
	if r.maxEntries > 0 && r.cache.Len() >= r.maxEntries {
		if evicted := r.cache.Sweep(func(_ string, old *Tenant) {
			if old != nil {
				_ = old.Close()
			}
		}); evicted > 0 {
			metrics.TenantEvictTotal.Add(float64(evicted))
		}
		if r.cache.Len() >= r.maxEntries {
			zap.L().Warn("tenant cache full, serving uncached",
				zap.Int("max_entries", r.maxEntries))
			return
		}
	}
	r.cache.Set(key, ten)
	metrics.CachedTenants.Set(float64(r.cache.Len()))
}

// load queries the store with the full candidate-key set and builds the
// runtime aggregate.  Ambiguous domain data degrades to first-wins with a
// warning; the system prefers availability over strictness here.
func (r *Registry) load(ctx context.Context, hostname string) (*Tenant, error) {
	keys := hostkey.Keys(hostname)

	rows, err := ByHostKeys(ctx, r.globalDB, keys)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	if len(rows) > 1 {
		ids := make([]string, len(rows))
		for i, c := range rows {
			ids[i] = c.ID
		}
		zap.L().Warn("multiple tenants claim hostname, first wins",
			zap.String("hostname", hostname), zap.Strings("tenants", ids))
	}

	return buildTenant(ctx, r.vault, rows[0])
}

// Invalidate evicts the entry for one hostname.  Every raw form sharing
// the same canonical key is evicted with it.  The evicted pool is closed.
func (r *Registry) Invalidate(hostname string) {
	key := hostkey.Canonical(hostname)
	if ten, ok := r.cache.Get(key); ok && ten != nil {
		_ = ten.Close()
	}
	r.cache.Delete(key)
	metrics.CachedTenants.Set(float64(r.cache.Len()))
}

// InvalidateAll empties the cache, closing every live pool.
func (r *Registry) InvalidateAll() {
	n := r.cache.Drain(func(_ string, ten *Tenant) {
		if ten != nil {
			_ = ten.Close()
		}
	})
	metrics.CachedTenants.Set(0)
	zap.L().Info("tenant cache cleared", zap.Int("entries", n))
}

// Close stops the evictor and releases every cached pool.
func (r *Registry) Close() {
	r.evictTicker.Stop()
	close(r.done)
	r.cache.Drain(func(_ string, ten *Tenant) {
		if ten != nil {
			_ = ten.Close()
		}
	})
	metrics.CachedTenants.Set(0)
}
