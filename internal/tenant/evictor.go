// evictor.go houses the background sweep for Registry.  Every tick it
// removes entries whose TTL has lapsed and closes their content pools.
// Staleness is already enforced on the read path (a stale entry is a
// cache miss), so the sweep exists only to release pools and memory.
// Each eviction updates Prometheus counters.
package tenant

import (
	"go.uber.org/zap"

	"github.com/vitrineio/vitrine/internal/metrics"
)

func (r *Registry) evictLoop() {
	for {
		select {
		case <-r.done:
			return
		case <-r.evictTicker.C:
		}

		n := r.cache.Sweep(func(key string, ten *Tenant) {
			if ten != nil {
				_ = ten.Close()
			}
			metrics.TenantEvictTotal.Inc()
		})
		if n > 0 {
			metrics.CachedTenants.Set(float64(r.cache.Len()))
			zap.L().Debug("tenant cache sweep", zap.Int("evicted", n))
		}
	}
}
