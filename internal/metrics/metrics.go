// Package metrics holds Prometheus instruments that are used across the
// storefront core.  All collectors are registered with the global registry,
// so importing this package in main.go is enough to expose them on
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CachedTenants = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tenant_cache_entries",
			Help: "Number of tenants currently held in the registry cache.",
		})

	TenantCacheHitTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_cache_hit_total",
			Help: "Cumulative number of tenant resolutions served from cache.",
		})

	TenantLoadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_load_total",
			Help: "Cumulative number of tenants loaded from the store.",
		})

	TenantLoadErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_load_errors_total",
			Help: "Cumulative number of tenant store failures.",
		})

	TenantEvictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_evict_total",
			Help: "Cumulative number of tenants evicted from the cache.",
		})

	PageResolveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "page_resolve_total",
			Help: "Page version resolutions by outcome (hit or miss).",
		},
		[]string{"outcome"})

	PublishUpdateTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "publish_update_total",
			Help: "Cumulative number of successful publishing updates.",
		})
)

func init() {
	prometheus.MustRegister(
		CachedTenants,
		TenantCacheHitTotal,
		TenantLoadTotal,
		TenantLoadErrorsTotal,
		TenantEvictTotal,
		PageResolveTotal,
		PublishUpdateTotal,
	)
}
