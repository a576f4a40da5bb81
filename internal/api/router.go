// internal/api/router.go
//
// HTTP surface of the content-targeting core.
//
// Routes
// ------
//
//	GET|POST /pages/{slug}/resolve      – pick the best version for a context
//	GET      /pages/{slug}/publish      – list version summaries
//	POST     /pages/{slug}/publish      – partial publishing update
//	POST     /admin/clear-tenant-cache  – evict tenant cache entries
//	GET      /metrics                   – Prometheus instruments
//	GET      /healthz                   – liveness probe
//
// Tenant binding runs on every route: the x-tenant-hostname header (set by
// the edge proxy) wins over Host, and unresolvable hosts drop to the
// configured fallback tenant.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vitrineio/vitrine/internal/middleware"
	"github.com/vitrineio/vitrine/internal/reqctx"
	"github.com/vitrineio/vitrine/internal/tenant"
)

// Server wires the resolution core to its HTTP surface.
type Server struct {
	registry *tenant.Registry
	globalDB *sqlx.DB // admin token lookups
	fallback *tenant.Tenant
	geo      *reqctx.Geo
	trusted  bool // trusted/dev deployment: admin token check skipped
}

// New constructs a Server.  fallback and geo may be nil.
func New(reg *tenant.Registry, globalDB *sqlx.DB, fallback *tenant.Tenant, geo *reqctx.Geo, trusted bool) *Server {
	return &Server{
		registry: reg,
		globalDB: globalDB,
		fallback: fallback,
		geo:      geo,
		trusted:  trusted,
	}
}

// Routes builds the chi router with the full middleware chain.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Security)
	r.Use(func(next http.Handler) http.Handler {
		return middleware.BindTenant(s.registry, s.fallback, next)
	})

	r.Route("/pages/{slug}", func(r chi.Router) {
		r.Get("/resolve", s.handleResolve)
		r.Post("/resolve", s.handleResolve)
		r.Get("/publish", s.handleListVersions)
		r.Post("/publish", s.handlePublish)
	})

	r.Post("/admin/clear-tenant-cache", s.handleClearTenantCache)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	return r
}
