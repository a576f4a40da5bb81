// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vitrineio/vitrine/internal/tenant"
)

// TenantHostnameHeader lets an upstream proxy forward the client-facing
// hostname even when internal routing rewrites the Host header.
const TenantHostnameHeader = "x-tenant-hostname"

// BindTenant resolves the tenant for every request and stores it in the
// request context.  The x-tenant-hostname header wins over Host.  When
// resolution yields nothing the configured fallback tenant (possibly nil)
// is bound instead; handlers decide whether nil is fatal for them.
func BindTenant(reg *tenant.Registry, fallback *tenant.Tenant, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hostname := r.Header.Get(TenantHostnameHeader)
		if hostname == "" {
			hostname = r.Host
		}

		ten := reg.Resolve(r.Context(), hostname)
		if ten == nil {
			if fallback != nil {
				zap.L().Debug("tenant fallback in use", zap.String("hostname", hostname))
			}
			ten = fallback
		}

		next.ServeHTTP(w, r.WithContext(tenant.WithTenant(r.Context(), ten)))
	})
}

//
// Request-ID correlation
//

type requestIDKey struct{}

// RequestID assigns each request a UUID, echoes it in X-Request-Id, and
// stores it in the context for log correlation.  An inbound X-Request-Id
// from a trusted proxy is kept as-is.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(
			context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// GetRequestID returns the correlation ID stored by RequestID, or "".
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// stripPort removes the :port suffix from Host when present.
func stripPort(h string) string {
	if i := strings.IndexByte(h, ':'); i != -1 {
		return h[:i]
	}
	return h
}
