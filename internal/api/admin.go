// internal/api/admin.go
//
// Administrative cache invalidation.
//
// Context
// -------
// POST /admin/clear-tenant-cache is the only externally triggerable
// mutation of the tenant cache.  It is gated on a bearer token from the
// admin_token table unless the deployment runs in trusted mode.  The body
// optionally names a hostname (clears one canonical slot) or a tenantId
// (currently clears everything — per-tenant eviction would need a reverse
// index the cache does not keep); an empty body clears everything.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/vitrineio/vitrine/internal/admintoken"
)

type clearCacheBody struct {
	Hostname string `json:"hostname"`
	TenantID string `json:"tenantId"`
}

func (s *Server) handleClearTenantCache(w http.ResponseWriter, r *http.Request) {
	if !s.trusted {
		ok, err := admintoken.Validate(r.Context(), s.globalDB, bearerToken(r))
		if err != nil {
			zap.L().Warn("admin token lookup failed", zap.Error(err))
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
	}

	var body clearCacheBody
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "malformed JSON body")
			return
		}
	}

	switch {
	case body.Hostname != "":
		s.registry.Invalidate(body.Hostname)
		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"cleared":  "hostname",
			"hostname": body.Hostname,
		})
	case body.TenantID != "":
		// Per-tenant eviction is not tracked; clear everything.
		s.registry.InvalidateAll()
		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"cleared":  "all",
			"tenantId": body.TenantID,
		})
	default:
		s.registry.InvalidateAll()
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"cleared": "all",
		})
	}
}

// bearerToken extracts the admin token from the Authorization header or
// the x-admin-token fallback used by older edge configs.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return r.Header.Get("x-admin-token")
}
