// internal/middleware/https.go
//
// HTTPS-enforcement wrapper.
package middleware

import (
	"net/http"

	"github.com/vitrineio/vitrine/internal/tenant"
)

// ForceHTTPS wraps h.  If the request is plain HTTP, the host is not
// "localhost", and the registry confirms a tenant claims the host, the
// wrapper issues a 308 Permanent Redirect to the HTTPS version of the
// same URL.  Otherwise it calls the next handler unchanged.
func ForceHTTPS(reg *tenant.Registry, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Already HTTPS or dev host → continue.
		if r.TLS != nil || stripPort(r.Host) == "localhost" {
			h.ServeHTTP(w, r)
			return
		}

		// Only redirect when the host resolves to a known tenant.
		if ten := reg.Resolve(r.Context(), r.Host); ten != nil {
			target := "https://" + r.Host + r.URL.RequestURI()
			http.Redirect(w, r, target, http.StatusPermanentRedirect)
			return
		}

		// Unknown host → keep normal flow (likely fallback or 404 later).
		h.ServeHTTP(w, r)
	})
}
