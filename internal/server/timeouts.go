// internal/server/timeouts.go
//
// HTTP server construction with hardened timeouts.
//
// The resolution API serves small JSON bodies, so the caps are tight:
//
//   - ReadTimeout   – abort slow-loris headers (10 s)
//   - WriteTimeout  – cap total response time (15 s)
//   - IdleTimeout   – close keep-alives on idle clients (60 s)
//
// Centralised here so cmd/storefront does not repeat boilerplate.

package server

import (
	"net/http"
	"time"
)

// New constructs an *http.Server with the service defaults.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
