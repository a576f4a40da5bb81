// cmd/storefront/main.go
//
// Vitrine – storefront resolution API entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (host-wide file → .env fallback).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Load and validate the layered configuration (YAML + VITRINE_ env).
//
//  4. Open the control-plane DB and log the active-tenant count.
//
//  5. Optionally connect Vault (credential references) and GeoIP (region
//     defaults), then build the tenant registry and the fallback tenant.
//
//  6. Mount the API router, wrap with ForceHTTPS when configured, and
//     serve until SIGINT/SIGTERM triggers a graceful drain.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vitrineio/vitrine/internal/api"
	"github.com/vitrineio/vitrine/internal/config"
	"github.com/vitrineio/vitrine/internal/database"
	"github.com/vitrineio/vitrine/internal/logger"
	"github.com/vitrineio/vitrine/internal/middleware"
	"github.com/vitrineio/vitrine/internal/reqctx"
	"github.com/vitrineio/vitrine/internal/server"
	"github.com/vitrineio/vitrine/internal/tenant"
	"github.com/vitrineio/vitrine/internal/vault"
)

const serverEnvPath = "/usr/local/etc/vitrine/global.env"

// loadEnv prefers the host-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer logOut.Sync()

	cfg, err := config.Load()
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Control-plane DB ────────────────────────────────────────────
	//
	logOut.Info("connecting to control-plane DB …")
	globalDB, err := database.Open(ctx, cfg.Database.GlobalDSN)
	if err != nil {
		logOut.Fatalf("connect control-plane DB: %v", err)
	}
	defer globalDB.Close()
	logOut.Info("control-plane DB online")

	// Active-tenant count as an early sanity check.
	var active int
	_ = globalDB.GetContext(ctx, &active,
		`SELECT COUNT(*) FROM tenant WHERE status = ?`, tenant.StatusActive)
	logOut.Infof("%d active tenant(s) found", active)

	//
	// ── 2.  Optional collaborators: Vault, GeoIP ────────────────────────
	//
	var vc *vault.Client
	if os.Getenv("VAULT_ADDR") != "" {
		vc, err = vault.New(ctx)
		if err != nil {
			logOut.Fatalf("vault: %v", err)
		}
		logOut.Info("vault client online")
	}

	var geo *reqctx.Geo
	if cfg.Geo.DBPath != "" {
		geo, err = reqctx.OpenGeo(cfg.Geo.DBPath)
		if err != nil {
			// Region defaults degrade gracefully without the DB.
			logOut.Warnf("geo db unavailable: %v", err)
		} else {
			defer geo.Close()
		}
	}

	//
	// ── 3.  Tenant registry and env-level fallback ──────────────────────
	//
	registry := tenant.NewRegistry(globalDB, vc, cfg.Cache.TenantTTL, cfg.Cache.EvictInterval, cfg.Cache.MaxEntries)
	defer registry.Close()

	fallback, err := tenant.NewFallback(ctx,
		cfg.Fallback.Name, cfg.Fallback.APIBaseURL,
		cfg.Fallback.APIKey, cfg.Fallback.APISecret, cfg.Fallback.DSN)
	if err != nil {
		logOut.Fatalf("fallback tenant: %v", err)
	}
	if fallback != nil {
		defer fallback.Close()
		logOut.Infof("fallback tenant %q configured", fallback.Config.Name)
	}

	//
	// ── 4.  Router, HTTPS enforcement, serve ────────────────────────────
	//
	var handler http.Handler = api.New(registry, globalDB, fallback, geo, cfg.HTTP.TrustedMode).Routes()
	if cfg.HTTP.ForceHTTPS && !cfg.HTTP.TrustedMode {
		handler = middleware.ForceHTTPS(registry, handler)
	}

	srv := server.New(cfg.HTTP.ListenAddr, handler)

	errCh := make(chan error, 1)
	go func() {
		logOut.Infof("listening on %s", cfg.HTTP.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logOut.Info("shutdown signal received, draining …")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logOut.Warnf("shutdown: %v", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logOut.Fatalf("http server: %v", err)
		}
	}
	logOut.Info("bye")
}
