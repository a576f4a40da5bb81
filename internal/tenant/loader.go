// internal/tenant/loader.go
//
// Turns a tenant row into a live runtime aggregate.
package tenant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vitrineio/vitrine/internal/database"
	"github.com/vitrineio/vitrine/internal/vault"
)

// secretTTL bounds how long a Vault-resolved credential may be reused
// before the loader asks Vault again.
const secretTTL = 10 * time.Minute

// buildTenant resolves credential references and opens the per-tenant
// content pool.  Steps:
//
//  1. Resolve `vault:` references in the API secret.
//  2. Open a small DB pool when the row carries a DSN.
func buildTenant(ctx context.Context, vc *vault.Client, cfg Config) (*Tenant, error) {
	secret, err := resolveSecret(ctx, vc, cfg.API.Secret)
	if err != nil {
		return nil, fmt.Errorf("tenant %s: api secret: %w", cfg.ID, err)
	}
	cfg.API.Secret = secret

	var db *sqlx.DB
	if cfg.Database.DSN != "" {
		opts := database.Options{
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
			Retries:         2,
			RetryBackoff:    500 * time.Millisecond,
		}
		db, err = database.OpenWithOptions(ctx, cfg.Database.DSN, opts)
		if err != nil {
			return nil, fmt.Errorf("tenant %s: content pool: %w", cfg.ID, err)
		}
	}

	return &Tenant{Config: cfg, DB: db}, nil
}

// resolveSecret passes plain values through and resolves
// "vault:mount/path#key" references via the Vault client.  A nil client
// with a vault reference is a configuration error.
func resolveSecret(ctx context.Context, vc *vault.Client, raw string) (string, error) {
	const prefix = "vault:"
	if !strings.HasPrefix(raw, prefix) {
		return raw, nil
	}
	if vc == nil {
		return "", fmt.Errorf("vault reference %q but no vault client configured", raw)
	}

	ref := strings.TrimPrefix(raw, prefix)
	path, key, ok := strings.Cut(ref, "#")
	if !ok || path == "" || key == "" {
		return "", fmt.Errorf("malformed vault reference %q, want vault:path#key", raw)
	}
	return vc.GetKV(ctx, path, key, secretTTL)
}

// NewFallback builds the environment-level default tenant from
// configuration.  Returns nil when the fallback block is unset.
func NewFallback(ctx context.Context, name, apiBaseURL, apiKey, apiSecret, dsn string) (*Tenant, error) {
	if apiBaseURL == "" {
		return nil, nil
	}

	cfg := Config{
		ID:     "fallback",
		Name:   name,
		Status: StatusActive,
		API:    API{BaseURL: apiBaseURL, Key: apiKey, Secret: apiSecret},
	}

	var db *sqlx.DB
	if dsn != "" {
		var err error
		db, err = database.Open(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("fallback tenant pool: %w", err)
		}
		cfg.Database = Database{DSN: dsn}
	}
	return &Tenant{Config: cfg, DB: db}, nil
}
