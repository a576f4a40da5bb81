// internal/config/model.go
//
// Typed configuration model for Vitrine.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                          – dotenv values,
//   • `conf/global.yaml`                       – primary static file,
//   • `VITRINE_`-prefixed environment overrides – highest precedence.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.  TrustedMode marks a dev or single-box
// deployment: HTTPS enforcement and the admin-token check are skipped.
type HTTP struct {
	ListenAddr  string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS  bool   `koanf:"force_https"`
	TrustedMode bool   `koanf:"trusted_mode"`
}

//
// Database section
//

// Database holds the control-plane DSN.  Per-tenant DSNs live on the
// tenant rows themselves; only the shared tenant/token tables are reached
// through this pool.
type Database struct {
	GlobalDSN string `koanf:"global_dsn" validate:"required"`
}

//
// Cache section
//

// Cache tunes the tenant registry.  TTL bounds entry freshness, Evict is
// the background sweep interval.
type Cache struct {
	TenantTTL     time.Duration `koanf:"tenant_ttl"`
	EvictInterval time.Duration `koanf:"evict_interval"`
	MaxEntries    int           `koanf:"max_entries" validate:"gte=0"`
}

//
// Fallback tenant section
//

// FallbackTenant describes the environment-level default used when no
// tenant row claims the inbound hostname.  Empty APIBaseURL disables the
// fallback entirely, turning unresolvable hosts into 404s.
type FallbackTenant struct {
	Name       string `koanf:"name"`
	APIBaseURL string `koanf:"api_base_url"`
	APIKey     string `koanf:"api_key"`
	APISecret  string `koanf:"api_secret"`
	DSN        string `koanf:"dsn"`
}

//
// Geo section
//

// Geo points at an optional GeoLite2-City database used to derive the
// delivery-address region for untargeted requests.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or VITRINE_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // VITRINE_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP           `koanf:"http"`
	Database Database       `koanf:"database"`
	Cache    Cache          `koanf:"cache"`
	Fallback FallbackTenant `koanf:"fallback_tenant"`
	Geo      Geo            `koanf:"geo"`
	Paths    Paths          `koanf:"-"` // not loaded from config files
}
