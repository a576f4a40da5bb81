// internal/tenant/model.go
//
// Tenant rows and the runtime tenant aggregate.
//
// Context
// -------
// A tenant row describes one storefront: which vendor API it talks to,
// which database holds its content, and which hostnames it answers to.
// Rows are written by an out-of-process admin tool and are read-only here.
// The registry wraps a loaded row in `Tenant`, which adds the per-tenant
// connection pool; `Close` is invoked only by the cache evictor, and
// handlers must treat Tenant as immutable after load.
package tenant

import (
	"time"

	"github.com/jmoiron/sqlx"
)

// Tenant status values stored in the `tenant.status` column.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// API is the vendor-API binding for one tenant: base URLs plus the
// credential pair.  Secret may hold a `vault:mount/path#key` reference
// that the loader resolves before the tenant goes live.
type API struct {
	BaseURL     string `db:"api_base_url"`
	CheckoutURL string `db:"api_checkout_url"`
	Key         string `db:"api_key"`
	Secret      string `db:"api_secret"`
}

// Database locates the tenant's own content database.
type Database struct {
	DSN  string `db:"db_dsn"`
	Name string `db:"db_name"`
}

// Config mirrors one row in the `tenant` table plus its domain list.  API
// and Database are embedded so sqlx scans their columns flat.
type Config struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	ProjectCode string `db:"project_code"`
	API
	Database
	RequireLogin bool      `db:"require_login"`
	Status       string    `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`

	Domains []Domain `db:"-"`
}

// Domain mirrors one row in `tenant_domain`.  Hostnames are stored
// lower-case; a domain with IsActive false must never resolve.
type Domain struct {
	TenantID  string `db:"tenant_id"`
	Hostname  string `db:"hostname"`
	IsPrimary bool   `db:"is_primary"`
	IsActive  bool   `db:"is_active"`
}

//
// Runtime aggregate
//

// Tenant groups the per-tenant runtime assets handlers need: the config
// row and the content-database pool.  DB is nil when the row carries no
// DSN (API-only tenants).
type Tenant struct {
	Config Config
	DB     *sqlx.DB
}

// Close is called by the cache evictor on TTL eviction.
func (t *Tenant) Close() error {
	if t.DB == nil {
		return nil
	}
	return t.DB.Close()
}

// PrimaryHostname returns the primary active domain, or the first active
// domain when none is flagged primary.  Used for logging and redirects.
func (t *Tenant) PrimaryHostname() string {
	var first string
	for _, d := range t.Config.Domains {
		if !d.IsActive {
			continue
		}
		if d.IsPrimary {
			return d.Hostname
		}
		if first == "" {
			first = d.Hostname
		}
	}
	return first
}
