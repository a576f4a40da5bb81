// internal/tenant/repository.go
//
// Store client for the tenant tables.
//
// The core issues exactly one lookup shape: "find an active tenant whose
// active domains include any of these hostname keys."  The candidate-key
// set comes from internal/hostkey, so scheme-prefixed and port-stripped
// forms are probed in one round trip.
package tenant

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// ByHostKeys returns every active tenant whose active domains intersect
// keys, domains populated.  More than one element signals inconsistent
// domain data; callers decide how loudly to complain.  The caller supplies
// a context so the lookup respects request deadlines.
func ByHostKeys(ctx context.Context, db *sqlx.DB, keys []string) ([]Config, error) {
	const q = `
        SELECT DISTINCT
               t.id, t.name, t.project_code,
               t.api_base_url, t.api_checkout_url, t.api_key, t.api_secret,
               t.db_dsn, t.db_name,
               t.require_login, t.status, t.created_at, t.updated_at
        FROM   tenant t
        JOIN   tenant_domain d ON d.tenant_id = t.id
        WHERE  d.hostname IN (?)
          AND  d.is_active = 1
          AND  t.status = ?`

	query, args, err := sqlx.In(q, keys, StatusActive)
	if err != nil {
		return nil, err
	}

	var rows []Config
	if err := db.SelectContext(ctx, &rows, db.Rebind(query), args...); err != nil {
		return nil, err
	}

	for i := range rows {
		doms, err := DomainsByTenant(ctx, db, rows[i].ID)
		if err != nil {
			return nil, err
		}
		rows[i].Domains = doms
	}
	return rows, nil
}

// DomainsByTenant returns all domain rows for one tenant, inactive ones
// included, so callers can log the full claim set.
func DomainsByTenant(ctx context.Context, db *sqlx.DB, tenantID string) ([]Domain, error) {
	const q = `
        SELECT tenant_id, hostname, is_primary, is_active
        FROM   tenant_domain
        WHERE  tenant_id = ?
        ORDER  BY is_primary DESC, hostname`

	var doms []Domain
	if err := db.SelectContext(ctx, &doms, q, tenantID); err != nil {
		return nil, err
	}
	return doms, nil
}
