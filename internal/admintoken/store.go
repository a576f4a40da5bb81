// internal/admintoken/store.go
//
// Small query helper for administrative API tokens.
//
// Context
// -------
// The cache-invalidation endpoint is the only write surface this service
// exposes, so it is gated on a token row in the control-plane database:
//
//	admin_token (token PK, label, is_active, expires_at NULL)
//
// Middleware needs one fast answer: is this bearer token active and
// unexpired?  The helper accepts a *sqlx.DB scoped to the control plane
// and performs a single parameterised query.  It is thin; in trusted
// deployments the caller skips it entirely.
package admintoken

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// Validate reports whether token names an active, unexpired admin token.
// An empty token is rejected without a query.
func Validate(ctx context.Context, db *sqlx.DB, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	const q = `SELECT 1
                 FROM admin_token
                WHERE token = ?
                  AND is_active = 1
                  AND (expires_at IS NULL OR expires_at > ?)
                LIMIT 1`

	var dummy int
	err := db.QueryRowxContext(ctx, q, token, time.Now()).Scan(&dummy)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
