// internal/page/publish.go
//
// Publishing state transition.
//
// Context
// -------
// Publishing never creates rows: it applies a partial update to one
// existing version, changing the status only when the caller asked for a
// status change.  Setting isDefault true is deliberately not exclusive —
// several versions of a slug may be default at once, and resolution-time
// tie-breaking is what keeps the answer unambiguous.
package page

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// UpdatePublishing applies upd to (slug, versionNumber) and returns the
// updated row.  Returns ErrVersionNotFound when the target is absent and
// a validation error when upd names an unknown status.
func UpdatePublishing(ctx context.Context, db *sqlx.DB, slug string, versionNumber int, upd PublishUpdate) (*Version, error) {
	if upd.Status != nil && *upd.Status != StatusDraft && *upd.Status != StatusPublished {
		return nil, fmt.Errorf("invalid status %q", *upd.Status)
	}

	// Fetch first: existence is the 404 signal, and a no-op update must
	// still return the current row.
	if _, err := BySlugVersion(ctx, db, slug, versionNumber); err != nil {
		return nil, err
	}

	if err := applyUpdate(ctx, db, slug, versionNumber, upd, time.Now()); err != nil {
		return nil, err
	}
	return BySlugVersion(ctx, db, slug, versionNumber)
}
