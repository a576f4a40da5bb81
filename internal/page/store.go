// internal/page/store.go
//
// Store client for page version rows.
//
// The core issues two shapes against the tenant's content database: "list
// versions for slug" and "update one version's mutable fields".  Versions
// are never created or deleted here; the editing tool owns that.
package page

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrVersionNotFound is returned when (slug, version) names no row.
var ErrVersionNotFound = errors.New("page version not found")

const versionCols = `
        slug, version, status,
        campaign, segment, region, language, device, address_state,
        priority, is_default, active_from, active_to,
        comment, blocks, created_at, published_at`

// ListBySlug returns every version for slug, draft and published alike,
// ordered by version number.  An empty result is a valid state, not an
// error.
func ListBySlug(ctx context.Context, db *sqlx.DB, slug string) ([]Version, error) {
	const q = `
        SELECT ` + versionCols + `
        FROM   page_version
        WHERE  slug = ?
        ORDER  BY version`

	var rows []Version
	if err := db.SelectContext(ctx, &rows, q, slug); err != nil {
		return nil, err
	}
	return rows, nil
}

// BySlugVersion fetches one specific version row.
func BySlugVersion(ctx context.Context, db *sqlx.DB, slug string, version int) (*Version, error) {
	const q = `
        SELECT ` + versionCols + `
        FROM   page_version
        WHERE  slug = ? AND version = ?
        LIMIT  1`

	var row Version
	if err := db.GetContext(ctx, &row, q, slug, version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVersionNotFound
		}
		return nil, err
	}
	return &row, nil
}

// PublishUpdate carries the optional fields of one publishing call.  A nil
// pointer leaves the column untouched.
type PublishUpdate struct {
	Status     *string
	Tags       *Tags
	Priority   *int
	IsDefault  *bool
	ActiveFrom *time.Time
	ActiveTo   *time.Time
	Comment    *string
}

// applyUpdate writes the provided fields of upd to (slug, version) with a
// dynamically built SET clause.  When the status flips to published the
// publish timestamp is stamped as well.  Returns ErrVersionNotFound when
// the row is absent.
func applyUpdate(ctx context.Context, db *sqlx.DB, slug string, version int, upd PublishUpdate, now time.Time) error {
	set := make([]string, 0, 12)
	args := make([]any, 0, 12)

	if upd.Status != nil {
		set = append(set, "status = ?")
		args = append(args, *upd.Status)
		if *upd.Status == StatusPublished {
			set = append(set, "published_at = ?")
			args = append(args, now)
		}
	}
	if upd.Tags != nil {
		set = append(set,
			"campaign = ?", "segment = ?", "region = ?",
			"language = ?", "device = ?", "address_state = ?")
		args = append(args,
			upd.Tags.Campaign, upd.Tags.Segment, upd.Tags.Region,
			upd.Tags.Language, upd.Tags.Device, upd.Tags.AddressState)
	}
	if upd.Priority != nil {
		set = append(set, "priority = ?")
		args = append(args, *upd.Priority)
	}
	if upd.IsDefault != nil {
		set = append(set, "is_default = ?")
		args = append(args, *upd.IsDefault)
	}
	if upd.ActiveFrom != nil {
		set = append(set, "active_from = ?")
		args = append(args, *upd.ActiveFrom)
	}
	if upd.ActiveTo != nil {
		set = append(set, "active_to = ?")
		args = append(args, *upd.ActiveTo)
	}
	if upd.Comment != nil {
		set = append(set, "comment = ?")
		args = append(args, *upd.Comment)
	}

	if len(set) == 0 {
		return nil // nothing to write
	}

	q := "UPDATE page_version SET " + strings.Join(set, ", ") +
		" WHERE slug = ? AND version = ?"
	args = append(args, slug, version)

	// MySQL reports rows *changed*, not rows matched, so a no-op republish
	// yields zero affected rows.  Existence is checked by the caller's
	// preceding fetch, not here.
	_, err := db.ExecContext(ctx, q, args...)
	return err
}
