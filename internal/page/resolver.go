// internal/page/resolver.go
//
// Page version resolution.
//
// Context
// -------
// Given a slug and a request context, pick the single best version.  The
// pipeline is: status filter, optional validity-window filter, exclusionary
// tag filter with specificity scoring, then tie-breaking.  Specificity (a
// real targeting match) outranks an editor's arbitrary priority number,
// which in turn outranks the catch-all default flag.
//
// Resolution is purely read-only.  Absence — of the slug, of any eligible
// version — is a valid nil result, never an error; only datastore failures
// surface as errors, and the HTTP layer translates those for the caller.
package page

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vitrineio/vitrine/internal/reqctx"
)

// ResolveOptions tunes one resolution.
type ResolveOptions struct {
	// Tags is the merged request context to match against.
	Tags reqctx.Context
	// IncludeDraft admits draft versions; published still wins ties.
	IncludeDraft bool
	// RespectActiveWindow drops versions outside their validity window.
	RespectActiveWindow bool
	// Now is the evaluation instant; zero means time.Now().
	Now time.Time
}

type scored struct {
	v     *Version
	score int
}

// Resolve picks the best version of slug for opts, or nil when the slug
// has no qualifying content.
func Resolve(ctx context.Context, db *sqlx.DB, slug string, opts ResolveOptions) (*Version, error) {
	versions, err := ListBySlug(ctx, db, slug)
	if err != nil {
		return nil, err
	}
	return pick(versions, opts), nil
}

// pick is the pure selection core; it never touches the store.
func pick(versions []Version, opts ResolveOptions) *Version {
	if len(versions) == 0 {
		return nil
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	// Status filter.
	eligible := make([]*Version, 0, len(versions))
	for i := range versions {
		v := &versions[i]
		if v.Status != StatusPublished && !opts.IncludeDraft {
			continue
		}
		eligible = append(eligible, v)
	}

	// Window filter, then exclusionary tag filter with scoring.
	survivors := make([]scored, 0, len(eligible))
	for _, v := range eligible {
		if opts.RespectActiveWindow && !windowOpen(v, now) {
			continue
		}
		score, ok := matchTags(v.Tags, opts.Tags)
		if !ok {
			continue
		}
		survivors = append(survivors, scored{v: v, score: score})
	}

	if len(survivors) == 0 {
		// Last resort: an untagged default, window ignored, so a slug with
		// any published content never silently resolves to nothing.
		return untaggedDefault(eligible)
	}

	best := survivors[0]
	for _, s := range survivors[1:] {
		if beats(s, best) {
			best = s
		}
	}
	return best.v
}

// windowOpen reports whether v's validity window contains now.  Unset
// bounds are always open.
func windowOpen(v *Version, now time.Time) bool {
	if v.ActiveFrom != nil && v.ActiveFrom.After(now) {
		return false
	}
	if v.ActiveTo != nil && v.ActiveTo.Before(now) {
		return false
	}
	return true
}

// beats reports whether a should win over b.  The ordering is: higher
// specificity, higher priority, default flag, published over draft, most
// recent publish/create time, then higher version number so that repeated
// resolutions of an unchanged slug are deterministic.
func beats(a, b scored) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	if a.v.Priority != b.v.Priority {
		return a.v.Priority > b.v.Priority
	}
	if a.v.IsDefault != b.v.IsDefault {
		return a.v.IsDefault
	}
	aPub, bPub := a.v.Status == StatusPublished, b.v.Status == StatusPublished
	if aPub != bPub {
		return aPub
	}
	at, bt := a.v.effectiveTime(), b.v.effectiveTime()
	if !at.Equal(bt) {
		return at.After(bt)
	}
	return a.v.Version > b.v.Version
}

// untaggedDefault picks the best fully-wildcard default among candidates,
// or nil when none exists.
func untaggedDefault(candidates []*Version) *Version {
	var best *Version
	for _, v := range candidates {
		if !v.IsDefault || !v.Tags.IsZero() {
			continue
		}
		if best == nil || beats(scored{v: v}, scored{v: best}) {
			best = v
		}
	}
	return best
}
