// internal/page/match.go
//
// Tag matching and specificity scoring.
package page

import "github.com/vitrineio/vitrine/internal/reqctx"

// matchTags scores one version's tags against the request context.
//
// Every set dimension is exclusionary: it must equal the request value
// exactly or the version is disqualified (ok == false).  Unset dimensions
// are wildcards and contribute nothing.  The score is the count of set
// dimensions that matched, so a version targeting campaign+device beats a
// campaign-only version for the same request.
func matchTags(tags Tags, c reqctx.Context) (score int, ok bool) {
	dims := [...]struct{ want, have string }{
		{tags.Campaign, c.Campaign},
		{tags.Segment, c.Segment},
		{tags.Region, c.Region},
		{tags.Language, c.Language},
		{tags.Device, c.Device},
		{tags.AddressState, c.AddressState},
	}
	for _, d := range dims {
		if d.want == "" {
			continue // wildcard
		}
		if d.want != d.have {
			return 0, false
		}
		score++
	}
	return score, true
}
