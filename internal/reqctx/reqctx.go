// internal/reqctx/reqctx.go
//
// Per-request targeting context.
//
// Context
// -------
// Every resolve request carries a handful of targeting dimensions: the
// marketing campaign, the audience segment, the region/language/device
// attributes, and the delivery-address state.  They arrive from several
// places at once — request-derived defaults, a stored session cookie, and
// the URL query — and the merge order decides which source wins.
//
// The merge is a pure reducer over an ordered list of partial contexts:
// later parts overwrite earlier ones field-by-field, never wholesale.  The
// Source tag records where the winning merge layer came from; it exists
// for debugging, not for matching.
package reqctx

// Source provenance values, least to most authoritative.
const (
	SourceDefault = "default"
	SourceCookie  = "cookie"
	SourceSession = "session"
	SourceURL     = "url"
)

// Context is the ephemeral targeting context for one request.  The zero
// value matches everything (all wildcards).
type Context struct {
	Campaign     string `json:"campaign,omitempty"`
	Segment      string `json:"segment,omitempty"`
	Region       string `json:"region,omitempty"`
	Language     string `json:"language,omitempty"`
	Device       string `json:"device,omitempty"`
	AddressState string `json:"addressState,omitempty"`
	Source       string `json:"source,omitempty"`
}

// IsZero reports whether no field carries a value (Source excluded).
func (c Context) IsZero() bool {
	return c.Campaign == "" && c.Segment == "" && c.Region == "" &&
		c.Language == "" && c.Device == "" && c.AddressState == ""
}

// Merge reduces parts into one context.  Later parts overwrite earlier
// ones field-by-field; empty fields never clobber earlier values.  The
// result's Source is the Source of the last part that contributed any
// field.
func Merge(parts ...Context) Context {
	var out Context
	for _, p := range parts {
		contributed := false
		if p.Campaign != "" {
			out.Campaign = p.Campaign
			contributed = true
		}
		if p.Segment != "" {
			out.Segment = p.Segment
			contributed = true
		}
		if p.Region != "" {
			out.Region = p.Region
			contributed = true
		}
		if p.Language != "" {
			out.Language = p.Language
			contributed = true
		}
		if p.Device != "" {
			out.Device = p.Device
			contributed = true
		}
		if p.AddressState != "" {
			out.AddressState = p.AddressState
			contributed = true
		}
		if contributed && p.Source != "" {
			out.Source = p.Source
		}
	}
	return out
}
