// internal/page/model.go
//
// Page version rows and targeting tags.
//
// Context
// -------
// A page is identified by its slug and carries zero or more versions.
// Version numbers are immutable once created; publishing mutates the
// status, priority, tags, and window fields of an existing row, never
// creating a new one.  The blocks payload is opaque here — the renderer
// owns its shape.
package page

import (
	"encoding/json"
	"time"
)

// Version status values.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Tags are the targeting dimensions of one version.  An empty dimension
// is a wildcard; a set dimension is exclusionary — the request must match
// it exactly or the version is disqualified.
type Tags struct {
	Campaign     string `db:"campaign"      json:"campaign,omitempty"`
	Segment      string `db:"segment"       json:"segment,omitempty"`
	Region       string `db:"region"        json:"region,omitempty"`
	Language     string `db:"language"      json:"language,omitempty"`
	Device       string `db:"device"        json:"device,omitempty"`
	AddressState string `db:"address_state" json:"addressState,omitempty"`
}

// IsZero reports whether every dimension is a wildcard.
func (t Tags) IsZero() bool {
	return t == Tags{}
}

// Version mirrors one row in the `page_version` table.  Tags is embedded
// without a db tag so sqlx scans its columns flat; the json tag still
// nests it as a "tags" object on the wire.
type Version struct {
	Slug        string `db:"slug"    json:"slug"`
	Version     int    `db:"version" json:"version"`
	Status      string `db:"status"  json:"status"`
	Tags        `json:"tags"`
	Priority    int             `db:"priority"     json:"priority"`
	IsDefault   bool            `db:"is_default"   json:"isDefault"`
	ActiveFrom  *time.Time      `db:"active_from"  json:"activeFrom,omitempty"`
	ActiveTo    *time.Time      `db:"active_to"    json:"activeTo,omitempty"`
	Comment     string          `db:"comment"      json:"comment,omitempty"`
	Blocks      json.RawMessage `db:"blocks"       json:"blocks,omitempty"`
	CreatedAt   time.Time       `db:"created_at"   json:"createdAt"`
	PublishedAt *time.Time      `db:"published_at" json:"publishedAt,omitempty"`
}

// effectiveTime is the recency used by the final tie-break: publish time
// when the version has one, creation time otherwise.
func (v *Version) effectiveTime() time.Time {
	if v.PublishedAt != nil {
		return *v.PublishedAt
	}
	return v.CreatedAt
}

// Summary is the version payload returned by the publishing endpoints:
// everything except the opaque blocks.
type Summary struct {
	Slug        string     `json:"slug"`
	Version     int        `json:"version"`
	Status      string     `json:"status"`
	Tags        Tags       `json:"tags"`
	Priority    int        `json:"priority"`
	IsDefault   bool       `json:"isDefault"`
	ActiveFrom  *time.Time `json:"activeFrom,omitempty"`
	ActiveTo    *time.Time `json:"activeTo,omitempty"`
	Comment     string     `json:"comment,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// Summary strips the blocks payload.
func (v *Version) Summary() Summary {
	return Summary{
		Slug:        v.Slug,
		Version:     v.Version,
		Status:      v.Status,
		Tags:        v.Tags,
		Priority:    v.Priority,
		IsDefault:   v.IsDefault,
		ActiveFrom:  v.ActiveFrom,
		ActiveTo:    v.ActiveTo,
		Comment:     v.Comment,
		CreatedAt:   v.CreatedAt,
		PublishedAt: v.PublishedAt,
	}
}
