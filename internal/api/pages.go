// internal/api/pages.go
//
// Resolve and publishing handlers.
//
// Context
// -------
// The resolve handler assembles the request context from three merge
// layers — request-derived defaults, the session cookie, and the URL
// query (a POST body acts as a final query layer) — and hands the merged
// context to the resolver.  Absence is a 404 with a stable error string;
// store failures are logged and reported the same way, because the
// storefront prefers a cache-busting retry from the edge over a 500.
//
// The publishing handlers talk to the same per-tenant database.  POST
// bodies decode numbers into float64 first so a non-finite or fractional
// versionNumber is a 400 with a field-specific message, not a silent
// truncation.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vitrineio/vitrine/internal/metrics"
	"github.com/vitrineio/vitrine/internal/middleware"
	"github.com/vitrineio/vitrine/internal/page"
	"github.com/vitrineio/vitrine/internal/reqctx"
	"github.com/vitrineio/vitrine/internal/tenant"
)

const errPageNotFound = "Page or version not found"

var validate = validator.New()

//
// Resolve
//

// resolveBody is the optional POST body; each field acts as a final
// query-layer overlay.
type resolveBody struct {
	Campaign     string `json:"campaign"`
	Tag          string `json:"tag"` // legacy alias for campaign
	Segment      string `json:"segment"`
	Region       string `json:"region"`
	Language     string `json:"language"`
	Device       string `json:"device"`
	AddressState string `json:"addressState"`
	Preview      bool   `json:"preview"`
	IncludeDraft bool   `json:"includeDraft"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	ten := tenant.FromContext(r.Context())
	if ten == nil || ten.DB == nil {
		// No tenant content database: nothing can resolve.
		writeError(w, http.StatusNotFound, errPageNotFound)
		return
	}

	layers := []reqctx.Context{
		reqctx.FromDefaults(r, s.geo),
		reqctx.FromSession(r),
		reqctx.FromQuery(r),
	}

	preview := queryBool(r, "preview") || queryBool(r, "includeDraft")
	if r.Method == http.MethodPost && r.Body != nil {
		var body resolveBody
		// A bodyless POST falls through to query-only resolution.
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "malformed JSON body")
			return
		}
		campaign := body.Campaign
		if campaign == "" {
			campaign = body.Tag
		}
		layers = append(layers, reqctx.Context{
			Campaign:     campaign,
			Segment:      body.Segment,
			Region:       body.Region,
			Language:     body.Language,
			Device:       body.Device,
			AddressState: body.AddressState,
			Source:       reqctx.SourceURL,
		})
		preview = preview || body.Preview || body.IncludeDraft
	}

	merged := reqctx.Merge(layers...)

	// Preview admits drafts and ignores validity windows so editors can
	// inspect scheduled content before it goes live.
	got, err := page.Resolve(r.Context(), ten.DB, slug, page.ResolveOptions{
		Tags:                merged,
		IncludeDraft:        preview,
		RespectActiveWindow: !preview,
	})
	if err != nil {
		zap.L().Warn("page resolve failed",
			zap.String("slug", slug),
			zap.String("tenant", ten.Config.ID),
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err))
		metrics.PageResolveTotal.WithLabelValues("miss").Inc()
		writeError(w, http.StatusNotFound, errPageNotFound)
		return
	}
	if got == nil {
		metrics.PageResolveTotal.WithLabelValues("miss").Inc()
		writeError(w, http.StatusNotFound, errPageNotFound)
		return
	}

	metrics.PageResolveTotal.WithLabelValues("hit").Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"version": got,
		"context": merged,
	})
}

//
// Publishing
//

func (s *Server) handleListVersions(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	ten := tenant.FromContext(r.Context())
	if ten == nil || ten.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "tenant unavailable")
		return
	}

	versions, err := page.ListBySlug(r.Context(), ten.DB, slug)
	if err != nil {
		zap.L().Warn("version list failed", zap.String("slug", slug), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "version store unavailable")
		return
	}

	// Empty list, not 404, when the slug has no versions.
	summaries := make([]page.Summary, 0, len(versions))
	for i := range versions {
		summaries = append(summaries, versions[i].Summary())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"versions": summaries,
	})
}

// publishBody decodes the partial-update payload.  Numbers land in
// float64 pointers so missing, non-finite, and fractional values are
// distinguishable before conversion.
type publishBody struct {
	VersionNumber *float64   `json:"versionNumber"`
	Tags          *page.Tags `json:"tags"`
	Priority      *float64   `json:"priority"`
	IsDefault     *bool      `json:"isDefault"`
	ActiveFrom    *time.Time `json:"activeFrom"`
	ActiveTo      *time.Time `json:"activeTo"`
	Comment       *string    `json:"comment"`
	Status        *string    `json:"status" validate:"omitempty,oneof=draft published"`
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	ten := tenant.FromContext(r.Context())
	if ten == nil || ten.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "tenant unavailable")
		return
	}

	var body publishBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	versionNumber, ok := finiteInt(body.VersionNumber)
	if !ok {
		writeError(w, http.StatusBadRequest, "versionNumber must be a finite number")
		return
	}

	var priority *int
	if body.Priority != nil {
		p, ok := finiteInt(body.Priority)
		if !ok {
			writeError(w, http.StatusBadRequest, "priority must be a finite number")
			return
		}
		priority = &p
	}

	if err := validate.Struct(body); err != nil {
		writeError(w, http.StatusBadRequest, "status must be draft or published")
		return
	}

	updated, err := page.UpdatePublishing(r.Context(), ten.DB, slug, versionNumber, page.PublishUpdate{
		Status:     body.Status,
		Tags:       body.Tags,
		Priority:   priority,
		IsDefault:  body.IsDefault,
		ActiveFrom: body.ActiveFrom,
		ActiveTo:   body.ActiveTo,
		Comment:    body.Comment,
	})
	if errors.Is(err, page.ErrVersionNotFound) {
		writeError(w, http.StatusNotFound, errPageNotFound)
		return
	}
	if err != nil {
		zap.L().Warn("publish update failed",
			zap.String("slug", slug),
			zap.Int("version", versionNumber),
			zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "version store unavailable")
		return
	}

	metrics.PublishUpdateTotal.Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"version": updated.Summary(),
	})
}

//
// Helpers
//

// finiteInt converts an optional JSON number to an int, rejecting
// missing, non-finite, and fractional values.
func finiteInt(f *float64) (int, bool) {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) || *f != math.Trunc(*f) {
		return 0, false
	}
	return int(*f), true
}

func queryBool(r *http.Request, key string) bool {
	switch r.URL.Query().Get(key) {
	case "1", "true", "yes":
		return true
	}
	return false
}
