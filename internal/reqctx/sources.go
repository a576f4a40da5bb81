// internal/reqctx/sources.go
//
// Context sources: request-derived defaults, session cookie, URL query.
//
// Dependencies
// • github.com/avct/uasurfer          (device class from User-Agent)
// • github.com/oschwald/geoip2-golang (region from client IP)
package reqctx

import (
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

// CookieName holds the stored targeting context between requests.  The
// payload is the JSON encoding of Context, written by the (out-of-scope)
// session layer.
const CookieName = "vitrine_ctx"

//
// Geo lookup
//

// Geo wraps an optional GeoLite2-City reader.  The zero value (or a nil
// pointer) disables IP-derived defaults; lookups are best-effort and may
// return empty strings.
type Geo struct {
	reader *geoip2.Reader
}

// OpenGeo opens the GeoLite2 database at path.
func OpenGeo(path string) (*Geo, error) {
	r, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	return &Geo{reader: r}, nil
}

// Close releases the underlying reader.
func (g *Geo) Close() error {
	if g == nil || g.reader == nil {
		return nil
	}
	return g.reader.Close()
}

// state returns the most specific subdivision ISO code for ip, e.g. "CA"
// for a Californian address.
func (g *Geo) state(ip net.IP) string {
	if g == nil || g.reader == nil || ip == nil {
		return ""
	}
	city, err := g.reader.City(ip)
	if err != nil || len(city.Subdivisions) == 0 {
		return ""
	}
	return city.Subdivisions[0].IsoCode
}

// country returns the ISO country code for ip.
func (g *Geo) country(ip net.IP) string {
	if g == nil || g.reader == nil || ip == nil {
		return ""
	}
	city, err := g.reader.City(ip)
	if err != nil {
		return ""
	}
	return city.Country.IsoCode
}

//
// Sources
//

// FromDefaults derives the lowest-precedence context layer from the
// request itself: device class from the User-Agent, language from
// Accept-Language, and region plus address state from the client IP.
func FromDefaults(r *http.Request, geo *Geo) Context {
	ip := clientIP(r)
	return Context{
		Region:       geo.country(ip),
		Language:     primaryLang(r.Header.Get("Accept-Language")),
		Device:       deviceClass(r.UserAgent()),
		AddressState: geo.state(ip),
		Source:       SourceDefault,
	}
}

// FromSession reads the stored context cookie.  The payload is
// URL-escaped JSON (cookie values may not carry quotes or commas).  A
// missing or malformed cookie yields the zero context.
func FromSession(r *http.Request) Context {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return Context{}
	}
	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		return Context{}
	}
	var out Context
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return Context{}
	}
	out.Source = SourceSession
	return out
}

// FromQuery reads the URL query layer.  `campaign` and its legacy alias
// `tag` are accepted; `campaign` wins when both are present.
func FromQuery(r *http.Request) Context {
	q := r.URL.Query()
	campaign := q.Get("campaign")
	if campaign == "" {
		campaign = q.Get("tag")
	}
	return Context{
		Campaign:     campaign,
		Segment:      q.Get("segment"),
		Region:       q.Get("region"),
		Language:     q.Get("language"),
		Device:       q.Get("device"),
		AddressState: q.Get("addressState"),
		Source:       SourceURL,
	}
}

//
// Internal helpers
//

// deviceClass maps the parsed User-Agent onto the storefront device tags.
func deviceClass(ua string) string {
	if ua == "" {
		return ""
	}
	switch uasurfer.Parse(ua).DeviceType {
	case uasurfer.DeviceComputer:
		return "desktop"
	case uasurfer.DevicePhone:
		return "mobile"
	case uasurfer.DeviceTablet:
		return "tablet"
	case uasurfer.DeviceTV:
		return "tv"
	default:
		return ""
	}
}

// primaryLang extracts the first language subtag before any ";q=" rule.
func primaryLang(al string) string {
	if al == "" {
		return ""
	}
	tag := strings.TrimSpace(strings.Split(al, ",")[0])
	if i := strings.Index(tag, ";"); i != -1 {
		tag = tag[:i]
	}
	if i := strings.Index(tag, "-"); i != -1 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}

// clientIP prefers the first X-Forwarded-For hop, then RemoteAddr.
func clientIP(r *http.Request) net.IP {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if ip := net.ParseIP(first); ip != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}
