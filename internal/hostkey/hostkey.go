// internal/hostkey/hostkey.go
//
// Candidate-key derivation for hostname lookups.
//
// Context
// -------
// Tenant domains are stored lower-case and may appear in the store as bare
// hostnames or with an explicit scheme prefix.  Inbound Host headers arrive
// in every imaginable shape: mixed case, with a scheme (when forwarded by a
// proxy header), or with a trailing port.  `Keys` turns one raw hostname
// into the ordered, duplicate-free set of strings worth probing against the
// domain table, and `Canonical` collapses all equivalent raw forms onto one
// string so they share a single cache slot.
//
// Notes
// -----
//   - Pure functions, no error paths.  Identical input always yields the
//     identical ordered list.
//   - Ordering encodes lookup preference (exact form first, scheme-added
//     forms, then port-stripped forms); the store matches against any key
//     in the set, so order only matters to readers of debug logs.
//   - Oxford commas, two spaces after periods.

package hostkey

import "strings"

// Keys returns the ordered candidate lookup keys for raw.  Empty input
// yields a single-element list containing the empty string.
func Keys(raw string) []string {
	base := strings.ToLower(raw)

	keys := make([]string, 0, 6)
	seen := make(map[string]struct{}, 6)
	add := func(k string) {
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	add(base)
	if !hasScheme(base) {
		add("http://" + base)
		add("https://" + base)
	}

	stripped := stripPort(base)
	if stripped != base {
		add(stripped)
		if !hasScheme(stripped) {
			add("http://" + stripped)
			add("https://" + stripped)
		}
	}
	return keys
}

// Canonical returns the lower-cased, scheme-stripped, port-stripped form of
// raw.  All raw hostnames that differ only by case, scheme prefix, or port
// share one canonical key.
func Canonical(raw string) string {
	return stripPort(stripScheme(strings.ToLower(raw)))
}

func hasScheme(h string) bool {
	return strings.Contains(h, "://")
}

// stripScheme removes a leading "scheme://" when present.
func stripScheme(h string) string {
	if i := strings.Index(h, "://"); i != -1 {
		return h[i+3:]
	}
	return h
}

// stripPort removes a ":port" suffix while leaving any scheme prefix in
// place, so "https://shop.example.com:8443" → "https://shop.example.com".
func stripPort(h string) string {
	rest := h
	prefix := ""
	if i := strings.Index(h, "://"); i != -1 {
		prefix, rest = h[:i+3], h[i+3:]
	}
	if i := strings.IndexByte(rest, ':'); i != -1 {
		rest = rest[:i]
	}
	return prefix + rest
}
