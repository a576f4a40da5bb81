// internal/reqctx/reqctx_test.go
//
// Unit-tests for the context merge reducer and sources.
//
// Run: go test ./internal/reqctx -v

package reqctx

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestMerge_LaterPartsWinFieldByField(t *testing.T) {
	defaults := Context{Language: "en", Device: "desktop", Source: SourceDefault}
	session := Context{Segment: "vip", Device: "mobile", Source: SourceSession}
	query := Context{Campaign: "summer", Source: SourceURL}

	got := Merge(defaults, session, query)

	if got.Campaign != "summer" {
		t.Errorf("Campaign = %q, want summer", got.Campaign)
	}
	if got.Segment != "vip" {
		t.Errorf("Segment = %q, want vip (session survives query overlay)", got.Segment)
	}
	if got.Device != "mobile" {
		t.Errorf("Device = %q, want mobile (session overwrote default)", got.Device)
	}
	if got.Language != "en" {
		t.Errorf("Language = %q, want en (default survives)", got.Language)
	}
	if got.Source != SourceURL {
		t.Errorf("Source = %q, want url", got.Source)
	}
}

func TestMerge_EmptyFieldsNeverClobber(t *testing.T) {
	got := Merge(
		Context{Campaign: "summer", Source: SourceSession},
		Context{Source: SourceURL}, // contributes nothing
	)
	if got.Campaign != "summer" {
		t.Fatalf("Campaign lost: %#v", got)
	}
	if got.Source != SourceSession {
		t.Fatalf("Source = %q, want session (url layer contributed nothing)", got.Source)
	}
}

func TestMerge_IsPure(t *testing.T) {
	a := Context{Campaign: "summer"}
	b := Context{Segment: "vip"}
	Merge(a, b)
	if a.Segment != "" || b.Campaign != "" {
		t.Fatal("Merge mutated its inputs")
	}
}

func TestFromQuery_CampaignAliasTag(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/pages/home/resolve?tag=winter&segment=b2b", nil)
	got := FromQuery(r)
	if got.Campaign != "winter" || got.Segment != "b2b" || got.Source != SourceURL {
		t.Fatalf("FromQuery = %#v", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/p?tag=winter&campaign=summer", nil)
	if got := FromQuery(r); got.Campaign != "summer" {
		t.Fatalf("campaign should win over tag alias, got %q", got.Campaign)
	}
}

func TestFromSession_CookieRoundTrip(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	payload := url.QueryEscape(`{"campaign":"summer","segment":"vip"}`)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: payload})

	got := FromSession(r)
	if got.Campaign != "summer" || got.Segment != "vip" || got.Source != SourceSession {
		t.Fatalf("FromSession = %#v", got)
	}
}

func TestFromSession_MissingOrMalformed(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := FromSession(r); !got.IsZero() {
		t.Fatalf("missing cookie should yield zero context, got %#v", got)
	}

	r.Header.Set("Cookie", CookieName+"=not-json")
	if got := FromSession(r); !got.IsZero() {
		t.Fatalf("malformed cookie should yield zero context, got %#v", got)
	}
}

func TestFromDefaults_NoGeoReader(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("User-Agent",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15")
	r.Header.Set("Accept-Language", "de-DE,de;q=0.9,en;q=0.8")

	got := FromDefaults(r, nil)
	if got.Device != "mobile" {
		t.Errorf("Device = %q, want mobile", got.Device)
	}
	if got.Language != "de" {
		t.Errorf("Language = %q, want de", got.Language)
	}
	if got.Region != "" || got.AddressState != "" {
		t.Errorf("geo fields should be empty without a reader: %#v", got)
	}
	if got.Source != SourceDefault {
		t.Errorf("Source = %q, want default", got.Source)
	}
}

func TestPrimaryLang(t *testing.T) {
	cases := map[string]string{
		"":                        "",
		"en":                      "en",
		"en-US,en;q=0.5":          "en",
		"fr-CA, fr;q=0.9":         "fr",
		"es;q=0.8, en-GB;q=0.7":   "es",
		"PT-BR,pt;q=0.9,en;q=0.1": "pt",
	}
	for in, want := range cases {
		if got := primaryLang(in); got != want {
			t.Errorf("primaryLang(%q) = %q, want %q", in, got, want)
		}
	}
}
