// internal/api/pages_test.go
//
// Handler tests for the resolve and publishing endpoints.
//
// Workflow / Structure
// --------------------
// Two sqlmock databases stand in for the control plane and the tenant's
// content store.  The registry is given an empty control plane, so every
// request binds the injected fallback tenant whose DB is the content
// mock; handler behaviour is then driven purely by content-store rows.
//
// Each sub-test:
//
//  1. Seeds sqlmock rows for the queries the handler will issue.
//  2. Fires an httptest request through the full router (middleware
//     chain included).
//  3. Asserts on status code and decoded JSON envelope.

package api

import (
	"database/sql/driver"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/vitrineio/vitrine/internal/page"
	"github.com/vitrineio/vitrine/internal/tenant"
)

var tenantTestCols = []string{
	"id", "name", "project_code",
	"api_base_url", "api_checkout_url", "api_key", "api_secret",
	"db_dsn", "db_name",
	"require_login", "status", "created_at", "updated_at",
}

var versionTestCols = []string{
	"slug", "version", "status",
	"campaign", "segment", "region", "language", "device", "address_state",
	"priority", "is_default", "active_from", "active_to",
	"comment", "blocks", "created_at", "published_at",
}

type testEnv struct {
	handler     http.Handler
	globalMock  sqlmock.Sqlmock
	contentMock sqlmock.Sqlmock
}

func newTestEnv(t *testing.T, trusted bool) *testEnv {
	t.Helper()

	gdbRaw, gmock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { gdbRaw.Close() })
	gdb := sqlx.NewDb(gdbRaw, "sqlmock")

	cdbRaw, cmock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { cdbRaw.Close() })
	cdb := sqlx.NewDb(cdbRaw, "sqlmock")

	reg := tenant.NewRegistry(gdb, nil, time.Minute, time.Minute, 0)
	t.Cleanup(reg.Close)

	fb := &tenant.Tenant{
		Config: tenant.Config{ID: "fallback", Name: "Fallback", Status: tenant.StatusActive},
		DB:     cdb,
	}

	s := New(reg, gdb, fb, nil, trusted)
	return &testEnv{handler: s.Routes(), globalMock: gmock, contentMock: cmock}
}

// expectNoTenant satisfies the registry's one control-plane lookup for the
// request host; the miss is cached, so one expectation covers a test.
func (e *testEnv) expectNoTenant() {
	e.globalMock.ExpectQuery("SELECT DISTINCT").
		WillReturnRows(sqlmock.NewRows(tenantTestCols))
}

func versionRow(slug string, version int, status, campaign string, isDefault bool, priority int) []driver.Value {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(version) * time.Hour)
	return []driver.Value{
		slug, version, status,
		campaign, "", "", "", "", "",
		priority, isDefault, nil, nil,
		"", []byte(`{"blocks":[]}`), created, nil,
	}
}

// homeRows seeds the §8 scenario: version 3 untagged published default,
// version 5 published with campaign "summer".
func homeRows() *sqlmock.Rows {
	return sqlmock.NewRows(versionTestCols).
		AddRow(versionRow("home", 3, page.StatusPublished, "", true, 0)...).
		AddRow(versionRow("home", 5, page.StatusPublished, "summer", false, 0)...)
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var decoded map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, rr.Body.String())
	}
	return rr, decoded
}

func resolvedVersion(t *testing.T, decoded map[string]any) int {
	t.Helper()
	v, ok := decoded["version"].(map[string]any)
	if !ok {
		t.Fatalf("no version object in response: %#v", decoded)
	}
	return int(v["version"].(float64))
}

func TestResolve_CampaignScenario(t *testing.T) {
	cases := []struct {
		name   string
		target string
		want   int
	}{
		{"matching campaign", "/pages/home/resolve?campaign=summer", 5},
		{"no campaign falls to default", "/pages/home/resolve", 3},
		{"campaign mismatch falls to default", "/pages/home/resolve?campaign=winter", 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, true)
			env.expectNoTenant()
			env.contentMock.ExpectQuery("FROM\\s+page_version").
				WithArgs("home").
				WillReturnRows(homeRows())

			rr, decoded := doRequest(t, env.handler, http.MethodGet, tc.target, "")
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
			}
			if got := resolvedVersion(t, decoded); got != tc.want {
				t.Fatalf("resolved version %d, want %d", got, tc.want)
			}
		})
	}
}

func TestResolve_TagAliasAndPostBody(t *testing.T) {
	env := newTestEnv(t, true)
	env.expectNoTenant()
	env.contentMock.ExpectQuery("FROM\\s+page_version").
		WithArgs("home").
		WillReturnRows(homeRows())

	rr, decoded := doRequest(t, env.handler, http.MethodPost,
		"/pages/home/resolve", `{"tag":"summer"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	if got := resolvedVersion(t, decoded); got != 5 {
		t.Fatalf("resolved version %d, want 5", got)
	}
}

func TestResolve_UnknownSlugIs404(t *testing.T) {
	env := newTestEnv(t, true)
	env.expectNoTenant()
	env.contentMock.ExpectQuery("FROM\\s+page_version").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(versionTestCols))

	rr, decoded := doRequest(t, env.handler, http.MethodGet, "/pages/ghost/resolve", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if decoded["error"] != "Page or version not found" {
		t.Fatalf("error = %v, want stable not-found message", decoded["error"])
	}
}

func TestResolve_PreviewAdmitsDrafts(t *testing.T) {
	draftOnly := sqlmock.NewRows(versionTestCols).
		AddRow(versionRow("launch", 1, page.StatusDraft, "", false, 0)...)

	env := newTestEnv(t, true)
	env.expectNoTenant()
	env.contentMock.ExpectQuery("FROM\\s+page_version").
		WithArgs("launch").
		WillReturnRows(draftOnly)

	rr, decoded := doRequest(t, env.handler, http.MethodGet,
		"/pages/launch/resolve?preview=1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	if got := resolvedVersion(t, decoded); got != 1 {
		t.Fatalf("resolved version %d, want draft 1", got)
	}
}

func TestResolve_StoreFailureIs404NotCrash(t *testing.T) {
	env := newTestEnv(t, true)
	env.expectNoTenant()
	env.contentMock.ExpectQuery("FROM\\s+page_version").
		WillReturnError(sqlmock.ErrCancelled)

	rr, _ := doRequest(t, env.handler, http.MethodGet, "/pages/home/resolve", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 on store failure", rr.Code)
	}
}

func TestListVersions_EmptyIsOKNot404(t *testing.T) {
	env := newTestEnv(t, true)
	env.expectNoTenant()
	env.contentMock.ExpectQuery("FROM\\s+page_version").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(versionTestCols))

	rr, decoded := doRequest(t, env.handler, http.MethodGet, "/pages/ghost/publish", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	versions, ok := decoded["versions"].([]any)
	if !ok || len(versions) != 0 {
		t.Fatalf("versions = %#v, want empty list", decoded["versions"])
	}
}

func TestListVersions_ReturnsSummaries(t *testing.T) {
	env := newTestEnv(t, true)
	env.expectNoTenant()
	env.contentMock.ExpectQuery("FROM\\s+page_version").
		WithArgs("home").
		WillReturnRows(homeRows())

	rr, decoded := doRequest(t, env.handler, http.MethodGet, "/pages/home/publish", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	versions := decoded["versions"].([]any)
	if len(versions) != 2 {
		t.Fatalf("got %d summaries, want 2", len(versions))
	}
	if _, hasBlocks := versions[0].(map[string]any)["blocks"]; hasBlocks {
		t.Fatal("summaries must not carry the blocks payload")
	}
}

func TestPublish_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing versionNumber", `{}`, "versionNumber"},
		{"fractional versionNumber", `{"versionNumber": 1.5}`, "versionNumber"},
		{"fractional priority", `{"versionNumber": 5, "priority": 2.5}`, "priority"},
		{"unknown status", `{"versionNumber": 5, "status": "archived"}`, "status"},
		{"malformed body", `{"versionNumber":`, "malformed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, true)
			env.expectNoTenant()

			rr, decoded := doRequest(t, env.handler, http.MethodPost,
				"/pages/home/publish", tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rr.Code, rr.Body.String())
			}
			msg, _ := decoded["error"].(string)
			if !strings.Contains(msg, tc.want) {
				t.Fatalf("error = %q, want mention of %q", msg, tc.want)
			}
		})
	}
}

func TestPublish_MissingVersionIs404(t *testing.T) {
	env := newTestEnv(t, true)
	env.expectNoTenant()
	env.contentMock.ExpectQuery("FROM\\s+page_version").
		WithArgs("home", 99).
		WillReturnRows(sqlmock.NewRows(versionTestCols))

	rr, _ := doRequest(t, env.handler, http.MethodPost,
		"/pages/home/publish", `{"versionNumber": 99, "status": "published"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestPublish_Success(t *testing.T) {
	env := newTestEnv(t, true)
	env.expectNoTenant()

	env.contentMock.ExpectQuery("FROM\\s+page_version").
		WithArgs("home", 5).
		WillReturnRows(sqlmock.NewRows(versionTestCols).
			AddRow(versionRow("home", 5, page.StatusDraft, "summer", false, 0)...))
	env.contentMock.ExpectExec("UPDATE page_version SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.contentMock.ExpectQuery("FROM\\s+page_version").
		WithArgs("home", 5).
		WillReturnRows(sqlmock.NewRows(versionTestCols).
			AddRow(versionRow("home", 5, page.StatusPublished, "summer", false, 10)...))

	rr, decoded := doRequest(t, env.handler, http.MethodPost,
		"/pages/home/publish", `{"versionNumber": 5, "status": "published", "priority": 10}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	v := decoded["version"].(map[string]any)
	if v["status"] != page.StatusPublished || int(v["priority"].(float64)) != 10 {
		t.Fatalf("unexpected summary: %#v", v)
	}
	if err := env.contentMock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestTenantHostnameHeaderDrivesBinding(t *testing.T) {
	env := newTestEnv(t, true)
	env.expectNoTenant()
	env.contentMock.ExpectQuery("FROM\\s+page_version").
		WithArgs("home").
		WillReturnRows(homeRows())

	req := httptest.NewRequest(http.MethodGet, "/pages/home/resolve", nil)
	req.Header.Set("x-tenant-hostname", "shop.example.com")
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 via fallback binding", rr.Code)
	}
}
