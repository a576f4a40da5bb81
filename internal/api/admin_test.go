package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestClearCache_TrustedModeSkipsToken(t *testing.T) {
	env := newTestEnv(t, true)
	env.expectNoTenant()

	rr, decoded := doRequest(t, env.handler, http.MethodPost,
		"/admin/clear-tenant-cache", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	if decoded["cleared"] != "all" {
		t.Fatalf("cleared = %v, want all", decoded["cleared"])
	}
}

func TestClearCache_MissingTokenIs401(t *testing.T) {
	env := newTestEnv(t, false)
	env.expectNoTenant()

	rr, decoded := doRequest(t, env.handler, http.MethodPost,
		"/admin/clear-tenant-cache", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
	if decoded["error"] != "unauthorized" {
		t.Fatalf("error = %v, want unauthorized", decoded["error"])
	}
}

func TestClearCache_UnknownTokenIs401(t *testing.T) {
	env := newTestEnv(t, false)
	env.expectNoTenant()
	env.globalMock.ExpectQuery("FROM\\s+admin_token").
		WithArgs("nope", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	req := httptest.NewRequest(http.MethodPost, "/admin/clear-tenant-cache", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestClearCache_ValidTokenClearsHostname(t *testing.T) {
	env := newTestEnv(t, false)
	env.expectNoTenant()
	env.globalMock.ExpectQuery("FROM\\s+admin_token").
		WithArgs("s3cret", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	req := httptest.NewRequest(http.MethodPost, "/admin/clear-tenant-cache",
		strings.NewReader(`{"hostname": "shop.example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-admin-token", "s3cret")
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"cleared":"hostname"`) {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
	if err := env.globalMock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestClearCache_TenantIDClearsAll(t *testing.T) {
	env := newTestEnv(t, true)
	env.expectNoTenant()

	rr, decoded := doRequest(t, env.handler, http.MethodPost,
		"/admin/clear-tenant-cache", `{"tenantId": "t-123"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if decoded["cleared"] != "all" || decoded["tenantId"] != "t-123" {
		t.Fatalf("unexpected response: %#v", decoded)
	}
}
