// internal/admintoken/store_test.go
//
// Unit-tests for the admin token helper using sqlmock.
//
// Run: go test ./internal/admintoken -v

package admintoken

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestValidate_ActiveToken(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("FROM admin_token").
		WithArgs("tok-123", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	ok, err := Validate(context.Background(), db, "tok-123")
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if !ok {
		t.Fatal("expected ok = true for active token")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestValidate_UnknownToken(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("FROM admin_token").
		WithArgs("nope", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	ok, err := Validate(context.Background(), db, "nope")
	if err != nil || ok {
		t.Fatalf("Validate = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestValidate_EmptyTokenSkipsQuery(t *testing.T) {
	db, mock := newMockDB(t)

	ok, err := Validate(context.Background(), db, "")
	if err != nil || ok {
		t.Fatalf("Validate = (%v, %v), want (false, nil)", ok, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("empty token should not query: %v", err)
	}
}
