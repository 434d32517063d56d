package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/promgen/internal/config"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	db := sqlx.NewDb(raw, "sqlmock")
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestOpenUnsupportedEngine(t *testing.T) {
	for _, engine := range []string{"sqlite", "postgres", ""} {
		_, err := Open(context.Background(), config.Database{Engine: engine, DSN: "x"})
		if !errors.Is(err, ErrUnsupportedEngine) {
			t.Errorf("engine %q: err = %v, want ErrUnsupportedEngine", engine, err)
		}
	}
}

func TestPing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectPing()

	if err := Ping(context.Background(), db); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPingFailure(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	if err := Ping(context.Background(), db); err == nil {
		t.Fatal("Ping succeeded against a failing server")
	}
}

func TestServerVersion(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`SELECT VERSION\(\)`).
		WillReturnRows(sqlmock.NewRows([]string{"VERSION()"}).AddRow("8.0.36"))

	v, err := ServerVersion(context.Background(), db)
	if err != nil {
		t.Fatalf("ServerVersion: %v", err)
	}
	if v != "8.0.36" {
		t.Fatalf("version = %q", v)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
