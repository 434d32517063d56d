// Package database opens the connection described by DATABASE_URL.  The
// settings assembler has already parsed the URL into config.Database;
// this package only turns that into a pooled *sqlx.DB.
//
// Public entry points:
//
//	Open(ctx, cfg)                              – conservative pool sizes.
//	OpenWithOptions(ctx, cfg, maxOpen, maxIdle) – fine-grained control.
//	Ping(ctx, db) / ServerVersion(ctx, db)      – used by `promgen check`.
//
// Only the mysql engine is linked.  sqlite and postgres URLs parse fine
// (the settings remain valid) but Open reports ErrUnsupportedEngine for
// them.  Callers should Close() the returned *sqlx.DB when done.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/promgen/internal/config"
)

// ErrUnsupportedEngine is returned for engines with no linked driver.
var ErrUnsupportedEngine = errors.New("unsupported database engine")

const pingTimeout = 5 * time.Second

// drivers maps config.Database.Engine to a database/sql driver name.
var drivers = map[string]string{
	"mysql": "mysql",
}

// Open returns a *sqlx.DB with sane defaults: 15 max open, 5 idle, and a
// 30-minute connection lifetime.
func Open(ctx context.Context, cfg config.Database) (*sqlx.DB, error) {
	return OpenWithOptions(ctx, cfg, 15, 5)
}

// OpenWithOptions lets callers tune maxOpen and maxIdle.  The database is
// pinged before returning so startup fails fast.
func OpenWithOptions(ctx context.Context, cfg config.Database, maxOpen, maxIdle int) (*sqlx.DB, error) {
	driver, ok := drivers[cfg.Engine]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEngine, cfg.Engine)
	}

	db, err := sqlx.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Engine, err)
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := Ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Ping checks connectivity with a bounded timeout.
func Ping(ctx context.Context, db *sqlx.DB) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", db.DriverName(), err)
	}
	return nil
}

// ServerVersion returns the server's self-reported version string.
func ServerVersion(ctx context.Context, db *sqlx.DB) (string, error) {
	var v string
	if err := db.GetContext(ctx, &v, "SELECT VERSION()"); err != nil {
		return "", fmt.Errorf("server version: %w", err)
	}
	return v, nil
}
