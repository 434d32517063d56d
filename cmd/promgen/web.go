package main

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/promgen/internal/config"
	"github.com/yanizio/promgen/internal/database"
	"github.com/yanizio/promgen/internal/feature"
	"github.com/yanizio/promgen/internal/logger"
	"github.com/yanizio/promgen/internal/reporting"
	"github.com/yanizio/promgen/internal/server"
	"github.com/yanizio/promgen/internal/tasks"
)

// runWeb serves HTTP until ctx is cancelled.
func runWeb(ctx context.Context, baseDir string, strict bool, rep *reporting.Client) error {
	defer rep.Flush()

	cfg, err := assemble(ctx, baseDir, strict, rep)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Paths.BaseDir, runningInTTY(), cfg.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Infow("promgen starting",
		"debug", cfg.Debug,
		"features", feature.Names(),
		"middleware", cfg.Middleware,
		"error_reporting", rep.Enabled(),
	)

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	var ready func(context.Context) error
	if db != nil {
		defer db.Close()
		ready = func(ctx context.Context) error { return database.Ping(ctx, db) }
	}

	queue, err := tasks.New(cfg, tasks.Options{OnError: rep.TaskHook(), Logger: log})
	if err != nil {
		return err
	}
	defer func() {
		if err := queue.Close(context.Background()); err != nil {
			log.Warnw("task queue close", "err", err)
		}
	}()
	log.Infow("task queue ready", "mode", queue.Mode())

	handler, err := server.Router(cfg, server.Options{Wrap: rep.HTTP, Ready: ready})
	if err != nil {
		return err
	}

	return server.Run(ctx, server.New(cfg, handler))
}

// openDatabase connects when a driver for the configured engine is linked.
// A nil DB with a nil error means the engine has no driver in this binary.
func openDatabase(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := database.Open(ctx, cfg.Database)
	if errors.Is(err, database.ErrUnsupportedEngine) {
		zap.S().Warnw("database driver not linked, readiness skips the database",
			"engine", cfg.Database.Engine)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	zap.S().Infow("database online", "engine", cfg.Database.Engine, "name", cfg.Database.Name)
	return db, nil
}
