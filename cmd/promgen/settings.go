package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/yanizio/promgen/internal/config"
	"github.com/yanizio/promgen/internal/database"
	"github.com/yanizio/promgen/internal/feature"
)

// runSettings prints the assembled namespace.
func runSettings(ctx context.Context, baseDir string, strict bool, w io.Writer) error {
	cfg, err := assemble(ctx, baseDir, strict, nil)
	if err != nil {
		return err
	}
	return writeSettings(w, cfg)
}

// writeSettings renders cfg as YAML with credentials masked.  Keys come out
// sorted.
func writeSettings(w io.Writer, cfg *config.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg.Redacted()); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return enc.Close()
}

// runCheck assembles and validates settings, then pings the database.
func runCheck(ctx context.Context, baseDir string, strict bool) error {
	cfg, err := assemble(ctx, baseDir, strict, nil)
	if err != nil {
		return err
	}
	log := zap.S()
	log.Infow("settings valid",
		"settings", len(cfg.Names()),
		"unknown", len(cfg.Extra),
		"features", feature.Names(),
	)

	db, err := database.Open(ctx, cfg.Database)
	if errors.Is(err, database.ErrUnsupportedEngine) {
		log.Warnw("database check skipped, driver not linked", "engine", cfg.Database.Engine)
		return nil
	}
	if err != nil {
		return err
	}
	defer db.Close()

	v, err := database.ServerVersion(ctx, db)
	if err != nil {
		return err
	}
	log.Infow("database reachable", "engine", cfg.Database.Engine, "server", v)
	return nil
}
