// cmd/promgen/main.go
//
// Promgen – process entry point.
//
// Start-up sequence
// -----------------
//
//  1. Parse the command line (kingpin).  `web` is the default command.
//
//  2. Install a console bootstrap logger so settings assembly can log
//     before the rotating file logger exists.
//
//  3. Connect to Vault when VAULT_ADDR is set, so SECRET_KEY and
//     DATABASE_URL may hold vault: references.
//
//  4. Assemble settings: defaults → .env → environment → promgen.yml →
//     feature toggles → django overrides → SECRET_KEY fallback.
//
//  5. Run the selected command:
//
//     - web      – file logger, task queue, router, HTTP server
//     - settings – print the assembled namespace as YAML, secrets masked
//     - check    – validate settings and ping the database
//
// Optional stages are selected at link time: static.go links static file
// serving unless built with `-tags nostatic`, and debugtoolbar.go links the
// debug toolbar only with `-tags debugtoolbar`.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/yanizio/promgen/internal/config"
	"github.com/yanizio/promgen/internal/logger"
	"github.com/yanizio/promgen/internal/reporting"
	"github.com/yanizio/promgen/internal/vault"
	"github.com/yanizio/promgen/internal/version"
)

func main() {
	app := kingpin.New("promgen", "Promgen web service")
	app.Version(version.Version)
	baseDir := app.Flag("base-dir", "Project base directory (default: discovered from PROMGEN_BASE_DIR, the executable, or .env)").String()
	strict := app.Flag("strict", "Reject unknown settings in the django block of promgen.yml").Bool()

	webCmd := app.Command("web", "Serve HTTP").Default()
	settingsCmd := app.Command("settings", "Print the assembled settings as YAML")
	checkCmd := app.Command("check", "Assemble and validate settings, then ping the database")

	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	boot := logger.Bootstrap()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd {
	case webCmd.FullCommand():
		err = runWeb(ctx, *baseDir, *strict, reporting.New())
	case settingsCmd.FullCommand():
		err = runSettings(ctx, *baseDir, *strict, os.Stdout)
	case checkCmd.FullCommand():
		err = runCheck(ctx, *baseDir, *strict)
	}
	if err != nil {
		stop()
		_ = boot.Sync()
		zap.S().Fatalw("promgen failed", "command", cmd, "err", err)
	}
}

// assemble builds the settings, wiring Vault when the environment names a
// server.
func assemble(ctx context.Context, baseDir string, strict bool, rep config.Reporter) (*config.Config, error) {
	opts := config.Options{
		BaseDir:         baseDir,
		StrictOverrides: strict,
		Reporter:        rep,
		Logger:          zap.S(),
	}
	if vault.Enabled() {
		cli, err := vault.New(ctx, zap.S())
		if err != nil {
			return nil, err
		}
		opts.Secrets = cli
	}
	return config.Assemble(ctx, opts)
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
