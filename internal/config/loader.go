// internal/config/loader.go
//
// Settings assembler.
//
/*
Context
--------
`Assemble()` builds one immutable `Config` from six layers, lowest
precedence first:

  1. Built-in defaults (`defaults.yaml`, embedded).
  2. `<base>/.env`, merged into the process environment.  Variables that
     are already exported win over the file.
  3. Whitelisted environment variables (`SECRET_KEY`, `DEBUG`, …).
  4. The operator config file (`PROMGEN_CONFIG_FILE`).  Its top level is
     published as the `PROMGEN` setting.
  5. Capability toggles.  Middleware whose package was not linked into the
     binary is removed from the pipeline, not left in place inert.
  6. The `django` block of the operator config file, which replaces
     settings by name.

Only after all of that does a missing SECRET_KEY fall back to a random
one.  The merged tree is unmarshalled into typed structs, validated, and
returned.  Nothing is cached here; `cmd/promgen` owns the pointer and hands
it to every consumer.

Instrumentation
---------------
  - DEBUG spans: base directory, .env, config file, capabilities.
  - WARN spans: unknown override names, secret key fallback.
  - INFO span: final “settings assembled” with key highlights.

Notes
-----
  - Assemble mutates the process environment (`.env`, SENTRY_RELEASE).
    Call it once, before any goroutine that reads the environment starts.
  - Oxford commas, two spaces after periods.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/knadh/koanf/parsers/yaml"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/yanizio/promgen/internal/feature"
	"github.com/yanizio/promgen/internal/metrics"
	"github.com/yanizio/promgen/internal/plugin"
	"github.com/yanizio/promgen/internal/version"
)

// Integration names recorded in ErrorReporting.Integrations.
const (
	IntegrationHTTP  = "http"
	IntegrationTasks = "tasks"
)

// Reporter initializes the error-reporting client.  *reporting.Client
// satisfies it.
type Reporter interface {
	Init(ErrorReporting) error
}

// Options carries the collaborators Assemble needs.  The zero value is
// usable: every nil field falls back to the process-wide default.
type Options struct {
	BaseDir  string         // overrides base directory discovery
	Features feature.Probe  // default feature.Linked
	Plugins  plugin.Source  // default plugin.Registered
	Reporter Reporter       // nil skips client init, settings are still filled
	Secrets  SecretResolver // nil rejects vault: references

	// StrictOverrides rejects `django` override names that match no
	// setting instead of keeping them in Config.Extra.
	StrictOverrides bool

	Logger *zap.SugaredLogger // default zap.S()
}

/*─────────────────────────────── assembler ────────────────────────────────*/

// Assemble reads every settings layer, validates, and returns Config.
func Assemble(ctx context.Context, opts Options) (*Config, error) {
	log := opts.Logger
	if log == nil {
		log = zap.S()
	}
	features := opts.Features
	if features == nil {
		features = feature.Linked
	}
	plugins := opts.Plugins
	if plugins == nil {
		plugins = plugin.Registered
	}

	base := opts.BaseDir
	if base == "" {
		base = baseDir()
	}
	log.Debugw("settings base resolved", "base", base)

	// .env (optional, no error if missing)
	dotEnv := filepath.Join(base, ".env")
	loaded, err := loadDotEnv(dotEnv)
	if err != nil {
		log.Errorw("dotenv load failed", "file", dotEnv, "err", err)
		return nil, err
	}
	log.Debugw("dotenv checked", "file", dotEnv, "loaded", loaded)

	k := koanf.New(".")
	if err := k.Load(rawBytes(defaultsYAML), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("built-in defaults: %w", err)
	}

	home, _ := os.UserHomeDir()
	if err := setSetting(k, "STATIC_ROOT", filepath.Join(home, ".cache", "promgen")); err != nil {
		return nil, err
	}
	if err := setSetting(k, "DATABASE_URL", "sqlite:///"+filepath.Join(base, "db.sqlite3")); err != nil {
		return nil, err
	}

	if err := k.Load(envProvider(), nil); err != nil {
		log.Errorw("settings env overlay failed", "err", err)
		return nil, err
	}

	configFile := externalConfigPath(home)
	external, overrides, err := loadExternal(configFile)
	if err != nil {
		log.Errorw("config file load failed", "file", configFile, "err", err)
		return nil, err
	}
	log.Debugw("config file checked", "file", configFile, "keys", len(external), "overrides", len(overrides))
	if err := setSetting(k, "PROMGEN", external); err != nil {
		return nil, err
	}

	// Pipeline lists and capability toggles.
	p := buildPipeline(k.Strings("INSTALLED_APPS"), k.Strings("MIDDLEWARE"), plugins, features)
	log.Debugw("pipeline resolved", "apps", p.apps, "middleware", p.middleware, "capabilities", feature.Names())
	if err := setSetting(k, "INSTALLED_APPS", p.apps); err != nil {
		return nil, err
	}
	if err := setSetting(k, "MIDDLEWARE", p.middleware); err != nil {
		return nil, err
	}
	if p.internalIPs != nil {
		if err := setSetting(k, "INTERNAL_IPS", p.internalIPs); err != nil {
			return nil, err
		}
	}
	if err := setSetting(k, "SOCIAL_AUTH_RAISE_EXCEPTIONS", k.Bool("DEBUG")); err != nil {
		return nil, err
	}

	// Error reporting is keyed on the environment only.
	rep := errorReporting()
	if rep.Enabled && opts.Reporter != nil {
		if err := opts.Reporter.Init(rep); err != nil {
			log.Errorw("error reporting init failed", "err", err)
			return nil, fmt.Errorf("error reporting: %w", err)
		}
		log.Debugw("error reporting online", "release", rep.Release, "integrations", rep.Integrations)
	}

	// No broker means every task runs inline.
	if k.String("CELERY_BROKER_URL") == "" {
		if err := setSetting(k, "CELERY_TASK_ALWAYS_EAGER", true); err != nil {
			return nil, err
		}
	}

	extra, err := applyOverrides(k, overrides, opts.StrictOverrides, log)
	if err != nil {
		log.Errorw("config file overrides rejected", "file", configFile, "err", err)
		return nil, err
	}

	if err := resolveVaultRefs(ctx, k, opts.Secrets); err != nil {
		log.Errorw("vault reference resolution failed", "err", err)
		return nil, err
	}

	// Placed last so SECRET_KEY may come from the config file.
	if k.String("SECRET_KEY") == "" {
		log.Warnw("SECRET_KEY unset, using a random key for this process")
		metrics.SecretKeyFallbackTotal.Inc()
		secret, err := randomSecretKey()
		if err != nil {
			return nil, err
		}
		if err := setSetting(k, "SECRET_KEY", secret); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		log.Errorw("settings unmarshal failed", "err", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}

	cfg.ErrorReporting = rep
	cfg.Extra = extra
	cfg.Paths = Paths{BaseDir: base, DotEnv: dotEnv, ConfigFile: configFile}
	cfg.Namespace = k.Raw()
	for name, val := range extra {
		cfg.Namespace[name] = val
	}

	if cfg.Database, err = parseDatabaseURL(cfg.DatabaseURL); err != nil {
		log.Errorw("DATABASE_URL rejected", "err", err)
		return nil, err
	}

	if err := validateStruct(&cfg); err != nil {
		log.Errorw("settings validation failed", "err", err)
		return nil, err
	}

	log.Infow("settings assembled",
		"base", cfg.Paths.BaseDir,
		"debug", cfg.Debug,
		"scheme", cfg.Scheme,
		"database", cfg.Database.Engine,
		"eager_tasks", cfg.CeleryTaskAlwaysEager,
		"error_reporting", cfg.ErrorReporting.Enabled,
		"middleware", len(cfg.Middleware),
	)
	return &cfg, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

type pipeline struct {
	apps        []string
	middleware  []string
	internalIPs []string
}

// buildPipeline prepends plugin apps and applies capability toggles.  The
// inputs are never modified.
func buildPipeline(baseApps, baseMiddleware []string, plugins plugin.Source, features feature.Probe) pipeline {
	var p pipeline
	p.apps = append(plugins.Apps(), baseApps...)

	p.middleware = make([]string, 0, len(baseMiddleware))
	for _, m := range baseMiddleware {
		switch m {
		case feature.Static, feature.DebugToolbar:
			if !features.Available(m) {
				continue
			}
		}
		p.middleware = append(p.middleware, m)
	}

	if features.Available(feature.DebugToolbar) {
		p.apps = append(p.apps, feature.DebugToolbar)
		p.internalIPs = []string{"127.0.0.1"}
	}
	return p
}

// errorReporting fills ErrorReporting from SENTRY_* variables and exports
// SENTRY_RELEASE when the operator did not.
func errorReporting() ErrorReporting {
	dsn := os.Getenv("SENTRY_DSN")
	if dsn == "" {
		return ErrorReporting{}
	}
	if os.Getenv("SENTRY_RELEASE") == "" {
		_ = os.Setenv("SENTRY_RELEASE", version.Version)
	}
	return ErrorReporting{
		Enabled:      true,
		DSN:          dsn,
		Release:      os.Getenv("SENTRY_RELEASE"),
		Environment:  os.Getenv("SENTRY_ENVIRONMENT"),
		Integrations: []string{IntegrationHTTP, IntegrationTasks},
	}
}

// applyOverrides copies the `django` block onto k.  Names that match a
// setting replace it; unknown names are kept aside in the returned map.
func applyOverrides(k *koanf.Koanf, overrides map[string]any, strict bool, log *zap.SugaredLogger) (map[string]any, error) {
	known := knownSettings()
	extra := map[string]any{}

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, ok := known[name]; ok {
			if err := setSetting(k, name, overrides[name]); err != nil {
				return nil, err
			}
			continue
		}
		if strict {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSetting, name)
		}
		log.Warnw("config file sets an unknown setting", "setting", name)
		extra[name] = overrides[name]
	}
	return extra, nil
}
