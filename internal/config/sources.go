// internal/config/sources.go
//
// koanf providers and file discovery used by Assemble.
//
// Context
// -------
// Layers, lowest precedence first:
//
//  1. `defaults.yaml`, embedded in the binary.
//  2. Path defaults computed from $HOME and the base directory.
//  3. Whitelisted environment variables (after `.env` has been merged into
//     the process environment).
//  4. Values computed by Assemble itself (pipeline lists, task flags).
//  5. The `django` block of the operator config file.
//
// Only the names in envSettings are read from the environment.  A stray
// `MIDDLEWARE=…` in a shell must never reshape the pipeline.
//
// Notes
// -----
//   - Oxford commas, two spaces after periods.

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
)

//go:embed defaults.yaml
var defaultsYAML []byte

/*──────────────────────────── providers ────────────────────────────────────*/

// rawBytes is a koanf.Provider over an in-memory document.
type rawBytes []byte

func (r rawBytes) ReadBytes() ([]byte, error) { return r, nil }

func (r rawBytes) Read() (map[string]interface{}, error) {
	return nil, errors.New("rawBytes provider does not support Read()")
}

// envSettings maps environment variable → setting name.
var envSettings = map[string]string{
	"SECRET_KEY":          "SECRET_KEY",
	"DEBUG":               "DEBUG",
	"PROMGEN_SCHEME":      "PROMGEN_SCHEME",
	"ALLOWED_HOSTS":       "ALLOWED_HOSTS",
	"STATIC_ROOT":         "STATIC_ROOT",
	"DATABASE_URL":        "DATABASE_URL",
	"CELERY_BROKER_URL":   "CELERY_BROKER_URL",
	"GEOIP_DATABASE":      "GEOIP_DATABASE",
	"PROMGEN_LISTEN_ADDR": "LISTEN_ADDR",
}

// envProvider reads the whitelisted variables.  Empty values are skipped
// so `FOO=` in a shell behaves like an unset FOO.
func envProvider() *env.Env {
	return env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		name, ok := envSettings[key]
		if !ok || value == "" {
			return "", nil
		}
		switch name {
		case "DEBUG":
			return name, parseBool(value)
		case "ALLOWED_HOSTS":
			return name, splitList(value)
		default:
			return name, value
		}
	})
}

// parseBool accepts the usual truthy spellings; anything else is false.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes", "y", "on", "ok":
		return true
	}
	return false
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

/*──────────────────────────── discovery ────────────────────────────────────*/

// baseDir resolves PROMGEN_BASE_DIR, then the parent of a bin/ directory
// holding the executable, then the nearest ancestor of the working
// directory that carries a .env file, then the working directory itself.
func baseDir() string {
	if b := os.Getenv("PROMGEN_BASE_DIR"); b != "" {
		return b
	}

	if exe, err := os.Executable(); err == nil && filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}

	wd, _ := os.Getwd()
	for dir := wd; ; {
		if _, err := os.Stat(filepath.Join(dir, ".env")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}
	return wd
}

// externalConfigPath mirrors PROMGEN_CONFIG_FILE / PROMGEN_CONFIG_DIR.
func externalConfigPath(home string) string {
	if f := os.Getenv("PROMGEN_CONFIG_FILE"); f != "" {
		return f
	}
	dir := os.Getenv("PROMGEN_CONFIG_DIR")
	if dir == "" {
		dir = filepath.Join(home, ".config", "promgen")
	}
	return filepath.Join(dir, "promgen.yml")
}

/*──────────────────────────── file layers ──────────────────────────────────*/

// loadDotEnv merges path into the process environment.  Variables that are
// already set win.  A missing file is not an error.
func loadDotEnv(path string) (bool, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrMalformedConfig, path, err)
	}
	return true, nil
}

// loadExternal parses the operator config file.  It returns the document
// minus its `django` block, and the block itself.  A missing file yields
// two empty maps.
func loadExternal(path string) (promgen, overrides map[string]any, err error) {
	promgen, overrides = map[string]any{}, map[string]any{}
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		return promgen, overrides, nil
	}

	ek := koanf.New(".")
	if err := ek.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrMalformedConfig, path, err)
	}

	for key, val := range ek.Raw() {
		if key != "django" {
			promgen[key] = val
			continue
		}
		if val == nil {
			continue
		}
		block, ok := val.(map[string]interface{})
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s: `django` must be a mapping, got %T",
				ErrMalformedConfig, path, val)
		}
		overrides = block
	}
	return promgen, overrides, nil
}

/*──────────────────────────── key helpers ──────────────────────────────────*/

// setSetting replaces a top-level setting wholesale.  koanf.Set merges
// nested maps, so the old subtree is dropped first.
func setSetting(k *koanf.Koanf, name string, val any) error {
	if name == "" {
		return fmt.Errorf("%w: empty setting name", ErrInvalidValue)
	}
	k.Delete(name)
	if err := k.Set(name, val); err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	return nil
}

// knownSettings lists every setting name that maps onto a Config field.
func knownSettings() map[string]struct{} {
	t := reflect.TypeOf(Config{})
	out := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name := strings.SplitN(t.Field(i).Tag.Get("koanf"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		out[name] = struct{}{}
	}
	return out
}
