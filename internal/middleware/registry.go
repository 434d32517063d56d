// internal/middleware/registry.go
//
// Named middleware registry.
//
// Context
// -------
// The MIDDLEWARE setting is an ordered list of names.  Each stage
// registers a Constructor under its name from an init() function, and
// Chain turns the list into one wrapper.  The first name is the outermost
// wrapper, so it sees the request first and the response last.
//
// Stages provided by optional packages (static, debugtoolbar) register
// themselves only when those packages are linked.  The settings assembler
// already dropped their names in that case, so an unknown name here means
// the operator config named a stage this binary does not have.
//
// Notes
// -----
//   - Constructors run once, at startup, with the assembled Config.
//   - Oxford commas, two spaces after periods.
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/promgen/internal/config"
)

// ErrUnknownMiddleware is returned by Chain for a name with no constructor.
var ErrUnknownMiddleware = errors.New("middleware: unknown stage")

// Constructor builds one stage from the assembled settings.
type Constructor func(cfg *config.Config) (func(http.Handler) http.Handler, error)

var (
	mu       sync.RWMutex
	registry = map[string]Constructor{}
)

// Register is called from init() functions.  A later registration under
// the same name replaces the earlier one.
func Register(name string, c Constructor) {
	mu.Lock()
	registry[name] = c
	mu.Unlock()
}

// Registered lists every stage name known to this binary.
func Registered() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Chain builds the pipeline named by cfg.Middleware.
func Chain(cfg *config.Config) (func(http.Handler) http.Handler, error) {
	mu.RLock()
	defer mu.RUnlock()

	stages := make(chi.Middlewares, 0, len(cfg.Middleware))
	for _, name := range cfg.Middleware {
		ctor, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMiddleware, name)
		}
		mw, err := ctor(cfg)
		if err != nil {
			return nil, fmt.Errorf("middleware %s: %w", name, err)
		}
		stages = append(stages, mw)
	}
	return stages.Handler, nil
}

func init() {
	Register("security", func(cfg *config.Config) (func(http.Handler) http.Handler, error) {
		return Security(cfg.Scheme == "https"), nil
	})
	Register("clickjacking", func(*config.Config) (func(http.Handler) http.Handler, error) {
		return FrameDeny, nil
	})
	Register("common", func(cfg *config.Config) (func(http.Handler) http.Handler, error) {
		return Common(cfg.AllowedHosts, cfg.Scheme == "https"), nil
	})
	Register("locale", func(cfg *config.Config) (func(http.Handler) http.Handler, error) {
		return Locale(cfg.LanguageCode), nil
	})
	Register("promgen", func(*config.Config) (func(http.Handler) http.Handler, error) {
		return RequestLog, nil
	})
}
