// internal/plugin/registry.go
//
// Plugin app discovery.
//
// Extensions call Register(app) from an init() function.  The settings
// assembler prepends the registered apps, in registration order, to the
// base INSTALLED_APPS list.  Registering the same app twice keeps the
// first position.
package plugin

import "sync"

// Source returns an ordered sequence of app identifiers contributed by
// installed extensions.
type Source interface {
	Apps() []string
}

// Static is a fixed Source, handy in tests.
type Static []string

// Apps implements Source.
func (s Static) Apps() []string { return append([]string(nil), s...) }

var (
	mu    sync.RWMutex
	order []string
	seen  = map[string]struct{}{}
)

// Register is called from extension init() functions.
func Register(app string) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := seen[app]; ok {
		return
	}
	seen[app] = struct{}{}
	order = append(order, app)
}

type registered struct{}

// Registered is the Source backed by the process-wide registry.
var Registered Source = registered{}

func (registered) Apps() []string {
	mu.RLock()
	defer mu.RUnlock()
	return append([]string(nil), order...)
}
