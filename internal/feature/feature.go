// internal/feature/feature.go
//
// Capability registry.
//
// Context
// -------
// Optional pipeline stages (static file serving, the debug toolbar) live in
// packages that are linked into the binary only when their build tag is
// set.  Each such package calls Register(name) from init().  The settings
// assembler asks a Probe whether a capability is present and drops the
// matching middleware entry when it is not.
//
// Notes
// -----
//   - Capabilities are resolved once, at link time.  Nothing is probed at
//     request time.
//   - Oxford commas, two spaces after periods.
package feature

import (
	"sort"
	"sync"
)

// Well-known capability names.
const (
	Static       = "static"
	DebugToolbar = "debugtoolbar"
)

// Probe reports whether a capability is available.
type Probe interface {
	Available(name string) bool
}

// Set is a fixed capability set.  Tests use it to assemble settings for a
// binary that does not match the one running the test.
type Set map[string]bool

// Available implements Probe.
func (s Set) Available(name string) bool { return s[name] }

var (
	mu       sync.RWMutex
	registry = map[string]bool{}
)

// Register is called from init() by packages that provide a capability.
func Register(name string) {
	mu.Lock()
	registry[name] = true
	mu.Unlock()
}

// Registered returns a snapshot of every capability linked into the binary.
func Registered() Set {
	mu.RLock()
	defer mu.RUnlock()
	out := make(Set, len(registry))
	for k, v := range registry {
		out[k] = v
	}
	return out
}

// Names lists the registered capabilities in sorted order, for logging.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type linked struct{}

// Linked is the Probe backed by the process-wide registry.
var Linked Probe = linked{}

func (linked) Available(name string) bool {
	mu.RLock()
	defer mu.RUnlock()
	return registry[name]
}
