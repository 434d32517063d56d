// modules/debugtoolbar/toolbar.go
//
// Debug toolbar stage.
//
// Context
// -------
// Linked only with `-tags debugtoolbar` (see cmd/promgen).  Linking this
// package registers the `debugtoolbar` capability and the middleware of
// the same name; the settings assembler then keeps the stage in MIDDLEWARE,
// appends the app to INSTALLED_APPS, and sets INTERNAL_IPS.
//
// At request time the stage answers GET /__debug__/ with a JSON document:
//
//   - settings – the assembled namespace with secrets masked.
//   - request  – client address, user agent, optional GeoIP, and URL.
//
// It answers only while DEBUG is on and only for clients whose socket
// address is listed in INTERNAL_IPS.  Everyone else falls through to the
// next handler, so the path is indistinguishable from any other 404.
//
// Notes
// -----
//   - X-Forwarded-For is shown in the panel but never trusted for the
//     INTERNAL_IPS check.
//   - GEOIP_DATABASE is opened once, when the stage is built, and stays
//     open for the life of the process.  Stages have no shutdown hook;
//     code that builds a Toolbar itself calls Close.
//   - Oxford commas, two spaces after periods.
package debugtoolbar

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"

	"github.com/yanizio/promgen/internal/config"
	"github.com/yanizio/promgen/internal/feature"
	"github.com/yanizio/promgen/internal/middleware"
	"github.com/yanizio/promgen/internal/version"
)

// Prefix is the URL prefix the toolbar answers under.
const Prefix = "/__debug__/"

func init() {
	feature.Register(feature.DebugToolbar)
	middleware.Register(feature.DebugToolbar, New)
}

// Toolbar is the built stage.
type Toolbar struct {
	cfg      *config.Config
	internal map[string]bool
	geo      geoLookup
}

// New builds the stage from cfg.  With DEBUG off it returns a pass-through.
func New(cfg *config.Config) (func(http.Handler) http.Handler, error) {
	if !cfg.Debug {
		return func(next http.Handler) http.Handler { return next }, nil
	}
	tb, err := NewToolbar(cfg)
	if err != nil {
		return nil, err
	}
	return tb.Wrap, nil
}

// NewToolbar opens the GeoIP database, if any, and returns the stage.
func NewToolbar(cfg *config.Config) (*Toolbar, error) {
	tb := &Toolbar{cfg: cfg, internal: make(map[string]bool, len(cfg.InternalIPs))}
	for _, ip := range cfg.InternalIPs {
		if parsed := net.ParseIP(ip); parsed != nil {
			tb.internal[parsed.String()] = true
		}
	}

	if cfg.GeoIPDatabase != "" {
		rd, err := geoip2.Open(cfg.GeoIPDatabase)
		if err != nil {
			return nil, fmt.Errorf("open GEOIP_DATABASE: %w", err)
		}
		tb.geo = rd
	}

	zap.S().Debugw("debug toolbar enabled", "prefix", Prefix, "internal_ips", cfg.InternalIPs)
	return tb, nil
}

// Close releases the GeoIP database.
func (tb *Toolbar) Close() error {
	if tb.geo == nil {
		return nil
	}
	err := tb.geo.Close()
	tb.geo = nil
	return err
}

// Wrap answers toolbar requests and forwards everything else.
func (tb *Toolbar) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, Prefix) || !tb.allowed(r) {
			next.ServeHTTP(w, r)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		out := map[string]any{
			"version":  version.Version,
			"settings": tb.cfg.Redacted(),
			"request":  newPanel(r, tb.geo),
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			zap.S().Warnw("debug toolbar encode failed", "err", err)
		}
	})
}

// allowed reports whether the socket peer is listed in INTERNAL_IPS.
func (tb *Toolbar) allowed(r *http.Request) bool {
	ip := remoteIP(r)
	return ip != nil && tb.internal[ip.String()]
}
