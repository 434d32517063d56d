// internal/server/router.go
//
// Root handler.
//
// Context
// -------
// Application routes are out of scope for this binary.  The router carries
// the operational endpoints and runs every request through the MIDDLEWARE
// pipeline, so optional stages (static files, the debug toolbar) can
// answer their own paths before the 404.
//
//   GET /metrics     – Prometheus exposition.
//   GET /-/healthy   – liveness probe.
//   GET /-/ready     – readiness probe, runs Options.Ready when set.
//
// Notes
// -----
//   - Options.Wrap is applied outermost, so the error-reporting
//     integration sees panics from every middleware stage.
//   - Oxford commas, two spaces after periods.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/promgen/internal/config"
	"github.com/yanizio/promgen/internal/middleware"
)

// Options customises the router.
type Options struct {
	Wrap  func(http.Handler) http.Handler // e.g. reporting.Client.HTTP
	Ready func(ctx context.Context) error // e.g. a database ping
}

// Router builds the root handler for cfg.
func Router(cfg *config.Config, opts Options) (http.Handler, error) {
	chain, err := middleware.Chain(cfg)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	if opts.Wrap != nil {
		r.Use(opts.Wrap)
	}
	r.Use(chain)

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/-/healthy", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Get("/-/ready", func(w http.ResponseWriter, req *http.Request) {
		if opts.Ready != nil {
			if err := opts.Ready(req.Context()); err != nil {
				zap.S().Warnw("readiness check failed", "err", err)
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		_, _ = w.Write([]byte("ok\n"))
	})

	return r, nil
}
