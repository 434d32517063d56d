// internal/static/static.go
//
// Static file stage.
//
// Context
// -------
// Serves files under STATIC_ROOT at STATIC_URL straight from the pipeline,
// so a container can run without a front proxy.  Requests below
// STATIC_URL for files that do not exist fall through to the next handler
// (usually a 404).  Linking this package registers the `static`
// capability; `cmd/promgen` links it unless built with `-tags nostatic`.
//
// Notes
// -----
//   - Only GET and HEAD are served.
//   - Paths are cleaned before they touch the filesystem; `..` never
//     escapes STATIC_ROOT.
//   - Oxford commas, two spaces after periods.
package static

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/yanizio/promgen/internal/config"
	"github.com/yanizio/promgen/internal/feature"
	"github.com/yanizio/promgen/internal/middleware"
)

const cacheControl = "public, max-age=60"

func init() {
	feature.Register(feature.Static)
	middleware.Register(feature.Static, func(cfg *config.Config) (func(http.Handler) http.Handler, error) {
		return Files(cfg.StaticURL, cfg.StaticRoot), nil
	})
}

// Files serves root under urlPrefix and passes every other request on.
func Files(urlPrefix, root string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			rel, ok := strings.CutPrefix(r.URL.Path, urlPrefix)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			name := filepath.Join(root, filepath.FromSlash(path.Clean("/"+rel)))
			fi, err := os.Stat(name)
			if err != nil || fi.IsDir() {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Cache-Control", cacheControl)
			http.ServeFile(w, r, name)
		})
	}
}
