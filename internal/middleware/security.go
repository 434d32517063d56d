// internal/middleware/security.go
//
// Security-header middleware.
//
// Injects industry-standard headers on every response:
//
//   - Strict-Transport-Security  –  only when PROMGEN_SCHEME is https
//   - Content-Security-Policy   –  sane default self-only policy
//   - X-Content-Type-Options    –  MIME-sniffing defence
//   - Referrer-Policy           –  drops path/query from Referer
//   - Permissions-Policy        –  disables powerful features by default
//
// X-Frame-Options has its own stage (`clickjacking`) so operators can drop
// it from MIDDLEWARE independently.
//
// Notes
// -----
// - Headers are set before next.ServeHTTP so they reach the client even
//   when the handler writes the body immediately; a handler that sets its
//   own value still wins.
// - Oxford commas, two spaces after periods.

package middleware

import "net/http"

const (
	hsts  = "max-age=63072000; includeSubDomains; preload"
	csp   = "default-src 'self'; img-src 'self' data:; object-src 'none'; base-uri 'self'"
	nosn  = "nosniff"
	refer = "strict-origin-when-cross-origin"
	perm  = "geolocation=(), microphone=(), camera=()"
)

// Security sets security headers for every response.
func Security(https bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if https {
				h.Set("Strict-Transport-Security", hsts)
			}
			h.Set("Content-Security-Policy", csp)
			h.Set("X-Content-Type-Options", nosn)
			h.Set("Referrer-Policy", refer)
			h.Set("Permissions-Policy", perm)
			next.ServeHTTP(w, r)
		})
	}
}

// FrameDeny forbids rendering any page inside a frame.
func FrameDeny(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}
