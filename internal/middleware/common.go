// internal/middleware/common.go
//
// Host validation and HTTPS redirect.
//
// ALLOWED_HOSTS entries follow the usual rules:
//
//   - "*"             matches any host
//   - ".example.com"  matches example.com and every subdomain
//   - anything else   matches exactly, case-insensitively
//
// A request whose Host header matches nothing gets 400.  When the scheme
// is https, plain-HTTP requests to a valid host are 308-redirected, except
// for localhost so development servers keep working.
package middleware

import (
	"net"
	"net/http"
	"strings"
)

// Common wraps h with host validation and, when https is set, an HTTPS
// redirect.
func Common(allowed []string, https bool) func(http.Handler) http.Handler {
	patterns := make([]string, 0, len(allowed))
	for _, a := range allowed {
		patterns = append(patterns, strings.ToLower(a))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := stripPort(r.Host)
			if !hostAllowed(host, patterns) {
				http.Error(w, "Bad Request (invalid host)", http.StatusBadRequest)
				return
			}

			if https && r.TLS == nil && !isLocal(host) && r.Header.Get("X-Forwarded-Proto") != "https" {
				target := "https://" + r.Host + r.URL.RequestURI()
				http.Redirect(w, r, target, http.StatusPermanentRedirect)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// hostAllowed matches host against lower-cased ALLOWED_HOSTS patterns.
func hostAllowed(host string, patterns []string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for _, p := range patterns {
		switch {
		case p == "*":
			return true
		case strings.HasPrefix(p, "."):
			if host == p[1:] || strings.HasSuffix(host, p) {
				return true
			}
		case host == p:
			return true
		}
	}
	return false
}

func isLocal(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

// stripPort removes the :port suffix from Host when present.
func stripPort(h string) string {
	if host, _, err := net.SplitHostPort(h); err == nil {
		return strings.Trim(host, "[]")
	}
	return strings.Trim(h, "[]")
}
