// modules/debugtoolbar/panel.go
//
// Request panel: per-request metadata rendered by the toolbar.  The
// structs are inert, so they are safe to log or JSON-encode.

package debugtoolbar

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/oschwald/geoip2-golang"
)

// Panel is the `request` section of the toolbar document.
type Panel struct {
	RemoteIP     string    `json:"remote_ip"`
	ForwardedFor string    `json:"forwarded_for,omitempty"`
	Method       string    `json:"method"`
	Path         string    `json:"path"`
	Query        string    `json:"query,omitempty"`
	Language     string    `json:"language,omitempty"`
	UA           UserAgent `json:"user_agent"`
	Geo          *Geo      `json:"geo,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Geo holds IP-based location hints.  Best-effort; fields may be empty.
type Geo struct {
	CountryISO string `json:"country_iso,omitempty"`
	City       string `json:"city,omitempty"`
}

// geoLookup is the part of *geoip2.Reader the toolbar uses.
type geoLookup interface {
	City(ip net.IP) (*geoip2.City, error)
	Close() error
}

func newPanel(r *http.Request, geo geoLookup) Panel {
	ip := remoteIP(r)
	p := Panel{
		ForwardedFor: r.Header.Get("X-Forwarded-For"),
		Method:       r.Method,
		Path:         r.URL.Path,
		Query:        r.URL.RawQuery,
		Language:     primaryLang(r.Header.Get("Accept-Language")),
		UA:           parseUserAgent(r.UserAgent()),
		Timestamp:    time.Now().UTC(),
	}
	if ip != nil {
		p.RemoteIP = ip.String()
	}
	if geo != nil && ip != nil {
		if rec, err := geo.City(ip); err == nil {
			p.Geo = &Geo{CountryISO: rec.Country.IsoCode, City: rec.City.Names["en"]}
		}
	}
	return p
}

// remoteIP returns the socket peer address without its port.
func remoteIP(r *http.Request) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}

// primaryLang extracts the first language tag before any ";q=" weight.
func primaryLang(al string) string {
	if al == "" {
		return ""
	}
	tag, _, _ := strings.Cut(al, ",")
	tag, _, _ = strings.Cut(tag, ";")
	return strings.ToLower(strings.TrimSpace(tag))
}
