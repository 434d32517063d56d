// internal/config/namespace.go
//
// Read-only views of the assembled namespace, for `promgen settings` and
// the debug toolbar.
//
// Redaction walks the whole tree.  A key that names a credential is masked
// at any depth, and any string that parses as a URL with a password has the
// password replaced, so notifier settings under PROMGEN and broker URLs are
// covered as well as DATABASE_URL.

package config

import (
	"net/url"
	"sort"
	"strings"
)

const redacted = "********"

// Redacted returns a deep copy of Namespace with credentials masked.
func (c *Config) Redacted() map[string]any {
	out := make(map[string]any, len(c.Namespace))
	for name, val := range c.Namespace {
		out[name] = redactSetting(name, val)
	}
	return out
}

// redactSetting masks val when name is a credential and otherwise copies
// it, descending into maps and lists.
func redactSetting(name string, val any) any {
	if isSecretName(name) {
		return redacted
	}
	switch v := val.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, x := range v {
			out[k] = redactSetting(k, x)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = redactSetting("", x)
		}
		return out
	case []string:
		out := make([]string, len(v))
		for i, x := range v {
			out[i] = redactURL(x)
		}
		return out
	case string:
		return redactURL(v)
	}
	return val
}

// redactURL masks the password of a URL with userinfo.  Other strings are
// returned unchanged.
func redactURL(s string) string {
	if !strings.Contains(s, "://") {
		return s
	}
	u, err := url.Parse(s)
	if err != nil || u.User == nil {
		return s
	}
	if _, ok := u.User.Password(); !ok {
		return s
	}
	return u.Redacted()
}

// Names lists every assembled setting name in sorted order.
func (c *Config) Names() []string {
	out := make([]string, 0, len(c.Namespace))
	for name := range c.Namespace {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
