package reporting

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yanizio/promgen/internal/config"
)

func TestDisabledClientIsNoop(t *testing.T) {
	c := New()
	if c.Enabled() {
		t.Fatalf("new client reports enabled")
	}
	if c.TaskHook() != nil {
		t.Fatalf("disabled client returned a task hook")
	}

	called := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })
	c.HTTP(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Fatalf("wrapped handler not called")
	}
	c.Flush()
}

func TestInitRejectsBadDSN(t *testing.T) {
	c := New()
	if err := c.Init(config.ErrorReporting{Enabled: true, DSN: "not a dsn"}); err == nil {
		t.Fatalf("Init accepted a malformed DSN")
	}
	if c.Enabled() {
		t.Fatalf("client enabled after failed Init")
	}
}

func TestInitEnablesIntegrations(t *testing.T) {
	c := New()
	err := c.Init(config.ErrorReporting{
		Enabled: true,
		DSN:     "https://public@sentry.example.invalid/1",
		Release: "test",
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if c.TaskHook() == nil {
		t.Fatalf("enabled client has no task hook")
	}

	rr := httptest.NewRecorder()
	c.HTTP(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rr.Code)
	}
}
