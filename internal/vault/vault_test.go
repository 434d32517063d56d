package vault

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/promgen/internal/config"
)

var _ config.SecretResolver = (*Client)(nil)

type fakeKV struct {
	data  map[string]map[string]any
	calls int
}

func (f *fakeKV) Get(_ context.Context, mount, rel string) (map[string]any, error) {
	f.calls++
	d, ok := f.data[mount+"/"+rel]
	if !ok {
		return nil, errors.New("secret not found")
	}
	return d, nil
}

func TestSplitMount(t *testing.T) {
	cases := []struct{ in, mount, rel string }{
		{"secret/promgen", "secret", "promgen"},
		{"secret/promgen/db", "secret", "promgen/db"},
		{"/secret/promgen/", "secret", "promgen"},
		{"secret", "secret", ""},
		{"", "", ""},
	}
	for _, c := range cases {
		m, r := splitMount(c.in)
		if m != c.mount || r != c.rel {
			t.Errorf("splitMount(%q) = %q, %q; want %q, %q", c.in, m, r, c.mount, c.rel)
		}
	}
}

func TestGetKV(t *testing.T) {
	kv := &fakeKV{data: map[string]map[string]any{
		"secret/promgen": {"secret_key": "s3cret", "port": 5432},
	}}
	c := newClient(kv, zap.NewNop().Sugar())
	ctx := context.Background()

	got, err := c.GetKV(ctx, "secret/promgen", "secret_key", 0)
	if err != nil || got != "s3cret" {
		t.Fatalf("GetKV = %q, %v", got, err)
	}

	if _, err := c.GetKV(ctx, "secret/promgen", "missing", 0); err == nil {
		t.Errorf("missing key: want error")
	}
	if _, err := c.GetKV(ctx, "secret/promgen", "port", 0); err == nil {
		t.Errorf("non-string value: want error")
	}
	if _, err := c.GetKV(ctx, "secret/other", "k", 0); err == nil {
		t.Errorf("missing secret: want error")
	}
	if _, err := c.GetKV(ctx, "secret", "k", 0); err == nil {
		t.Errorf("mount only: want error")
	}
	if _, err := c.GetKV(ctx, "", "k", 0); err == nil {
		t.Errorf("empty path: want error")
	}
}

func TestGetKVCaches(t *testing.T) {
	kv := &fakeKV{data: map[string]map[string]any{
		"secret/promgen": {"secret_key": "s3cret"},
	}}
	c := newClient(kv, zap.NewNop().Sugar())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.GetKV(ctx, "secret/promgen", "secret_key", time.Minute); err != nil {
			t.Fatalf("GetKV: %v", err)
		}
	}
	if kv.calls != 1 {
		t.Fatalf("backend calls = %d, want 1", kv.calls)
	}

	for i := 0; i < 2; i++ {
		if _, err := c.GetKV(ctx, "secret/promgen", "secret_key", 0); err != nil {
			t.Fatalf("GetKV: %v", err)
		}
	}
	if kv.calls != 3 {
		t.Fatalf("uncached backend calls = %d, want 3", kv.calls)
	}
}
