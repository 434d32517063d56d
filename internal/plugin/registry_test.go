package plugin

import (
	"reflect"
	"testing"
)

func TestRegisterKeepsOrderAndDeduplicates(t *testing.T) {
	Register("plugin-test-a")
	Register("plugin-test-b")
	Register("plugin-test-a")

	var got []string
	for _, app := range Registered.Apps() {
		if app == "plugin-test-a" || app == "plugin-test-b" {
			got = append(got, app)
		}
	}
	want := []string{"plugin-test-a", "plugin-test-b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("apps = %v, want %v", got, want)
	}
}

func TestStaticReturnsCopy(t *testing.T) {
	s := Static{"x"}
	apps := s.Apps()
	apps[0] = "y"
	if s[0] != "x" {
		t.Fatalf("Static.Apps leaked its backing array")
	}
}
