package feature

import "testing"

func TestRegisterIsVisibleThroughLinked(t *testing.T) {
	if Linked.Available("feature-test-cap") {
		t.Fatalf("capability present before registration")
	}
	Register("feature-test-cap")
	if !Linked.Available("feature-test-cap") {
		t.Fatalf("capability missing after registration")
	}
	if !Registered()["feature-test-cap"] {
		t.Fatalf("Registered snapshot does not contain capability")
	}
}

func TestSetAvailable(t *testing.T) {
	s := Set{Static: true}
	if !s.Available(Static) {
		t.Errorf("static should be available")
	}
	if s.Available(DebugToolbar) {
		t.Errorf("debugtoolbar should not be available")
	}
}
