package identity

import "testing"

func TestStoreTokenLifecycle(t *testing.T) {
	s := NewStore("tok-1")
	if !s.Valid() {
		t.Fatal("store with token should be valid")
	}
	if got := s.Token(); got != "tok-1" {
		t.Errorf("Token() = %q, want %q", got, "tok-1")
	}

	s.Set("tok-2")
	if got := s.Token(); got != "tok-2" {
		t.Errorf("Token() after Set = %q, want %q", got, "tok-2")
	}

	s.Clear()
	if s.Valid() {
		t.Error("store should be invalid after Clear")
	}
	if got := s.Token(); got != "" {
		t.Errorf("Token() after Clear = %q, want empty", got)
	}
}

func TestStoreStableReference(t *testing.T) {
	s := NewStore("")

	// A callback captured before the credential existed must observe it.
	read := func() string { return s.Token() }
	s.Set("late-token")
	if got := read(); got != "late-token" {
		t.Errorf("captured reader saw %q, want %q", got, "late-token")
	}
}
