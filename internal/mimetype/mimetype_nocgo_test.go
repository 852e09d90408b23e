//go:build !cgo

package mimetype

import "testing"

func TestGuessFallsBackWithoutCgo(t *testing.T) {
	got, err := Guess("/does/not/matter")
	if err != nil {
		t.Fatalf("Guess: %v", err)
	}
	if got != fallback {
		t.Errorf("Guess() = %q, want %q", got, fallback)
	}
}
