package bagit

import "testing"

func TestHasherFinish(t *testing.T) {
	h := NewHasher(SHA256)
	h.Write([]byte("hello"))
	got := h.Finish()
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got != want {
		t.Errorf("Finish() = %q, want %q", got, want)
	}
}

func TestHasherUnknownAlgorithmPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected NewHasher to panic on an unknown algorithm")
		}
	}()
	NewHasher("whirlpool")
}

func TestIsSupportedAlgorithm(t *testing.T) {
	for _, alg := range SupportedAlgorithms {
		if !IsSupportedAlgorithm(alg) {
			t.Errorf("IsSupportedAlgorithm(%q) = false, want true", alg)
		}
	}
	if IsSupportedAlgorithm("crc32") {
		t.Error("IsSupportedAlgorithm(\"crc32\") = true, want false")
	}
}
