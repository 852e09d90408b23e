package bagit

import (
	"reflect"
	"testing"
)

func TestChooseManifestAlgorithmsIntersection(t *testing.T) {
	p := &Profile{
		ManifestsRequired:    []string{"sha256", "md5"},
		TagManifestsRequired: []string{"md5", "sha1"},
	}
	got := ChooseManifestAlgorithms(p)
	if !reflect.DeepEqual(got, []string{"md5"}) {
		t.Errorf("got %v, want [md5]", got)
	}
}

func TestChooseManifestAlgorithmsManifestsRequiredFallback(t *testing.T) {
	p := &Profile{ManifestsRequired: []string{"sha256"}}
	got := ChooseManifestAlgorithms(p)
	if !reflect.DeepEqual(got, []string{"sha256"}) {
		t.Errorf("got %v, want [sha256]", got)
	}
}

func TestChooseManifestAlgorithmsTagManifestsRequiredFallback(t *testing.T) {
	p := &Profile{TagManifestsRequired: []string{"sha1"}}
	got := ChooseManifestAlgorithms(p)
	if !reflect.DeepEqual(got, []string{"sha1"}) {
		t.Errorf("got %v, want [sha1]", got)
	}
}

func TestChooseManifestAlgorithmsStrongestAllowed(t *testing.T) {
	p := &Profile{ManifestsAllowed: []string{"md5", "sha1", "sha256"}}
	got := ChooseManifestAlgorithms(p)
	if !reflect.DeepEqual(got, []string{"sha256"}) {
		t.Errorf("got %v, want [sha256] (strongest of the allowed set)", got)
	}
}

func TestChooseManifestAlgorithmsDefault(t *testing.T) {
	p := &Profile{}
	got := ChooseManifestAlgorithms(p)
	if !reflect.DeepEqual(got, []string{SHA512}) {
		t.Errorf("got %v, want [%s]", got, SHA512)
	}
}
