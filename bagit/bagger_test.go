package bagit

import (
	"os"
	"path/filepath"
	"testing"
)

func testProfile() *Profile {
	p := NewProfile("round-trip-profile")
	p.ManifestsRequired = []string{SHA256}
	p.ManifestsAllowed = []string{SHA256}
	p.TagManifestsRequired = []string{SHA256}
	p.TagManifestsAllowed = []string{SHA256}
	p.Tags = append(p.Tags,
		TagDefinition{TagFile: "bag-info.txt", TagName: "Source-Organization", Required: true},
	)
	return p
}

func writeSourceTree(t *testing.T, dir string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "photo1.jpg"), []byte("fake jpeg bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "notes.txt"), []byte("hello world\n"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestBaggerWriteDirectoryThenValidate(t *testing.T) {
	srcDir := t.TempDir()
	writeSourceTree(t, srcDir)

	outDir := filepath.Join(t.TempDir(), "example.edu.my_bag")
	profile := testProfile()
	cfg := DefaultEngineConfig()

	bagger := NewBagger(outDir, profile, cfg)
	bagger.AddSource(filepath.Join(srcDir, "photo1.jpg"), "data/photo1.jpg")
	bagger.AddSource(filepath.Join(srcDir, "sub", "notes.txt"), "data/sub/notes.txt")
	bagger.SetTag("bag-info.txt", "Source-Organization", "Faber College")

	result := bagger.Write()
	if !result.Succeeded() {
		t.Fatalf("Write() did not succeed, errors: %v", result.Errors)
	}
	for _, name := range []string{"data/photo1.jpg", "data/sub/notes.txt", "manifest-sha256.txt", "tagmanifest-sha256.txt", "bagit.txt", "bag-info.txt"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}

	payload, ok := result.Files["data/photo1.jpg"]
	if !ok {
		t.Fatal("result.Files missing data/photo1.jpg")
	}
	if payload.MimeType == "" {
		t.Error("expected a payload file to carry a MimeType annotation")
	}

	validation := NewValidator(outDir, testProfile(), cfg).Validate()
	if !validation.Valid() {
		t.Errorf("round-tripped bag failed validation: %v", validation.Errors)
	}
}

func TestBaggerWriteTarThenValidate(t *testing.T) {
	srcDir := t.TempDir()
	writeSourceTree(t, srcDir)

	outTar := filepath.Join(t.TempDir(), "example.edu.my_bag.tar")
	profile := testProfile()
	profile.TarDirMustMatchName = true
	cfg := DefaultEngineConfig()

	bagger := NewBagger(outTar, profile, cfg)
	bagger.AddSource(filepath.Join(srcDir, "photo1.jpg"), "data/photo1.jpg")
	bagger.SetTag("bag-info.txt", "Source-Organization", "Faber College")

	result := bagger.Write()
	if !result.Succeeded() {
		t.Fatalf("Write() did not succeed, errors: %v", result.Errors)
	}

	info, err := os.Stat(outTar)
	if err != nil || info.Size() == 0 {
		t.Fatalf("expected a non-empty tar file at %s: %v", outTar, err)
	}

	validationProfile := testProfile()
	validationProfile.TarDirMustMatchName = true
	validationProfile.AcceptSerialization = []string{"application/tar"}
	validation := NewValidator(outTar, validationProfile, cfg).Validate()
	if !validation.Valid() {
		t.Errorf("round-tripped tar bag failed validation: %v", validation.Errors)
	}
}

func TestBaggerMissingRequiredTagIsTerminal(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "example.edu.incomplete")
	profile := testProfile()
	bagger := NewBagger(outDir, profile, DefaultEngineConfig())
	// Source-Organization intentionally left unset.

	result := bagger.Write()
	if result.Succeeded() {
		t.Fatal("expected Write() to fail when a required tag has no value")
	}
	if result.Finalized {
		t.Error("expected Finalized=false when the pre-validate phase rejects the bag")
	}
}

func TestBaggerCheckNameRejectsBadBagName(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "my_bag_without_a_domain")
	profile := testProfile()
	bagger := NewBagger(outDir, profile, DefaultEngineConfig())
	bagger.CheckName = true
	bagger.SetTag("bag-info.txt", "Source-Organization", "Faber College")

	result := bagger.Write()
	if result.Succeeded() {
		t.Fatal("expected Write() to fail the bag-name check")
	}
	found := false
	for _, e := range result.Errors {
		if ve, ok := e.(*ValidationError); ok && ve.Kind == KindBagNameInvalid {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a KindBagNameInvalid error, got %v", result.Errors)
	}
}

func TestInstitutionDomain(t *testing.T) {
	domain, err := InstitutionDomain("/tmp/example.edu.my_bag")
	if err != nil {
		t.Fatalf("InstitutionDomain: %v", err)
	}
	if domain != "example.edu" {
		t.Errorf("domain = %q, want example.edu", domain)
	}

	if _, err := InstitutionDomain("/tmp/my_bag"); err == nil {
		t.Error("expected an error for a bag name with no domain prefix")
	}
}
