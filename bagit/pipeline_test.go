package bagit

import (
	"strings"
	"testing"
)

func TestFanOutProcessComputesChecksumsAndParses(t *testing.T) {
	fanout := NewFanOut()
	file := NewBagItFile("data/file.txt")
	content := "hello world"

	err := fanout.Process(file, strings.NewReader(content), []string{SHA256, MD5}, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	fanout.Wait()

	if got := file.Checksums[SHA256]; got != sha256Hex(content) {
		t.Errorf("sha256 = %q, want %q", got, sha256Hex(content))
	}
	if _, ok := file.Checksums[MD5]; !ok {
		t.Error("expected an md5 checksum to be recorded")
	}
	if len(fanout.Errors()) != 0 {
		t.Errorf("unexpected errors: %v", fanout.Errors())
	}
}

func TestFanOutProcessWithParser(t *testing.T) {
	fanout := NewFanOut()
	file := NewBagItFile("manifest-sha256.txt")
	content := "deadbeef  data/file.txt\n"

	parser := NewManifestParser()
	if err := fanout.Process(file, strings.NewReader(content), nil, parser); err != nil {
		t.Fatalf("Process: %v", err)
	}
	fanout.Wait()

	if file.Parsed == nil {
		t.Fatal("expected file.Parsed to be set")
	}
	if digest, ok := file.Parsed.First("data/file.txt"); !ok || digest != "deadbeef" {
		t.Errorf("Parsed.First(data/file.txt) = %q, %v", digest, ok)
	}
}

// The barrier: Wait must not return before every outstanding Process call
// has finished hashing, even when many files are processed concurrently.
func TestFanOutWaitBarrierCoversAllFiles(t *testing.T) {
	fanout := NewFanOut()
	files := make([]*BagItFile, 20)
	for i := range files {
		files[i] = NewBagItFile("data/file.txt")
		if err := fanout.Process(files[i], strings.NewReader("payload"), []string{SHA256}, nil); err != nil {
			t.Fatalf("Process: %v", err)
		}
	}
	fanout.Wait()
	for i, f := range files {
		if f.Checksums[SHA256] == "" {
			t.Errorf("file %d: checksum not populated after Wait", i)
		}
	}
}
