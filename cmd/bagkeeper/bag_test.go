package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseTagFlagsDefaultsToBagInfo(t *testing.T) {
	got := parseTagFlags([]string{"Source-Organization=Faber College"})
	want := []tagAssignment{{file: "bag-info.txt", name: "Source-Organization", value: "Faber College"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestParseTagFlagsExplicitFile(t *testing.T) {
	got := parseTagFlags([]string{"aptrust-info.txt/Title=My Bag of Photos"})
	want := []tagAssignment{{file: "aptrust-info.txt", name: "Title", value: "My Bag of Photos"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestParseTagFlagsSkipsMalformedEntries(t *testing.T) {
	got := parseTagFlags([]string{"", "no-equals-sign", "Title=Ok"})
	want := []tagAssignment{{file: "bag-info.txt", name: "Title", value: "Ok"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCleanStringTrimsMatchingQuotes(t *testing.T) {
	cases := map[string]string{
		`"quoted value"`: "quoted value",
		`'single quoted'`: "single quoted",
		`no quotes`:       "no quotes",
		`"mismatched'`:    `"mismatched'`,
		`  padded  `:      "padded",
	}
	for in, want := range cases {
		if got := cleanString(in); got != want {
			t.Errorf("cleanString(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSourceEntriesWalksAndPrefixesData(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "b.txt"), []byte("b"), 0644); err != nil {
		t.Fatal(err)
	}

	entries, err := sourceEntries(dir)
	if err != nil {
		t.Fatalf("sourceEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2: %+v", len(entries), entries)
	}
	rels := map[string]bool{}
	for _, e := range entries {
		rels[e.rel] = true
	}
	if !rels["data/a.txt"] || !rels["data/sub/b.txt"] {
		t.Errorf("unexpected relative paths: %v", rels)
	}
}
