package bagit

import "testing"

func TestNewProfileIsWellFormed(t *testing.T) {
	p := NewProfile("aptrust-default")
	p.Tags = append(p.Tags, TagDefinition{TagFile: "bag-info.txt", TagName: "Source-Organization", Required: true})

	if errs := p.Validate(); len(errs) != 0 {
		t.Fatalf("NewProfile() failed self-validation: %v", errs)
	}
	if p.ID == "" {
		t.Error("expected a generated ID")
	}
}

func TestProfileValidateCatchesMissingBagInfo(t *testing.T) {
	p := NewProfile("no-bag-info")
	// No bag-info.txt tag added: NewProfile seeds only bagit.txt tags.
	errs := p.Validate()
	if len(errs) == 0 {
		t.Fatal("expected a profile-invalid error for missing bag-info.txt tag")
	}
}

func TestProfileValidateRequiredSubsetOfAllowed(t *testing.T) {
	p := NewProfile("bad-subset")
	p.Tags = append(p.Tags, TagDefinition{TagFile: "bag-info.txt", TagName: "Title", Required: true})
	p.ManifestsRequired = []string{"md5"}
	p.ManifestsAllowed = []string{"sha256"}

	errs := p.Validate()
	found := false
	for _, e := range errs {
		if ve, ok := e.(*ValidationError); ok && ve.Kind == KindProfileInvalid {
			found = true
		}
	}
	if !found {
		t.Errorf("expected KindProfileInvalid for manifestsRequired not a subset of manifestsAllowed, got %v", errs)
	}
}

func TestProfileTagsByFileGroupsInAppearanceOrder(t *testing.T) {
	p := &Profile{Tags: []TagDefinition{
		{TagFile: "bag-info.txt", TagName: "Title"},
		{TagFile: "bagit.txt", TagName: "BagIt-Version"},
		{TagFile: "bag-info.txt", TagName: "Source-Organization"},
	}}
	order, byFile := p.TagsByFile()
	if len(order) != 2 || order[0] != "bag-info.txt" || order[1] != "bagit.txt" {
		t.Errorf("order = %v, want [bag-info.txt bagit.txt]", order)
	}
	if len(byFile["bag-info.txt"]) != 2 {
		t.Errorf("byFile[bag-info.txt] has %d entries, want 2", len(byFile["bag-info.txt"]))
	}
}

func TestMatchesTagFileAllowlist(t *testing.T) {
	p := &Profile{TagFilesAllowed: []string{"*"}}
	if !p.MatchesTagFileAllowlist("aptrust-info.txt") {
		t.Error("\"*\" should match any tag file")
	}

	p.TagFilesAllowed = []string{"aptrust-info.txt"}
	if !p.MatchesTagFileAllowlist("aptrust-info.txt") {
		t.Error("exact match should succeed")
	}
	if p.MatchesTagFileAllowlist("custom-tags.txt") {
		t.Error("unlisted tag file should not match")
	}
}
