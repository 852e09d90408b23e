package bagit

import (
	"encoding/json"
	"testing"
)

const sampleStandardProfile = `{
  "Accept-BagIt-Version": ["0.97", "1.0"],
  "Serialization": "optional",
  "Manifests-Required": ["sha256"],
  "Manifests-Allowed": ["sha256", "md5"],
  "Tag-Manifests-Required": ["sha256"],
  "Tag-Files-Allowed": ["*"],
  "Bag-Info": {
    "Source-Organization": {"required": true},
    "Title": {"required": false}
  }
}`

func TestImportProfileParsesStandardSchema(t *testing.T) {
	p, err := ImportProfile([]byte(sampleStandardProfile), "example.edu.default.json")
	if err != nil {
		t.Fatalf("ImportProfile: %v", err)
	}
	if p.ID == "" {
		t.Error("expected ImportProfile to assign an ID")
	}
	if len(p.ManifestsRequired) != 1 || p.ManifestsRequired[0] != "sha256" {
		t.Errorf("ManifestsRequired = %v", p.ManifestsRequired)
	}

	order, byFile := p.TagsByFile()
	if len(order) == 0 {
		t.Fatal("expected at least one tag file group")
	}
	var sourceOrg *TagDefinition
	for i, d := range byFile["bag-info.txt"] {
		if d.TagName == "Source-Organization" {
			sourceOrg = &byFile["bag-info.txt"][i]
		}
	}
	if sourceOrg == nil || !sourceOrg.Required {
		t.Error("expected Source-Organization to be imported as a required bag-info.txt tag")
	}

	// The profile produced by Import must itself be well-formed -- it
	// needs a bag-info.txt tag (satisfied by Source-Organization/Title
	// above) and the seeded bagit.txt tags.
	if errs := p.Validate(); len(errs) != 0 {
		t.Errorf("imported profile failed self-validation: %v", errs)
	}
}

func TestExportProfileOmitsBagItTagsFromBagInfo(t *testing.T) {
	p := NewProfile("export-me")
	p.Tags = append(p.Tags, TagDefinition{TagFile: "bag-info.txt", TagName: "Title", Required: true})

	out, err := ExportProfile(p)
	if err != nil {
		t.Fatalf("ExportProfile: %v", err)
	}
	var sp standardProfile
	if err := json.Unmarshal(out, &sp); err != nil {
		t.Fatalf("re-parsing exported profile: %v", err)
	}
	if _, ok := sp.BagInfo["BagIt-Version"]; ok {
		t.Error("bagit.txt tags must not appear in the exported Bag-Info map")
	}
	if info, ok := sp.BagInfo["Title"]; !ok || !info.Required {
		t.Errorf("expected Title to round-trip as required, got %+v", sp.BagInfo["Title"])
	}
}

func TestExportProfileRequiredTagOutsideBagInfoBecomesTagFilesRequired(t *testing.T) {
	p := NewProfile("custom-tag-file")
	p.Tags = append(p.Tags, TagDefinition{TagFile: "bag-info.txt", TagName: "Title", Required: true})
	p.Tags = append(p.Tags, TagDefinition{TagFile: "custom-tags.txt", TagName: "Custom-Field", Required: true})

	out, err := ExportProfile(p)
	if err != nil {
		t.Fatalf("ExportProfile: %v", err)
	}
	var sp standardProfile
	if err := json.Unmarshal(out, &sp); err != nil {
		t.Fatalf("re-parsing exported profile: %v", err)
	}
	found := false
	for _, f := range sp.TagFilesRequired {
		if f == "custom-tags.txt" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected custom-tags.txt in Tag-Files-Required, got %v", sp.TagFilesRequired)
	}
	if _, ok := sp.BagInfo["Custom-Field"]; ok {
		t.Error("a required tag outside bag-info.txt must not appear as an individual Bag-Info entry")
	}
}
