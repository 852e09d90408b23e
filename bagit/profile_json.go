package bagit

import "encoding/json"

// standardProfile mirrors the community "standard" bagit-profiles JSON
// schema (spec 4.B/6.3) for encoding/json round-tripping.
type standardProfile struct {
	AcceptBagItVersion   []string                   `json:"Accept-BagIt-Version"`
	AcceptSerialization  []string                   `json:"Accept-Serialization,omitempty"`
	AllowFetchTxt        bool                       `json:"Allow-Fetch.txt"`
	Serialization        string                     `json:"Serialization"`
	ManifestsRequired    []string                   `json:"Manifests-Required,omitempty"`
	ManifestsAllowed     []string                   `json:"Manifests-Allowed,omitempty"`
	TagManifestsRequired []string                   `json:"Tag-Manifests-Required,omitempty"`
	TagManifestsAllowed  []string                   `json:"Tag-Manifests-Allowed,omitempty"`
	TagFilesAllowed      []string                   `json:"Tag-Files-Allowed,omitempty"`
	TagFilesRequired     []string                   `json:"Tag-Files-Required,omitempty"`
	BagItProfileInfo     map[string]string          `json:"BagIt-Profile-Info,omitempty"`
	BagInfo              map[string]standardBagInfo `json:"Bag-Info,omitempty"`
}

type standardBagInfo struct {
	Required bool     `json:"required,omitempty"`
	Values   []string `json:"values,omitempty"`
}

// ImportProfile parses the community "standard" profile JSON (spec
// 4.B/6.3) into an internal Profile. identifier is used to build the
// Description ("Imported from <identifier>").
//
// Per spec 9 Open Question 1, this does NOT synthesize TagDefinitions
// from Tag-Files-Required -- the source behavior it's grounded on never
// enforced that on import either, and spec.md asks implementers to
// surface that gap rather than guess at a fix. Tag-Files-Required is
// preserved on the Profile only in the sense that any tag from Bag-Info
// becomes a normal TagDefinition in bag-info.txt; files named only in
// Tag-Files-Required with no corresponding Bag-Info entry are not
// otherwise validated (see bagit/validator.go's tag verification phase).
func ImportProfile(data []byte, identifier string) (*Profile, error) {
	var sp standardProfile
	if err := json.Unmarshal(data, &sp); err != nil {
		return nil, err
	}

	p := &Profile{
		Name:                identifier,
		Description:         "Imported from " + identifier,
		AcceptBagItVersion:  sp.AcceptBagItVersion,
		AcceptSerialization: sp.AcceptSerialization,
		AllowFetchTxt:       sp.AllowFetchTxt,
		Serialization:       Serialization(sp.Serialization),
	}
	if id, err := newProfileID(); err == nil {
		p.ID = id
	}

	p.ManifestsRequired = sp.ManifestsRequired
	if len(sp.ManifestsAllowed) > 0 {
		p.ManifestsAllowed = sp.ManifestsAllowed
	} else {
		p.ManifestsAllowed = append([]string(nil), SupportedAlgorithms...)
	}
	p.TagManifestsRequired = sp.TagManifestsRequired
	if len(sp.TagManifestsAllowed) > 0 {
		p.TagManifestsAllowed = sp.TagManifestsAllowed
	} else {
		p.TagManifestsAllowed = append([]string(nil), SupportedAlgorithms...)
	}
	if len(sp.TagFilesAllowed) > 0 {
		p.TagFilesAllowed = sp.TagFilesAllowed
	} else {
		p.TagFilesAllowed = []string{"*"}
	}

	p.Tags = append(p.Tags,
		TagDefinition{TagFile: "bagit.txt", TagName: "BagIt-Version", Required: true, IsBuiltIn: true},
		TagDefinition{TagFile: "bagit.txt", TagName: "Tag-File-Character-Encoding", Required: true, IsBuiltIn: true},
	)

	// Every key under Bag-Info becomes a TagDefinition in bag-info.txt;
	// mutate an existing definition for that name if present (there is
	// none yet at this point, since we only just seeded bagit.txt above),
	// otherwise append.
	for name, info := range sp.BagInfo {
		def := TagDefinition{
			TagFile:  "bag-info.txt",
			TagName:  name,
			Required: info.Required,
			Values:   info.Values,
		}
		if len(info.Values) == 1 {
			def.DefaultValue = info.Values[0]
		}
		if idx := findTagDefIndex(p.Tags, "bag-info.txt", name); idx >= 0 {
			p.Tags[idx] = def
		} else {
			p.Tags = append(p.Tags, def)
		}
	}

	return p, nil
}

// ExportProfile converts an internal Profile to the community "standard"
// JSON schema (spec 4.B export contract), with its two documented lossy
// caveats: (1) required tags outside bag-info.txt surface only as an
// entry in Tag-Files-Required for their tag file, never as individual
// Bag-Info entries; (2) bagit.txt tags are omitted from Bag-Info.
func ExportProfile(p *Profile) ([]byte, error) {
	sp := standardProfile{
		AcceptBagItVersion:   p.AcceptBagItVersion,
		AcceptSerialization:  p.AcceptSerialization,
		AllowFetchTxt:        p.AllowFetchTxt,
		Serialization:        string(p.Serialization),
		ManifestsRequired:    p.ManifestsRequired,
		ManifestsAllowed:     p.ManifestsAllowed,
		TagManifestsRequired: p.TagManifestsRequired,
		TagManifestsAllowed:  p.TagManifestsAllowed,
		TagFilesAllowed:      p.TagFilesAllowed,
		BagInfo:              make(map[string]standardBagInfo),
	}

	var tagFilesRequired []string
	seen := make(map[string]bool)
	for _, t := range p.Tags {
		if t.TagFile == "bagit.txt" {
			continue // caveat 2: bagit.txt tags never appear in Bag-Info
		}
		if t.TagFile == "bag-info.txt" {
			info := standardBagInfo{Required: t.Required}
			if len(t.Values) > 0 {
				info.Values = t.Values
			} else if t.DefaultValue != "" {
				info.Values = []string{t.DefaultValue}
			}
			sp.BagInfo[t.TagName] = info
			continue
		}
		// caveat 1: a required tag outside bag-info.txt can't be
		// expressed individually; record its tag file in
		// Tag-Files-Required instead (deduplicated, insertion order).
		if t.Required && !seen[t.TagFile] {
			seen[t.TagFile] = true
			tagFilesRequired = append(tagFilesRequired, t.TagFile)
		}
	}
	sp.TagFilesRequired = tagFilesRequired

	return json.MarshalIndent(sp, "", "  ")
}

func findTagDefIndex(tags []TagDefinition, tagFile, tagName string) int {
	for i, t := range tags {
		if t.TagFile == tagFile && t.TagName == tagName {
			return i
		}
	}
	return -1
}
