package bagit

import (
	"path/filepath"

	"github.com/nu7hatch/gouuid"
)

// Serialization is the profile-level serialization requirement (spec 3).
type Serialization string

const (
	SerializationRequired  Serialization = "required"
	SerializationOptional  Serialization = "optional"
	SerializationForbidden Serialization = "forbidden"
)

// TagDefinition describes one tag a Profile constrains (spec 3).
type TagDefinition struct {
	TagFile  string
	TagName  string
	Required bool
	EmptyOk  bool
	Values   []string // empty means free-form
	DefaultValue string
	UserValue    string

	IsBuiltIn       bool
	IsUserAddedFile bool
	IsUserAddedTag  bool
	WasAddedForJob  bool
}

// Profile is the declarative rule set a bag is validated against, or
// that a Bagger consults when writing one (spec 3, component G).
type Profile struct {
	ID          string
	Name        string
	Description string
	IsBuiltIn   bool

	AcceptBagItVersion  []string
	AcceptSerialization []string // ordered by preference
	Serialization       Serialization

	AllowFetchTxt bool

	ManifestsRequired     []string
	ManifestsAllowed      []string
	TagManifestsRequired  []string
	TagManifestsAllowed   []string

	TagFilesAllowed    []string // ordered glob patterns; ["*"] means any
	TarDirMustMatchName bool

	Tags []TagDefinition
}

// newProfileID generates a fresh profile identifier (teacher:
// dpn/bagbuilder.go's uuid.NewV4() usage for object ids).
func newProfileID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// NewProfile returns an empty profile with a generated ID and the
// baseline bagit.txt tag definitions (BagIt-Version and
// Tag-File-Character-Encoding). It adds no bag-info.txt definition, so the
// caller must add at least one before the profile passes Validate.
func NewProfile(name string) *Profile {
	idStr, _ := newProfileID()
	p := &Profile{
		ID:                   idStr,
		Name:                 name,
		AcceptBagItVersion:   []string{"0.97", "1.0"},
		Serialization:        SerializationOptional,
		ManifestsAllowed:     append([]string(nil), SupportedAlgorithms...),
		TagManifestsAllowed:  append([]string(nil), SupportedAlgorithms...),
		TagFilesAllowed:      []string{"*"},
	}
	p.Tags = append(p.Tags,
		TagDefinition{TagFile: "bagit.txt", TagName: "BagIt-Version", Required: true, IsBuiltIn: true},
		TagDefinition{TagFile: "bagit.txt", TagName: "Tag-File-Character-Encoding", Required: true, IsBuiltIn: true},
	)
	return p
}

// Validate runs the Profile self-check (spec 3's "Invariants of a
// well-formed Profile" 1-6). A non-empty return means the profile itself
// is not usable; the Validator treats this as terminal (spec 4.E phase 2).
func (p *Profile) Validate() []error {
	var errs []error
	add := func(kind Kind, format string, args ...interface{}) {
		errs = append(errs, newErr(kind, "", format, args...))
	}

	if p.ID == "" {
		add(KindProfileInvalid, "profile id must not be empty")
	}
	if p.Name == "" {
		add(KindProfileInvalid, "profile name must not be empty")
	}
	if len(p.AcceptBagItVersion) == 0 {
		add(KindProfileInvalid, "acceptBagItVersion must not be empty")
	}
	if len(p.ManifestsAllowed) == 0 {
		add(KindProfileInvalid, "manifestsAllowed must not be empty")
	} else if !isSubset(p.ManifestsRequired, p.ManifestsAllowed) {
		add(KindProfileInvalid, "manifestsRequired must be a subset of manifestsAllowed")
	}
	if len(p.TagManifestsAllowed) == 0 {
		add(KindProfileInvalid, "tagManifestsAllowed must not be empty")
	} else if !isSubset(p.TagManifestsRequired, p.TagManifestsAllowed) {
		add(KindProfileInvalid, "tagManifestsRequired must be a subset of tagManifestsAllowed")
	}
	switch p.Serialization {
	case SerializationRequired, SerializationOptional, SerializationForbidden:
	default:
		add(KindProfileInvalid, "serialization must be required, optional, or forbidden, got %q", p.Serialization)
	}

	hasBagItVersion, hasEncoding, hasBagInfo := false, false, false
	for _, t := range p.Tags {
		if t.TagFile == "bagit.txt" && t.TagName == "BagIt-Version" {
			hasBagItVersion = true
		}
		if t.TagFile == "bagit.txt" && t.TagName == "Tag-File-Character-Encoding" {
			hasEncoding = true
		}
		if t.TagFile == "bag-info.txt" {
			hasBagInfo = true
		}
		if len(t.Values) > 0 && t.UserValue != "" && !contains(t.Values, t.UserValue) {
			add(KindTagIllegalValue, "tag %s/%s has userValue %q not in its values enumeration %v",
				t.TagFile, t.TagName, t.UserValue, t.Values)
		}
	}
	if !hasBagItVersion || !hasEncoding {
		add(KindProfileInvalid, "profile must define bagit.txt's BagIt-Version and Tag-File-Character-Encoding tags")
	}
	if !hasBagInfo {
		add(KindProfileInvalid, "profile must define at least one bag-info.txt tag")
	}

	return errs
}

// TagsByFile groups this profile's tag definitions by tag file, in the
// order tag files first appear (matching spec 4.E.6's "grouped by tag
// file" verification loop).
func (p *Profile) TagsByFile() (order []string, byFile map[string][]TagDefinition) {
	byFile = make(map[string][]TagDefinition)
	for _, t := range p.Tags {
		if _, ok := byFile[t.TagFile]; !ok {
			order = append(order, t.TagFile)
		}
		byFile[t.TagFile] = append(byFile[t.TagFile], t)
	}
	return order, byFile
}

// MatchesTagFileAllowlist implements spec 4.E.5: "*" or an empty pattern
// list accepts anything; otherwise relPath must match at least one
// pattern.
func (p *Profile) MatchesTagFileAllowlist(relPath string) bool {
	if len(p.TagFilesAllowed) == 0 {
		return true
	}
	for _, pattern := range p.TagFilesAllowed {
		if pattern == "*" || pattern == "" {
			return true
		}
		if ok, _ := filepath.Match(pattern, relPath); ok {
			return true
		}
	}
	return false
}

func isSubset(small, big []string) bool {
	set := make(map[string]bool, len(big))
	for _, v := range big {
		set[v] = true
	}
	for _, v := range small {
		if !set[v] {
			return false
		}
	}
	return true
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
