package bagit

import "regexp"

// Role is the sum type spec 9's design note asks for in place of
// role-detection spread across methods: {Payload, PayloadManifest(alg),
// TagManifest(alg), Tag}.
type Role int

const (
	RolePayload Role = iota
	RoleManifest
	RoleTagManifest
	RoleTag
)

func (r Role) String() string {
	switch r {
	case RolePayload:
		return "payload"
	case RoleManifest:
		return "manifest"
	case RoleTagManifest:
		return "tag-manifest"
	case RoleTag:
		return "tag"
	default:
		return "unknown"
	}
}

var (
	manifestNameRE    = regexp.MustCompile(`^manifest-(\w+)\.txt$`)
	tagManifestNameRE = regexp.MustCompile(`^tagmanifest-(\w+)\.txt$`)
)

// ClassifyRole applies spec 3's classifier to a bag-root-relative,
// forward-slashed path, returning the Role and (for manifest roles) the
// digest algorithm named in the filename.
func ClassifyRole(relPath string) (Role, string) {
	base := baseName(relPath)
	if m := manifestNameRE.FindStringSubmatch(base); m != nil {
		return RoleManifest, m[1]
	}
	if m := tagManifestNameRE.FindStringSubmatch(base); m != nil {
		return RoleTagManifest, m[1]
	}
	if hasPrefix(relPath, "data/") {
		return RolePayload, ""
	}
	return RoleTag, ""
}

func baseName(relPath string) string {
	idx := -1
	for i := len(relPath) - 1; i >= 0; i-- {
		if relPath[i] == '/' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return relPath
	}
	return relPath[idx+1:]
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// BagItFile is the in-memory record for one file encountered while
// reading or writing a bag (spec 3, component F).
type BagItFile struct {
	RelPath   string
	Role      Role
	Algorithm string // set when Role is RoleManifest/RoleTagManifest
	Size      int64
	Checksums map[string]string // algorithm -> hex digest
	Parsed    *KeyValueCollection

	// MimeType is set by the Bagger for payload files as an optional
	// annotation (a supplemented feature; never set by the Reader/Validator
	// side, since validation never needs to re-guess a type).
	MimeType string
}

// NewBagItFile returns a BagItFile with its role classified from relPath.
func NewBagItFile(relPath string) *BagItFile {
	role, alg := ClassifyRole(relPath)
	return &BagItFile{
		RelPath:   relPath,
		Role:      role,
		Algorithm: alg,
		Checksums: make(map[string]string),
	}
}

// IsTextualTagFile reports whether this file's role/extension means the
// multi-digest pipeline should also attach a tag-file parser (spec 4.D:
// "or when the role is tag and the path ends in .txt").
func (f *BagItFile) IsTextualTagFile() bool {
	if f.Role != RoleTag {
		return false
	}
	return len(f.RelPath) >= 4 && f.RelPath[len(f.RelPath)-4:] == ".txt"
}
