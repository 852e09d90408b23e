package bagit

import "regexp"

// serializationFormats is the built-in, extensible MIME-type ->
// extension-regex mapping used by the serialization check (spec 4.E.1).
var serializationFormats = map[string]*regexp.Regexp{
	"application/tar":             regexp.MustCompile(`\.tar$`),
	"application/zip":              regexp.MustCompile(`\.zip$`),
	"application/gzip":             regexp.MustCompile(`\.gzip$|\.gz$`),
	"application/tar+gzip":         regexp.MustCompile(`\.tgz$|\.tar\.gz$`),
	"application/x-7z-compressed":  regexp.MustCompile(`\.7z$`),
	"application/x-rar":            regexp.MustCompile(`\.rar$`),
}

// RegisterSerializationFormat lets a host extend the built-in MIME-type
// -> extension mapping (spec 4.E.1: "Built-in mapping (extensible)").
func RegisterSerializationFormat(mimeType string, extensionPattern *regexp.Regexp) {
	serializationFormats[mimeType] = extensionPattern
}

// checkSerialization implements spec 4.E.1's table. isDir tells whether
// bagPath is a directory; bagPath itself is used for extension matching.
func checkSerialization(p *Profile, bagPath string, isDir bool) *ValidationError {
	switch p.Serialization {
	case SerializationRequired:
		if isDir {
			return newErr(KindSerializationViolation, bagPath, "bag at %q must be serialized", bagPath)
		}
		return checkFormat(p, bagPath)
	case SerializationForbidden:
		if isDir {
			return nil
		}
		return newErr(KindSerializationViolation, bagPath, "bag at %q must not be serialized", bagPath)
	case SerializationOptional:
		if isDir {
			return nil
		}
		return checkFormat(p, bagPath)
	default:
		return newErr(KindProfileInvalid, "", "unknown serialization value %q", p.Serialization)
	}
}

func checkFormat(p *Profile, bagPath string) *ValidationError {
	for _, mimeType := range p.AcceptSerialization {
		re, ok := serializationFormats[mimeType]
		if !ok {
			continue
		}
		if re.MatchString(bagPath) {
			return nil
		}
	}
	return newErr(KindSerializationViolation, bagPath,
		"%q does not match any accepted serialization format %v", bagPath, p.AcceptSerialization)
}
