package bagit

import (
	"bytes"
	"strings"
)

// ManifestParser streams a manifest/tag-manifest file: lines of
// "<hex-digest><SP><relative-path>", where the path may itself contain
// spaces (spec 6.2: everything after the first whitespace run is the
// path). Finish returns a KeyValueCollection keyed by relative path with
// the digest as the (single) value.
//
// Grounded on ndlib-bendo/bagit/reader.go's loadManifestFile.
type ManifestParser struct {
	buf []byte
	kv  *KeyValueCollection
}

// NewManifestParser returns a parser ready to consume manifest bytes.
func NewManifestParser() *ManifestParser {
	return &ManifestParser{kv: NewKeyValueCollection()}
}

func (p *ManifestParser) Write(b []byte) (int, error) {
	p.buf = append(p.buf, b...)
	for {
		idx := bytes.IndexByte(p.buf, '\n')
		if idx < 0 {
			break
		}
		line := p.buf[:idx]
		p.buf = p.buf[idx+1:]
		p.consumeLine(string(line))
	}
	return len(b), nil
}

func (p *ManifestParser) Finish() *KeyValueCollection {
	if len(p.buf) > 0 {
		p.consumeLine(string(p.buf))
		p.buf = nil
	}
	return p.kv
}

func (p *ManifestParser) consumeLine(line string) {
	line = strings.TrimRight(line, "\r")
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	// Split on the first run of whitespace: digest, then path (which may
	// itself contain spaces).
	i := 0
	for i < len(line) && line[i] != ' ' && line[i] != '\t' {
		i++
	}
	if i == len(line) {
		return // malformed line, no separator; ignore
	}
	digest := line[:i]
	rest := strings.TrimLeft(line[i:], " \t")
	if rest == "" {
		return
	}
	p.kv.Add(rest, digest)
}
