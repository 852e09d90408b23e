package bagit

import (
	"bytes"
	"strings"
)

// Parser is the streaming capability contract for anything that consumes a
// file's bytes and produces a KeyValueCollection once the stream ends
// (spec 4/9 design note: "{write(bytes), end() -> KVCollection}"). The
// multi-digest pipeline (pipeline.go) writes to zero or more Parsers
// alongside its hashers.
type Parser interface {
	Write(p []byte) (int, error)
	Finish() *KeyValueCollection
}

// TagFileParser streams an RFC 8493 2.2.2 tag file: "Name: Value" lines,
// with continuation lines (beginning with a space or tab) appended to the
// previous value, leading whitespace trimmed and joined to it with LF.
//
// Grounded on ndlib-bendo/bagit/reader.go's loadtagfile and
// bagman/partnerconfig.go's parsePartnerConfig line loop.
type TagFileParser struct {
	buf        []byte
	kv         *KeyValueCollection
	lastKey    string
	haveLastKey bool
}

// NewTagFileParser returns a parser ready to consume tag-file bytes.
func NewTagFileParser() *TagFileParser {
	return &TagFileParser{kv: NewKeyValueCollection()}
}

// Write implements io.Writer / Parser, buffering and consuming complete
// lines as they arrive.
func (p *TagFileParser) Write(b []byte) (int, error) {
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

// Finish flushes any trailing partial line (a tag file with no final
// newline) and returns the parsed collection.
func (p *TagFileParser) Finish() *KeyValueCollection {
	if len(p.buf) > 0 {
		p.consumeLine(string(p.buf))
		p.buf = nil
	}
	return p.kv
}

func (p *TagFileParser) consumeLine(line string) {
	line = strings.TrimRight(line, "\r")
	if line == "" {
		return
	}
	if line[0] == ' ' || line[0] == '\t' {
		// Continuation line: fold into the previous value.
		if p.haveLastKey {
			p.appendContinuation(strings.TrimSpace(line))
		}
		return
	}
	sepIdx := strings.IndexByte(line, ':')
	if sepIdx < 0 {
		// Not a valid "Name: Value" line; ignore rather than fail the
		// whole stream, mirroring the tolerant behavior of the teacher's
		// loadtagfile, which simply skips lines without a colon.
		return
	}
	name := strings.TrimSpace(line[:sepIdx])
	value := strings.TrimSpace(line[sepIdx+1:])
	p.kv.Add(name, value)
	p.lastKey = name
	p.haveLastKey = true
}

// appendContinuation folds a continuation line onto the most recently
// added value for lastKey by replacing its last recorded value with the
// joined string.
func (p *TagFileParser) appendContinuation(text string) {
	vals := p.kv.values[p.lastKey]
	if len(vals) == 0 {
		return
	}
	vals[len(vals)-1] = vals[len(vals)-1] + "\n" + text
}
