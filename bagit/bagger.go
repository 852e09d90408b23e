package bagit

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/APTrust/bagkeeper/internal/mimetype"
)

// Source pairs an absolute path to read bytes from with the bag-relative
// path (forward-slashed, including the "data/" prefix) it should be
// written to (spec 4.F: "pairs of absolute source path and destination
// relative path").
type Source struct {
	AbsPath string
	RelPath string
}

// BagResult is what Bagger.Write returns.
type BagResult struct {
	OutputPath string
	Files      map[string]*BagItFile
	Errors     []error
	Finalized  bool
}

// Succeeded reports success as "every output was finalized" rather than
// inferring it from the last queued operation (spec 9 OQ2: the source's
// ValidationOp reports only the last upload's success in one code path;
// this avoids inheriting that bug).
func (r *BagResult) Succeeded() bool {
	return r.Finalized && len(r.Errors) == 0
}

// Bagger composes a bag from arbitrary source paths into either an
// on-disk directory or a single TAR archive (spec 4.F, component J).
//
// Grounded on dpn/bagbuilder.go (tag-file construction, Payload-Oxum's
// equivalent "Bag-Size" tag) and dpn/packager.go's doTar (serialized
// tar.Writer loop).
type Bagger struct {
	OutputPath string
	Profile    *Profile
	Config     *EngineConfig
	Observer   EventObserver

	// CheckName, if true, validates OutputPath's base name against the
	// "domain.tld.bag-name" convention before writing anything (a
	// supplemented feature grounded on bagman/validator.go's
	// InstitutionDomain; off by default since spec.md does not name it).
	CheckName bool

	sources []Source
	tags    map[string]map[string]string // tagFile -> tagName -> value

	fanout *FanOut
}

// NewBagger returns a Bagger that will write to outputPath (a directory
// path, or a path ending in ".tar").
func NewBagger(outputPath string, profile *Profile, cfg *EngineConfig) *Bagger {
	if cfg == nil {
		cfg = DefaultEngineConfig()
	}
	return &Bagger{
		OutputPath: outputPath,
		Profile:    profile,
		Config:     cfg,
		tags:       make(map[string]map[string]string),
		fanout:     NewFanOut(),
	}
}

// AddSource queues one file to be written into the bag at relPath.
func (b *Bagger) AddSource(absPath, relPath string) {
	b.sources = append(b.sources, Source{AbsPath: absPath, RelPath: relPath})
}

// SetTag overrides or adds a tag value to be written into tagFile. This
// takes precedence over a TagDefinition's DefaultValue/UserValue.
func (b *Bagger) SetTag(tagFile, name, value string) {
	if b.tags[tagFile] == nil {
		b.tags[tagFile] = make(map[string]string)
	}
	b.tags[tagFile][name] = value
}

// Write builds the bag and returns the accumulated result. A failure in
// the bag-name check, the required-tag check or opening the output stops
// Write before any entry is written. A failure while writing an entry is
// recorded in Errors and does not stop the remaining phases: the other
// entries, manifests and tag files are still written and the output is
// still finalized, and the result does not report Succeeded.
func (b *Bagger) Write() *BagResult {
	obs := observerOrNoop(b.Observer)
	obs.OnValidateStart(b.OutputPath)
	result := &BagResult{OutputPath: b.OutputPath, Files: make(map[string]*BagItFile)}

	if b.CheckName {
		if _, err := InstitutionDomain(b.OutputPath); err != nil {
			result.Errors = append(result.Errors, newErr(KindBagNameInvalid, b.OutputPath, "%v", err))
			obs.OnEnd()
			return result
		}
	}

	// 1. Pre-validate required tag values are set.
	if errs := b.checkRequiredTagsSet(); len(errs) > 0 {
		result.Errors = append(result.Errors, errs...)
		obs.OnEnd()
		return result
	}

	// 2. Choose a write sink.
	sink, err := b.newSink()
	if err != nil {
		result.Errors = append(result.Errors, newErr(KindBaggerWriteFailed, b.OutputPath, "%v", err))
		obs.OnEnd()
		return result
	}

	payloadAlgs := b.payloadAlgorithms()
	tagAlgs := b.tagAlgorithms()

	// 3. Write payload files, fanning each out to the payload hashers.
	var totalBytes, totalCount int64
	for _, src := range b.sources {
		if b.Config != nil && b.Config.SlowMotionDelay > 0 {
			time.Sleep(b.Config.SlowMotionDelay)
		}
		info, statErr := os.Stat(src.AbsPath)
		if statErr != nil {
			result.Errors = append(result.Errors, newErr(KindBaggerSourceMissing, src.AbsPath, "%v", statErr))
			continue
		}
		if werr := b.writeEntry(sink, result, src.RelPath, src.AbsPath, info.Size(), info.Mode(), payloadAlgs, nil); werr != nil {
			result.Errors = append(result.Errors, newErr(KindBaggerWriteFailed, src.RelPath, "%v", werr))
			continue
		}
		totalBytes += info.Size()
		totalCount++
		obs.OnTask(TaskAdd, src.RelPath, "added", 0)
	}
	b.fanout.Wait()
	for _, e := range b.fanout.Errors() {
		result.Errors = append(result.Errors, newErr(KindBaggerWriteFailed, "", "%v", e))
	}

	// 4. Compute and inject Payload-Oxum, and seed bagit.txt defaults.
	b.SetTag("bag-info.txt", "Payload-Oxum", fmt.Sprintf("%d.%d", totalBytes, totalCount))
	b.seedBagItDefaults()

	// 5. Emit manifest-<alg>.txt for each payload algorithm, from the
	// payload checksums the barrier above just finalized.
	for _, alg := range payloadAlgs {
		content := b.buildManifest(result, RolePayload, alg)
		path := "manifest-" + alg + ".txt"
		if werr := b.writeContent(sink, result, path, content, tagAlgs); werr != nil {
			result.Errors = append(result.Errors, newErr(KindBaggerWriteFailed, path, "%v", werr))
		}
	}
	b.fanout.Wait()
	for _, e := range b.fanout.Errors() {
		result.Errors = append(result.Errors, newErr(KindBaggerWriteFailed, "", "%v", e))
	}

	// 6. Emit tag files: their content also flows through the hashing
	// pipeline so their digests can enter the tag manifests.
	order, byFile := b.Profile.TagsByFile()
	for _, tagFile := range order {
		content := b.renderTagFile(tagFile, byFile[tagFile])
		if werr := b.writeContent(sink, result, tagFile, content, tagAlgs); werr != nil {
			result.Errors = append(result.Errors, newErr(KindBaggerWriteFailed, tagFile, "%v", werr))
		}
	}
	b.fanout.Wait()
	for _, e := range b.fanout.Errors() {
		result.Errors = append(result.Errors, newErr(KindBaggerWriteFailed, "", "%v", e))
	}

	// 7. Emit tagmanifest-<alg>.txt, covering every tag file and every
	// manifest-*.txt (spec 4.F step 7).
	for _, alg := range tagAlgs {
		content := b.buildTagManifest(result, alg)
		path := "tagmanifest-" + alg + ".txt"
		if werr := b.writeContent(sink, result, path, content, nil); werr != nil {
			result.Errors = append(result.Errors, newErr(KindBaggerWriteFailed, path, "%v", werr))
		}
	}
	b.fanout.Wait()
	for _, e := range b.fanout.Errors() {
		result.Errors = append(result.Errors, newErr(KindBaggerWriteFailed, "", "%v", e))
	}

	// 8. Finalize the sink.
	if ferr := sink.finalize(); ferr != nil {
		result.Errors = append(result.Errors, newErr(KindBaggerWriteFailed, b.OutputPath, "%v", ferr))
	} else {
		result.Finalized = true
	}

	obs.OnEnd()
	return result
}

// SelfValidate runs a Validator against the bag this Bagger just wrote,
// for callers that want the optional self-check named in spec 4.F step 9.
func (b *Bagger) SelfValidate() *Result {
	return NewValidator(b.OutputPath, b.Profile, b.Config).Validate()
}

func (b *Bagger) checkRequiredTagsSet() []error {
	var errs []error
	for _, t := range b.Profile.Tags {
		if !t.Required {
			continue
		}
		if b.resolveTag(t) != "" {
			continue
		}
		if t.TagFile == "bagit.txt" {
			continue // seeded with sensible defaults regardless (seedBagItDefaults)
		}
		errs = append(errs, newErr(KindTagMissing, t.TagFile,
			"required tag '%s' in %s has no value to write", t.TagName, t.TagFile))
	}
	return errs
}

func (b *Bagger) resolveTag(t TagDefinition) string {
	if vals, ok := b.tags[t.TagFile]; ok {
		if v, ok := vals[t.TagName]; ok {
			return v
		}
	}
	if t.UserValue != "" {
		return t.UserValue
	}
	return t.DefaultValue
}

func (b *Bagger) seedBagItDefaults() {
	if b.tags["bagit.txt"] == nil || b.tags["bagit.txt"]["BagIt-Version"] == "" {
		version := "1.0"
		if len(b.Profile.AcceptBagItVersion) > 0 {
			version = b.Profile.AcceptBagItVersion[len(b.Profile.AcceptBagItVersion)-1]
		}
		b.SetTag("bagit.txt", "BagIt-Version", version)
	}
	if b.tags["bagit.txt"] == nil || b.tags["bagit.txt"]["Tag-File-Character-Encoding"] == "" {
		b.SetTag("bagit.txt", "Tag-File-Character-Encoding", "UTF-8")
	}
	if _, ok := b.tags["bag-info.txt"]["Bagging-Date"]; !ok {
		b.SetTag("bag-info.txt", "Bagging-Date", time.Now().Format(time.RFC3339))
	}
}

func (b *Bagger) payloadAlgorithms() []string {
	if len(b.Profile.ManifestsRequired) > 0 {
		return append([]string(nil), b.Profile.ManifestsRequired...)
	}
	return ChooseManifestAlgorithms(b.Profile)
}

func (b *Bagger) tagAlgorithms() []string {
	if len(b.Profile.TagManifestsRequired) > 0 {
		return append([]string(nil), b.Profile.TagManifestsRequired...)
	}
	return ChooseManifestAlgorithms(b.Profile)
}

// writeEntry reads size bytes from absPath, fans them out to the hashers
// for algorithms (plus parser, if any), and tees the same bytes into
// sink's entry for relPath.
func (b *Bagger) writeEntry(sink bagSink, result *BagResult, relPath, absPath string, size int64, mode os.FileMode, algorithms []string, parser Parser) error {
	src, err := os.Open(absPath)
	if err != nil {
		return err
	}
	defer src.Close()

	w, closeEntry, err := sink.create(relPath, size, mode)
	if err != nil {
		return err
	}
	file := NewBagItFile(relPath)
	file.Size = size
	if file.Role == RolePayload {
		if guessed, _ := mimetype.Guess(absPath); guessed != "" {
			file.MimeType = guessed
		}
	}
	if perr := b.fanout.Process(file, io.TeeReader(src, w), algorithms, parser); perr != nil {
		closeEntry()
		return perr
	}
	result.Files[relPath] = file
	return closeEntry()
}

// writeContent is writeEntry's counterpart for bytes the Bagger itself
// generated (tag files, manifests, tag manifests) rather than read from a
// source path.
func (b *Bagger) writeContent(sink bagSink, result *BagResult, relPath string, content []byte, algorithms []string) error {
	w, closeEntry, err := sink.create(relPath, int64(len(content)), 0644)
	if err != nil {
		return err
	}
	file := NewBagItFile(relPath)
	file.Size = int64(len(content))
	if perr := b.fanout.Process(file, io.TeeReader(bytes.NewReader(content), w), algorithms, nil); perr != nil {
		closeEntry()
		return perr
	}
	result.Files[relPath] = file
	return closeEntry()
}

// buildManifest renders manifest-<alg>.txt from every file of role in
// result.Files, sorted by relative path ascending (spec 4.F step 6).
func (b *Bagger) buildManifest(result *BagResult, role Role, alg string) []byte {
	type entry struct{ path, digest string }
	var entries []entry
	for path, f := range result.Files {
		if f.Role != role {
			continue
		}
		if digest, ok := f.Checksums[alg]; ok {
			entries = append(entries, entry{path, digest})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].path < entries[j].path })

	var buf bytes.Buffer
	for _, e := range entries {
		fmt.Fprintf(&buf, "%s  %s\n", e.digest, e.path)
	}
	return buf.Bytes()
}

// buildTagManifest renders tagmanifest-<alg>.txt covering every tag file
// and every manifest-*.txt (spec 4.F step 7).
func (b *Bagger) buildTagManifest(result *BagResult, alg string) []byte {
	type entry struct{ path, digest string }
	var entries []entry
	for path, f := range result.Files {
		if f.Role != RoleTag && f.Role != RoleManifest {
			continue
		}
		if digest, ok := f.Checksums[alg]; ok {
			entries = append(entries, entry{path, digest})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].path < entries[j].path })

	var buf bytes.Buffer
	for _, e := range entries {
		fmt.Fprintf(&buf, "%s  %s\n", e.digest, e.path)
	}
	return buf.Bytes()
}

// renderTagFile formats defs' current values as "Name: Value" lines,
// sorted by name ascending, folding embedded newlines into a single
// leading-space continuation line per RFC 8493 2.2.2 (spec 4.F's "Tag
// file emission format"). Values the Bagger itself synthesized via SetTag
// (Payload-Oxum, Bagging-Date) are included even when the profile names
// no TagDefinition for them, since those are protocol-level tags this
// engine always writes, not profile-declared ones.
func (b *Bagger) renderTagFile(tagFile string, defs []TagDefinition) []byte {
	type pair struct{ name, value string }
	var pairs []pair
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		pairs = append(pairs, pair{d.TagName, b.resolveTag(d)})
		seen[d.TagName] = true
	}
	for name, value := range b.tags[tagFile] {
		if !seen[name] {
			pairs = append(pairs, pair{name, value})
			seen[name] = true
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].name < pairs[j].name })

	var buf bytes.Buffer
	for _, p := range pairs {
		folded := strings.ReplaceAll(p.value, "\n", "\n ")
		fmt.Fprintf(&buf, "%s: %s\n", p.name, folded)
	}
	return buf.Bytes()
}

// bagSink abstracts the two output containers a Bagger can write to
// (spec 4.F step 2: "directory... or TAR").
type bagSink interface {
	create(relPath string, size int64, mode os.FileMode) (w io.Writer, closeEntry func() error, err error)
	finalize() error
}

func (b *Bagger) newSink() (bagSink, error) {
	if strings.HasSuffix(strings.ToLower(b.OutputPath), ".tar") {
		return newTarSink(b.OutputPath)
	}
	return newDirSink(b.OutputPath)
}

// dirSink writes a bag as a plain directory tree, preserving each
// source file's mode.
type dirSink struct {
	root string
}

func newDirSink(root string) (*dirSink, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, err
	}
	return &dirSink{root: root}, nil
}

func (d *dirSink) create(relPath string, size int64, mode os.FileMode) (io.Writer, func() error, error) {
	full := filepath.Join(d.root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func (d *dirSink) finalize() error { return nil }

// tarSink writes a bag as a single streaming TAR archive; entries must be
// written strictly sequentially (spec 4.F step 2). Every entry is nested
// under bagName so the archive's single top-level directory is the bag
// root (spec 6.1), matching what tarReader.TopLevelDir expects to find.
//
// Grounded on dpn/packager.go's doTar (tar.NewWriter loop over a file
// list) and its PathWithinArchive, which joins the bag name onto each
// entry's path before writing it.
type tarSink struct {
	file    *os.File
	tw      *tar.Writer
	bagName string
}

func newTarSink(path string) (*tarSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	bagName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &tarSink{file: f, tw: tar.NewWriter(f), bagName: bagName}, nil
}

func (t *tarSink) create(relPath string, size int64, mode os.FileMode) (io.Writer, func() error, error) {
	header := &tar.Header{
		Name:    t.bagName + "/" + relPath,
		Size:    size,
		Mode:    int64(mode.Perm()),
		ModTime: time.Now(),
	}
	if err := t.tw.WriteHeader(header); err != nil {
		return nil, nil, err
	}
	return t.tw, func() error { return nil }, nil
}

func (t *tarSink) finalize() error {
	if err := t.tw.Close(); err != nil {
		t.file.Close()
		return err
	}
	return t.file.Close()
}

// InstitutionDomain implements the partner-style bag naming check (a
// supplemented feature, not named in spec.md): a bag's file or directory
// name must start with "domain.tld." before the bag name itself.
//
// Grounded on bagman/validator.go's InstitutionDomain.
func InstitutionDomain(bagPath string) (string, error) {
	base := filepath.Base(strings.TrimSuffix(bagPath, ".tar"))
	parts := strings.Split(base, ".")
	if len(parts) < 3 {
		return "", fmt.Errorf(
			"bag name %q should start with your institution's domain name, "+
				"followed by a period, e.g. 'university.edu.my_archive'", base)
	}
	return parts[0] + "." + parts[1], nil
}
