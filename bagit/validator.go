package bagit

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Result is what Validate returns: the accumulated errors and the
// per-file records the read pass built, kept around in case a caller
// wants to inspect them (e.g. a CLI printing checksums).
type Result struct {
	Errors []error
	Files  map[string]*BagItFile
}

// Valid reports whether the bag satisfies every check in spec 4.E
// (spec 8 invariant 1: "validate(B, P).errors is empty iff B satisfies
// every check").
func (r *Result) Valid() bool {
	return len(r.Errors) == 0
}

// Validator orchestrates the reader, the multi-digest pipeline, and
// profile rule checks (spec 4.E, component I).
//
// Grounded on dpn/validator.go's ValidateBag phase ordering (name/untar
// check, tag-manifest check, bag read, tag check, checksum check) and
// bagman/bag.go's ReadBag.
type Validator struct {
	BagPath string
	Profile *Profile
	Config  *EngineConfig
	Observer EventObserver

	result  *Result
	fanout  *FanOut
	isDir   bool
	tarReader *TarReader
}

// NewValidator returns a Validator for bagPath against profile. cfg may
// be nil, in which case DefaultEngineConfig() is used.
func NewValidator(bagPath string, profile *Profile, cfg *EngineConfig) *Validator {
	if cfg == nil {
		cfg = DefaultEngineConfig()
	}
	return &Validator{
		BagPath: bagPath,
		Profile: profile,
		Config:  cfg,
		result:  &Result{Files: make(map[string]*BagItFile)},
		fanout:  NewFanOut(),
	}
}

// Validate runs every phase in spec 4.E's order and returns the
// accumulated result. It never panics on a malformed bag; every failure
// becomes an entry in Result.Errors.
func (v *Validator) Validate() *Result {
	obs := observerOrNoop(v.Observer)
	obs.OnValidateStart(v.BagPath)
	log := v.Config.logger()

	// Phase 1: existence check.
	info, err := os.Stat(v.BagPath)
	if err != nil {
		v.addErr(newErr(KindIOMissing, v.BagPath, "bag path %q does not exist: %v", v.BagPath, err))
		obs.OnEnd()
		return v.result
	}
	v.isDir = info.IsDir()

	// Phase 2: profile self-check. Terminal.
	if errs := v.Profile.Validate(); len(errs) > 0 {
		for _, e := range errs {
			v.addErr(e)
		}
		obs.OnEnd()
		return v.result
	}

	// Phase 3: serialization check. Terminal.
	if !v.Config.DisableSerializationCheck {
		if verr := checkSerialization(v.Profile, v.BagPath, v.isDir); verr != nil {
			v.addErr(verr)
			obs.OnEnd()
			return v.result
		}
	} else {
		log.Info("serialization check disabled")
	}

	reader, err := v.Config.readers().For(v.BagPath, v.isDir)
	if err != nil {
		v.addErr(newErr(KindIORead, v.BagPath, "%v", err))
		obs.OnEnd()
		return v.result
	}
	v.tarReader, _ = reader.(*TarReader)

	// Phase 4: initial scan -- discover manifest/tagmanifest algorithms
	// actually present in the bag.
	presentManifestAlgs := make(map[string]bool)
	presentTagManifestAlgs := make(map[string]bool)
	obs.OnTask(TaskStart, "", "scanning bag", 0)
	err = reader.List(func(e Entry) error {
		rel := v.stripTopLevel(e.RelPath)
		if rel == "" || e.IsDir {
			return nil
		}
		role, alg := ClassifyRole(rel)
		switch role {
		case RoleManifest:
			presentManifestAlgs[alg] = true
		case RoleTagManifest:
			presentTagManifestAlgs[alg] = true
		}
		return nil
	})
	if err != nil {
		v.addErr(newErr(KindIORead, v.BagPath, "error scanning bag: %v", err))
		obs.OnEnd()
		return v.result
	}

	digestSet := unionSets(v.Profile.ManifestsRequired, v.Profile.TagManifestsRequired,
		setKeys(presentManifestAlgs), setKeys(presentTagManifestAlgs))
	// An algorithm the digest registry cannot construct (e.g. from a file
	// named manifest-crc32.txt) is kept out of the digest set; the entries
	// of such a manifest then fail the digest check instead of panicking.
	supported := digestSet[:0]
	for _, alg := range digestSet {
		if IsSupportedAlgorithm(alg) {
			supported = append(supported, alg)
		}
	}
	digestSet = supported

	// Phase 5: read pass.
	err = reader.Read(func(e Entry, stream io.Reader) error {
		if e.IsDir {
			return nil
		}
		rel := v.stripTopLevel(e.RelPath)
		if rel == "" {
			return nil
		}
		if v.Config.SlowMotionDelay > 0 {
			time.Sleep(v.Config.SlowMotionDelay)
		}
		file := NewBagItFile(rel)
		file.Size = e.Size
		v.result.Files[rel] = file

		var parser Parser
		switch {
		case file.Role == RoleManifest || file.Role == RoleTagManifest:
			parser = NewManifestParser()
		case file.IsTextualTagFile():
			parser = NewTagFileParser()
		}

		obs.OnTask(TaskRead, rel, "reading", 0)
		if perr := v.fanout.Process(file, stream, digestSet, parser); perr != nil {
			return perr
		}
		obs.OnTask(TaskChecksum, rel, "hashing", 0)
		return nil
	})
	if err != nil {
		v.addErr(newErr(KindIORead, v.BagPath, "error reading bag: %v", err))
	}

	// Phase 6: completion barrier.
	v.fanout.Wait()
	for _, e := range v.fanout.Errors() {
		v.addErr(&ValidationError{Kind: KindIORead, Message: e.Error()})
	}

	// Phase 7: verification.
	v.verify()

	obs.OnEnd()
	return v.result
}

func (v *Validator) addErr(e error) {
	v.result.Errors = append(v.result.Errors, e)
	observerOrNoop(v.Observer).OnError(e)
}

// stripTopLevel removes the tar container's leading bag-root directory,
// if this validator is reading from a TarReader (spec 4.C: "the caller
// strips it"). Directory reads are already bag-root-relative.
func (v *Validator) stripTopLevel(relPath string) string {
	if v.tarReader == nil {
		return relPath
	}
	top := v.tarReader.TopLevelDir()
	if top == "" {
		return relPath
	}
	prefix := top + "/"
	if relPath == top {
		return ""
	}
	if strings.HasPrefix(relPath, prefix) {
		return relPath[len(prefix):]
	}
	return relPath
}

func (v *Validator) verify() {
	// Untar directory check (spec 4.E.2). Mismatch aborts the rest of
	// verification, but the read pass (and its errors) already ran.
	if v.tarReader != nil && v.Profile.TarDirMustMatchName {
		expected := strings.TrimSuffix(filepath.Base(v.BagPath), ".tar")
		got := v.tarReader.TopLevelDir()
		if got != expected {
			v.addErr(newErr(KindUntarNameMismatch, "",
				"Bag should untar to directory '%s', not '%s'", expected, got))
			return
		}
	}

	v.checkManifestSet(RoleManifest, v.Profile.ManifestsRequired, v.Profile.ManifestsAllowed, KindManifestMissing)
	v.checkManifestSet(RoleTagManifest, v.Profile.TagManifestsRequired, v.Profile.TagManifestsAllowed, KindManifestMissing)

	v.checkTagFileAllowlist()
	v.checkManifestEntries()
	v.checkPayloadOxum()
	v.checkTags()
}

func (v *Validator) checkManifestSet(role Role, required, allowed []string, missingKind Kind) {
	for _, alg := range required {
		path := manifestPathFor(role, alg)
		if _, ok := v.result.Files[path]; !ok {
			v.addErr(newErr(missingKind, path, "required manifest '%s' is missing from bag", path))
		}
	}
	for relPath, f := range v.result.Files {
		if f.Role != role {
			continue
		}
		if !contains(allowed, f.Algorithm) {
			v.addErr(newErr(KindManifestNotAllowed, relPath,
				"manifest '%s' uses algorithm '%s', which is not allowed by this profile", relPath, f.Algorithm))
		}
	}
}

func manifestPathFor(role Role, alg string) string {
	if role == RoleTagManifest {
		return "tagmanifest-" + alg + ".txt"
	}
	return "manifest-" + alg + ".txt"
}

func (v *Validator) checkTagFileAllowlist() {
	for relPath, f := range v.result.Files {
		if f.Role != RoleTag || relPath == "bagit.txt" {
			continue
		}
		if !v.Profile.MatchesTagFileAllowlist(relPath) {
			v.addErr(newErr(KindTagFileNotAllowed, relPath,
				"tag file '%s' does not match any allowed tag file pattern", relPath))
		}
	}
}

// checkManifestEntries implements spec 4.E.3 (every manifest entry's
// digest matches; every manifest-listed file exists) and 4.E.4 (every
// payload file appears in every payload manifest).
func (v *Validator) checkManifestEntries() {
	var payloadManifests []*BagItFile
	for relPath, f := range v.result.Files {
		if f.Role != RoleManifest && f.Role != RoleTagManifest {
			continue
		}
		if f.Parsed == nil {
			continue
		}
		if f.Role == RoleManifest {
			payloadManifests = append(payloadManifests, f)
		}
		for _, listedPath := range f.Parsed.Keys() {
			for _, digest := range f.Parsed.All(listedPath) {
				target, ok := v.result.Files[listedPath]
				if !ok {
					v.addErr(newErr(KindFileMissingInBag, listedPath,
						"File '%s' in %s is missing from bag.", listedPath, relPath))
					continue
				}
				got, ok := target.Checksums[f.Algorithm]
				if !ok || got != digest {
					v.addErr(newErr(KindChecksumMismatch, listedPath,
						"Bad %s digest for '%s': manifest says '%s', file digest is '%s'.",
						f.Algorithm, listedPath, digest, got))
				}
			}
		}
	}

	for relPath, f := range v.result.Files {
		if f.Role != RolePayload {
			continue
		}
		for _, manifest := range payloadManifests {
			if len(manifest.Parsed.All(relPath)) == 0 {
				v.addErr(newErr(KindPayloadMissingInManifest, relPath,
					"Payload file %s not found in %s", relPath, manifest.RelPath))
			}
		}
	}
}

// checkPayloadOxum implements spec 4.E.7's Payload-Oxum check and S1's
// "exactly two errors" shape: byte count and file count are checked
// independently.
func (v *Validator) checkPayloadOxum() {
	bagInfo, ok := v.result.Files["bag-info.txt"]
	if !ok || bagInfo.Parsed == nil {
		return
	}
	oxum, ok := bagInfo.Parsed.First("Payload-Oxum")
	if !ok {
		return
	}
	parts := strings.SplitN(oxum, ".", 2)
	if len(parts) != 2 {
		v.addErr(newErr(KindOxumMismatch, "bag-info.txt", "Payload-Oxum '%s' is not in <bytes>.<count> form", oxum))
		return
	}
	wantBytes, errB := strconv.ParseInt(parts[0], 10, 64)
	wantCount, errC := strconv.ParseInt(parts[1], 10, 64)
	if errB != nil || errC != nil {
		v.addErr(newErr(KindOxumMismatch, "bag-info.txt", "Payload-Oxum '%s' is not numeric", oxum))
		return
	}

	var gotBytes, gotCount int64
	for _, f := range v.result.Files {
		if f.Role == RolePayload {
			gotBytes += f.Size
			gotCount++
		}
	}
	if gotBytes != wantBytes {
		v.addErr(newErr(KindOxumMismatch, "bag-info.txt",
			"Payload-Oxum byte count %d does not match actual payload byte count %d", wantBytes, gotBytes))
	}
	if gotCount != wantCount {
		v.addErr(newErr(KindOxumMismatch, "bag-info.txt",
			"Payload-Oxum file count %d does not match actual payload file count %d", wantCount, gotCount))
	}
}

// checkTags implements spec 4.E.6.
func (v *Validator) checkTags() {
	order, byFile := v.Profile.TagsByFile()
	for _, tagFile := range order {
		f, ok := v.result.Files[tagFile]
		if !ok {
			v.addErr(newErr(KindTagMissing, tagFile, "tag file '%s' is missing from bag", tagFile))
			continue
		}
		if f.Parsed == nil {
			v.addErr(newErr(KindTagMissing, tagFile, "tag file '%s' has no data", tagFile))
			continue
		}
		for _, def := range byFile[tagFile] {
			values := f.Parsed.All(def.TagName)
			if def.Required && len(values) == 0 {
				v.addErr(newErr(KindTagMissing, tagFile,
					"Required tag '%s' not found in %s", def.TagName, tagFile))
				continue
			}
			nonEmpty := false
			for _, val := range values {
				if strings.TrimSpace(val) != "" {
					nonEmpty = true
				}
			}
			if def.Required && !nonEmpty && !def.EmptyOk {
				v.addErr(newErr(KindTagEmpty, tagFile,
					"Required tag '%s' in %s is empty", def.TagName, tagFile))
			}
			if len(def.Values) > 0 {
				for _, val := range values {
					if val == "" {
						continue
					}
					if !contains(def.Values, val) {
						v.addErr(newErr(KindTagIllegalValue, tagFile,
							"Tag '%s' in %s has illegal value '%s'; allowed values are %v",
							def.TagName, tagFile, val, def.Values))
					}
				}
			}
		}
	}
}

func unionSets(sets ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, set := range sets {
		for _, v := range set {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

func setKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
