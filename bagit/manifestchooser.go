package bagit

// ChooseManifestAlgorithms implements spec 4.G's deterministic
// preference order for when the Bagger must pick a digest set and the
// profile leaves it ambiguous:
//
//  1. intersection of manifestsRequired and tagManifestsRequired, if non-empty
//  2. else manifestsRequired, if non-empty
//  3. else tagManifestsRequired, if non-empty
//  4. else the highest-strength algorithm in manifestsAllowed
//  5. else ["sha512"]
func ChooseManifestAlgorithms(p *Profile) []string {
	if inter := intersect(p.ManifestsRequired, p.TagManifestsRequired); len(inter) > 0 {
		return inter
	}
	if len(p.ManifestsRequired) > 0 {
		return append([]string(nil), p.ManifestsRequired...)
	}
	if len(p.TagManifestsRequired) > 0 {
		return append([]string(nil), p.TagManifestsRequired...)
	}
	for _, alg := range SupportedAlgorithms { // strongest first
		if contains(p.ManifestsAllowed, alg) {
			return []string{alg}
		}
	}
	return []string{SHA512}
}

func intersect(a, b []string) []string {
	set := make(map[string]bool, len(b))
	for _, v := range b {
		set[v] = true
	}
	var out []string
	for _, v := range a {
		if set[v] {
			out = append(out, v)
		}
	}
	return out
}
