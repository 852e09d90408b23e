package bagit

// KeyValueCollection is an insertion-ordered multimap string -> string,
// used for parsed tag files and manifests (spec 3, component B). Multiple
// values may be recorded under the same key (a tag file may legally repeat
// a tag name); First and All both honor insertion order.
type KeyValueCollection struct {
	keys   []string
	values map[string][]string
}

// NewKeyValueCollection returns an empty collection ready for use.
func NewKeyValueCollection() *KeyValueCollection {
	return &KeyValueCollection{
		values: make(map[string][]string),
	}
}

// Add appends a value under key, recording key in Keys() the first time
// it's seen.
func (kv *KeyValueCollection) Add(key, value string) {
	if _, ok := kv.values[key]; !ok {
		kv.keys = append(kv.keys, key)
	}
	kv.values[key] = append(kv.values[key], value)
}

// First returns the first value recorded under key, and whether key was
// present at all.
func (kv *KeyValueCollection) First(key string) (string, bool) {
	vals, ok := kv.values[key]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// All returns every value recorded under key, in insertion order. The
// returned slice is nil if key was never added.
func (kv *KeyValueCollection) All(key string) []string {
	return kv.values[key]
}

// Keys returns every distinct key, in the order each was first added.
func (kv *KeyValueCollection) Keys() []string {
	return append([]string(nil), kv.keys...)
}

// Len returns the number of distinct keys.
func (kv *KeyValueCollection) Len() int {
	return len(kv.keys)
}
