package bagit

import "testing"

func TestKeyValueCollectionAddAndFirst(t *testing.T) {
	kv := NewKeyValueCollection()
	kv.Add("Source-Organization", "Faber College")
	kv.Add("Bag-Count", "1 of 2")
	kv.Add("Bag-Count", "2 of 2") // repeated tag name, legal under RFC 8493

	if v, ok := kv.First("Source-Organization"); !ok || v != "Faber College" {
		t.Errorf("First(Source-Organization) = %q, %v", v, ok)
	}
	if all := kv.All("Bag-Count"); len(all) != 2 || all[0] != "1 of 2" || all[1] != "2 of 2" {
		t.Errorf("All(Bag-Count) = %v", all)
	}
	if _, ok := kv.First("Missing"); ok {
		t.Error("First(Missing) reported ok=true")
	}
}

func TestKeyValueCollectionKeyOrder(t *testing.T) {
	kv := NewKeyValueCollection()
	kv.Add("Z", "1")
	kv.Add("A", "2")
	kv.Add("Z", "3") // already seen, must not duplicate in Keys()

	if got := kv.Keys(); len(got) != 2 || got[0] != "Z" || got[1] != "A" {
		t.Errorf("Keys() = %v, want [Z A]", got)
	}
	if kv.Len() != 2 {
		t.Errorf("Len() = %d, want 2", kv.Len())
	}
}
