package amf

import "testing"

func TestSessionInternAndResolveString(t *testing.T) {
	s := NewSession("t", Version3)
	if _, ok := s.FindExistingString(""); ok {
		t.Fatalf("empty string must never be found as interned")
	}
	idx := s.InternString("hello")
	got, err := s.ResolveString(idx)
	if err != nil || got != "hello" {
		t.Fatalf("resolve mismatch: %v %v", got, err)
	}
	if foundIdx, ok := s.FindExistingString("hello"); !ok || foundIdx != idx {
		t.Fatalf("expected to find interned string at %d, got %d %v", idx, foundIdx, ok)
	}
}

func TestSessionReferenceOutOfRange(t *testing.T) {
	s := NewSession("t", Version3)
	if _, err := s.ResolveObject(0); err == nil {
		t.Fatalf("expected error resolving out-of-range object index")
	}
	if _, err := s.ResolveString(0); err == nil {
		t.Fatalf("expected error resolving out-of-range string index")
	}
	if _, err := s.ResolveTrait(0); err == nil {
		t.Fatalf("expected error resolving out-of-range trait index")
	}
}

func TestSessionReservePatchCycle(t *testing.T) {
	s := NewSession("t", Version3)
	idx := s.ReserveObject()

	// A nested decode reaching a back-reference to idx before the patch
	// (a genuine cycle) must capture the same identity PatchObject fills in.
	early, err := s.ResolveObject(idx)
	if err != nil {
		t.Fatalf("unexpected error resolving reserved slot: %v", err)
	}

	patched := s.PatchObject(idx, &Value{Kind: KindObject, Fields: map[string]*Value{"x": NewInt(1)}})
	if patched != early {
		t.Fatalf("expected PatchObject to return the identity reserved earlier")
	}

	got, err := s.ResolveObject(idx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != early {
		t.Fatalf("expected ResolveObject after patch to return the same identity as before patch")
	}
	if got.Kind != KindObject || got.Fields["x"].Int != 1 {
		t.Fatalf("expected resolved slot to carry the patched value's fields: %+v", got)
	}
}

func TestSessionReset(t *testing.T) {
	s := NewSession("t", Version3)
	s.InternString("a")
	s.InternObject(NewNull())
	s.InternTrait(&Trait{Alias: "X"})
	s.Reset()
	if s.ObjectCount() != 0 {
		t.Fatalf("expected object table cleared after reset")
	}
	if _, ok := s.FindExistingString("a"); ok {
		t.Fatalf("expected string table cleared after reset")
	}
	if _, ok := s.FindExistingTrait(&Trait{Alias: "X"}); ok {
		t.Fatalf("expected trait table cleared after reset")
	}
}

func TestTraitEquality(t *testing.T) {
	a := &Trait{Alias: "X", Dynamic: true, Members: []string{"a", "b"}}
	b := &Trait{Alias: "X", Dynamic: true, Members: []string{"a", "b"}}
	c := &Trait{Alias: "X", Dynamic: false, Members: []string{"a", "b"}}
	if !a.Equal(b) {
		t.Fatalf("expected structurally equal traits to compare equal")
	}
	if a.Equal(c) {
		t.Fatalf("expected differing dynamic flag to break equality")
	}
}

func TestFindExistingObjectIdentityVsValue(t *testing.T) {
	s := NewSession("t", Version3)
	d1 := NewDate(500)
	d2 := NewDate(500)
	s.InternObject(d1)
	if idx, ok := s.FindExistingObject(d2); !ok || s.objects[idx] != d1 {
		t.Fatalf("expected value-equal dates to be found as existing")
	}

	arr1 := NewArray(NewInt(1))
	arr2 := NewArray(NewInt(1))
	s2 := NewSession("t", Version3)
	s2.InternObject(arr1)
	if _, ok := s2.FindExistingObject(arr2); ok {
		t.Fatalf("expected distinct array identities not to match")
	}
	if _, ok := s2.FindExistingObject(arr1); !ok {
		t.Fatalf("expected the same array pointer to match")
	}
}
