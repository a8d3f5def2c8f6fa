package amf

import "github.com/alxayo/go-amf/internal/errors"

// Version identifies which AMF wire format a session's codec calls speak.
type Version int

const (
	Version0 Version = 0
	Version3 Version = 3
)

func (v Version) String() string {
	if v == Version3 {
		return "AMF3"
	}
	return "AMF0"
}

// Session is the per-call state described in §4.B: three append-only
// reference tables plus the active version flag. A Session is created fresh
// on entry to encode/decode and discarded on return (§5); it must never be
// shared across concurrent calls.
type Session struct {
	ID      string
	Version Version

	objects []*Value
	strings []string
	traits  []*Trait
}

// NewSession creates Session State for one encode or decode call. id is a
// diagnostic correlation token (see internal/logger.WithSession), not part
// of wire semantics.
func NewSession(id string, version Version) *Session {
	return &Session{ID: id, Version: version}
}

// InternObject appends v to the object table and returns its new index.
func (s *Session) InternObject(v *Value) int {
	s.objects = append(s.objects, v)
	return len(s.objects) - 1
}

// ReserveObject appends a live, mutable placeholder slot and returns its
// index, for the placeholder-then-patch pattern that preserves cycles
// (§4.D, §9). The slot is a real *Value from the start, so a nested decode
// that back-references this index before PatchObject runs (a genuine
// self/mutual cycle) captures the same pointer PatchObject later fills in,
// rather than a stale nil.
func (s *Session) ReserveObject() int {
	s.objects = append(s.objects, &Value{})
	return len(s.objects) - 1
}

// PatchObject fills the slot previously returned by ReserveObject in place
// by copying v's fields into it, rather than replacing the slice entry, so
// every ResolveObject call against index — before or after the patch —
// returns the same *Value identity. It returns that identity.
func (s *Session) PatchObject(index int, v *Value) *Value {
	*s.objects[index] = *v
	return s.objects[index]
}

// ResolveObject looks up a decoded back-reference index.
func (s *Session) ResolveObject(index int) (*Value, error) {
	if index < 0 || index >= len(s.objects) {
		return nil, errors.NewReferenceOutOfRangeError("object", index, len(s.objects))
	}
	return s.objects[index], nil
}

// FindExistingObject reports whether an equal complex value has already been
// interned, per the identity/value equality split in §4.B.
func (s *Session) FindExistingObject(v *Value) (int, bool) {
	for i, existing := range s.objects {
		if existing != nil && sameComplexIdentity(existing, v) {
			return i, true
		}
	}
	return -1, false
}

// ObjectCount returns the current length of the object table.
func (s *Session) ObjectCount() int { return len(s.objects) }

// InternString appends a non-empty string to the string table. Callers must
// never call this for the empty string (§3 invariant 2).
func (s *Session) InternString(str string) int {
	s.strings = append(s.strings, str)
	return len(s.strings) - 1
}

// ResolveString looks up a decoded string back-reference index.
func (s *Session) ResolveString(index int) (string, error) {
	if index < 0 || index >= len(s.strings) {
		return "", errors.NewReferenceOutOfRangeError("string", index, len(s.strings))
	}
	return s.strings[index], nil
}

// FindExistingString reports whether str is already interned. The empty
// string never matches: it is always emitted inline and never occupies a
// table slot.
func (s *Session) FindExistingString(str string) (int, bool) {
	if str == "" {
		return -1, false
	}
	for i, existing := range s.strings {
		if existing == str {
			return i, true
		}
	}
	return -1, false
}

// InternTrait appends a trait record and returns its new index.
func (s *Session) InternTrait(t *Trait) int {
	s.traits = append(s.traits, t)
	return len(s.traits) - 1
}

// ResolveTrait looks up a decoded trait back-reference index.
func (s *Session) ResolveTrait(index int) (*Trait, error) {
	if index < 0 || index >= len(s.traits) {
		return nil, errors.NewReferenceOutOfRangeError("trait", index, len(s.traits))
	}
	return s.traits[index], nil
}

// FindExistingTrait reports whether a structurally equal trait is already
// interned, the rule the AMF3 encoder uses to decide reference-vs-inline
// for an object's trait on encode (§4.G step 3).
func (s *Session) FindExistingTrait(t *Trait) (int, bool) {
	for i, existing := range s.traits {
		if existing.Equal(t) {
			return i, true
		}
	}
	return -1, false
}

// Reset clears all three reference tables while keeping the session's
// identity and version. The Packet Framer does not call it: it gives every
// header and every body a fresh Session instead (§4.B, §4.F), and crossing
// into AMF3 via the bridge marker also starts a fresh Session rather than
// resetting one (§3, §4.E).
func (s *Session) Reset() {
	s.objects = s.objects[:0]
	s.strings = s.strings[:0]
	s.traits = s.traits[:0]
}
