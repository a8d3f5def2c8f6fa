package amf

import (
	"bytes"
	"testing"
)

func encodeAMF0Value(t *testing.T, v *Value) []byte {
	t.Helper()
	var buf bytes.Buffer
	sess := NewSession("t", Version0)
	if err := EncodeAMF0(&buf, v, sess, 64); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func decodeAMF0Bytes(t *testing.T, b []byte) *Value {
	t.Helper()
	sess := NewSession("t", Version0)
	v, err := DecodeAMF0(bytes.NewReader(b), sess, 64)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestAMF0Number(t *testing.T) {
	got := encodeAMF0Value(t, NewDouble(0))
	want := []byte{0x00, 0, 0, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x want % x", got, want)
	}
	v := decodeAMF0Bytes(t, want)
	if v.Kind != KindDouble || v.Double != 0 {
		t.Fatalf("unexpected: %+v", v)
	}
}

func TestAMF0Boolean(t *testing.T) {
	for _, b := range []bool{true, false} {
		got := encodeAMF0Value(t, NewBool(b))
		v := decodeAMF0Bytes(t, got)
		if v.Kind != KindBool || v.Bool != b {
			t.Fatalf("round trip mismatch for %v: %+v", b, v)
		}
	}
}

func TestAMF0String(t *testing.T) {
	got := encodeAMF0Value(t, NewString("test"))
	want := []byte{0x02, 0x00, 0x04, 't', 'e', 's', 't'}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x want % x", got, want)
	}
}

func TestAMF0Null(t *testing.T) {
	got := encodeAMF0Value(t, NewNull())
	if !bytes.Equal(got, []byte{0x05}) {
		t.Fatalf("unexpected encoding: % x", got)
	}
}

func TestAMF0StrictArray(t *testing.T) {
	arr := NewArray(NewDouble(1), NewDouble(2), NewDouble(3))
	got := encodeAMF0Value(t, arr)
	v := decodeAMF0Bytes(t, got)
	if v.Kind != KindArray || len(v.Array) != 3 {
		t.Fatalf("unexpected: %+v", v)
	}
	for i, want := range []float64{1, 2, 3} {
		if v.Array[i].Double != want {
			t.Fatalf("index %d: got %v want %v", i, v.Array[i].Double, want)
		}
	}
}

func TestAMF0ObjectWithReference(t *testing.T) {
	inner := NewObject(&Trait{Dynamic: true, Members: []string{"x"}}, []string{"x"}, map[string]*Value{"x": NewDouble(1)})
	outer := NewObject(&Trait{Dynamic: true, Members: []string{"a", "b"}}, []string{"a", "b"}, map[string]*Value{
		"a": inner,
		"b": inner,
	})

	var buf bytes.Buffer
	sess := NewSession("t", Version0)
	if err := EncodeAMF0(&buf, outer, sess, 64); err != nil {
		t.Fatalf("encode: %v", err)
	}

	decSess := NewSession("t", Version0)
	v, err := DecodeAMF0(bytes.NewReader(buf.Bytes()), decSess, 64)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Fields["a"] != v.Fields["b"] {
		t.Fatalf("expected shared object identity between a and b")
	}
}

// AMF0 has no generalized reference table guarantees beyond the object
// table, but a self-referential object (a.self = a) must still decode to
// the same identity the placeholder-then-patch pattern is meant to give.
func TestAMF0SelfCycle(t *testing.T) {
	root := NewObject(&Trait{Dynamic: true, Members: []string{"self"}}, []string{"self"}, nil)
	root.Fields = map[string]*Value{"self": root}

	var buf bytes.Buffer
	sess := NewSession("t", Version0)
	if err := EncodeAMF0(&buf, root, sess, 64); err != nil {
		t.Fatalf("encode: %v", err)
	}

	v := decodeAMF0Bytes(t, buf.Bytes())
	if v.Fields["self"] != v {
		t.Fatalf("expected self-referential identity to be preserved, got %+v", v.Fields["self"])
	}
}

// Boundary case: an object with zero members. AMF0 has no sealed/dynamic
// distinction on the wire (the decoder always marks a decoded object
// dynamic), so the zero-member boundary here is simply an object whose
// property list is empty before the end sentinel.
func TestAMF0ZeroMemberObject(t *testing.T) {
	root := NewObject(&Trait{Dynamic: true, Members: []string{}}, []string{}, map[string]*Value{})

	got := encodeAMF0Value(t, root)
	want := []byte{0x03, 0x00, 0x00, 0x09}
	if !bytes.Equal(got, want) {
		t.Fatalf("encode mismatch: got % x want % x", got, want)
	}

	v := decodeAMF0Bytes(t, got)
	if v.Kind != KindObject || len(v.FieldOrder) != 0 || len(v.Fields) != 0 {
		t.Fatalf("expected zero-member object, got %+v", v)
	}
}

func TestAMF0EcmaArrayRoundTrip(t *testing.T) {
	arr := NewEcmaArray([]string{"k1", "k2"}, []*Value{NewString("v1"), NewString("v2")})
	got := encodeAMF0Value(t, arr)
	v := decodeAMF0Bytes(t, got)
	if v.Kind != KindArray || v.Form != ArrayFormEcma {
		t.Fatalf("expected ecma-array form, got %+v", v)
	}
	if len(v.AssocKeys) != 2 || v.AssocKeys[0] != "k1" || v.AssocVals[1].Str != "v2" {
		t.Fatalf("unexpected contents: %+v", v)
	}
}

func TestAMF0Date(t *testing.T) {
	got := encodeAMF0Value(t, NewDate(1000))
	if len(got) != 1+8+2 {
		t.Fatalf("unexpected length %d", len(got))
	}
	// Timezone field must be emitted as zero.
	if got[len(got)-2] != 0 || got[len(got)-1] != 0 {
		t.Fatalf("expected zero timezone bytes, got % x", got[len(got)-2:])
	}
	v := decodeAMF0Bytes(t, got)
	if v.Kind != KindDate || v.DateMS != 1000 {
		t.Fatalf("unexpected: %+v", v)
	}
}

// S6 — AMF0 stream "11 01" (AvmPlus marker + AMF3 Null) decodes to Null.
func TestS6Bridge(t *testing.T) {
	v := decodeAMF0Bytes(t, []byte{0x11, 0x01})
	if v.Kind != KindNull {
		t.Fatalf("expected Null, got %+v", v)
	}
}

func TestAMF0UnknownMarker(t *testing.T) {
	sess := NewSession("t", Version0)
	_, err := DecodeAMF0(bytes.NewReader([]byte{0xFE}), sess, 64)
	if err == nil {
		t.Fatalf("expected error for unknown marker")
	}
}
