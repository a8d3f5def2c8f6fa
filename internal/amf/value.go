// Package amf implements the AMF0 and AMF3 binary codecs together with the
// per-session reference-table bookkeeping that both versions share.
package amf

import "fmt"

// Kind tags the variant held by a Value. The set is closed and mirrors the
// tagged sum from the data model: every codec path dispatches on Kind rather
// than on a Go interface hierarchy.
type Kind uint8

const (
	KindNull Kind = iota
	KindUndefined
	KindBool
	KindInt
	KindDouble
	KindString
	KindDate
	KindByteArray
	KindXmlDoc
	KindXml
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindUndefined:
		return "undefined"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindByteArray:
		return "byte-array"
	case KindXmlDoc:
		return "xml-doc"
	case KindXml:
		return "xml"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is the closed universe decoded/encoded by the AMF0 and AMF3 codecs.
// Only the fields relevant to Kind are meaningful; readers must switch on
// Kind before touching any other field. Complex values (Array, Object,
// ByteArray, Date, XmlDoc, Xml) are always referenced through *Value so that
// the session's object table can hand out shared identity.
type Value struct {
	Kind Kind

	Bool   bool
	Int    int32
	Double float64
	Str    string
	// DateMS is milliseconds since the Unix epoch, per §3 of the data model.
	DateMS float64
	Bytes  []byte

	// Array holds the dense, ordered element sequence for KindArray.
	Array []*Value
	// AssocKeys/AssocVals hold the associative portion that precedes the
	// dense portion on the wire (AMF3 array "key-value run", AMF0 ECMA
	// array), parallel-indexed and order-preserving.
	AssocKeys []string
	AssocVals []*Value
	// Form records whether a KindArray value was decoded from AMF0's
	// "strict array" or "ecma array" wire form, so re-encoding reproduces
	// the original container kind (§9 open question: strict vs ecma array
	// fidelity is an implementer decision; this codec preserves it).
	Form ArrayForm

	// Trait/Fields/FieldOrder are valid when Kind == KindObject.
	Trait      *Trait
	Fields     map[string]*Value
	FieldOrder []string
}

func NewNull() *Value      { return &Value{Kind: KindNull} }
func NewUndefined() *Value { return &Value{Kind: KindUndefined} }
func NewBool(b bool) *Value {
	return &Value{Kind: KindBool, Bool: b}
}
func NewInt(i int32) *Value       { return &Value{Kind: KindInt, Int: i} }
func NewDouble(f float64) *Value  { return &Value{Kind: KindDouble, Double: f} }
func NewString(s string) *Value   { return &Value{Kind: KindString, Str: s} }
func NewDate(ms float64) *Value   { return &Value{Kind: KindDate, DateMS: ms} }
func NewByteArray(b []byte) *Value {
	return &Value{Kind: KindByteArray, Bytes: b}
}
func NewXmlDoc(s string) *Value { return &Value{Kind: KindXmlDoc, Str: s} }
func NewXml(s string) *Value    { return &Value{Kind: KindXml, Str: s} }

// ArrayForm distinguishes AMF0's strict-array and ecma-array wire forms for
// a decoded KindArray value (§9 open question).
type ArrayForm uint8

const (
	ArrayFormStrict ArrayForm = iota
	ArrayFormEcma
)

// NewArray builds a dense, strict-form array with no associative portion.
func NewArray(values ...*Value) *Value {
	return &Value{Kind: KindArray, Array: values, Form: ArrayFormStrict}
}

// NewEcmaArray builds an associative array (AMF0 ecma-array form).
func NewEcmaArray(keys []string, vals []*Value) *Value {
	return &Value{Kind: KindArray, AssocKeys: keys, AssocVals: vals, Form: ArrayFormEcma}
}

// NewObject builds an object value. fieldOrder must list every key present
// in fields exactly once; it records the member order used for re-encoding
// and for the Object Binder's decode path.
func NewObject(trait *Trait, fieldOrder []string, fields map[string]*Value) *Value {
	return &Value{Kind: KindObject, Trait: trait, FieldOrder: fieldOrder, Fields: fields}
}

// sameComplexIdentity implements the equality rule from §4.B: identity-based
// for mutable aggregates (Array, Object), value-based for immutable scalars
// treated as complex (ByteArray contents, Date instant, XmlDoc/Xml text).
func sameComplexIdentity(a, b *Value) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindByteArray:
		return bytesEqual(a.Bytes, b.Bytes)
	case KindDate:
		return a.DateMS == b.DateMS
	case KindXmlDoc, KindXml:
		return a.Str == b.Str
	default:
		return false
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Trait describes a record's shape: class name, dynamic/externalizable
// flags, and an ordered member-name list. Two traits are structurally equal
// iff every field matches (§3).
type Trait struct {
	Alias          string
	Dynamic        bool
	Externalizable bool
	Members        []string
}

// Equal reports structural equality, the rule the trait table uses to decide
// reference-vs-inline on encode (§4.G step 3).
func (t *Trait) Equal(o *Trait) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Alias != o.Alias || t.Dynamic != o.Dynamic || t.Externalizable != o.Externalizable {
		return false
	}
	if len(t.Members) != len(o.Members) {
		return false
	}
	for i := range t.Members {
		if t.Members[i] != o.Members[i] {
			return false
		}
	}
	return true
}
