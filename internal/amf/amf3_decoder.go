package amf

import (
	"io"

	"github.com/alxayo/go-amf/internal/errors"
)

// amf3Decoder reads one AMF3 payload, threading Session State and a
// recursion-depth counter through every nested call (§4.D, §5).
type amf3Decoder struct {
	r        io.Reader
	sess     *Session
	maxDepth int
	depth    int
}

// DecodeAMF3 decodes a single AMF3 value from r.
func DecodeAMF3(r io.Reader, sess *Session, maxDepth int) (*Value, error) {
	d := &amf3Decoder{r: r, sess: sess, maxDepth: maxDepth}
	return d.decodeValue()
}

func (d *amf3Decoder) enterDepth() error {
	d.depth++
	if d.depth > d.maxDepth {
		return errors.NewDepthExceededError(d.maxDepth)
	}
	return nil
}

func (d *amf3Decoder) leaveDepth() { d.depth-- }

func (d *amf3Decoder) decodeValue() (*Value, error) {
	marker, err := readByte(d.r, "amf3.marker")
	if err != nil {
		return nil, err
	}
	switch marker {
	case amf3Undefined:
		return NewUndefined(), nil
	case amf3Null:
		return NewNull(), nil
	case amf3False:
		return NewBool(false), nil
	case amf3True:
		return NewBool(true), nil
	case amf3Integer:
		u, err := readU29(d.r, "amf3.integer")
		if err != nil {
			return nil, err
		}
		return NewInt(u29ToInt29(u)), nil
	case amf3Double:
		f, err := readFloat64(d.r, "amf3.double")
		if err != nil {
			return nil, err
		}
		return NewDouble(f), nil
	case amf3String:
		s, err := d.decodeStringRaw()
		if err != nil {
			return nil, err
		}
		return NewString(s), nil
	case amf3XmlDoc:
		return d.decodeByteBody(NewXmlDoc, "amf3.xml-doc")
	case amf3Xml:
		return d.decodeByteBody(NewXml, "amf3.xml")
	case amf3ByteArray:
		return d.decodeByteArray()
	case amf3Date:
		return d.decodeDate()
	case amf3Array:
		return d.decodeArray()
	case amf3Object:
		return d.decodeObject()
	default:
		return nil, errors.NewUnknownMarkerError("amf3.marker", marker)
	}
}

// decodeStringRaw reads a U29-prefixed string using the reference-vs-inline
// rule shared by every AMF3 string occurrence: the top-level String marker
// body, trait class names, trait member names, array associative keys, and
// dynamic-object keys (§4.D). The empty string is always inline and never
// interned (§3 invariant 2).
func (d *amf3Decoder) decodeStringRaw() (string, error) {
	u, err := readU29(d.r, "amf3.string")
	if err != nil {
		return "", err
	}
	if u&1 == 0 {
		return d.sess.ResolveString(int(u >> 1))
	}
	length := int(u >> 1)
	if length == 0 {
		return "", nil
	}
	s, err := readUtf8(d.r, length, "amf3.string")
	if err != nil {
		return "", err
	}
	d.sess.InternString(s)
	return s, nil
}

// decodeByteBody handles the Xml/XmlDoc markers, which share an
// object-referenced, length-prefixed text body.
func (d *amf3Decoder) decodeByteBody(ctor func(string) *Value, op string) (*Value, error) {
	u, err := readU29(d.r, op)
	if err != nil {
		return nil, err
	}
	if u&1 == 0 {
		return d.sess.ResolveObject(int(u >> 1))
	}
	length := int(u >> 1)
	idx := d.sess.ReserveObject()
	s, err := readUtf8(d.r, length, op)
	if err != nil {
		return nil, err
	}
	v := ctor(s)
	return d.sess.PatchObject(idx, v), nil
}

func (d *amf3Decoder) decodeByteArray() (*Value, error) {
	u, err := readU29(d.r, "amf3.byte-array")
	if err != nil {
		return nil, err
	}
	if u&1 == 0 {
		return d.sess.ResolveObject(int(u >> 1))
	}
	length := int(u >> 1)
	if err := checkDeclaredLength(int64(length), "amf3.byte-array"); err != nil {
		return nil, err
	}
	idx := d.sess.ReserveObject()
	buf := make([]byte, length)
	if err := readFull(d.r, buf, "amf3.byte-array"); err != nil {
		return nil, err
	}
	v := NewByteArray(buf)
	return d.sess.PatchObject(idx, v), nil
}

func (d *amf3Decoder) decodeDate() (*Value, error) {
	u, err := readU29(d.r, "amf3.date")
	if err != nil {
		return nil, err
	}
	if u&1 == 0 {
		return d.sess.ResolveObject(int(u >> 1))
	}
	idx := d.sess.ReserveObject()
	ms, err := readFloat64(d.r, "amf3.date")
	if err != nil {
		return nil, err
	}
	v := NewDate(ms)
	return d.sess.PatchObject(idx, v), nil
}

func (d *amf3Decoder) decodeArray() (*Value, error) {
	u, err := readU29(d.r, "amf3.array")
	if err != nil {
		return nil, err
	}
	if u&1 == 0 {
		return d.sess.ResolveObject(int(u >> 1))
	}
	if err := d.enterDepth(); err != nil {
		return nil, err
	}
	defer d.leaveDepth()

	denseLen := int(u >> 1)
	if err := checkDeclaredLength(int64(denseLen), "amf3.array.dense-count"); err != nil {
		return nil, err
	}
	idx := d.sess.ReserveObject()

	var assocKeys []string
	var assocVals []*Value
	for {
		key, err := d.decodeStringRaw()
		if err != nil {
			return nil, err
		}
		if key == "" {
			break
		}
		val, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		assocKeys = append(assocKeys, key)
		assocVals = append(assocVals, val)
	}

	elems := make([]*Value, 0, denseLen)
	for i := 0; i < denseLen; i++ {
		v, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}

	arr := &Value{Kind: KindArray, Array: elems, AssocKeys: assocKeys, AssocVals: assocVals, Form: ArrayFormStrict}
	return d.sess.PatchObject(idx, arr), nil
}

func (d *amf3Decoder) decodeObject() (*Value, error) {
	u, err := readU29(d.r, "amf3.object")
	if err != nil {
		return nil, err
	}
	if u&1 == 0 {
		return d.sess.ResolveObject(int(u >> 1))
	}
	if err := d.enterDepth(); err != nil {
		return nil, err
	}
	defer d.leaveDepth()

	var trait *Trait
	if u&2 == 0 {
		// Trait-by-reference: remaining bits are the trait table index.
		traitIdx := int(u >> 2)
		trait, err = d.sess.ResolveTrait(traitIdx)
		if err != nil {
			return nil, err
		}
	} else {
		externalizable := u&4 != 0
		dynamic := u&8 != 0
		memberCount := int(u >> 4)
		if externalizable {
			return nil, errors.NewUnsupportedError("amf3 externalizable trait")
		}
		if err := checkDeclaredLength(int64(memberCount), "amf3.object.member-count"); err != nil {
			return nil, err
		}
		className, err := d.decodeStringRaw()
		if err != nil {
			return nil, err
		}
		members := make([]string, 0, memberCount)
		for i := 0; i < memberCount; i++ {
			name, err := d.decodeStringRaw()
			if err != nil {
				return nil, err
			}
			members = append(members, name)
		}
		trait = &Trait{Alias: className, Dynamic: dynamic, Members: members}
		d.sess.InternTrait(trait)
	}

	idx := d.sess.ReserveObject()
	fields := map[string]*Value{}
	order := make([]string, 0, len(trait.Members))
	for _, name := range trait.Members {
		v, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		fields[name] = v
		order = append(order, name)
	}
	if trait.Dynamic {
		for {
			key, err := d.decodeStringRaw()
			if err != nil {
				return nil, err
			}
			if key == "" {
				break
			}
			v, err := d.decodeValue()
			if err != nil {
				return nil, err
			}
			if _, exists := fields[key]; !exists {
				order = append(order, key)
			}
			fields[key] = v
		}
	}

	obj := NewObject(trait, order, fields)
	return d.sess.PatchObject(idx, obj), nil
}
