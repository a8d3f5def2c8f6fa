package amf

import (
	"io"

	"github.com/alxayo/go-amf/internal/errors"
)

// amf0Decoder reads one AMF0 payload, threading Session State and a
// recursion-depth counter through every nested call (§4.C, §5).
type amf0Decoder struct {
	r        io.Reader
	sess     *Session
	maxDepth int
	depth    int
	bridge   Version
}

// DecodeAMF0 decodes a single AMF0 value from r, consuming exactly the bytes
// that make it up. sess supplies the object-reference table; maxDepth bounds
// recursive nesting (§5). If the payload contains the AvmPlus bridge marker
// (0x11), control is handed to a fresh AMF3 decode for exactly one value
// (§4.E) before returning.
func DecodeAMF0(r io.Reader, sess *Session, maxDepth int) (*Value, error) {
	d := &amf0Decoder{r: r, sess: sess, maxDepth: maxDepth}
	return d.decodeValue()
}

func (d *amf0Decoder) enterDepth() error {
	d.depth++
	if d.depth > d.maxDepth {
		return errors.NewDepthExceededError(d.maxDepth)
	}
	return nil
}

func (d *amf0Decoder) leaveDepth() { d.depth-- }

func (d *amf0Decoder) decodeValue() (*Value, error) {
	marker, err := readByte(d.r, "amf0.marker")
	if err != nil {
		return nil, err
	}
	return d.decodeByMarker(marker)
}

func (d *amf0Decoder) decodeByMarker(marker byte) (*Value, error) {
	switch marker {
	case amf0Number:
		f, err := readFloat64(d.r, "amf0.number")
		if err != nil {
			return nil, err
		}
		return NewDouble(f), nil
	case amf0Boolean:
		b, err := readByte(d.r, "amf0.boolean")
		if err != nil {
			return nil, err
		}
		return NewBool(b != 0), nil
	case amf0String:
		s, err := d.readShortString("amf0.string")
		if err != nil {
			return nil, err
		}
		return NewString(s), nil
	case amf0LongString:
		s, err := d.readLongString("amf0.long-string")
		if err != nil {
			return nil, err
		}
		return NewString(s), nil
	case amf0Null:
		return NewNull(), nil
	case amf0Undefined:
		return NewUndefined(), nil
	case amf0Reference:
		idx, err := readUint16(d.r, "amf0.reference")
		if err != nil {
			return nil, err
		}
		return d.sess.ResolveObject(int(idx))
	case amf0EcmaArray:
		return d.decodeEcmaArray()
	case amf0StrictArray:
		return d.decodeStrictArray()
	case amf0Object:
		return d.decodeObject("")
	case amf0TypedObject:
		alias, err := d.readShortString("amf0.typed-object.alias")
		if err != nil {
			return nil, err
		}
		return d.decodeObject(alias)
	case amf0Date:
		return d.decodeDate()
	case amf0XmlDocument:
		s, err := d.readLongString("amf0.xml-document")
		if err != nil {
			return nil, err
		}
		return NewXmlDoc(s), nil
	case amf0AvmPlus:
		return d.decodeBridge()
	default:
		return nil, errors.NewUnknownMarkerError("amf0.marker", marker)
	}
}

func (d *amf0Decoder) readShortString(op string) (string, error) {
	n, err := readUint16(d.r, op)
	if err != nil {
		return "", err
	}
	return readUtf8(d.r, int(n), op)
}

func (d *amf0Decoder) readLongString(op string) (string, error) {
	n, err := readUint32(d.r, op)
	if err != nil {
		return "", err
	}
	return readUtf8(d.r, int(n), op)
}

// decodeObject reads an object's property list, terminated by the
// empty-string-key + ObjectEnd sentinel (§4.C). A placeholder is reserved in
// the object table before any property is read so self-referential objects
// resolve correctly (§4.D "ordering of appends", generalized to AMF0).
func (d *amf0Decoder) decodeObject(alias string) (*Value, error) {
	if err := d.enterDepth(); err != nil {
		return nil, err
	}
	defer d.leaveDepth()

	idx := d.sess.ReserveObject()
	fields := map[string]*Value{}
	var order []string
	for {
		key, err := d.readShortString("amf0.object.key")
		if err != nil {
			return nil, err
		}
		if key == "" {
			marker, err := readByte(d.r, "amf0.object.end")
			if err != nil {
				return nil, err
			}
			if marker != amf0ObjectEnd {
				return nil, errors.NewContractViolationError("object", "missing object-end sentinel")
			}
			break
		}
		val, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		if _, exists := fields[key]; !exists {
			order = append(order, key)
		}
		fields[key] = val
	}
	trait := &Trait{Alias: alias, Dynamic: true, Members: order}
	obj := NewObject(trait, order, fields)
	return d.sess.PatchObject(idx, obj), nil
}

func (d *amf0Decoder) decodeEcmaArray() (*Value, error) {
	if err := d.enterDepth(); err != nil {
		return nil, err
	}
	defer d.leaveDepth()

	// Advisory count; the authoritative terminator is the object-end
	// sentinel, so the count is read and discarded (§4.C).
	if _, err := readUint32(d.r, "amf0.ecma-array.count"); err != nil {
		return nil, err
	}

	idx := d.sess.ReserveObject()
	var keys []string
	var vals []*Value
	for {
		key, err := d.readShortString("amf0.ecma-array.key")
		if err != nil {
			return nil, err
		}
		if key == "" {
			marker, err := readByte(d.r, "amf0.ecma-array.end")
			if err != nil {
				return nil, err
			}
			if marker != amf0ObjectEnd {
				return nil, errors.NewContractViolationError("ecma-array", "missing object-end sentinel")
			}
			break
		}
		val, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
		vals = append(vals, val)
	}
	arr := NewEcmaArray(keys, vals)
	return d.sess.PatchObject(idx, arr), nil
}

func (d *amf0Decoder) decodeStrictArray() (*Value, error) {
	if err := d.enterDepth(); err != nil {
		return nil, err
	}
	defer d.leaveDepth()

	count, err := readUint32(d.r, "amf0.strict-array.count")
	if err != nil {
		return nil, err
	}
	if err := checkDeclaredLength(int64(count), "amf0.strict-array.count"); err != nil {
		return nil, err
	}
	idx := d.sess.ReserveObject()
	elems := make([]*Value, 0, count)
	for i := uint32(0); i < count; i++ {
		v, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	arr := NewArray(elems...)
	return d.sess.PatchObject(idx, arr), nil
}

func (d *amf0Decoder) decodeDate() (*Value, error) {
	ms, err := readFloat64(d.r, "amf0.date")
	if err != nil {
		return nil, err
	}
	// Timezone field: always zero, ignored on read (§4.C).
	if _, err := readInt16(d.r, "amf0.date.timezone"); err != nil {
		return nil, err
	}
	idx := d.sess.ReserveObject()
	v := NewDate(ms)
	return d.sess.PatchObject(idx, v), nil
}

// decodeBridge hands control to a fresh AMF3 decoder session for exactly one
// value (§4.E). The AMF3 session shares nothing with the AMF0 session.
func (d *amf0Decoder) decodeBridge() (*Value, error) {
	amf3Sess := NewSession(d.sess.ID, Version3)
	return DecodeAMF3(d.r, amf3Sess, d.maxDepth)
}
