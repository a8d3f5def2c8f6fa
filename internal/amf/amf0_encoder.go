package amf

import (
	"io"

	"github.com/alxayo/go-amf/internal/errors"
)

// amf0Encoder writes one AMF0 value, threading Session State and a
// recursion-depth counter through every nested call (§4.C, §5).
type amf0Encoder struct {
	w        io.Writer
	sess     *Session
	maxDepth int
	depth    int
}

// EncodeAMF0 writes v to w using AMF0 wire rules, interning complex values
// into sess's object table as they are first emitted (§3, §4.C).
func EncodeAMF0(w io.Writer, v *Value, sess *Session, maxDepth int) error {
	e := &amf0Encoder{w: w, sess: sess, maxDepth: maxDepth}
	return e.encodeValue(v)
}

func (e *amf0Encoder) enterDepth() error {
	e.depth++
	if e.depth > e.maxDepth {
		return errors.NewDepthExceededError(e.maxDepth)
	}
	return nil
}

func (e *amf0Encoder) leaveDepth() { e.depth-- }

// tryReference emits a Reference marker and reports true if v has already
// been interned in this session; otherwise it reports false and leaves the
// object table untouched, deferring interning to the caller (who must do so
// before recursing into v's children, so self-cycles resolve).
func (e *amf0Encoder) tryReference(v *Value) (bool, error) {
	if idx, ok := e.sess.FindExistingObject(v); ok {
		if err := writeByte(e.w, amf0Reference); err != nil {
			return true, err
		}
		return true, writeUint16(e.w, uint16(idx))
	}
	return false, nil
}

func (e *amf0Encoder) encodeValue(v *Value) error {
	switch v.Kind {
	case KindNull:
		return writeByte(e.w, amf0Null)
	case KindUndefined:
		return writeByte(e.w, amf0Undefined)
	case KindBool:
		if err := writeByte(e.w, amf0Boolean); err != nil {
			return err
		}
		b := byte(0)
		if v.Bool {
			b = 1
		}
		return writeByte(e.w, b)
	case KindInt:
		if err := writeByte(e.w, amf0Number); err != nil {
			return err
		}
		return writeFloat64(e.w, float64(v.Int))
	case KindDouble:
		if err := writeByte(e.w, amf0Number); err != nil {
			return err
		}
		return writeFloat64(e.w, v.Double)
	case KindString:
		return e.encodeString(v.Str)
	case KindDate:
		return e.encodeDate(v)
	case KindXmlDoc:
		return e.encodeXmlDoc(v)
	case KindArray:
		if v.Form == ArrayFormEcma {
			return e.encodeEcmaArray(v)
		}
		return e.encodeStrictArray(v)
	case KindObject:
		return e.encodeObject(v)
	default:
		return errors.NewUnsupportedError("amf0: " + v.Kind.String())
	}
}

func (e *amf0Encoder) encodeString(s string) error {
	if len(s) < 65536 {
		if err := writeByte(e.w, amf0String); err != nil {
			return err
		}
		return writeUtf8_16(e.w, s)
	}
	if err := writeByte(e.w, amf0LongString); err != nil {
		return err
	}
	return writeUtf8_32(e.w, s)
}

func (e *amf0Encoder) writeKey(key string) error {
	if len(key) > 0xFFFF {
		return errors.NewContractViolationError("object-key", "exceeds 65535 bytes")
	}
	return writeUtf8_16(e.w, key)
}

func (e *amf0Encoder) encodeObject(v *Value) error {
	already, err := e.tryReference(v)
	if already || err != nil {
		return err
	}
	e.sess.InternObject(v)
	if err := e.enterDepth(); err != nil {
		return err
	}
	defer e.leaveDepth()

	marker := byte(amf0Object)
	typed := v.Trait != nil && v.Trait.Alias != ""
	if typed {
		marker = amf0TypedObject
	}
	if err := writeByte(e.w, marker); err != nil {
		return err
	}
	if typed {
		if err := e.writeKey(v.Trait.Alias); err != nil {
			return err
		}
	}
	for _, key := range v.FieldOrder {
		if err := e.writeKey(key); err != nil {
			return err
		}
		if err := e.encodeValue(v.Fields[key]); err != nil {
			return err
		}
	}
	if err := writeUtf8_16(e.w, ""); err != nil {
		return err
	}
	return writeByte(e.w, amf0ObjectEnd)
}

func (e *amf0Encoder) encodeEcmaArray(v *Value) error {
	already, err := e.tryReference(v)
	if already || err != nil {
		return err
	}
	e.sess.InternObject(v)
	if err := e.enterDepth(); err != nil {
		return err
	}
	defer e.leaveDepth()

	if err := writeByte(e.w, amf0EcmaArray); err != nil {
		return err
	}
	if err := writeUint32(e.w, uint32(len(v.AssocKeys))); err != nil {
		return err
	}
	for i, key := range v.AssocKeys {
		if err := e.writeKey(key); err != nil {
			return err
		}
		if err := e.encodeValue(v.AssocVals[i]); err != nil {
			return err
		}
	}
	if err := writeUtf8_16(e.w, ""); err != nil {
		return err
	}
	return writeByte(e.w, amf0ObjectEnd)
}

func (e *amf0Encoder) encodeStrictArray(v *Value) error {
	already, err := e.tryReference(v)
	if already || err != nil {
		return err
	}
	e.sess.InternObject(v)
	if err := e.enterDepth(); err != nil {
		return err
	}
	defer e.leaveDepth()

	if err := writeByte(e.w, amf0StrictArray); err != nil {
		return err
	}
	if err := writeUint32(e.w, uint32(len(v.Array))); err != nil {
		return err
	}
	for _, el := range v.Array {
		if err := e.encodeValue(el); err != nil {
			return err
		}
	}
	return nil
}

func (e *amf0Encoder) encodeDate(v *Value) error {
	already, err := e.tryReference(v)
	if already || err != nil {
		return err
	}
	e.sess.InternObject(v)
	if err := writeByte(e.w, amf0Date); err != nil {
		return err
	}
	if err := writeFloat64(e.w, v.DateMS); err != nil {
		return err
	}
	// Timezone, always emitted as zero (§4.C, §6).
	return writeInt16(e.w, 0)
}

func (e *amf0Encoder) encodeXmlDoc(v *Value) error {
	already, err := e.tryReference(v)
	if already || err != nil {
		return err
	}
	e.sess.InternObject(v)
	if err := writeByte(e.w, amf0XmlDocument); err != nil {
		return err
	}
	return writeUtf8_32(e.w, v.Str)
}
