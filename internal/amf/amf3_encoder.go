package amf

import (
	"io"

	"github.com/alxayo/go-amf/internal/errors"
)

// amf3Encoder writes one AMF3 value, threading Session State and a
// recursion-depth counter through every nested call (§4.D, §5).
type amf3Encoder struct {
	w        io.Writer
	sess     *Session
	maxDepth int
	depth    int
}

// EncodeAMF3 writes v to w using AMF3 wire rules.
func EncodeAMF3(w io.Writer, v *Value, sess *Session, maxDepth int) error {
	e := &amf3Encoder{w: w, sess: sess, maxDepth: maxDepth}
	return e.encodeValue(v)
}

func (e *amf3Encoder) enterDepth() error {
	e.depth++
	if e.depth > e.maxDepth {
		return errors.NewDepthExceededError(e.maxDepth)
	}
	return nil
}

func (e *amf3Encoder) leaveDepth() { e.depth-- }

func (e *amf3Encoder) encodeValue(v *Value) error {
	switch v.Kind {
	case KindUndefined:
		return writeByte(e.w, amf3Undefined)
	case KindNull:
		return writeByte(e.w, amf3Null)
	case KindBool:
		if v.Bool {
			return writeByte(e.w, amf3True)
		}
		return writeByte(e.w, amf3False)
	case KindInt:
		if !int29InRange(v.Int) {
			// Encoders must fall through to Double when out of range (§4.D).
			if err := writeByte(e.w, amf3Double); err != nil {
				return err
			}
			return writeFloat64(e.w, float64(v.Int))
		}
		if err := writeByte(e.w, amf3Integer); err != nil {
			return err
		}
		return writeU29(e.w, int32ToU29(v.Int))
	case KindDouble:
		if err := writeByte(e.w, amf3Double); err != nil {
			return err
		}
		return writeFloat64(e.w, v.Double)
	case KindString:
		if err := writeByte(e.w, amf3String); err != nil {
			return err
		}
		return e.encodeStringRaw(v.Str)
	case KindXmlDoc:
		return e.encodeByteBody(amf3XmlDoc, v, v.Str)
	case KindXml:
		return e.encodeByteBody(amf3Xml, v, v.Str)
	case KindByteArray:
		return e.encodeByteArray(v)
	case KindDate:
		return e.encodeDate(v)
	case KindArray:
		return e.encodeArray(v)
	case KindObject:
		return e.encodeObject(v)
	default:
		return errors.NewUnsupportedError("amf3: " + v.Kind.String())
	}
}

// encodeStringRaw writes the U29 ref/inline body shared by every AMF3
// string occurrence (§4.D). The empty string is always inline, never
// interned (§3 invariant 2).
func (e *amf3Encoder) encodeStringRaw(s string) error {
	if s == "" {
		return writeU29(e.w, 1)
	}
	if idx, ok := e.sess.FindExistingString(s); ok {
		return writeU29(e.w, uint32(idx)<<1)
	}
	e.sess.InternString(s)
	if err := writeU29(e.w, (uint32(len(s))<<1)|1); err != nil {
		return err
	}
	_, err := io.WriteString(e.w, s)
	return err
}

// refOrReserve checks whether v has already been interned; if so it writes
// the marker and the object-reference U29 and reports done=true. Otherwise
// it writes the marker, interns v (before recursing into children so
// self-cycles resolve), and leaves the inline U29/body to the caller.
func (e *amf3Encoder) refOrReserve(marker byte, v *Value) (done bool, err error) {
	if err := writeByte(e.w, marker); err != nil {
		return true, err
	}
	if idx, ok := e.sess.FindExistingObject(v); ok {
		return true, writeU29(e.w, uint32(idx)<<1)
	}
	e.sess.InternObject(v)
	return false, nil
}

func (e *amf3Encoder) encodeByteBody(marker byte, v *Value, content string) error {
	done, err := e.refOrReserve(marker, v)
	if done || err != nil {
		return err
	}
	if err := writeU29(e.w, (uint32(len(content))<<1)|1); err != nil {
		return err
	}
	_, err = io.WriteString(e.w, content)
	return err
}

func (e *amf3Encoder) encodeByteArray(v *Value) error {
	done, err := e.refOrReserve(amf3ByteArray, v)
	if done || err != nil {
		return err
	}
	if err := writeU29(e.w, (uint32(len(v.Bytes))<<1)|1); err != nil {
		return err
	}
	_, err = e.w.Write(v.Bytes)
	return err
}

func (e *amf3Encoder) encodeDate(v *Value) error {
	done, err := e.refOrReserve(amf3Date, v)
	if done || err != nil {
		return err
	}
	if err := writeU29(e.w, 1); err != nil {
		return err
	}
	return writeFloat64(e.w, v.DateMS)
}

func (e *amf3Encoder) encodeArray(v *Value) error {
	done, err := e.refOrReserve(amf3Array, v)
	if done || err != nil {
		return err
	}
	if err := e.enterDepth(); err != nil {
		return err
	}
	defer e.leaveDepth()

	if err := writeU29(e.w, (uint32(len(v.Array))<<1)|1); err != nil {
		return err
	}
	for i, key := range v.AssocKeys {
		if err := e.encodeStringRaw(key); err != nil {
			return err
		}
		if err := e.encodeValue(v.AssocVals[i]); err != nil {
			return err
		}
	}
	if err := e.encodeStringRaw(""); err != nil {
		return err
	}
	for _, el := range v.Array {
		if err := e.encodeValue(el); err != nil {
			return err
		}
	}
	return nil
}

func (e *amf3Encoder) encodeObject(v *Value) error {
	done, err := e.refOrReserve(amf3Object, v)
	if done || err != nil {
		return err
	}
	if err := e.enterDepth(); err != nil {
		return err
	}
	defer e.leaveDepth()

	trait := v.Trait
	if trait == nil {
		trait = &Trait{Dynamic: true}
	}

	if traitIdx, ok := e.sess.FindExistingTrait(trait); ok {
		// bit0=1 inline-object, bit1=0 trait-by-reference, upper bits = trait index.
		if err := writeU29(e.w, (uint32(traitIdx)<<2)|1); err != nil {
			return err
		}
	} else {
		flags := uint32(1) // bit0=1 inline-object, bit1=1 inline-trait
		flags |= 1 << 1
		if trait.Dynamic {
			flags |= 1 << 3
		}
		flags |= uint32(len(trait.Members)) << 4
		if err := writeU29(e.w, flags); err != nil {
			return err
		}
		if err := e.encodeStringRaw(trait.Alias); err != nil {
			return err
		}
		for _, name := range trait.Members {
			if err := e.encodeStringRaw(name); err != nil {
				return err
			}
		}
		e.sess.InternTrait(trait)
	}

	for _, name := range trait.Members {
		if err := e.encodeValue(v.Fields[name]); err != nil {
			return err
		}
	}
	if trait.Dynamic {
		sealed := make(map[string]bool, len(trait.Members))
		for _, name := range trait.Members {
			sealed[name] = true
		}
		for _, key := range v.FieldOrder {
			if sealed[key] {
				continue
			}
			if err := e.encodeStringRaw(key); err != nil {
				return err
			}
			if err := e.encodeValue(v.Fields[key]); err != nil {
				return err
			}
		}
		if err := e.encodeStringRaw(""); err != nil {
			return err
		}
	}
	return nil
}
