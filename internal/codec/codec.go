// Package codec implements the Object Binder (§4.G) and the public Codec
// surface (§6) built on top of internal/amf and internal/schema.
package codec

import (
	"bufio"
	"io"

	"github.com/google/uuid"

	"github.com/alxayo/go-amf/internal/amf"
	"github.com/alxayo/go-amf/internal/errors"
	"github.com/alxayo/go-amf/internal/logger"
	"github.com/alxayo/go-amf/internal/schema"
)

// Codec is the public entry point: an immutable Schema Registry plus fixed
// options, safe for concurrent use (§5) since every Encode/Decode call
// creates its own Session.
type Codec struct {
	registry *schema.Registry
	binder   *binder
	opts     Options
}

// New builds a Codec. root and known are registered with the Schema
// Registry exactly as schema.Register expects: concrete record or enum
// values, not pointers to interfaces.
func New(root any, known []any, opts Options) (*Codec, error) {
	reg, err := schema.Register(root, known...)
	if err != nil {
		return nil, err
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultOptions().MaxDepth
	}
	return &Codec{registry: reg, binder: newBinder(reg), opts: opts}, nil
}

// Encode serializes value to sink using the Codec's configured version.
// value must be (a pointer to) a type passed to New.
func (c *Codec) Encode(value any, sink io.Writer) error {
	sessionID := uuid.NewString()
	sess := amf.NewSession(sessionID, c.opts.Version)
	log := logger.WithOperation(logger.WithSession(logger.Logger(), sessionID), "codec.encode")

	v, err := c.binder.Encode(value)
	if err != nil {
		log.Warn("encode failed", "err", err)
		return err
	}
	if c.opts.Version == amf.Version3 {
		return amf.EncodeAMF3(sink, v, sess, c.opts.MaxDepth)
	}
	return amf.EncodeAMF0(sink, v, sess, c.opts.MaxDepth)
}

// Decode reads exactly one AMF value from source and binds it to its
// registered Go type when the decoded value is an object carrying a known
// trait alias; an anonymous object decodes to map[string]any, and scalars
// decode to their natural Go type (§4.G decode path, §6).
func (c *Codec) Decode(source io.Reader) (any, error) {
	sessionID := uuid.NewString()
	sess := amf.NewSession(sessionID, c.opts.Version)

	var v *amf.Value
	var err error
	if c.opts.Version == amf.Version3 {
		v, err = amf.DecodeAMF3(source, sess, c.opts.MaxDepth)
	} else {
		v, err = amf.DecodeAMF0(source, sess, c.opts.MaxDepth)
	}
	if err != nil {
		return nil, err
	}
	return c.toGoValue(v)
}

func (c *Codec) toGoValue(v *amf.Value) (any, error) {
	switch v.Kind {
	case amf.KindNull, amf.KindUndefined:
		return nil, nil
	case amf.KindBool:
		return v.Bool, nil
	case amf.KindInt:
		return v.Int, nil
	case amf.KindDouble:
		return v.Double, nil
	case amf.KindString:
		return v.Str, nil
	case amf.KindDate:
		return c.binder.valueToGo(v), nil
	case amf.KindByteArray:
		return v.Bytes, nil
	case amf.KindXmlDoc, amf.KindXml:
		return v.Str, nil
	case amf.KindArray:
		return c.arrayToGoValue(v)
	case amf.KindObject:
		return c.objectToGoValue(v)
	default:
		return nil, errors.NewUnsupportedError("codec: unhandled kind " + v.Kind.String())
	}
}

func (c *Codec) arrayToGoValue(v *amf.Value) (any, error) {
	if len(v.AssocKeys) > 0 {
		m := make(map[string]any, len(v.AssocKeys))
		for i, k := range v.AssocKeys {
			gv, err := c.toGoValue(v.AssocVals[i])
			if err != nil {
				return nil, err
			}
			m[k] = gv
		}
		return m, nil
	}
	out := make([]any, len(v.Array))
	for i, e := range v.Array {
		gv, err := c.toGoValue(e)
		if err != nil {
			return nil, err
		}
		out[i] = gv
	}
	return out, nil
}

func (c *Codec) objectToGoValue(v *amf.Value) (any, error) {
	if v.Trait == nil || v.Trait.Alias == "" {
		bag := make(map[string]any, len(v.FieldOrder))
		for _, name := range v.FieldOrder {
			gv, err := c.toGoValue(v.Fields[name])
			if err != nil {
				return nil, err
			}
			bag[name] = gv
		}
		return bag, nil
	}

	desc, err := c.registry.ByAlias(v.Trait.Alias)
	if err != nil {
		return nil, err
	}
	if desc.Kind != schema.KindRecord {
		return nil, errors.NewContractViolationError(v.Trait.Alias, "alias resolves to an enum, not a record")
	}
	return c.binder.Decode(v, desc)
}

// IsStartMarker reports whether the next byte available from source (via
// Peek, so nothing is consumed) is a recognized leading marker for the
// Codec's configured version — the collaborator contract §6 leaves framing
// detection to the caller; this is the primitive it's built from.
func (c *Codec) IsStartMarker(source *bufio.Reader) (bool, error) {
	b, err := source.Peek(1)
	if err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, errors.NewIoError("codec.is-start-marker", err)
	}
	return amf.IsKnownMarker(b[0], c.opts.Version), nil
}
