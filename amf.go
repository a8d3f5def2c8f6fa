// Package amf is the public entry point for encoding and decoding Action
// Message Format values. It is a thin façade over internal/codec, the way
// a root-level package gives external callers an importable surface while
// the implementation stays under internal/ (§2, §6).
package amf

import (
	"bufio"
	"io"

	"github.com/alxayo/go-amf/internal/amf"
	"github.com/alxayo/go-amf/internal/codec"
)

// Version identifies which AMF wire format a Codec speaks.
type Version = amf.Version

const (
	Version0 = amf.Version0
	Version3 = amf.Version3
)

// Options configures a Codec (§7b).
type Options = codec.Options

// DefaultOptions returns AMF0-on-the-wire with a conservative recursion
// bound.
func DefaultOptions() Options { return codec.DefaultOptions() }

// Codec binds a Schema Registry to fixed encode/decode options. A Codec is
// immutable after construction and safe for concurrent use (§5).
type Codec struct {
	inner *codec.Codec
}

// New builds a Codec. root and known are registered with the Schema
// Registry (§4.A): concrete record or enum values, not interfaces.
func New(root any, known []any, opts Options) (*Codec, error) {
	c, err := codec.New(root, known, opts)
	if err != nil {
		return nil, err
	}
	return &Codec{inner: c}, nil
}

// Encode serializes value to sink using the Codec's configured version.
func (c *Codec) Encode(value any, sink io.Writer) error {
	return c.inner.Encode(value, sink)
}

// Decode reads exactly one AMF value from source, binding it to its
// registered Go type when possible (§4.G, §6).
func (c *Codec) Decode(source io.Reader) (any, error) {
	return c.inner.Decode(source)
}

// IsStartMarker reports whether the next byte available from source (via
// Peek, so nothing is consumed) is a recognized leading AMF marker (§6).
func (c *Codec) IsStartMarker(source *bufio.Reader) (bool, error) {
	return c.inner.IsStartMarker(source)
}
