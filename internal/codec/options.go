package codec

import "github.com/alxayo/go-amf/internal/amf"

// Options configures a Codec (§6, §7b). Mirrors the teacher's plain-struct
// config pattern: no external config file format, just a struct and a
// Default constructor.
type Options struct {
	// Version selects the wire format used by Encode and the initial
	// decode of Decode (§4.B, §4.E). AMF0 streams may still bridge into
	// AMF3 mid-value via the 0x11 marker regardless of this setting.
	Version amf.Version
	// MaxDepth bounds recursive encode/decode nesting (§4.D "depth
	// guard"). Zero means DefaultOptions' value is used.
	MaxDepth int
}

// DefaultOptions returns the configuration used when a caller doesn't
// override it: AMF0 on the wire, a conservative recursion bound.
func DefaultOptions() Options {
	return Options{Version: amf.Version0, MaxDepth: 64}
}
