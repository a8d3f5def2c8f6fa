package amf

import "io"

// EncodeBridge writes the AMF0 AvmPlus marker (0x11) followed by v encoded
// as a single AMF3 value in a fresh AMF3 session (§4.E). Callers must only
// invoke this as the top-level marker of a payload, never nested inside an
// AMF0 container (§4.E, §6).
func EncodeBridge(w io.Writer, v *Value, sessionID string, maxDepth int) error {
	if err := writeByte(w, amf0AvmPlus); err != nil {
		return err
	}
	amf3Sess := NewSession(sessionID, Version3)
	return EncodeAMF3(w, v, amf3Sess, maxDepth)
}

// IsBridgeMarker reports whether b is the AMF0 AvmPlus marker.
func IsBridgeMarker(b byte) bool { return b == amf0AvmPlus }
