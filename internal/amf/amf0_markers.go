package amf

// AMF0 type markers (§4.C).
const (
	amf0Number      byte = 0x00
	amf0Boolean     byte = 0x01
	amf0String      byte = 0x02
	amf0Object      byte = 0x03
	amf0MovieClip   byte = 0x04 // reserved, never produced or accepted
	amf0Null        byte = 0x05
	amf0Undefined   byte = 0x06
	amf0Reference   byte = 0x07
	amf0EcmaArray   byte = 0x08
	amf0ObjectEnd   byte = 0x09
	amf0StrictArray byte = 0x0A
	amf0Date        byte = 0x0B
	amf0LongString  byte = 0x0C
	amf0Unsupported byte = 0x0D // reserved, never produced or accepted
	amf0RecordSet   byte = 0x0E // reserved, never produced or accepted
	amf0XmlDocument byte = 0x0F
	amf0TypedObject byte = 0x10
	amf0AvmPlus     byte = 0x11
)

// IsKnownMarker reports whether b is a recognized leading marker for the
// given version, used by codec.Codec.IsStartMarker's peek-without-consuming
// contract (§6 "is_start_marker").
func IsKnownMarker(b byte, version Version) bool {
	if version == Version3 {
		return isKnownAMF3Marker(b)
	}
	switch b {
	case amf0Number, amf0Boolean, amf0String, amf0Object, amf0Null, amf0Undefined,
		amf0Reference, amf0EcmaArray, amf0StrictArray, amf0Date, amf0LongString,
		amf0XmlDocument, amf0TypedObject, amf0AvmPlus:
		return true
	default:
		return false
	}
}

func isKnownAMF3Marker(b byte) bool {
	switch b {
	case amf3Undefined, amf3Null, amf3False, amf3True, amf3Integer, amf3Double,
		amf3String, amf3XmlDoc, amf3Date, amf3Array, amf3Object, amf3Xml, amf3ByteArray:
		return true
	default:
		return false
	}
}
