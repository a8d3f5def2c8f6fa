package amf

import (
	"io"
)

// maxU29 is the largest value representable by the 29-bit payload (2^29-1).
const maxU29 = 0x1FFFFFFF

// readU29 decodes an AMF3 variable-length unsigned 29-bit integer (§4.D).
// The first three bytes each carry 7 payload bits with the MSB as a
// continuation flag; the fourth byte, if reached, carries a full 8 bits
// unconditionally, for a 29-bit total (7*3+8).
func readU29(r io.Reader, op string) (uint32, error) {
	var result uint32
	for i := 0; i < 3; i++ {
		b, err := readByte(r, op)
		if err != nil {
			return 0, err
		}
		result = (result << 7) | uint32(b&0x7F)
		if b&0x80 == 0 {
			return result, nil
		}
	}
	b, err := readByte(r, op)
	if err != nil {
		return 0, err
	}
	return (result << 8) | uint32(b), nil
}

// writeU29 encodes value (truncated to 29 bits) using the minimal byte count.
func writeU29(w io.Writer, value uint32) error {
	value &= maxU29
	switch {
	case value < 0x80:
		return writeByte(w, byte(value))
	case value < 0x4000:
		if err := writeByte(w, byte(value>>7)|0x80); err != nil {
			return err
		}
		return writeByte(w, byte(value&0x7F))
	case value < 0x200000:
		if err := writeByte(w, byte(value>>14)|0x80); err != nil {
			return err
		}
		if err := writeByte(w, byte((value>>7)&0x7F)|0x80); err != nil {
			return err
		}
		return writeByte(w, byte(value&0x7F))
	default:
		if err := writeByte(w, byte(value>>22)|0x80); err != nil {
			return err
		}
		if err := writeByte(w, byte((value>>15)&0x7F)|0x80); err != nil {
			return err
		}
		if err := writeByte(w, byte((value>>8)&0x7F)|0x80); err != nil {
			return err
		}
		return writeByte(w, byte(value))
	}
}

// u29ToInt29 reinterprets a decoded U29 as a signed 29-bit two's-complement
// integer, per §4.D's rule for the Integer marker.
func u29ToInt29(u uint32) int32 {
	const signBit = 1 << 28
	if u&signBit != 0 {
		return int32(u) - (1 << 29)
	}
	return int32(u)
}

// int29InRange reports whether i fits the signed 29-bit range [-2^28, 2^28-1].
func int29InRange(i int32) bool {
	return i >= -(1<<28) && i <= (1<<28)-1
}

// int32ToU29 is the encode-side mirror of u29ToInt29, valid only when
// int29InRange(i) holds.
func int32ToU29(i int32) uint32 {
	return uint32(i) & maxU29
}
