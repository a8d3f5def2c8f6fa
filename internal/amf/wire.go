package amf

import (
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"

	"github.com/alxayo/go-amf/internal/errors"
)

// readFull reads exactly len(buf) bytes, reporting UnexpectedEof on a short
// read (io.EOF or io.ErrUnexpectedEOF from the underlying reader).
func readFull(r io.Reader, buf []byte, op string) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		return errors.NewUnexpectedEofError(op, err)
	}
	return nil
}

func readByte(r io.Reader, op string) (byte, error) {
	var b [1]byte
	if err := readFull(r, b[:], op); err != nil {
		return 0, err
	}
	return b[0], nil
}

func readUint16(r io.Reader, op string) (uint16, error) {
	var b [2]byte
	if err := readFull(r, b[:], op); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func readUint32(r io.Reader, op string) (uint32, error) {
	var b [4]byte
	if err := readFull(r, b[:], op); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func readFloat64(r io.Reader, op string) (float64, error) {
	var b [8]byte
	if err := readFull(r, b[:], op); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b[:])), nil
}

func readInt16(r io.Reader, op string) (int16, error) {
	u, err := readUint16(r, op)
	return int16(u), err
}

// maxDeclaredLength bounds any single length/count field read from the wire
// before it sizes an allocation, so a malformed or adversarial declared
// value can't force a multi-gigabyte allocation ahead of the bytes actually
// available (§5).
const maxDeclaredLength = 64 << 20 // 64 MiB

func checkDeclaredLength(n int64, op string) error {
	if n < 0 || n > maxDeclaredLength {
		return errors.NewDeclaredLengthExceededError(op, int(n), maxDeclaredLength)
	}
	return nil
}

// readUtf8 reads byteLen bytes and validates them as UTF-8 (§4.C, §6).
func readUtf8(r io.Reader, byteLen int, op string) (string, error) {
	if byteLen == 0 {
		return "", nil
	}
	if err := checkDeclaredLength(int64(byteLen), op); err != nil {
		return "", err
	}
	buf := make([]byte, byteLen)
	if err := readFull(r, buf, op); err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", errors.NewInvalidUtf8Error(op)
	}
	return string(buf), nil
}

func writeByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

func writeUint16(w io.Writer, v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeUint32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeInt16(w io.Writer, v int16) error { return writeUint16(w, uint16(v)) }

func writeFloat64(w io.Writer, v float64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	_, err := w.Write(b[:])
	return err
}

// writeUtf8_16 writes a string prefixed by a 16-bit big-endian byte length.
// Callers must ensure len(s) fits uint16 (AMF0 short-string rule, §4.C).
func writeUtf8_16(w io.Writer, s string) error {
	if err := writeUint16(w, uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// writeUtf8_32 writes a string prefixed by a 32-bit big-endian byte length
// (AMF0 LongString and XmlDocument; AMF3 fields use U29 prefixes instead).
func writeUtf8_32(w io.Writer, s string) error {
	if err := writeUint32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}
