package packet

import (
	"encoding/binary"
	"io"
	"unicode/utf8"

	"github.com/alxayo/go-amf/internal/errors"
)

// countingReader wraps a reader and tracks how many bytes have been read
// through it, used to verify an explicit payload_len against the bytes a
// codec call actually consumed (§4.F).
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func readByte(r io.Reader, op string) (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, errors.NewUnexpectedEofError(op, err)
	}
	return b[0], nil
}

func readUint16(r io.Reader, op string) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, errors.NewUnexpectedEofError(op, err)
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func readUint32(r io.Reader, op string) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, errors.NewUnexpectedEofError(op, err)
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// readUtf16Str reads a 2-byte big-endian length prefix followed by that
// many UTF-8 bytes, the format shared by header names and message
// target/response URIs (§4.F).
func readUtf16Str(r io.Reader, op string) (string, error) {
	n, err := readUint16(r, op)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", errors.NewUnexpectedEofError(op, err)
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

func writeUtf16Str(w io.Writer, s string) error {
	if err := writeUint16(w, uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}
