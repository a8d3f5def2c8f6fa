// Package packet implements the Packet Framer (§4.F): the header/body
// envelope that wraps an arbitrary number of AMF payloads.
package packet

import (
	"bytes"
	"io"

	"github.com/alxayo/go-amf/internal/amf"
	"github.com/alxayo/go-amf/internal/bufpool"
	"github.com/alxayo/go-amf/internal/errors"
)

// lengthUnknown is the sentinel payload_len value meaning "not declared"
// (§4.F).
const lengthUnknown uint32 = 0xFFFFFFFF

// Header is one envelope header: a name, a must-understand flag, and a
// payload value (§3 "Packet").
type Header struct {
	Name           string
	MustUnderstand bool
	Payload        *amf.Value
}

// Message is one envelope body: a target URI, a response URI, and a
// payload value (§3 "Packet").
type Message struct {
	Target   string
	Response string
	Payload  *amf.Value
}

// Packet is the decoded envelope: ordered headers (later-same-name wins,
// §3) and ordered messages.
type Packet struct {
	Version  amf.Version
	Headers  []Header
	Messages []Message
}

// HeaderByName returns the last header with the given name, implementing
// the "later-same-name wins" rule (§3).
func (p *Packet) HeaderByName(name string) (Header, bool) {
	var found Header
	ok := false
	for _, h := range p.Headers {
		if h.Name == name {
			found, ok = h, true
		}
	}
	return found, ok
}

// Decode reads one framed envelope from r using sessionID as the
// correlation token for every payload-scoped Session it creates. Reference
// tables are reset between every header and every body (§4.B, §4.F).
func Decode(r io.Reader, sessionID string, maxDepth int) (*Packet, error) {
	version, err := readUint16(r, "packet.version")
	if err != nil {
		return nil, err
	}
	p := &Packet{Version: amf.Version(version)}

	headerCount, err := readUint16(r, "packet.header-count")
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(headerCount); i++ {
		h, err := decodeHeader(r, p.Version, sessionID, maxDepth)
		if err != nil {
			return nil, err
		}
		p.Headers = append(p.Headers, h)
	}

	bodyCount, err := readUint16(r, "packet.body-count")
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(bodyCount); i++ {
		m, err := decodeMessage(r, p.Version, sessionID, maxDepth)
		if err != nil {
			return nil, err
		}
		p.Messages = append(p.Messages, m)
	}
	return p, nil
}

func decodeHeader(r io.Reader, version amf.Version, sessionID string, maxDepth int) (Header, error) {
	name, err := readUtf16Str(r, "packet.header.name")
	if err != nil {
		return Header{}, err
	}
	mustUnderstandByte, err := readByte(r, "packet.header.must-understand")
	if err != nil {
		return Header{}, err
	}
	payload, err := decodePayload(r, version, sessionID, maxDepth, "packet.header.payload")
	if err != nil {
		return Header{}, err
	}
	return Header{Name: name, MustUnderstand: mustUnderstandByte != 0, Payload: payload}, nil
}

func decodeMessage(r io.Reader, version amf.Version, sessionID string, maxDepth int) (Message, error) {
	target, err := readUtf16Str(r, "packet.body.target")
	if err != nil {
		return Message{}, err
	}
	response, err := readUtf16Str(r, "packet.body.response")
	if err != nil {
		return Message{}, err
	}
	payload, err := decodePayload(r, version, sessionID, maxDepth, "packet.body.payload")
	if err != nil {
		return Message{}, err
	}
	return Message{Target: target, Response: response, Payload: payload}, nil
}

// decodePayload reads the 4-byte payload_len prefix followed by exactly one
// AMF value. When the length is explicit, it verifies the number of bytes
// actually consumed matches (§4.F "A payload_len other than 0xFFFFFFFF must
// equal the bytes actually consumed").
func decodePayload(r io.Reader, version amf.Version, sessionID string, maxDepth int, op string) (*amf.Value, error) {
	declared, err := readUint32(r, op+".len")
	if err != nil {
		return nil, err
	}

	// Every header/body starts with a fresh Session: reference tables reset
	// between payloads (§3 invariant, §4.B, §4.F).
	sess := amf.NewSession(sessionID, version)

	if declared == lengthUnknown {
		return decodeOnePayload(r, version, sess, maxDepth)
	}

	limited := &countingReader{r: io.LimitReader(r, int64(declared))}
	v, err := decodeOnePayload(limited, version, sess, maxDepth)
	if err != nil {
		return nil, err
	}
	if uint32(limited.n) != declared {
		return nil, errors.NewLengthMismatchError(int(declared), int(limited.n))
	}
	return v, nil
}

func decodeOnePayload(r io.Reader, version amf.Version, sess *amf.Session, maxDepth int) (*amf.Value, error) {
	if version == amf.Version3 {
		return amf.DecodeAMF3(r, sess, maxDepth)
	}
	return amf.DecodeAMF0(r, sess, maxDepth)
}

// Encode writes p to w. If explicitLength is true, each payload's true
// byte length is computed and emitted instead of the "unknown" sentinel
// (§4.F).
func Encode(w io.Writer, p *Packet, sessionID string, maxDepth int, explicitLength bool) error {
	if err := writeUint16(w, uint16(p.Version)); err != nil {
		return err
	}
	if err := writeUint16(w, uint16(len(p.Headers))); err != nil {
		return err
	}
	for _, h := range p.Headers {
		if err := encodeHeader(w, h, p.Version, sessionID, maxDepth, explicitLength); err != nil {
			return err
		}
	}
	if err := writeUint16(w, uint16(len(p.Messages))); err != nil {
		return err
	}
	for _, m := range p.Messages {
		if err := encodeMessage(w, m, p.Version, sessionID, maxDepth, explicitLength); err != nil {
			return err
		}
	}
	return nil
}

func encodeHeader(w io.Writer, h Header, version amf.Version, sessionID string, maxDepth int, explicitLength bool) error {
	if err := writeUtf16Str(w, h.Name); err != nil {
		return err
	}
	mu := byte(0)
	if h.MustUnderstand {
		mu = 1
	}
	if err := writeByte(w, mu); err != nil {
		return err
	}
	return encodePayload(w, h.Payload, version, sessionID, maxDepth, explicitLength)
}

func encodeMessage(w io.Writer, m Message, version amf.Version, sessionID string, maxDepth int, explicitLength bool) error {
	if err := writeUtf16Str(w, m.Target); err != nil {
		return err
	}
	if err := writeUtf16Str(w, m.Response); err != nil {
		return err
	}
	return encodePayload(w, m.Payload, version, sessionID, maxDepth, explicitLength)
}

func encodePayload(w io.Writer, v *amf.Value, version amf.Version, sessionID string, maxDepth int, explicitLength bool) error {
	sess := amf.NewSession(sessionID, version)

	// A pooled arena backs the common case of a small payload body; large
	// bodies simply grow past it and aren't returned to the pool (§5).
	arena := bufpool.Get(256)
	defer bufpool.Put(arena)
	body := bytes.NewBuffer(arena[:0])

	encodeFn := amf.EncodeAMF0
	if version == amf.Version3 {
		encodeFn = amf.EncodeAMF3
	}
	if err := encodeFn(body, v, sess, maxDepth); err != nil {
		return err
	}

	length := lengthUnknown
	if explicitLength {
		length = uint32(body.Len())
	}
	if err := writeUint32(w, length); err != nil {
		return err
	}
	_, err := w.Write(body.Bytes())
	return err
}
