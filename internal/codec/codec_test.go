package codec

import (
	"bufio"
	"bytes"
	"testing"
	"time"

	"github.com/alxayo/go-amf/internal/amf"
)

type Point struct {
	X int32 `amf:"x"`
	Y int32 `amf:"y"`
}

type Suit int32

func (Suit) AMFEnumValues() map[string]int32 {
	return map[string]int32{"Hearts": 0, "Spades": 1, "Clubs": 2, "Diamonds": 3}
}

type Card struct {
	Rank  string `amf:"rank"`
	Suit  Suit   `amf:"suit"`
	Drawn time.Time `amf:"drawn"`
}

type Profile struct {
	Name  string         `amf:"name"`
	Extra map[string]any `amf:",dynamic"`
}

func TestEncodeDecodeRecordAMF3(t *testing.T) {
	c, err := New(Point{}, nil, Options{Version: amf.Version3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var buf bytes.Buffer
	if err := c.Encode(Point{X: 3, Y: 4}, &buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := c.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	p, ok := got.(Point)
	if !ok {
		t.Fatalf("unexpected decoded type: %T", got)
	}
	if p.X != 3 || p.Y != 4 {
		t.Fatalf("unexpected value: %+v", p)
	}
}

func TestEncodeDecodeRecordAMF0(t *testing.T) {
	c, err := New(Point{}, nil, Options{Version: amf.Version0})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var buf bytes.Buffer
	if err := c.Encode(Point{X: -1, Y: 9000}, &buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := c.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	p := got.(Point)
	if p.X != -1 || p.Y != 9000 {
		t.Fatalf("unexpected value: %+v", p)
	}
}

func TestEnumRoundTrip(t *testing.T) {
	c, err := New(Card{}, []any{Suit(0)}, Options{Version: amf.Version3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	drawn := time.UnixMilli(1_700_000_000_000).UTC()
	var buf bytes.Buffer
	if err := c.Encode(Card{Rank: "Ace", Suit: 1, Drawn: drawn}, &buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := c.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	card := got.(Card)
	if card.Rank != "Ace" || card.Suit != 1 || !card.Drawn.Equal(drawn) {
		t.Fatalf("unexpected value: %+v", card)
	}
}

func TestUnknownEnumWireValueIsContractViolation(t *testing.T) {
	c, err := New(Card{}, []any{Suit(0)}, Options{Version: amf.Version3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	reg := c.registry
	desc, err := reg.ByAlias("Card")
	if err != nil {
		t.Fatalf("ByAlias: %v", err)
	}
	v := amf.NewObject(
		&amf.Trait{Alias: "Card", Members: []string{"rank", "suit", "drawn"}},
		[]string{"rank", "suit", "drawn"},
		map[string]*amf.Value{
			"rank":  amf.NewString("Joker"),
			"suit":  amf.NewInt(99),
			"drawn": amf.NewDate(0),
		},
	)
	if _, err := c.binder.Decode(v, desc); err == nil {
		t.Fatalf("expected contract violation for unknown enum value")
	}
}

func TestDynamicCatchAllRoundTrip(t *testing.T) {
	c, err := New(Profile{}, nil, Options{Version: amf.Version3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	in := Profile{Name: "ari", Extra: map[string]any{"age": int32(30)}}
	var buf bytes.Buffer
	if err := c.Encode(in, &buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := c.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	p := got.(Profile)
	if p.Name != "ari" || p.Extra["age"] != int32(30) {
		t.Fatalf("unexpected value: %+v", p)
	}
}

func TestUnregisteredTypeOnEncode(t *testing.T) {
	c, err := New(Point{}, nil, Options{Version: amf.Version3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var buf bytes.Buffer
	if err := c.Encode(Profile{Name: "x"}, &buf); err == nil {
		t.Fatalf("expected unregistered type error")
	}
}

func TestUnknownAliasOnDecode(t *testing.T) {
	c, err := New(Point{}, nil, Options{Version: amf.Version3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sess := amf.NewSession("t", amf.Version3)
	var buf bytes.Buffer
	other := amf.NewObject(&amf.Trait{Alias: "NotRegistered", Members: []string{"a"}},
		[]string{"a"}, map[string]*amf.Value{"a": amf.NewInt(1)})
	if err := amf.EncodeAMF3(&buf, other, sess, 64); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	if _, err := c.Decode(&buf); err == nil {
		t.Fatalf("expected unknown type alias error")
	}
}

func TestAnonymousObjectDecodesToMap(t *testing.T) {
	c, err := New(Point{}, nil, Options{Version: amf.Version3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sess := amf.NewSession("t", amf.Version3)
	var buf bytes.Buffer
	anon := amf.NewObject(&amf.Trait{Dynamic: true}, []string{"k"}, map[string]*amf.Value{"k": amf.NewString("v")})
	if err := amf.EncodeAMF3(&buf, anon, sess, 64); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	got, err := c.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	m, ok := got.(map[string]any)
	if !ok || m["k"] != "v" {
		t.Fatalf("unexpected value: %#v", got)
	}
}

func TestIsStartMarker(t *testing.T) {
	c, err := New(Point{}, nil, Options{Version: amf.Version3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := bufio.NewReader(bytes.NewReader([]byte{0x04, 0x7F}))
	ok, err := c.IsStartMarker(r)
	if err != nil || !ok {
		t.Fatalf("expected known marker, got ok=%v err=%v", ok, err)
	}

	empty := bufio.NewReader(bytes.NewReader(nil))
	ok, err = c.IsStartMarker(empty)
	if err != nil || ok {
		t.Fatalf("expected false/nil on empty source, got ok=%v err=%v", ok, err)
	}
}
