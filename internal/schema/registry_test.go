package schema

import (
	"reflect"
	"testing"
)

type Point struct {
	X int32 `amf:"x"`
	Y int32 `amf:"y"`
}

type WithDynamic struct {
	Name  string         `amf:"name"`
	Extra map[string]any `amf:",dynamic"`
}

type Color int32

func (Color) AMFEnumValues() map[string]int32 {
	return map[string]int32{"Red": 0, "Green": 1, "Blue": 2}
}

type emptyRecord struct{}

// aliasedAsPoint deliberately collides with Point's default alias.
type aliasedAsPoint struct {
	Z int32 `amf:"z"`
}

func (aliasedAsPoint) AMFAlias() string { return "Point" }

func TestRegisterAndLookupByAlias(t *testing.T) {
	reg, err := Register(Point{})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	d, err := reg.ByAlias("Point")
	if err != nil {
		t.Fatalf("ByAlias: %v", err)
	}
	if len(d.Members) != 2 || d.Members[0].Name != "x" || d.Members[1].Name != "y" {
		t.Fatalf("unexpected members: %+v", d.Members)
	}
}

func TestRegisterAndLookupByType(t *testing.T) {
	reg, err := Register(Point{})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	d, err := reg.ByType(reflect.TypeOf(Point{}))
	if err != nil {
		t.Fatalf("ByType: %v", err)
	}
	if d.Alias != "Point" {
		t.Fatalf("unexpected alias: %s", d.Alias)
	}
}

func TestUnknownAliasReturnsError(t *testing.T) {
	reg, err := Register(Point{})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := reg.ByAlias("DoesNotExist"); err == nil {
		t.Fatalf("expected error for unknown alias")
	}
}

func TestUnregisteredTypeReturnsError(t *testing.T) {
	reg, err := Register(Point{})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := reg.ByType(reflect.TypeOf(WithDynamic{})); err == nil {
		t.Fatalf("expected error for unregistered type")
	}
}

func TestEnumRegistration(t *testing.T) {
	reg, err := Register(Color(0))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	d, err := reg.ByAlias("Color")
	if err != nil {
		t.Fatalf("ByAlias: %v", err)
	}
	if d.Kind != KindEnum || d.EnumValues["Blue"] != 2 || d.EnumNames[1] != "Green" {
		t.Fatalf("unexpected enum descriptor: %+v", d)
	}
}

func TestDynamicCatchAllDetection(t *testing.T) {
	reg, err := Register(WithDynamic{})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	d, err := reg.ByAlias("WithDynamic")
	if err != nil {
		t.Fatalf("ByAlias: %v", err)
	}
	if _, ok := d.HasDynamicCatchAll(); !ok {
		t.Fatalf("expected dynamic catch-all field to be detected")
	}
}

func TestEmptyRecordFailsValidation(t *testing.T) {
	if _, err := Register(emptyRecord{}); err == nil {
		t.Fatalf("expected validation error for a record with zero members")
	}
}

func TestDuplicateAliasFailsRegistration(t *testing.T) {
	if _, err := Register(Point{}, aliasedAsPoint{}); err == nil {
		t.Fatalf("expected registration error for two types sharing one alias")
	}
}
