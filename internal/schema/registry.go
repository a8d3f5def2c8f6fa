// Package schema implements the Schema Registry (§4.A): it binds user
// record and enum types to wire aliases, computes ordered member lists
// once, and caches the resulting descriptors for the lifetime of a Codec.
package schema

import (
	"fmt"
	"reflect"

	lru "github.com/hashicorp/golang-lru"
	"github.com/go-playground/validator/v10"

	"github.com/alxayo/go-amf/internal/errors"
)

// Kind classifies a registered type (§3 "Schema descriptor").
type Kind uint8

const (
	KindRecord Kind = iota
	KindEnum
)

// Enumer is implemented by a user type that registers as an integer-wire
// enum (§9 "Enum as integer"). AMFEnumValues returns the constant-name to
// wire-value mapping.
type Enumer interface {
	AMFEnumValues() map[string]int32
}

// Aliaser lets a user type declare a wire alias distinct from its
// programmatic name (§3 "Alias").
type Aliaser interface {
	AMFAlias() string
}

// Member describes one record field: its wire name and the reflect path
// used by the Object Binder to read/write it.
type Member struct {
	Name       string
	FieldIndex []int
	FieldType  reflect.Type
}

// Descriptor is the cached, immutable per-type schema entry computed once
// at Registry construction (§4.A).
type Descriptor struct {
	Alias      string
	Kind       Kind
	Type       reflect.Type
	Members    []Member
	EnumValues map[string]int32
	EnumNames  map[int32]string
}

// Registry binds user types to wire aliases and is immutable after
// construction (§3 "Lifecycles"), making it freely shareable across
// concurrent Codec calls (§5).
type Registry struct {
	byAlias map[string]*Descriptor
	cache   *lru.Cache
}

// recordValidation and enumValidation are construction-time checks applied
// via go-playground/validator so a malformed registration fails fast with a
// field-level error instead of surfacing confusingly during encode/decode.
type recordValidation struct {
	Alias       string `validate:"required"`
	MemberCount int    `validate:"min=1"`
}

type enumValidation struct {
	Alias     string `validate:"required"`
	EnumCount int    `validate:"min=1"`
}

// Register builds a Registry from root plus every type in known. The
// per-type descriptor cache is sized exactly to len(known)+1 so it can
// never evict a registered type (§4.A).
func Register(root any, known ...any) (*Registry, error) {
	validate := validator.New()
	all := append([]any{root}, known...)

	cache, err := lru.New(len(all))
	if err != nil {
		return nil, errors.NewContractViolationError("registry", fmt.Sprintf("cache init: %v", err))
	}

	reg := &Registry{byAlias: make(map[string]*Descriptor, len(all)), cache: cache}
	for _, v := range all {
		desc, err := buildDescriptor(v)
		if err != nil {
			return nil, err
		}
		if err := validateDescriptor(validate, desc); err != nil {
			return nil, err
		}
		if existing, ok := reg.byAlias[desc.Alias]; ok {
			return nil, errors.NewContractViolationError("registry",
				fmt.Sprintf("alias %q registered by both %s and %s", desc.Alias, existing.Type, desc.Type))
		}
		reg.byAlias[desc.Alias] = desc
		reg.cache.Add(desc.Type, desc)
	}
	return reg, nil
}

func buildDescriptor(v any) (*Descriptor, error) {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return nil, errors.NewContractViolationError("schema", "nil type cannot be registered")
	}

	alias := t.Name()
	if a, ok := v.(Aliaser); ok {
		alias = a.AMFAlias()
	}

	if enumer, ok := v.(Enumer); ok {
		values := enumer.AMFEnumValues()
		names := make(map[int32]string, len(values))
		for name, wire := range values {
			names[wire] = name
		}
		return &Descriptor{Alias: alias, Kind: KindEnum, Type: t, EnumValues: values, EnumNames: names}, nil
	}

	if t.Kind() != reflect.Struct {
		return nil, errors.NewContractViolationError("schema", fmt.Sprintf("unsupported registrable kind: %s", t.Kind()))
	}

	var members []Member
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue // unexported, not a wire member
		}
		tag := f.Tag.Get("amf")
		if tag == "-" || tag == ",dynamic" {
			continue // "-" opts out; ",dynamic" is the catch-all, not an ordinary member
		}
		name := f.Name
		if tag != "" {
			name = tag
		}
		members = append(members, Member{Name: name, FieldIndex: f.Index, FieldType: f.Type})
	}
	return &Descriptor{Alias: alias, Kind: KindRecord, Type: t, Members: members}, nil
}

func validateDescriptor(validate *validator.Validate, d *Descriptor) error {
	var err error
	switch d.Kind {
	case KindRecord:
		err = validate.Struct(recordValidation{Alias: d.Alias, MemberCount: len(d.Members)})
	case KindEnum:
		err = validate.Struct(enumValidation{Alias: d.Alias, EnumCount: len(d.EnumValues)})
	}
	if err != nil {
		return errors.NewContractViolationError("schema."+d.Type.String(), err.Error())
	}
	return nil
}

// ByAlias resolves a decoded trait's class name to its descriptor (§4.A).
func (r *Registry) ByAlias(alias string) (*Descriptor, error) {
	d, ok := r.byAlias[alias]
	if !ok {
		return nil, errors.NewUnknownTypeAliasError(alias)
	}
	return d, nil
}

// ByType resolves a Go type to its descriptor, the encode-side counterpart
// of ByAlias (§4.A).
func (r *Registry) ByType(t reflect.Type) (*Descriptor, error) {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := r.cache.Get(t); ok {
		return cached.(*Descriptor), nil
	}
	return nil, errors.NewUnregisteredTypeError(t.String())
}

// HasDynamicCatchAll reports whether d's underlying struct declares a
// catch-all map field (tagged `amf:",dynamic"`) that absorbs decoded
// dynamic-trait extras the descriptor's Members don't account for (§4.G
// step 4).
func (d *Descriptor) HasDynamicCatchAll() (fieldIndex []int, ok bool) {
	if d.Kind != KindRecord {
		return nil, false
	}
	for i := 0; i < d.Type.NumField(); i++ {
		f := d.Type.Field(i)
		if f.Tag.Get("amf") == ",dynamic" && f.Type.Kind() == reflect.Map {
			return f.Index, true
		}
	}
	return nil, false
}
