package codec

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/alxayo/go-amf/internal/amf"
	"github.com/alxayo/go-amf/internal/errors"
	"github.com/alxayo/go-amf/internal/logger"
	"github.com/alxayo/go-amf/internal/schema"
)

var timeType = reflect.TypeOf(time.Time{})
var enumerType = reflect.TypeOf((*schema.Enumer)(nil)).Elem()

// binder implements the Object Binder (§4.G): trait+property-bag to
// registered struct on decode, registered struct to trait+property-bag on
// encode.
type binder struct {
	registry *schema.Registry
}

func newBinder(reg *schema.Registry) *binder {
	return &binder{registry: reg}
}

// Decode binds a decoded KindObject value into a new instance of its
// registered type. v.Trait.Alias must already have a descriptor (callers
// resolve the alias before calling this, since an unknown alias should
// surface as UnknownTypeAliasError rather than being swallowed here).
func (b *binder) Decode(v *amf.Value, desc *schema.Descriptor) (any, error) {
	target := reflect.New(desc.Type)

	memberSet := make(map[string]schema.Member, len(desc.Members))
	for _, m := range desc.Members {
		memberSet[m.Name] = m
	}

	bag := make(map[string]any, len(v.FieldOrder))
	sealed := make(map[string]bool, len(v.Trait.Members))
	for _, name := range v.Trait.Members {
		sealed[name] = true
		if _, known := memberSet[name]; !known {
			continue // forward compatibility: unknown member silently dropped (§4.G step 3)
		}
		bag[name] = b.valueToGo(v.Fields[name])
	}

	if v.Trait.Dynamic {
		if catchAllIdx, ok := desc.HasDynamicCatchAll(); ok {
			extras := make(map[string]any)
			for _, name := range v.FieldOrder {
				if sealed[name] {
					continue
				}
				extras[name] = b.valueToGo(v.Fields[name])
			}
			if len(extras) > 0 {
				bag[desc.Type.FieldByIndex(catchAllIdx).Name] = extras
			}
		} else {
			for _, name := range v.FieldOrder {
				if !sealed[name] {
					logger.Warn("dropping dynamic-trait extra: no catch-all field", "alias", desc.Alias, "member", name)
				}
			}
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target.Interface(),
		WeaklyTypedInput: true,
		TagName:          "amf",
		DecodeHook:       b.decodeHook,
	})
	if err != nil {
		return nil, errors.NewIoError("binder.decoder", err)
	}
	if err := dec.Decode(bag); err != nil {
		return nil, errors.NewContractViolationError(desc.Alias, err.Error())
	}
	return target.Elem().Interface(), nil
}

// decodeHook enforces the coercion rules from §4.G step 3: a nil source
// (from a Null/Undefined wire value) is only acceptable into a
// nullable-capable target kind; a source carrying the enum wire-value
// int32 into a registered enum type must be a known constant.
func (b *binder) decodeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if data == nil {
		switch to.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan:
			return data, nil
		default:
			return nil, errors.NewContractViolationError(to.String(), "null into non-nullable field")
		}
	}
	if to.Implements(enumerType) || reflect.PointerTo(to).Implements(enumerType) {
		wire, ok := data.(int32)
		if !ok {
			return data, nil
		}
		desc, err := b.registry.ByType(to)
		if err == nil && desc.Kind == schema.KindEnum {
			if _, known := desc.EnumNames[wire]; !known {
				return nil, errors.NewContractViolationError(to.String(), fmt.Sprintf("unknown enum wire value %d", wire))
			}
		}
		return wire, nil
	}
	return data, nil
}

// valueToGo projects a decoded Value into the plain Go representation
// mapstructure decodes from: scalars as themselves, Date as time.Time,
// ByteArray as []byte, Array as a slice or map depending on which portion
// is populated, and Object as a map[string]any keyed by wire member name so
// mapstructure's own map-to-struct recursion handles nested records.
func (b *binder) valueToGo(v *amf.Value) any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case amf.KindNull, amf.KindUndefined:
		return nil
	case amf.KindBool:
		return v.Bool
	case amf.KindInt:
		return v.Int
	case amf.KindDouble:
		return v.Double
	case amf.KindString:
		return v.Str
	case amf.KindDate:
		return time.UnixMilli(int64(v.DateMS)).UTC()
	case amf.KindByteArray:
		return v.Bytes
	case amf.KindXmlDoc, amf.KindXml:
		return v.Str
	case amf.KindArray:
		if len(v.AssocKeys) > 0 {
			m := make(map[string]any, len(v.AssocKeys))
			for i, k := range v.AssocKeys {
				m[k] = b.valueToGo(v.AssocVals[i])
			}
			return m
		}
		out := make([]any, len(v.Array))
		for i, e := range v.Array {
			out[i] = b.valueToGo(e)
		}
		return out
	case amf.KindObject:
		m := make(map[string]any, len(v.FieldOrder))
		for _, name := range v.FieldOrder {
			m[name] = b.valueToGo(v.Fields[name])
		}
		return m
	default:
		return nil
	}
}

// Encode projects a registered Go value into an amf.Value via reflection,
// the encode-side counterpart of Decode (§4.G encode path). Trait
// reference-vs-inline is decided later by the AMF3 encoder's session trait
// table, not here; AMF0 has no trait table and always writes the alias.
func (b *binder) Encode(v any) (*amf.Value, error) {
	return b.encodeReflect(reflect.ValueOf(v))
}

func (b *binder) encodeReflect(rv reflect.Value) (*amf.Value, error) {
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return amf.NewNull(), nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Invalid:
		return amf.NewNull(), nil
	case reflect.Bool:
		return amf.NewBool(rv.Bool()), nil
	case reflect.String:
		return amf.NewString(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return amf.NewInt(int32(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return amf.NewInt(int32(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return amf.NewDouble(rv.Float()), nil
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			buf := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(buf), rv)
			return amf.NewByteArray(buf), nil
		}
		elems := make([]*amf.Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ev, err := b.encodeReflect(rv.Index(i))
			if err != nil {
				return nil, err
			}
			elems[i] = ev
		}
		return amf.NewArray(elems...), nil
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		vals := make([]*amf.Value, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			ev, err := b.encodeReflect(rv.MapIndex(k))
			if err != nil {
				return nil, err
			}
			keys = append(keys, fmt.Sprint(k.Interface()))
			vals = append(vals, ev)
		}
		return amf.NewEcmaArray(keys, vals), nil
	case reflect.Struct:
		if rv.Type() == timeType {
			return amf.NewDate(float64(rv.Interface().(time.Time).UnixMilli())), nil
		}
		return b.encodeStruct(rv)
	default:
		return nil, errors.NewUnsupportedError("binder: cannot encode kind " + rv.Kind().String())
	}
}

func (b *binder) encodeStruct(rv reflect.Value) (*amf.Value, error) {
	desc, err := b.registry.ByType(rv.Type())
	if err != nil {
		return nil, err
	}

	sealed := make([]string, 0, len(desc.Members))
	fields := make(map[string]*amf.Value, len(desc.Members))
	for _, m := range desc.Members {
		fv := rv.FieldByIndex(m.FieldIndex)
		ev, err := b.encodeReflect(fv)
		if err != nil {
			return nil, err
		}
		fields[m.Name] = ev
		sealed = append(sealed, m.Name)
	}

	order := append([]string(nil), sealed...)
	trait := &amf.Trait{Alias: desc.Alias, Members: sealed}

	if idx, ok := desc.HasDynamicCatchAll(); ok {
		mv := rv.FieldByIndex(idx)
		if mv.Kind() == reflect.Map && !mv.IsNil() {
			trait.Dynamic = true
			for _, k := range mv.MapKeys() {
				name := fmt.Sprint(k.Interface())
				ev, err := b.encodeReflect(mv.MapIndex(k))
				if err != nil {
					return nil, err
				}
				fields[name] = ev
				order = append(order, name)
			}
		}
	}

	return amf.NewObject(trait, order, fields), nil
}
