// Package coerce converts loosely-typed input values produced by GraphQL
// scalar resolution into concrete Go values for data-fetcher parameters.
//
// Source values are never raw wire data: scalars have already been resolved
// by the engine (numbers, strings, enums, time values). The coercer rebuilds
// structured targets from map/list shapes without round-tripping through a
// text format, so scalar representations survive unchanged.
package coerce

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Mapper converts a loosely-typed value into an instance of the target type.
// It is the extension point for nested input-object reconstruction: a custom
// Mapper may handle selected target types and call back into the default
// coercer for everything else. Guarding against unbounded mutual recursion
// between custom mappers is the integrator's responsibility.
type Mapper interface {
	Convert(value any, target reflect.Type) (any, error)
}

// Coercer is the default structural Mapper.
//
// A Coercer is stateless after construction and safe for concurrent use.
type Coercer struct {
	objectMapper Mapper
}

// Option configures a Coercer.
type Option func(*Coercer)

// WithObjectMapper installs a custom strategy for struct reconstruction.
// The coercer still handles optional unwrapping, lists, maps and scalars;
// only struct targets are delegated.
func WithObjectMapper(m Mapper) Option {
	return func(c *Coercer) { c.objectMapper = m }
}

// New creates a Coercer. Without options, struct targets are rebuilt
// field-by-field by the coercer itself.
func New(opts ...Option) *Coercer {
	c := &Coercer{}
	for _, f := range opts {
		f(c)
	}
	return c
}

// Default is a shared Coercer with the built-in struct strategy.
var Default = New()

// Convert coerces value into an instance of target.
//
// Pointer targets carry optional semantics: a nil source yields a typed nil
// pointer, anything else is converted against the element type and wrapped
// back. The pointer layer is unwrapped exactly once before structural
// conversion of the element.
func (c *Coercer) Convert(value any, target reflect.Type) (any, error) {
	if target == nil {
		return value, nil
	}

	// Fast path: the runtime type already satisfies the target. The value is
	// returned as-is, not copied.
	if value != nil && reflect.TypeOf(value).AssignableTo(target) {
		return value, nil
	}

	if target.Kind() == reflect.Pointer {
		if value == nil {
			return reflect.Zero(target).Interface(), nil
		}
		inner, err := c.Convert(value, target.Elem())
		if err != nil {
			return nil, err
		}
		out := reflect.New(target.Elem())
		out.Elem().Set(reflect.ValueOf(inner))
		return out.Interface(), nil
	}

	if value == nil {
		return reflect.Zero(target).Interface(), nil
	}

	switch target.Kind() {
	case reflect.Struct:
		if c.objectMapper != nil {
			return c.objectMapper.Convert(value, target)
		}
		return c.convertStruct(value, target)
	case reflect.Slice, reflect.Array:
		return c.convertList(value, target)
	case reflect.Map:
		return c.convertMap(value, target)
	case reflect.Interface:
		if target.NumMethod() == 0 {
			return value, nil
		}
		return nil, mismatch(value, target, "value does not implement interface")
	default:
		return convertScalar(value, target)
	}
}

// convertStruct rebuilds a struct from a map of field name to nested value.
// Unknown keys in the source are ignored.
func (c *Coercer) convertStruct(value any, target reflect.Type) (any, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, mismatch(value, target, "expected an input object")
	}
	out := reflect.New(target).Elem()
	for key, raw := range m {
		idx, found := fieldIndex(target, key)
		if !found {
			continue
		}
		field := target.Field(idx)
		fv, err := c.Convert(raw, field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		if fv == nil {
			continue
		}
		out.Field(idx).Set(reflect.ValueOf(fv))
	}
	return out.Interface(), nil
}

func (c *Coercer) convertList(value any, target reflect.Type) (any, error) {
	src := reflect.ValueOf(value)
	if src.Kind() != reflect.Slice && src.Kind() != reflect.Array {
		return nil, mismatch(value, target, "expected a list")
	}
	elem := target.Elem()
	n := src.Len()
	var out reflect.Value
	if target.Kind() == reflect.Array {
		if n != target.Len() {
			return nil, mismatch(value, target, fmt.Sprintf("expected %d elements, got %d", target.Len(), n))
		}
		out = reflect.New(target).Elem()
	} else {
		out = reflect.MakeSlice(target, n, n)
	}
	for i := 0; i < n; i++ {
		ev, err := c.Convert(src.Index(i).Interface(), elem)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		if ev != nil {
			out.Index(i).Set(reflect.ValueOf(ev))
		}
	}
	return out.Interface(), nil
}

func (c *Coercer) convertMap(value any, target reflect.Type) (any, error) {
	src := reflect.ValueOf(value)
	if src.Kind() != reflect.Map {
		return nil, mismatch(value, target, "expected a map")
	}
	out := reflect.MakeMapWithSize(target, src.Len())
	iter := src.MapRange()
	for iter.Next() {
		kv, err := c.Convert(iter.Key().Interface(), target.Key())
		if err != nil {
			return nil, fmt.Errorf("map key %v: %w", iter.Key().Interface(), err)
		}
		vv, err := c.Convert(iter.Value().Interface(), target.Elem())
		if err != nil {
			return nil, fmt.Errorf("map value for %v: %w", iter.Key().Interface(), err)
		}
		if vv == nil {
			out.SetMapIndex(reflect.ValueOf(kv), reflect.Zero(target.Elem()))
			continue
		}
		out.SetMapIndex(reflect.ValueOf(kv), reflect.ValueOf(vv))
	}
	return out.Interface(), nil
}

// fieldIndex matches a source key to a struct field: exact name first, then
// graphql/json tag, then case-insensitive name.
func fieldIndex(target reflect.Type, key string) (int, bool) {
	for i := 0; i < target.NumField(); i++ {
		f := target.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Name == key {
			return i, true
		}
		if tagName(f, "graphql") == key || tagName(f, "json") == key {
			return i, true
		}
	}
	for i := 0; i < target.NumField(); i++ {
		f := target.Field(i)
		if f.IsExported() && strings.EqualFold(f.Name, key) {
			return i, true
		}
	}
	return 0, false
}

func tagName(f reflect.StructField, tag string) string {
	v, ok := f.Tag.Lookup(tag)
	if !ok {
		return ""
	}
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return v
}

// convertScalar handles leaf targets: numeric widening between integer and
// float kinds, string-typed enums, and string parsing for values that arrive
// as text (headers, cookies, query parameters).
func convertScalar(value any, target reflect.Type) (any, error) {
	src := reflect.ValueOf(value)
	st := src.Type()

	switch {
	case isIntKind(target.Kind()):
		switch {
		case isIntKind(st.Kind()), isFloatKind(st.Kind()):
			return src.Convert(target).Interface(), nil
		case st.Kind() == reflect.String:
			if isUintKind(target.Kind()) {
				uv, err := strconv.ParseUint(src.String(), 10, target.Bits())
				if err != nil {
					return nil, mismatch(value, target, "not an integer in range")
				}
				return reflect.ValueOf(uv).Convert(target).Interface(), nil
			}
			iv, err := strconv.ParseInt(src.String(), 10, target.Bits())
			if err != nil {
				return nil, mismatch(value, target, "not an integer in range")
			}
			return reflect.ValueOf(iv).Convert(target).Interface(), nil
		}
	case isFloatKind(target.Kind()):
		switch {
		case isIntKind(st.Kind()), isFloatKind(st.Kind()):
			return src.Convert(target).Interface(), nil
		case st.Kind() == reflect.String:
			fv, err := strconv.ParseFloat(src.String(), target.Bits())
			if err != nil {
				return nil, mismatch(value, target, "not a number in range")
			}
			return reflect.ValueOf(fv).Convert(target).Interface(), nil
		}
	case target.Kind() == reflect.String:
		if st.Kind() == reflect.String {
			return src.Convert(target).Interface(), nil
		}
	case target.Kind() == reflect.Bool:
		switch st.Kind() {
		case reflect.Bool:
			return src.Convert(target).Interface(), nil
		case reflect.String:
			bv, err := strconv.ParseBool(src.String())
			if err != nil {
				return nil, mismatch(value, target, "not a boolean")
			}
			return bv, nil
		}
	}
	return nil, mismatch(value, target, "incompatible kinds")
}

func isIntKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isUintKind(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}
