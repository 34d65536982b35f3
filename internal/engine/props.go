package engine

import (
	"reflect"
	"strings"
)

// defaultResolve reads a field value directly off the parent object when no
// data fetcher is registered: a map lookup, or an exported struct field
// matched by name, graphql/json tag, or case-insensitively. Missing
// properties resolve to nil.
func defaultResolve(source any, fieldName string) any {
	if source == nil {
		return nil
	}
	if m, ok := source.(map[string]any); ok {
		return m[fieldName]
	}

	rv := reflect.ValueOf(source)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Name == fieldName || structTagName(f) == fieldName {
			return rv.Field(i).Interface()
		}
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.IsExported() && strings.EqualFold(f.Name, fieldName) {
			return rv.Field(i).Interface()
		}
	}
	return nil
}

func structTagName(f reflect.StructField) string {
	for _, tag := range []string{"graphql", "json"} {
		if v, ok := f.Tag.Lookup(tag); ok {
			if i := strings.IndexByte(v, ','); i >= 0 {
				v = v[:i]
			}
			if v != "" && v != "-" {
				return v
			}
		}
	}
	return ""
}
