// Package introspection layers the GraphQL introspection system (__schema,
// __type and the __-prefixed meta types) over any FetcherSource. Queries
// against introspection fields are answered from the schema model; everything
// else is delegated to the wrapped source.
package introspection

import (
	"context"
	"fmt"
	"sort"
	"strings"

	engine "github.com/hanpama/graphbind/internal/engine"
	reqdata "github.com/hanpama/graphbind/internal/reqdata"
	schema "github.com/hanpama/graphbind/internal/schema"
)

// Wrapper holds a source and schema extended with introspection support.
type Wrapper struct {
	Source engine.FetcherSource
	Schema *schema.Schema
}

// Wrap extends the schema with introspection types and returns a source that
// answers introspection fields itself, delegating all others to base.
func Wrap(base engine.FetcherSource, sch *schema.Schema) *Wrapper {
	extended := extendSchema(sch)
	return &Wrapper{
		Source: &source{base: base, schema: sch, queryType: sch.QueryType},
		Schema: extended,
	}
}

type source struct {
	base      engine.FetcherSource
	schema    *schema.Schema // original schema, served to introspection queries
	queryType string
}

// enumValue adapts a bare enum value name into the __EnumValue shape.
type enumValue struct {
	Name string
}

func (s *source) HasFetcher(objectType, field string) bool {
	if strings.HasPrefix(objectType, "__") {
		return true
	}
	if objectType == s.queryType && (field == "__schema" || field == "__type") {
		return true
	}
	return s.base.HasFetcher(objectType, field)
}

func (s *source) Fetch(ctx context.Context, info *engine.FieldInfo, req *reqdata.Data) (any, error) {
	if info.ObjectType == s.queryType {
		switch info.FieldName {
		case "__schema":
			return s.schema, nil
		case "__type":
			name, _ := info.Args["name"].(string)
			if name == "" {
				return nil, nil
			}
			return s.schema.Types[name], nil
		}
	}

	switch info.ObjectType {
	case "__Schema":
		return resolveSchemaField(s.schema, info.FieldName), nil
	case "__Type":
		switch src := info.Source.(type) {
		case *schema.Type:
			return resolveTypeField(s.schema, src, info.FieldName), nil
		case *schema.TypeRef:
			return resolveTypeRefField(s.schema, src, info.FieldName), nil
		}
		return nil, nil
	case "__Field":
		return resolveFieldField(info.Source.(*schema.Field), info.FieldName), nil
	case "__InputValue":
		return resolveInputValueField(info.Source.(*schema.InputValue), info.FieldName), nil
	case "__EnumValue":
		return resolveEnumValueField(info.Source.(enumValue), info.FieldName), nil
	case "__Directive":
		// The schema model carries no directive definitions; __Schema.directives
		// is always empty so no __Directive value ever reaches here.
		return nil, nil
	}

	return s.base.Fetch(ctx, info, req)
}

func (s *source) ResolveType(ctx context.Context, abstractType string, value any) (string, bool) {
	return s.base.ResolveType(ctx, abstractType, value)
}

// --- field resolvers ---

func resolveSchemaField(sch *schema.Schema, field string) any {
	switch field {
	case "types":
		out := make([]*schema.Type, 0, len(sch.Types))
		for _, t := range sch.Types {
			out = append(out, t)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out
	case "queryType":
		return sch.GetQueryType()
	case "mutationType":
		return sch.GetMutationType()
	case "subscriptionType":
		return sch.GetSubscriptionType()
	case "directives":
		return []any{}
	case "description":
		return nil
	}
	return nil
}

func resolveTypeField(sch *schema.Schema, t *schema.Type, field string) any {
	switch field {
	case "kind":
		return string(t.Kind)
	case "name":
		return t.Name
	case "description":
		return descriptionOrNil(t.Description)
	case "fields":
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			return nil
		}
		out := make([]*schema.Field, len(t.Fields))
		copy(out, t.Fields)
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out
	case "interfaces":
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			return nil
		}
		return namedTypes(sch, t.Interfaces)
	case "possibleTypes":
		if t.Kind != schema.TypeKindInterface && t.Kind != schema.TypeKindUnion {
			return nil
		}
		return namedTypes(sch, t.PossibleTypes)
	case "enumValues":
		if t.Kind != schema.TypeKindEnum {
			return nil
		}
		out := make([]enumValue, len(t.EnumValues))
		for i, name := range t.EnumValues {
			out[i] = enumValue{Name: name}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out
	case "inputFields":
		if t.Kind != schema.TypeKindInputObject {
			return nil
		}
		out := make([]*schema.InputValue, len(t.InputFields))
		copy(out, t.InputFields)
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out
	case "ofType":
		// Named types never expose ofType; wrappers are TypeRef nodes.
		return nil
	case "specifiedByURL":
		return nil
	}
	return nil
}

func resolveTypeRefField(sch *schema.Schema, tr *schema.TypeRef, field string) any {
	switch field {
	case "kind":
		switch tr.Kind {
		case schema.TypeRefKindList:
			return "LIST"
		case schema.TypeRefKindNonNull:
			return "NON_NULL"
		default:
			if def := sch.Types[tr.Named]; def != nil {
				return string(def.Kind)
			}
			return string(schema.TypeKindScalar)
		}
	case "name":
		if tr.Kind == schema.TypeRefKindNamed {
			return tr.Named
		}
		return nil
	case "ofType":
		if tr.Kind == schema.TypeRefKindList || tr.Kind == schema.TypeRefKindNonNull {
			return tr.OfType
		}
		return nil
	default:
		// Remaining __Type fields apply to the underlying named type.
		if def := sch.Types[tr.GetNamedType()]; def != nil {
			return resolveTypeField(sch, def, field)
		}
		return nil
	}
}

func resolveFieldField(f *schema.Field, field string) any {
	switch field {
	case "name":
		return f.Name
	case "description":
		return descriptionOrNil(f.Description)
	case "args":
		out := make([]*schema.InputValue, len(f.Arguments))
		copy(out, f.Arguments)
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out
	case "type":
		return f.Type
	case "isDeprecated":
		return false
	case "deprecationReason":
		return nil
	}
	return nil
}

func resolveInputValueField(iv *schema.InputValue, field string) any {
	switch field {
	case "name":
		return iv.Name
	case "description":
		return descriptionOrNil(iv.Description)
	case "type":
		return iv.Type
	case "defaultValue":
		if iv.DefaultValue == nil {
			return nil
		}
		return fmt.Sprintf("%v", iv.DefaultValue)
	case "isDeprecated":
		return false
	case "deprecationReason":
		return nil
	}
	return nil
}

func resolveEnumValueField(ev enumValue, field string) any {
	switch field {
	case "name":
		return ev.Name
	case "description":
		return nil
	case "isDeprecated":
		return false
	case "deprecationReason":
		return nil
	}
	return nil
}

func namedTypes(sch *schema.Schema, names []string) []*schema.Type {
	out := make([]*schema.Type, 0, len(names))
	for _, name := range names {
		if def := sch.Types[name]; def != nil {
			out = append(out, def)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func descriptionOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
