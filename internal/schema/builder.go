package schema

import (
	"strconv"

	"github.com/vektah/gqlparser/v2/ast"
)

// Build converts a validated gqlparser schema into the runtime model.
func Build(src *ast.Schema) *Schema {
	out := &Schema{Types: make(map[string]*Type, len(src.Types))}
	if src.Query != nil {
		out.QueryType = src.Query.Name
	}
	if src.Mutation != nil {
		out.MutationType = src.Mutation.Name
	}
	if src.Subscription != nil {
		out.SubscriptionType = src.Subscription.Name
	}
	for name, def := range src.Types {
		out.Types[name] = buildType(def, src)
	}
	return out
}

func buildType(def *ast.Definition, src *ast.Schema) *Type {
	t := &Type{
		Name:        def.Name,
		Kind:        kindOf(def.Kind),
		Description: def.Description,
		Interfaces:  def.Interfaces,
	}
	switch def.Kind {
	case ast.Object, ast.Interface:
		for _, f := range def.Fields {
			t.Fields = append(t.Fields, buildField(f))
		}
	case ast.InputObject:
		for _, f := range def.Fields {
			t.InputFields = append(t.InputFields, &InputValue{
				Name:         f.Name,
				Description:  f.Description,
				Type:         TypeRefFromAST(f.Type),
				DefaultValue: constValue(f.DefaultValue),
			})
		}
	case ast.Enum:
		for _, v := range def.EnumValues {
			t.EnumValues = append(t.EnumValues, v.Name)
		}
	}
	if def.Kind == ast.Interface || def.Kind == ast.Union {
		for _, pt := range src.PossibleTypes[def.Name] {
			t.PossibleTypes = append(t.PossibleTypes, pt.Name)
		}
	}
	return t
}

func buildField(f *ast.FieldDefinition) *Field {
	out := &Field{
		Name:        f.Name,
		Description: f.Description,
		Type:        TypeRefFromAST(f.Type),
	}
	for _, a := range f.Arguments {
		out.Arguments = append(out.Arguments, &InputValue{
			Name:         a.Name,
			Description:  a.Description,
			Type:         TypeRefFromAST(a.Type),
			DefaultValue: constValue(a.DefaultValue),
		})
	}
	return out
}

func kindOf(k ast.DefinitionKind) TypeKind {
	switch k {
	case ast.Object:
		return TypeKindObject
	case ast.Interface:
		return TypeKindInterface
	case ast.Union:
		return TypeKindUnion
	case ast.Enum:
		return TypeKindEnum
	case ast.InputObject:
		return TypeKindInputObject
	default:
		return TypeKindScalar
	}
}

// TypeRefFromAST converts an AST type expression into a TypeRef.
func TypeRefFromAST(t *ast.Type) *TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		return NonNullType(TypeRefFromAST(&ast.Type{NamedType: t.NamedType, Elem: t.Elem}))
	}
	if t.NamedType != "" {
		return NamedType(t.NamedType)
	}
	return ListType(TypeRefFromAST(t.Elem))
}

// constValue converts a constant (variable-free) AST value into a Go value.
// Used for schema-declared argument and input-field defaults.
func constValue(v *ast.Value) any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case ast.IntValue:
		iv, _ := strconv.Atoi(v.Raw)
		return iv
	case ast.FloatValue:
		fv, _ := strconv.ParseFloat(v.Raw, 64)
		return fv
	case ast.StringValue, ast.BlockValue, ast.EnumValue:
		return v.Raw
	case ast.BooleanValue:
		return v.Raw == "true"
	case ast.NullValue:
		return nil
	case ast.ListValue:
		out := make([]any, len(v.Children))
		for i, c := range v.Children {
			out[i] = constValue(c.Value)
		}
		return out
	case ast.ObjectValue:
		m := make(map[string]any, len(v.Children))
		for _, c := range v.Children {
			m[c.Name] = constValue(c.Value)
		}
		return m
	default:
		return nil
	}
}
