// Package binding locates the registered data fetcher for a field
// resolution, resolves each declared handler parameter from its binding
// source, coerces values into the declared Go types, and performs the
// invocation itself, synchronously or through a future.Runner.
package binding

import (
	"reflect"
)

// BindingKind identifies the single source a parameter is bound from.
// The kind is enumerated once at registration; invocation only switches on it.
type BindingKind int

const (
	// BindInput delegates a named GraphQL argument to the input coercer.
	BindInput BindingKind = iota
	// BindHeader reads the value from the request headers.
	BindHeader
	// BindQuery reads the value from the web request's parameter map.
	BindQuery
	// BindCookie reads the value through the cookie-resolution collaborator.
	BindCookie
	// BindArgumentName matches the parameter's own name against the
	// request-scoped GraphQL argument set.
	BindArgumentName
	// BindEnvironment injects the field-resolution environment object.
	BindEnvironment
	// BindUnbound has no source; the parameter is bound to its zero value.
	BindUnbound
)

func (k BindingKind) String() string {
	switch k {
	case BindInput:
		return "input argument"
	case BindHeader:
		return "header"
	case BindQuery:
		return "query parameter"
	case BindCookie:
		return "cookie"
	case BindArgumentName:
		return "argument name"
	case BindEnvironment:
		return "environment"
	default:
		return "unbound"
	}
}

// Marker declares a binding source on a parameter. An empty Name defers to
// the parameter's declared name.
type Marker struct {
	Name string
}

// Param is the registration-facing parameter declaration. Several source
// markers may be present at once; normalization picks exactly one by the
// fixed priority input > header > query > cookie > argument name >
// environment > unbound.
type Param struct {
	// Name is the declared parameter name. Parameters registered without a
	// name keep the empty positional name and name-dependent sources degrade
	// to "no match" instead of failing.
	Name string

	InputArg *Marker
	Header   *Marker
	Query    *Marker
	Cookie   *Marker

	// Required makes an absent header/query/cookie value a hard failure when
	// no fallback is declared.
	Required bool
	// Fallback is the declared default. nil means no default.
	Fallback *string
}

// Named starts a parameter declaration.
func Named(name string) Param { return Param{Name: name} }

// Anonymous starts a parameter declaration with no discoverable name.
func Anonymous() Param { return Param{} }

// FromInput marks the parameter as an explicit input argument. name overrides
// the parameter name when non-empty.
func (p Param) FromInput(name string) Param {
	p.InputArg = &Marker{Name: name}
	return p
}

// FromHeader marks the parameter as header-bound.
func (p Param) FromHeader(name string) Param {
	p.Header = &Marker{Name: name}
	return p
}

// FromQuery marks the parameter as query-parameter-bound.
func (p Param) FromQuery(name string) Param {
	p.Query = &Marker{Name: name}
	return p
}

// FromCookie marks the parameter as cookie-bound.
func (p Param) FromCookie(name string) Param {
	p.Cookie = &Marker{Name: name}
	return p
}

// Require marks the binding as required.
func (p Param) Require() Param {
	p.Required = true
	return p
}

// WithDefault declares a default used when the source has no value.
func (p Param) WithDefault(v string) Param {
	p.Fallback = &v
	return p
}

// ParamSpec is one row of a descriptor's precomputed binding table.
type ParamSpec struct {
	Index int
	Name  string
	Type  reflect.Type

	Kind     BindingKind
	BindName string
	Required bool
	Fallback *string

	// Optional is true for pointer-typed parameters. Computed once here so
	// invocation never re-inspects the type.
	Optional bool
}

// normalize derives the single binding for a declared parameter. index is the
// position within the bound (non-context) parameter list; typ is the declared
// Go type.
func normalize(p Param, index int, typ reflect.Type) ParamSpec {
	spec := ParamSpec{
		Index:    index,
		Name:     p.Name,
		Type:     typ,
		Required: p.Required,
		Fallback: p.Fallback,
		Optional: typ.Kind() == reflect.Pointer,
	}
	switch {
	case p.InputArg != nil:
		spec.Kind = BindInput
		spec.BindName = nameOr(p.InputArg.Name, p.Name)
	case p.Header != nil:
		spec.Kind = BindHeader
		spec.BindName = nameOr(p.Header.Name, p.Name)
	case p.Query != nil:
		spec.Kind = BindQuery
		spec.BindName = nameOr(p.Query.Name, p.Name)
	case p.Cookie != nil:
		spec.Kind = BindCookie
		spec.BindName = nameOr(p.Cookie.Name, p.Name)
	case p.Name != "":
		// Argument-by-name first; environment injection and the unbound
		// fallback are decided per invocation when the argument set has no
		// matching entry.
		spec.Kind = BindArgumentName
		spec.BindName = p.Name
	case isEnvironmentType(typ):
		spec.Kind = BindEnvironment
	default:
		spec.Kind = BindUnbound
	}
	return spec
}

func nameOr(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}
