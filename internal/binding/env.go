package binding

import (
	"context"
	"reflect"

	engine "github.com/hanpama/graphbind/internal/engine"
	reqdata "github.com/hanpama/graphbind/internal/reqdata"
)

// RequestContext is the per-invocation input to argument resolution. It is
// owned by one field resolution and discarded when the invocation completes.
type RequestContext struct {
	// Env is the engine's field-resolution environment.
	Env *engine.FieldInfo
	// Request carries transport-scoped data (headers, parameter map, cookies).
	Request *reqdata.Data
	// Args holds the named GraphQL argument values already produced by
	// scalar coercion.
	Args map[string]any
}

// FieldEnv is the framework's environment wrapper handed to handlers that
// declare an environment parameter. It combines the engine environment with
// request-scoped transport data.
type FieldEnv struct {
	Context context.Context
	Info    *engine.FieldInfo
	Request *reqdata.Data
	Args    map[string]any
}

// Argument returns a named GraphQL argument value, nil when absent.
func (e *FieldEnv) Argument(name string) any {
	return e.Args[name]
}

// Source returns the parent object value of the resolved field.
func (e *FieldEnv) Source() any {
	if e.Info == nil {
		return nil
	}
	return e.Info.Source
}

// Header returns the first value of a request header.
func (e *FieldEnv) Header(name string) string {
	vs := e.Request.HeaderValues(name)
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// Cookie resolves a cookie through the request's collaborator.
func (e *FieldEnv) Cookie(name string) (string, bool) {
	return e.Request.CookieValue(name)
}

var (
	envWrapperType = reflect.TypeOf((*FieldEnv)(nil))
	envNativeType  = reflect.TypeOf((*engine.FieldInfo)(nil))
)

// isEnvironmentType reports whether a declared parameter type is exactly one
// of the two injectable environment types.
func isEnvironmentType(t reflect.Type) bool {
	return t == envWrapperType || t == envNativeType
}
