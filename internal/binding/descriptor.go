package binding

import (
	"context"
	"fmt"
	"reflect"
	"runtime/debug"

	future "github.com/hanpama/graphbind/internal/future"
)

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

// HandlerDescriptor is the immutable record for one registered data fetcher:
// the handler function, its binding table and its dispatch mode. Descriptors
// are built once at registry build time and shared read-only across all
// concurrent invocations.
type HandlerDescriptor struct {
	Object string
	Field  string
	// Async handlers are dispatched through a future.Runner; the caller gets
	// a pending-result handle instead of a value.
	Async bool
	// Params is the binding table, one row per bound parameter in
	// declaration order.
	Params []ParamSpec

	fn         reflect.Value
	takesCtx   bool
	returnsErr bool
}

// NewDescriptor validates the handler signature and precomputes the binding
// table. Accepted signatures are
//
//	func([ctx context.Context,] p1 T1, ... pn Tn) R
//	func([ctx context.Context,] p1 T1, ... pn Tn) (R, error)
//
// with one Param declaration per bound (non-context) parameter.
func NewDescriptor(object, field string, handler any, params []Param, async bool) (*HandlerDescriptor, error) {
	fn := reflect.ValueOf(handler)
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, &SignatureError{Object: object, Field: field, Reason: "handler must be a function"}
	}
	t := fn.Type()
	if t.IsVariadic() {
		return nil, &SignatureError{Object: object, Field: field, Reason: "variadic handlers are not supported"}
	}

	d := &HandlerDescriptor{Object: object, Field: field, Async: async, fn: fn}

	switch t.NumOut() {
	case 1:
		if t.Out(0) == errType {
			return nil, &SignatureError{Object: object, Field: field, Reason: "handler must return a value before the error"}
		}
	case 2:
		if t.Out(1) != errType {
			return nil, &SignatureError{Object: object, Field: field, Reason: "second return value must be error"}
		}
		d.returnsErr = true
	default:
		return nil, &SignatureError{Object: object, Field: field, Reason: "handler must return (T) or (T, error)"}
	}

	first := 0
	if t.NumIn() > 0 && t.In(0) == ctxType {
		d.takesCtx = true
		first = 1
	}
	bound := t.NumIn() - first
	if bound != len(params) {
		return nil, &SignatureError{
			Object: object, Field: field,
			Reason: fmt.Sprintf("binding table declares %d parameters, handler takes %d", len(params), bound),
		}
	}

	d.Params = make([]ParamSpec, bound)
	for i := 0; i < bound; i++ {
		d.Params[i] = normalize(params[i], i, t.In(first+i))
	}
	return d, nil
}

// call invokes the handler with already-resolved arguments. A handler error
// is returned as-is so callers observe the original failure value; panics
// surface as *future.PanicError carrying the panic value.
func (d *HandlerDescriptor) call(ctx context.Context, args []reflect.Value) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &future.PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	in := make([]reflect.Value, 0, len(args)+1)
	if d.takesCtx {
		in = append(in, reflect.ValueOf(ctx))
	}
	in = append(in, args...)

	out := d.fn.Call(in)
	if d.returnsErr && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}
