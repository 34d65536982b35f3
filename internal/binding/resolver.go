package binding

import (
	"context"
	"reflect"
	"strings"

	"go.uber.org/zap"

	coerce "github.com/hanpama/graphbind/internal/coerce"
	future "github.com/hanpama/graphbind/internal/future"
	reqdata "github.com/hanpama/graphbind/internal/reqdata"
)

// Resolver produces the ordered argument list for one handler invocation and
// dispatches the call. A Resolver holds no per-invocation state and is safe
// for concurrent use across independent RequestContexts.
type Resolver struct {
	coercer *coerce.Coercer
	logger  *zap.Logger
	runner  future.Runner
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCoercer replaces the input coercer.
func WithCoercer(c *coerce.Coercer) Option {
	return func(r *Resolver) { r.coercer = c }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithRunner sets the runner used for async dispatch.
func WithRunner(rn future.Runner) Option {
	return func(r *Resolver) { r.runner = rn }
}

// NewResolver creates a Resolver with the default coercer, a no-op logger and
// a goroutine-per-task runner.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{coercer: coerce.Default, logger: zap.NewNop(), runner: future.GoRunner{}}
	for _, f := range opts {
		f(r)
	}
	return r
}

// Invoke binds arguments in declaration order and invokes the handler.
// Synchronous handlers run on the calling goroutine and return their value or
// error directly. Asynchronous handlers are submitted to the runner and the
// returned value is a *future.Handle resolving to the handler's outcome; the
// caller is never blocked.
func (r *Resolver) Invoke(ctx context.Context, d *HandlerDescriptor, rc *RequestContext) (any, error) {
	args, err := r.resolveArgs(ctx, d, rc)
	if err != nil {
		return nil, err
	}
	if d.Async {
		return r.runner.Submit(ctx, func(ctx context.Context) (any, error) {
			return d.call(ctx, args)
		}), nil
	}
	return d.call(ctx, args)
}

// resolveArgs binds every parameter of the descriptor. Binding never
// suspends; only the invocation itself may.
func (r *Resolver) resolveArgs(ctx context.Context, d *HandlerDescriptor, rc *RequestContext) ([]reflect.Value, error) {
	out := make([]reflect.Value, len(d.Params))
	for i := range d.Params {
		spec := &d.Params[i]
		v, err := r.resolveParam(ctx, d, spec, rc)
		if err != nil {
			return nil, err
		}
		if v == nil {
			out[i] = reflect.Zero(spec.Type)
		} else {
			out[i] = reflect.ValueOf(v)
		}
	}
	return out, nil
}

func (r *Resolver) resolveParam(ctx context.Context, d *HandlerDescriptor, spec *ParamSpec, rc *RequestContext) (any, error) {
	switch spec.Kind {
	case BindInput:
		return r.coercer.Convert(rc.Args[spec.BindName], spec.Type)

	case BindHeader:
		return r.resolveStringSource(spec, rc.Request.HeaderValues(spec.BindName))

	case BindQuery:
		if rc.Request != nil && rc.Request.Transport == reqdata.TransportReactive {
			r.logger.Warn("query parameter binding is unsupported on a reactive transport; binding absent value",
				zap.String("object", d.Object),
				zap.String("field", d.Field),
				zap.String("parameter", spec.Name))
			return r.coercer.Convert(nil, spec.Type)
		}
		return r.resolveStringSource(spec, rc.Request.ParamValues(spec.BindName))

	case BindCookie:
		if v, ok := rc.Request.CookieValue(spec.BindName); ok {
			return r.coercer.Convert(v, spec.Type)
		}
		if spec.Fallback != nil {
			return r.coercer.Convert(*spec.Fallback, spec.Type)
		}
		if spec.Required {
			return nil, &MissingCookieError{Name: spec.BindName}
		}
		return r.coercer.Convert(nil, spec.Type)

	case BindArgumentName:
		if raw, ok := rc.Args[spec.BindName]; ok {
			return r.coercer.Convert(raw, spec.Type)
		}
		if isEnvironmentType(spec.Type) {
			return r.environment(ctx, spec, rc), nil
		}
		r.unboundDiagnostic(d, spec)
		return nil, nil

	case BindEnvironment:
		return r.environment(ctx, spec, rc), nil

	default:
		r.unboundDiagnostic(d, spec)
		return nil, nil
	}
}

// resolveStringSource implements the shared value/default/required/list
// handling for header and query-parameter bindings.
func (r *Resolver) resolveStringSource(spec *ParamSpec, values []string) (any, error) {
	if len(values) > 0 {
		if acceptsList(spec.Type) {
			return r.coercer.Convert(values, spec.Type)
		}
		if len(values) == 1 {
			return r.coercer.Convert(values[0], spec.Type)
		}
		return r.coercer.Convert(strings.Join(values, ","), spec.Type)
	}
	if spec.Fallback != nil {
		return r.coercer.Convert(*spec.Fallback, spec.Type)
	}
	if spec.Required {
		return nil, &MissingInputError{Kind: spec.Kind, Name: spec.BindName}
	}
	return r.coercer.Convert(nil, spec.Type)
}

func (r *Resolver) environment(ctx context.Context, spec *ParamSpec, rc *RequestContext) any {
	if spec.Type == envNativeType {
		return rc.Env
	}
	return &FieldEnv{Context: ctx, Info: rc.Env, Request: rc.Request, Args: rc.Args}
}

// unboundDiagnostic logs a parameter that matched no source. The zero value
// is bound instead; if the handler cannot accept it, the invocation fails on
// its own terms and that failure propagates normally.
func (r *Resolver) unboundDiagnostic(d *HandlerDescriptor, spec *ParamSpec) {
	r.logger.Warn("no binding source matched parameter; binding zero value",
		zap.String("object", d.Object),
		zap.String("field", d.Field),
		zap.String("parameter", spec.Name),
		zap.Int("index", spec.Index))
}

// acceptsList reports whether the declared type can take a multi-valued
// source directly, looking through one optional pointer layer.
func acceptsList(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Slice || t.Kind() == reflect.Array
}
