// Package registry holds the data-fetcher registry: it builds immutable
// handler descriptors at startup and serves them to the engine as a
// FetcherSource. Registration happens before serving; afterwards the registry
// is read-only and safe for concurrent field resolutions.
package registry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	binding "github.com/hanpama/graphbind/internal/binding"
	coerce "github.com/hanpama/graphbind/internal/coerce"
	engine "github.com/hanpama/graphbind/internal/engine"
	eventbus "github.com/hanpama/graphbind/internal/eventbus"
	events "github.com/hanpama/graphbind/internal/events"
	future "github.com/hanpama/graphbind/internal/future"
	reqdata "github.com/hanpama/graphbind/internal/reqdata"
)

// TypeResolver maps a runtime value of an abstract GraphQL type to its
// concrete object type name.
type TypeResolver func(value any) (string, bool)

// Registry maps "Object.field" keys to handler descriptors and dispatches
// field resolutions through the argument resolver.
type Registry struct {
	resolver      *binding.Resolver
	fetchers      map[string]*binding.HandlerDescriptor
	typeResolvers map[string]TypeResolver
}

// Option configures the Registry's resolver.
type Option func(*options)

type options struct {
	resolverOpts []binding.Option
}

// WithLogger sets the diagnostic logger for argument resolution.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.resolverOpts = append(o.resolverOpts, binding.WithLogger(l)) }
}

// WithRunner sets the runner for asynchronous handler dispatch.
func WithRunner(r future.Runner) Option {
	return func(o *options) { o.resolverOpts = append(o.resolverOpts, binding.WithRunner(r)) }
}

// WithCoercer replaces the input coercer, e.g. to install a custom input
// object mapper.
func WithCoercer(c *coerce.Coercer) Option {
	return func(o *options) { o.resolverOpts = append(o.resolverOpts, binding.WithCoercer(c)) }
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	var o options
	for _, f := range opts {
		f(&o)
	}
	return &Registry{
		resolver:      binding.NewResolver(o.resolverOpts...),
		fetchers:      make(map[string]*binding.HandlerDescriptor),
		typeResolvers: make(map[string]TypeResolver),
	}
}

// RegisterOption configures one handler registration.
type RegisterOption func(*registration)

type registration struct {
	params []binding.Param
	async  bool
}

// WithParams declares the binding table for the handler's bound parameters,
// in declaration order.
func WithParams(params ...binding.Param) RegisterOption {
	return func(r *registration) { r.params = params }
}

// Async dispatches the handler through the runner; the engine receives a
// pending-result handle instead of a value.
func Async() RegisterOption {
	return func(r *registration) { r.async = true }
}

// Register builds and stores the descriptor for one data fetcher. It fails
// when the handler signature and binding table disagree, or when the field is
// already registered. Not safe to call concurrently with serving.
func (r *Registry) Register(object, field string, handler any, opts ...RegisterOption) error {
	var reg registration
	for _, f := range opts {
		f(&reg)
	}
	key := fetcherKey(object, field)
	if _, exists := r.fetchers[key]; exists {
		return fmt.Errorf("registry: data fetcher for %s already registered", key)
	}
	d, err := binding.NewDescriptor(object, field, handler, reg.params, reg.async)
	if err != nil {
		return err
	}
	r.fetchers[key] = d
	return nil
}

// MustRegister is Register, panicking on error. Intended for startup wiring.
func (r *Registry) MustRegister(object, field string, handler any, opts ...RegisterOption) {
	if err := r.Register(object, field, handler, opts...); err != nil {
		panic(err)
	}
}

// RegisterTypeResolver installs a concrete-type resolver for an abstract
// (interface or union) type.
func (r *Registry) RegisterTypeResolver(abstractType string, fn TypeResolver) {
	r.typeResolvers[abstractType] = fn
}

// Descriptor returns the descriptor registered for a field, nil when absent.
func (r *Registry) Descriptor(object, field string) *binding.HandlerDescriptor {
	return r.fetchers[fetcherKey(object, field)]
}

// HasFetcher implements engine.FetcherSource.
func (r *Registry) HasFetcher(object, field string) bool {
	_, ok := r.fetchers[fetcherKey(object, field)]
	return ok
}

// Fetch implements engine.FetcherSource: it binds arguments for the
// registered handler and invokes it. Asynchronous handlers come back as a
// *future.Handle without blocking.
func (r *Registry) Fetch(ctx context.Context, info *engine.FieldInfo, req *reqdata.Data) (any, error) {
	d := r.fetchers[fetcherKey(info.ObjectType, info.FieldName)]
	if d == nil {
		return nil, fmt.Errorf("registry: no data fetcher registered for %s.%s", info.ObjectType, info.FieldName)
	}

	rc := &binding.RequestContext{Env: info, Request: req, Args: info.Args}

	start := time.Now()
	eventbus.Publish(ctx, events.FetchStart{ObjectType: info.ObjectType, Field: info.FieldName, Async: d.Async})
	value, err := r.resolver.Invoke(ctx, d, rc)
	eventbus.Publish(ctx, events.FetchFinish{
		ObjectType: info.ObjectType,
		Field:      info.FieldName,
		Async:      d.Async,
		Err:        err,
		Duration:   time.Since(start),
	})
	return value, err
}

// ResolveType implements engine.FetcherSource.
func (r *Registry) ResolveType(ctx context.Context, abstractType string, value any) (string, bool) {
	if fn, ok := r.typeResolvers[abstractType]; ok {
		return fn(value)
	}
	return "", false
}

func fetcherKey(object, field string) string { return object + "." + field }
