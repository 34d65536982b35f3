// Package eventbus is a small in-process dispatcher decoupling the serving
// path from observability subscribers.
package eventbus

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"
)

// Handler processes events of type T.
type Handler[T any] func(context.Context, T)

// Bus dispatches events to handlers keyed by the event's dynamic type.
// Subscription takes a lock; the publish path reads an immutable snapshot.
type Bus struct {
	mu       sync.Mutex
	snapshot atomic.Value // map[reflect.Type][]func(context.Context, any)
}

// New creates a new Bus.
func New() *Bus {
	b := &Bus{}
	b.snapshot.Store(map[reflect.Type][]func(context.Context, any){})
	return b
}

func (b *Bus) subscribe(t reflect.Type, h func(context.Context, any)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	old := b.snapshot.Load().(map[reflect.Type][]func(context.Context, any))
	next := make(map[reflect.Type][]func(context.Context, any), len(old)+1)
	for k, v := range old {
		next[k] = v
	}
	next[t] = append(append([]func(context.Context, any){}, old[t]...), h)
	b.snapshot.Store(next)
}

func (b *Bus) emit(ctx context.Context, e any) {
	if b == nil {
		return
	}
	snap := b.snapshot.Load().(map[reflect.Type][]func(context.Context, any))
	for _, fn := range snap[reflect.TypeOf(e)] {
		fn(ctx, e)
	}
}

var global atomic.Pointer[Bus]

// Use sets the global bus. Passing nil disables event publishing.
func Use(b *Bus) { global.Store(b) }

// Subscribe registers h with the global bus. Without a bus it does nothing.
func Subscribe[T any](h Handler[T]) {
	b := global.Load()
	if b == nil {
		return
	}
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.subscribe(t, func(ctx context.Context, v any) { h(ctx, v.(T)) })
}

// Publish sends e through the global bus.
func Publish[T any](ctx context.Context, e T) {
	if b := global.Load(); b != nil {
		b.emit(ctx, e)
	}
}
