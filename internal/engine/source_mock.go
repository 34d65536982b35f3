package engine

import (
	"context"
	"sync"

	future "github.com/hanpama/graphbind/internal/future"
	reqdata "github.com/hanpama/graphbind/internal/reqdata"
)

// MockFetcher resolves a single field; MockSource adapts it for tests.
type MockFetcher func(ctx context.Context, source any, args map[string]any) (any, error)

const (
	CallKindSync  = "sync"
	CallKindAsync = "async"
)

// NewMockValueFetcher returns a MockFetcher that always returns the provided value.
func NewMockValueFetcher(val any) MockFetcher {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		return val, nil
	}
}

// NewMockErrorFetcher returns a MockFetcher that always returns the provided error.
func NewMockErrorFetcher(err error) MockFetcher {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		return nil, err
	}
}

// Call records one fetch invocation in declaration order.
type Call struct {
	Kind       string
	ObjectType string
	Field      string
	Source     any
	Args       map[string]any
}

// MockSource implements FetcherSource with a fetcher registry and a call log.
// Fetchers registered as async are dispatched through a future runner and
// return pending-result handles, mirroring what the registry does.
type MockSource struct {
	mu       sync.Mutex
	fetchers map[string]MockFetcher
	async    map[string]bool
	calls    []Call
	runner   future.Runner

	typeResolver func(value any) (string, bool)
}

// NewMockSource creates a MockSource with the provided fetchers, keyed
// "ObjectType.Field".
func NewMockSource(fetchers map[string]MockFetcher) *MockSource {
	m := &MockSource{
		fetchers: make(map[string]MockFetcher, len(fetchers)),
		async:    make(map[string]bool),
		runner:   future.GoRunner{},
		typeResolver: func(value any) (string, bool) {
			return "", false
		},
	}
	for k, v := range fetchers {
		m.fetchers[k] = v
	}
	return m
}

// SetAsync marks a fetcher key as asynchronous.
func (m *MockSource) SetAsync(objectType, field string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.async[objectType+"."+field] = true
}

// SetTypeResolver overrides abstract type resolution.
func (m *MockSource) SetTypeResolver(f func(value any) (string, bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.typeResolver = f
}

// GetCalls returns a copy of the call log.
func (m *MockSource) GetCalls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockSource) HasFetcher(objectType, field string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.fetchers[objectType+"."+field]
	return ok
}

func (m *MockSource) Fetch(ctx context.Context, info *FieldInfo, req *reqdata.Data) (any, error) {
	key := info.ObjectType + "." + info.FieldName

	m.mu.Lock()
	f := m.fetchers[key]
	isAsync := m.async[key]
	kind := CallKindSync
	if isAsync {
		kind = CallKindAsync
	}
	m.calls = append(m.calls, Call{
		Kind:       kind,
		ObjectType: info.ObjectType,
		Field:      info.FieldName,
		Source:     info.Source,
		Args:       info.Args,
	})
	m.mu.Unlock()

	if f == nil {
		return nil, nil
	}
	if isAsync {
		source, args := info.Source, info.Args
		return m.runner.Submit(ctx, func(ctx context.Context) (any, error) {
			return f(ctx, source, args)
		}), nil
	}
	return f(ctx, info.Source, info.Args)
}

func (m *MockSource) ResolveType(ctx context.Context, abstractType string, value any) (string, bool) {
	m.mu.Lock()
	f := m.typeResolver
	m.mu.Unlock()
	return f(value)
}
