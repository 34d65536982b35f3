package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	binding "github.com/hanpama/graphbind/internal/binding"
	engine "github.com/hanpama/graphbind/internal/engine"
	eventbus "github.com/hanpama/graphbind/internal/eventbus"
	events "github.com/hanpama/graphbind/internal/events"
	future "github.com/hanpama/graphbind/internal/future"
	reqdata "github.com/hanpama/graphbind/internal/reqdata"
)

func fieldInfo(object, field string, args map[string]any) *engine.FieldInfo {
	if args == nil {
		args = map[string]any{}
	}
	return &engine.FieldInfo{ObjectType: object, FieldName: field, Args: args}
}

func TestRegister_DuplicateFails(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("Query", "f", func() string { return "" }))
	err := r.Register("Query", "f", func() string { return "" })
	require.Error(t, err)
}

func TestRegister_InvalidSignatureFails(t *testing.T) {
	r := New()
	err := r.Register("Query", "f", "not a function")
	var se *binding.SignatureError
	require.ErrorAs(t, err, &se)
}

func TestMustRegister_PanicsOnError(t *testing.T) {
	r := New()
	require.Panics(t, func() { r.MustRegister("Query", "f", 42) })
}

func TestHasFetcher(t *testing.T) {
	r := New()
	r.MustRegister("Query", "f", func() string { return "" })
	require.True(t, r.HasFetcher("Query", "f"))
	require.False(t, r.HasFetcher("Query", "g"))
	require.False(t, r.HasFetcher("Mutation", "f"))
}

func TestFetch_SyncHandler(t *testing.T) {
	r := New()
	r.MustRegister("Query", "hello",
		func(name string) string { return "hi " + name },
		WithParams(binding.Named("name")),
	)
	got, err := r.Fetch(context.Background(), fieldInfo("Query", "hello", map[string]any{"name": "ada"}), &reqdata.Data{})
	require.NoError(t, err)
	require.Equal(t, "hi ada", got)
}

func TestFetch_AsyncHandlerReturnsHandle(t *testing.T) {
	r := New()
	r.MustRegister("Query", "slow",
		func() string { return "eventually" },
		Async(),
	)
	got, err := r.Fetch(context.Background(), fieldInfo("Query", "slow", nil), &reqdata.Data{})
	require.NoError(t, err)

	h, ok := got.(*future.Handle)
	require.True(t, ok)
	v, err := h.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "eventually", v)
}

func TestFetch_UnregisteredFieldFails(t *testing.T) {
	r := New()
	_, err := r.Fetch(context.Background(), fieldInfo("Query", "nope", nil), &reqdata.Data{})
	require.Error(t, err)
}

func TestFetch_EmitsEvents(t *testing.T) {
	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)

	var starts []events.FetchStart
	var finishes []events.FetchFinish
	eventbus.Subscribe(func(ctx context.Context, e events.FetchStart) { starts = append(starts, e) })
	eventbus.Subscribe(func(ctx context.Context, e events.FetchFinish) { finishes = append(finishes, e) })

	r := New()
	r.MustRegister("Query", "ping", func() string { return "pong" })
	_, err := r.Fetch(context.Background(), fieldInfo("Query", "ping", nil), &reqdata.Data{})
	require.NoError(t, err)

	require.Len(t, starts, 1)
	require.Equal(t, "Query", starts[0].ObjectType)
	require.Equal(t, "ping", starts[0].Field)
	require.Len(t, finishes, 1)
	require.NoError(t, finishes[0].Err)
}

func TestResolveType(t *testing.T) {
	r := New()
	r.RegisterTypeResolver("Node", func(value any) (string, bool) {
		if _, ok := value.(map[string]any); ok {
			return "User", true
		}
		return "", false
	})

	name, ok := r.ResolveType(context.Background(), "Node", map[string]any{})
	require.True(t, ok)
	require.Equal(t, "User", name)

	_, ok = r.ResolveType(context.Background(), "Node", 42)
	require.False(t, ok)

	_, ok = r.ResolveType(context.Background(), "Unknown", map[string]any{})
	require.False(t, ok)
}

func TestDescriptor(t *testing.T) {
	r := New()
	r.MustRegister("Query", "f", func() string { return "" })
	require.NotNil(t, r.Descriptor("Query", "f"))
	require.Nil(t, r.Descriptor("Query", "g"))
}
