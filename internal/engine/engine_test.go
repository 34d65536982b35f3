package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	schema "github.com/hanpama/graphbind/internal/schema"
)

func scalarTypes() map[string]*schema.Type {
	return map[string]*schema.Type{
		"String":  {Name: "String", Kind: schema.TypeKindScalar},
		"Int":     {Name: "Int", Kind: schema.TypeKindScalar},
		"Boolean": {Name: "Boolean", Kind: schema.TypeKindScalar},
		"ID":      {Name: "ID", Kind: schema.TypeKindScalar},
	}
}

func querySchema(fields ...*schema.Field) *schema.Schema {
	types := scalarTypes()
	types["Query"] = &schema.Type{Name: "Query", Kind: schema.TypeKindObject, Fields: fields}
	return &schema.Schema{QueryType: "Query", Types: types}
}

func TestExecute_FieldOutputOrder(t *testing.T) {
	sch := querySchema(
		&schema.Field{Name: "a", Type: schema.NamedType("String")},
		&schema.Field{Name: "b", Type: schema.NamedType("String")},
		&schema.Field{Name: "c", Type: schema.NamedType("String")},
	)
	src := NewMockSource(map[string]MockFetcher{
		"Query.a": NewMockValueFetcher("A"),
		"Query.b": NewMockValueFetcher("B"),
		"Query.c": NewMockValueFetcher("C"),
	})
	src.SetAsync("Query", "b")
	exec := New(src, sch)
	doc := mustParseQuery(t, "{ a b c }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)
	gotCalls := src.GetCalls()

	wantData := map[string]any{"a": "A", "b": "B", "c": "C"}
	if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	if len(gotRes.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", gotRes.Errors)
	}

	wantCalls := []Call{
		{Kind: CallKindSync, ObjectType: "Query", Field: "a", Args: map[string]any{}},
		{Kind: CallKindAsync, ObjectType: "Query", Field: "b", Args: map[string]any{}},
		{Kind: CallKindSync, ObjectType: "Query", Field: "c", Args: map[string]any{}},
	}
	if diff := cmp.Diff(wantCalls, gotCalls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_AsyncSiblingsOverlap(t *testing.T) {
	sch := querySchema(
		&schema.Field{Name: "left", Type: schema.NamedType("String")},
		&schema.Field{Name: "right", Type: schema.NamedType("String")},
	)

	// Both fetchers block until the other has started. The test only
	// completes if the engine launches siblings before awaiting either.
	var started sync.WaitGroup
	started.Add(2)
	rendezvous := func(val string) MockFetcher {
		return func(ctx context.Context, source any, args map[string]any) (any, error) {
			started.Done()
			done := make(chan struct{})
			go func() { started.Wait(); close(done) }()
			select {
			case <-done:
				return val, nil
			case <-time.After(2 * time.Second):
				return nil, errors.New("sibling never started")
			}
		}
	}
	src := NewMockSource(map[string]MockFetcher{
		"Query.left":  rendezvous("L"),
		"Query.right": rendezvous("R"),
	})
	src.SetAsync("Query", "left")
	src.SetAsync("Query", "right")
	exec := New(src, sch)
	doc := mustParseQuery(t, "{ left right }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)
	if len(gotRes.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", gotRes.Errors)
	}
	wantData := map[string]any{"left": "L", "right": "R"}
	if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_FieldErrorKeepsSiblings(t *testing.T) {
	sch := querySchema(
		&schema.Field{Name: "ok", Type: schema.NamedType("String")},
		&schema.Field{Name: "bad", Type: schema.NamedType("String")},
	)
	boom := errors.New("boom")
	src := NewMockSource(map[string]MockFetcher{
		"Query.ok":  NewMockValueFetcher("fine"),
		"Query.bad": NewMockErrorFetcher(boom),
	})
	exec := New(src, sch)
	doc := mustParseQuery(t, "{ ok bad }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	wantData := map[string]any{"ok": "fine", "bad": nil}
	if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	if len(gotRes.Errors) != 1 {
		t.Fatalf("want 1 error, got %d: %v", len(gotRes.Errors), gotRes.Errors)
	}
	if gotRes.Errors[0].Message != "boom" {
		t.Errorf("message = %q, want %q", gotRes.Errors[0].Message, "boom")
	}
	if !errors.Is(gotRes.Errors[0], boom) {
		t.Error("original error value not preserved")
	}
	if diff := cmp.Diff(Path{"bad"}, gotRes.Errors[0].Path); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_AsyncFieldError(t *testing.T) {
	sch := querySchema(
		&schema.Field{Name: "slow", Type: schema.NamedType("String")},
	)
	boom := errors.New("backend down")
	src := NewMockSource(map[string]MockFetcher{
		"Query.slow": NewMockErrorFetcher(boom),
	})
	src.SetAsync("Query", "slow")
	exec := New(src, sch)
	doc := mustParseQuery(t, "{ slow }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)
	if len(gotRes.Errors) != 1 {
		t.Fatalf("want 1 error, got %d", len(gotRes.Errors))
	}
	if !errors.Is(gotRes.Errors[0], boom) {
		t.Error("original error value not preserved across the pending handle")
	}
	if diff := cmp.Diff(map[string]any{"slow": nil}, gotRes.Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_NonNullPropagation(t *testing.T) {
	types := scalarTypes()
	types["Query"] = &schema.Type{Name: "Query", Kind: schema.TypeKindObject, Fields: []*schema.Field{
		{Name: "obj", Type: schema.NamedType("Obj")},
	}}
	types["Obj"] = &schema.Type{Name: "Obj", Kind: schema.TypeKindObject, Fields: []*schema.Field{
		{Name: "must", Type: schema.NonNullType(schema.NamedType("String"))},
	}}
	sch := &schema.Schema{QueryType: "Query", Types: types}

	src := NewMockSource(map[string]MockFetcher{
		"Query.obj": NewMockValueFetcher(map[string]any{}),
		"Obj.must":  NewMockValueFetcher(nil),
	})
	exec := New(src, sch)
	doc := mustParseQuery(t, "{ obj { must } }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	// Null propagates to the nearest nullable ancestor.
	wantData := map[string]any{"obj": nil}
	if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	if len(gotRes.Errors) != 1 {
		t.Fatalf("want 1 error, got %d: %v", len(gotRes.Errors), gotRes.Errors)
	}
	if diff := cmp.Diff(Path{"obj", "must"}, gotRes.Errors[0].Path); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_ListCompletion(t *testing.T) {
	types := scalarTypes()
	types["Query"] = &schema.Type{Name: "Query", Kind: schema.TypeKindObject, Fields: []*schema.Field{
		{Name: "nums", Type: schema.ListType(schema.NonNullType(schema.NamedType("Int")))},
	}}
	sch := &schema.Schema{QueryType: "Query", Types: types}

	src := NewMockSource(map[string]MockFetcher{
		"Query.nums": NewMockValueFetcher([]int{1, 2, 3}),
	})
	exec := New(src, sch)
	doc := mustParseQuery(t, "{ nums }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)
	if len(gotRes.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", gotRes.Errors)
	}
	wantData := map[string]any{"nums": []any{1, 2, 3}}
	if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_DefaultPropertyResolution(t *testing.T) {
	type account struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	types := scalarTypes()
	types["Query"] = &schema.Type{Name: "Query", Kind: schema.TypeKindObject, Fields: []*schema.Field{
		{Name: "account", Type: schema.NamedType("Account")},
	}}
	types["Account"] = &schema.Type{Name: "Account", Kind: schema.TypeKindObject, Fields: []*schema.Field{
		{Name: "name", Type: schema.NamedType("String")},
		{Name: "email", Type: schema.NamedType("String")},
	}}
	sch := &schema.Schema{QueryType: "Query", Types: types}

	src := NewMockSource(map[string]MockFetcher{
		"Query.account": NewMockValueFetcher(account{Name: "june", Email: "june@example.com"}),
	})
	exec := New(src, sch)
	doc := mustParseQuery(t, "{ account { name email } }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)
	if len(gotRes.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", gotRes.Errors)
	}
	wantData := map[string]any{"account": map[string]any{"name": "june", "email": "june@example.com"}}
	if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_ArgumentsAndVariables(t *testing.T) {
	sch := querySchema(&schema.Field{
		Name: "greet",
		Type: schema.NamedType("String"),
		Arguments: []*schema.InputValue{
			{Name: "name", Type: schema.NonNullType(schema.NamedType("String"))},
			{Name: "loud", Type: schema.NamedType("Boolean"), DefaultValue: false},
		},
	})
	src := NewMockSource(map[string]MockFetcher{
		"Query.greet": func(ctx context.Context, source any, args map[string]any) (any, error) {
			return args, nil
		},
	})
	exec := New(src, sch)
	doc := mustParseQuery(t, `query ($n: String!) { greet(name: $n) }`)

	exec.ExecuteRequest(context.Background(), doc, "", map[string]any{"n": "ada"}, nil)

	calls := src.GetCalls()
	if len(calls) != 1 {
		t.Fatalf("want 1 call, got %d", len(calls))
	}
	wantArgs := map[string]any{"name": "ada", "loud": false}
	if diff := cmp.Diff(wantArgs, calls[0].Args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_MissingRequiredVariable(t *testing.T) {
	sch := querySchema(&schema.Field{Name: "greet", Type: schema.NamedType("String")})
	exec := New(NewMockSource(nil), sch)
	doc := mustParseQuery(t, `query ($n: String!) { greet }`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)
	if len(gotRes.Errors) != 1 {
		t.Fatalf("want 1 error, got %d", len(gotRes.Errors))
	}
	if gotRes.Data != nil {
		t.Errorf("data should be nil, got %v", gotRes.Data)
	}
}

func TestExecute_TypenameAndFragments(t *testing.T) {
	types := scalarTypes()
	types["Query"] = &schema.Type{Name: "Query", Kind: schema.TypeKindObject, Fields: []*schema.Field{
		{Name: "node", Type: schema.NamedType("Node")},
	}}
	types["Node"] = &schema.Type{Name: "Node", Kind: schema.TypeKindInterface,
		Fields:        []*schema.Field{{Name: "id", Type: schema.NamedType("ID")}},
		PossibleTypes: []string{"User"},
	}
	types["User"] = &schema.Type{Name: "User", Kind: schema.TypeKindObject,
		Fields:     []*schema.Field{{Name: "id", Type: schema.NamedType("ID")}, {Name: "name", Type: schema.NamedType("String")}},
		Interfaces: []string{"Node"},
	}
	sch := &schema.Schema{QueryType: "Query", Types: types}

	src := NewMockSource(map[string]MockFetcher{
		"Query.node": NewMockValueFetcher(map[string]any{"id": "u1", "name": "June"}),
	})
	src.SetTypeResolver(func(value any) (string, bool) { return "User", true })
	exec := New(src, sch)
	doc := mustParseQuery(t, `{ node { __typename id ... on User { name } } }`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)
	if len(gotRes.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", gotRes.Errors)
	}
	wantData := map[string]any{"node": map[string]any{"__typename": "User", "id": "u1", "name": "June"}}
	if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_TypenameFallbackOnMap(t *testing.T) {
	types := scalarTypes()
	types["Query"] = &schema.Type{Name: "Query", Kind: schema.TypeKindObject, Fields: []*schema.Field{
		{Name: "item", Type: schema.NamedType("Item")},
	}}
	types["Item"] = &schema.Type{Name: "Item", Kind: schema.TypeKindUnion, PossibleTypes: []string{"Widget"}}
	types["Widget"] = &schema.Type{Name: "Widget", Kind: schema.TypeKindObject,
		Fields: []*schema.Field{{Name: "label", Type: schema.NamedType("String")}},
	}
	sch := &schema.Schema{QueryType: "Query", Types: types}

	src := NewMockSource(map[string]MockFetcher{
		"Query.item": NewMockValueFetcher(map[string]any{"__typename": "Widget", "label": "knob"}),
	})
	exec := New(src, sch)
	doc := mustParseQuery(t, `{ item { ... on Widget { label } } }`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)
	if len(gotRes.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", gotRes.Errors)
	}
	wantData := map[string]any{"item": map[string]any{"label": "knob"}}
	if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_SkipAndInclude(t *testing.T) {
	sch := querySchema(
		&schema.Field{Name: "shown", Type: schema.NamedType("String")},
		&schema.Field{Name: "hidden", Type: schema.NamedType("String")},
	)
	src := NewMockSource(map[string]MockFetcher{
		"Query.shown":  NewMockValueFetcher("yes"),
		"Query.hidden": NewMockValueFetcher("no"),
	})
	exec := New(src, sch)
	doc := mustParseQuery(t, `{ shown @include(if: true) hidden @skip(if: true) }`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)
	wantData := map[string]any{"shown": "yes"}
	if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	if len(src.GetCalls()) != 1 {
		t.Errorf("skipped field must not be fetched, calls: %v", src.GetCalls())
	}
}

func TestExecute_MutationRoot(t *testing.T) {
	types := scalarTypes()
	types["Query"] = &schema.Type{Name: "Query", Kind: schema.TypeKindObject, Fields: []*schema.Field{
		{Name: "ping", Type: schema.NamedType("String")},
	}}
	types["Mutation"] = &schema.Type{Name: "Mutation", Kind: schema.TypeKindObject, Fields: []*schema.Field{
		{Name: "bump", Type: schema.NamedType("Int")},
	}}
	sch := &schema.Schema{QueryType: "Query", MutationType: "Mutation", Types: types}

	n := 0
	src := NewMockSource(map[string]MockFetcher{
		"Mutation.bump": func(ctx context.Context, source any, args map[string]any) (any, error) {
			n++
			return n, nil
		},
	})
	exec := New(src, sch)
	doc := mustParseQuery(t, `mutation { bump }`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)
	if len(gotRes.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", gotRes.Errors)
	}
	if diff := cmp.Diff(map[string]any{"bump": 1}, gotRes.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_OperationSelection(t *testing.T) {
	sch := querySchema(&schema.Field{Name: "ping", Type: schema.NamedType("String")})
	src := NewMockSource(map[string]MockFetcher{"Query.ping": NewMockValueFetcher("pong")})
	exec := New(src, sch)
	doc := mustParseQuery(t, `query A { ping } query B { ping }`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "A", nil, nil)
	if len(gotRes.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", gotRes.Errors)
	}

	gotRes = exec.ExecuteRequest(context.Background(), doc, "missing", nil, nil)
	if len(gotRes.Errors) != 1 {
		t.Fatalf("want operation-not-found error, got %v", gotRes.Errors)
	}
}
