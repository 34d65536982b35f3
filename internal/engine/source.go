package engine

import (
	"context"

	reqdata "github.com/hanpama/graphbind/internal/reqdata"
	schema "github.com/hanpama/graphbind/internal/schema"
)

// FieldInfo is the engine's field-resolution environment: everything known
// about one field at the moment it is resolved. One FieldInfo is built per
// field resolution and owned by that resolution.
type FieldInfo struct {
	// ObjectType is the parent GraphQL type name (e.g. "Query").
	ObjectType string
	// FieldName is the resolved field's name on that type.
	FieldName string
	// Field is the schema definition of the field.
	Field *schema.Field
	// Source is the parent object value (nil for root fields).
	Source any
	// Args holds argument values coerced against the schema.
	Args map[string]any
	// Path is the response path of the field.
	Path Path
}

// FetcherSource is the engine's view of the handler registry.
//
// Contract:
//   - HasFetcher reports whether a data fetcher is registered for the field.
//     When false, the engine falls back to default property resolution on the
//     parent value.
//   - Fetch invokes the registered handler. It may return a plain value, or a
//     *future.Handle when the handler is asynchronous; the engine awaits the
//     handle during value completion. Errors are surfaced as located GraphQL
//     errors and never abort sibling fields.
//   - ResolveType maps a value of an abstract type to its concrete object
//     type name. Returning ok=false makes the engine fall back to a
//     "__typename" key on map values.
//   - Implementations must be safe for concurrent calls across independent
//     requests and must not mutate source or args values.
type FetcherSource interface {
	HasFetcher(objectType, field string) bool
	Fetch(ctx context.Context, info *FieldInfo, req *reqdata.Data) (any, error)
	ResolveType(ctx context.Context, abstractType string, value any) (string, bool)
}
