package engine

import (
	"fmt"
	"reflect"

	"context"

	future "github.com/hanpama/graphbind/internal/future"
	language "github.com/hanpama/graphbind/internal/language"
	reqdata "github.com/hanpama/graphbind/internal/reqdata"
	schema "github.com/hanpama/graphbind/internal/schema"
)

type Path []PathElement

type PathElement any

// Executor runs GraphQL operations against a schema, resolving fields through
// a FetcherSource. Data fetchers may resolve synchronously or hand back a
// pending-result handle; sibling asynchronous fields of one selection set run
// concurrently and are awaited before the set completes.
type Executor struct {
	source FetcherSource
	schema *schema.Schema
}

func New(source FetcherSource, sch *schema.Schema) *Executor {
	return &Executor{source: source, schema: sch}
}

// executionState holds the state during one operation execution
type executionState struct {
	source    FetcherSource
	schema    *schema.Schema
	document  *language.QueryDocument
	variables map[string]any
	context   context.Context
	req       *reqdata.Data
	errors    []GraphQLError
}

func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	req *reqdata.Data,
) *ExecutionResult {
	operation := getOperation(document, operationName)
	if operation == nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: "operation not found"}}}
	}

	coercedVariableValues, err := coerceVariableValues(e.schema, operation, variableValues)
	if err != nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: err.Error(), Err: err}}}
	}

	var rootType *schema.Type
	switch operation.Operation {
	case language.Query:
		rootType = e.schema.GetQueryType()
	case language.Mutation:
		rootType = e.schema.GetMutationType()
	default:
		return &ExecutionResult{Errors: []GraphQLError{{Message: fmt.Sprintf("unsupported operation type: %s", operation.Operation)}}}
	}
	if rootType == nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: fmt.Sprintf("root type not found for %s operation", operation.Operation)}}}
	}

	state := &executionState{
		source:    e.source,
		schema:    e.schema,
		document:  document,
		variables: coercedVariableValues,
		context:   ctx,
		req:       req,
		errors:    []GraphQLError{},
	}

	data := executeSelectionSet(state, rootType, operation.SelectionSet, nil, Path{})
	return &ExecutionResult{Data: data, Errors: state.errors}
}

// pendingField is a field whose fetcher returned a pending-result handle.
// Handles are collected while the rest of the selection set resolves, then
// awaited in declaration order.
type pendingField struct {
	responseName string
	fieldDef     *schema.Field
	fields       []*language.Field
	path         Path
	handle       *future.Handle
}

// executeSelectionSet resolves one selection set. Synchronous fields complete
// in place; asynchronous fields are launched first and awaited after, so
// siblings overlap.
func executeSelectionSet(state *executionState, objectType *schema.Type, selectionSet language.SelectionSet, objectValue any, path Path) map[string]any {
	groupedFields := collectFields(state, objectType, selectionSet)
	resultMap := make(map[string]any)
	var pending []pendingField

	for _, collectedField := range groupedFields.orderedFields() {
		responseName := collectedField.ResponseName
		fields := collectedField.Fields
		fieldPath := appendPath(path, responseName)

		if fields[0].Name == "__typename" {
			resultMap[responseName] = objectType.Name
			continue
		}

		fieldDef := objectType.Field(fields[0].Name)
		if fieldDef == nil {
			state.addErr(GraphQLError{
				Message: fmt.Sprintf("Cannot query field '%s' on type '%s'", fields[0].Name, objectType.Name),
				Path:    fieldPath,
			})
			continue
		}

		argumentValues := coerceArgumentValues(state, fieldDef, fields[0].Arguments, fieldPath)

		resolved, err := resolveFieldValue(state, objectType, fieldDef, objectValue, argumentValues, fieldPath)
		if err != nil {
			state.addErr(GraphQLError{Message: err.Error(), Path: fieldPath, Err: err})
			resolved = nil
		} else if h, ok := resolved.(*future.Handle); ok {
			pending = append(pending, pendingField{
				responseName: responseName,
				fieldDef:     fieldDef,
				fields:       fields,
				path:         fieldPath,
				handle:       h,
			})
			continue
		}

		completed := completeValue(state, fieldDef.Type, fields, resolved, fieldPath)
		if writeCompleted(resultMap, responseName, fieldDef, completed, path) {
			return nil
		}
	}

	for _, p := range pending {
		value, err := p.handle.Get(state.context)
		if err != nil {
			state.addErr(GraphQLError{Message: err.Error(), Path: p.path, Err: err})
			value = nil
		}
		completed := completeValue(state, p.fieldDef.Type, p.fields, value, p.path)
		if writeCompleted(resultMap, p.responseName, p.fieldDef, completed, path) {
			return nil
		}
	}

	return resultMap
}

// writeCompleted writes a completed field value, applying Non-Null child
// behavior. It reports true when the null must propagate to the parent.
func writeCompleted(resultMap map[string]any, responseName string, fieldDef *schema.Field, completed any, parentPath Path) bool {
	if schema.IsNonNull(fieldDef.Type) && isNullish(completed) {
		if len(parentPath) > 0 {
			return true
		}
		// Root level: keep going but write nil
		resultMap[responseName] = nil
		return false
	}
	// For nullable fields, coerce typed-nil to interface-nil
	if isNullish(completed) {
		resultMap[responseName] = nil
	} else {
		resultMap[responseName] = completed
	}
	return false
}

// resolveFieldValue invokes the registered data fetcher for a field, or falls
// back to reading the property off the parent value.
func resolveFieldValue(state *executionState, objectType *schema.Type, fieldDef *schema.Field, source any, args map[string]any, path Path) (any, error) {
	if state.source != nil && state.source.HasFetcher(objectType.Name, fieldDef.Name) {
		info := &FieldInfo{
			ObjectType: objectType.Name,
			FieldName:  fieldDef.Name,
			Field:      fieldDef,
			Source:     source,
			Args:       args,
			Path:       path,
		}
		return state.source.Fetch(state.context, info, state.req)
	}
	return defaultResolve(source, fieldDef.Name), nil
}

// completeValue completes a value per the GraphQL execution rules.
func completeValue(state *executionState, fieldType *schema.TypeRef, fields []*language.Field, result any, path Path) any {
	if schema.IsNonNull(fieldType) {
		if isNullish(result) {
			if !state.hasErrorAtPath(path) {
				state.addErr(GraphQLError{Message: fmt.Sprintf("Cannot return null for non-nullable field %s", pathToString(path)), Path: path})
			}
			return nil
		}
		inner := schema.Unwrap(fieldType)
		completed := completeValue(state, inner, fields, result, path)
		if isNullish(completed) {
			// Error already recorded at original path; propagate only
			return nil
		}
		return completed
	}

	if isNullish(result) {
		return nil
	}

	if schema.IsList(fieldType) {
		return completeListValue(state, fieldType, fields, result, path)
	}

	namedType := schema.GetNamedType(fieldType)
	typeObj := state.schema.Types[namedType]
	if typeObj == nil {
		state.addErr(GraphQLError{Message: fmt.Sprintf("Unknown type: %s", namedType), Path: path})
		return nil
	}

	switch typeObj.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		serialized, err := serializeLeaf(typeObj, result)
		if err != nil {
			state.addErr(GraphQLError{Message: err.Error(), Path: path, Err: err})
			return nil
		}
		return serialized
	case schema.TypeKindObject:
		return completeObjectValue(state, typeObj, fields, result, path)
	case schema.TypeKindInterface, schema.TypeKindUnion:
		return completeAbstractValue(state, typeObj, fields, result, path)
	default:
		state.addErr(GraphQLError{Message: fmt.Sprintf("Cannot complete value of unexpected type: %s", typeObj.Kind), Path: path})
		return nil
	}
}

// completeListValue completes a list value
func completeListValue(state *executionState, listType *schema.TypeRef, fields []*language.Field, result any, path Path) any {
	var items []any
	if direct, ok := result.([]any); ok {
		items = direct
	} else {
		rv := reflect.ValueOf(result)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			state.addErr(GraphQLError{Message: fmt.Sprintf("Expected list value, got %T", result), Path: path})
			return nil
		}
		items = make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = rv.Index(i).Interface()
		}
	}

	inner := schema.Unwrap(listType)
	completed := make([]any, len(items))
	for i, item := range items {
		p := appendPath(path, i)
		v := completeValue(state, inner, fields, item, p)
		if schema.IsNonNull(inner) && isNullish(v) {
			// Propagate null to the list field; error already recorded by inner completion
			return nil
		}
		completed[i] = v
	}
	return completed
}

func completeObjectValue(state *executionState, objectType *schema.Type, fields []*language.Field, result any, path Path) any {
	sub := mergeSelectionSets(fields)
	return executeSelectionSet(state, objectType, sub, result, path)
}

func completeAbstractValue(state *executionState, abstractType *schema.Type, fields []*language.Field, result any, path Path) any {
	typeName, ok := resolveConcreteType(state, abstractType, result)
	if !ok {
		state.addErr(GraphQLError{Message: fmt.Sprintf("Could not determine the concrete type of abstract type %s", abstractType.Name), Path: path})
		return nil
	}
	objectType := state.schema.Types[typeName]
	if objectType == nil || objectType.Kind != schema.TypeKindObject {
		state.addErr(GraphQLError{Message: fmt.Sprintf("Abstract type %s must resolve to an Object type at runtime. Got: %s", abstractType.Name, typeName), Path: path})
		return nil
	}
	return completeObjectValue(state, objectType, fields, result, path)
}

// resolveConcreteType asks the fetcher source first, then falls back to a
// "__typename" key on map values.
func resolveConcreteType(state *executionState, abstractType *schema.Type, value any) (string, bool) {
	if state.source != nil {
		if name, ok := state.source.ResolveType(state.context, abstractType.Name, value); ok {
			return name, true
		}
	}
	if m, ok := value.(map[string]any); ok {
		if tn, ok := m["__typename"].(string); ok {
			return tn, true
		}
	}
	return "", false
}

func pathToString(path Path) string {
	result := ""
	for i, elem := range path {
		if i > 0 {
			result += "."
		}
		switch v := elem.(type) {
		case string:
			result += v
		case int:
			result += fmt.Sprintf("[%d]", v)
		}
	}
	return result
}

func appendPath(path Path, elem PathElement) Path {
	newPath := make(Path, len(path)+1)
	copy(newPath, path)
	newPath[len(path)] = elem
	return newPath
}

// getOperation retrieves the operation from the document
func getOperation(document *language.QueryDocument, operationName string) *language.OperationDefinition {
	if operationName == "" && len(document.Operations) == 1 {
		for _, op := range document.Operations {
			return op
		}
	}
	for _, op := range document.Operations {
		if op.Name == operationName {
			return op
		}
	}
	return nil
}

func (state *executionState) addErr(err GraphQLError) {
	state.errors = append(state.errors, err)
}

// hasErrorAtPath reports whether an error with the given path already exists.
func (state *executionState) hasErrorAtPath(path Path) bool {
	for _, err := range state.errors {
		if reflect.DeepEqual(err.Path, path) {
			return true
		}
	}
	return false
}

// mergeSelectionSets merges selection sets from multiple fields
func mergeSelectionSets(fields []*language.Field) language.SelectionSet {
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

// isNullish returns true for nil interfaces and typed nils (map, slice, ptr, interface)
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
