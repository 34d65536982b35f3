package engine

// GraphQLError is a located execution error.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`

	// Err preserves the underlying error value so transports can classify
	// failures (missing required input, coercion mismatch, handler error).
	Err error `json:"-"`
}

func (e GraphQLError) Error() string { return e.Message }

func (e GraphQLError) Unwrap() error { return e.Err }

// ExecutionResult is the outcome of executing one GraphQL operation.
type ExecutionResult struct {
	Data   any            `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}
