package events

import "time"

// GraphQLStart is emitted before an operation is handed to the engine.
type GraphQLStart struct {
	OperationName string
	OperationType string
}

// GraphQLFinish is emitted once the engine returns, whether or not the
// operation produced errors.
type GraphQLFinish struct {
	OperationName string
	OperationType string
	ErrorCount    int
	Duration      time.Duration
}
