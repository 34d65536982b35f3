package events

import (
	"time"

	"github.com/hanpama/graphbind/internal/reqdata"
)

// HTTPStart is emitted when a request reaches the GraphQL endpoint.
type HTTPStart struct {
	Method    string
	Path      string
	Transport reqdata.TransportKind
}

// HTTPFinish is emitted after the response has been written.
type HTTPFinish struct {
	Method   string
	Path     string
	Status   int
	Duration time.Duration
}
