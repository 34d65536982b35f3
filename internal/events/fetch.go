package events

import "time"

// FetchStart is emitted before a registered data fetcher is invoked.
type FetchStart struct {
	ObjectType string
	Field      string
	Async      bool
}

// FetchFinish is emitted after argument binding and dispatch complete. For
// asynchronous handlers the duration covers binding and dispatch only; the
// handler itself finishes on its own goroutine.
type FetchFinish struct {
	ObjectType string
	Field      string
	Async      bool
	Err        error
	Duration   time.Duration
}
