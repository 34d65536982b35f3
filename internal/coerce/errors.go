package coerce

import (
	"fmt"
	"reflect"
)

// Error reports a value that could not be structurally reconciled with its
// target type.
type Error struct {
	Value  any
	Target reflect.Type
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("coerce: cannot convert %v (%T) to %s: %s", e.Value, e.Value, e.Target, e.Reason)
}

func mismatch(value any, target reflect.Type, reason string) *Error {
	return &Error{Value: value, Target: target, Reason: reason}
}
