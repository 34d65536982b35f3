package binding

import "fmt"

// MissingInputError reports a required header or query-parameter binding that
// had no resolvable value and no declared default.
type MissingInputError struct {
	Kind BindingKind
	Name string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("binding: required %s %q has no value and no default", e.Kind, e.Name)
}

// MissingCookieError reports a required cookie binding that had no resolvable
// value and no declared default. Kept distinct from MissingInputError so
// callers can tell cookie failures apart.
type MissingCookieError struct {
	Name string
}

func (e *MissingCookieError) Error() string {
	return fmt.Sprintf("binding: required cookie %q has no value and no default", e.Name)
}

// SignatureError reports an invalid handler signature at registration time.
type SignatureError struct {
	Object string
	Field  string
	Reason string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("binding: invalid handler for %s.%s: %s", e.Object, e.Field, e.Reason)
}
