package reqdata

import "net/http"

// CookieResolver resolves a named cookie from request data. Implementations
// must be stateless: a single resolver instance is shared across concurrent
// requests and must not mutate the data it is given.
type CookieResolver interface {
	Resolve(name string, d *Data) (string, bool)
}

// HeaderCookieResolver reads cookies from the raw Cookie header. It is the
// default collaborator installed by FromHTTP.
type HeaderCookieResolver struct{}

func (HeaderCookieResolver) Resolve(name string, d *Data) (string, bool) {
	if d == nil || d.Headers == nil {
		return "", false
	}
	// Reuse net/http cookie parsing against the carried headers.
	r := http.Request{Header: d.Headers}
	c, err := r.Cookie(name)
	if err != nil || c == nil {
		return "", false
	}
	return c.Value, true
}
