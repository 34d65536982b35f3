// Package reqdata carries request-scoped transport data into data-fetcher
// argument resolution: headers, the web request's parameter map, and cookie
// access. The transport layer builds one Data per incoming request; it is
// owned by that request and never shared across requests.
package reqdata

import (
	"net/http"
	"net/url"
)

// TransportKind distinguishes the traditional blocking HTTP transport from
// reactive/streaming transports, which expose no web request parameter map.
type TransportKind int

const (
	TransportTraditional TransportKind = iota
	TransportReactive
)

func (k TransportKind) String() string {
	if k == TransportReactive {
		return "reactive"
	}
	return "traditional"
}

// Data is the per-request view consumed by argument resolution. Fields are
// read-only after construction.
type Data struct {
	// Headers maps a header name to one or more values.
	Headers http.Header
	// Request is the web-request abstraction. Nil under reactive transports.
	Request *WebRequest
	// Transport identifies the serving transport.
	Transport TransportKind
	// Cookies is the optional cookie-resolution collaborator. It is shared,
	// stateless and externally owned; a nil resolver means cookie values are
	// always absent.
	Cookies CookieResolver
}

// WebRequest exposes the parameter map of a traditional web request.
type WebRequest struct {
	Method string
	Path   string
	Params url.Values
}

// HeaderValues returns all values for a header name, nil when absent.
func (d *Data) HeaderValues(name string) []string {
	if d == nil || d.Headers == nil {
		return nil
	}
	return d.Headers.Values(name)
}

// ParamValues returns all values for a query parameter, nil when absent or
// when there is no web request.
func (d *Data) ParamValues(name string) []string {
	if d == nil || d.Request == nil || d.Request.Params == nil {
		return nil
	}
	if vs, ok := d.Request.Params[name]; ok {
		return vs
	}
	return nil
}

// CookieValue resolves a cookie through the collaborator, reporting absence
// when no resolver is configured.
func (d *Data) CookieValue(name string) (string, bool) {
	if d == nil || d.Cookies == nil {
		return "", false
	}
	return d.Cookies.Resolve(name, d)
}

// FromHTTP builds request data for the traditional transport.
func FromHTTP(r *http.Request) *Data {
	return &Data{
		Headers: r.Header,
		Request: &WebRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Params: r.URL.Query(),
		},
		Transport: TransportTraditional,
		Cookies:   HeaderCookieResolver{},
	}
}
