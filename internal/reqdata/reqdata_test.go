package reqdata

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromHTTP(t *testing.T) {
	r := httptest.NewRequest("GET", "/graphql?query=%7Bq%7D&page=2", nil)
	r.Header.Set("Accept-Language", "ko")

	d := FromHTTP(r)
	require.Equal(t, TransportTraditional, d.Transport)
	require.Equal(t, []string{"ko"}, d.HeaderValues("Accept-Language"))
	require.Equal(t, []string{"2"}, d.ParamValues("page"))
	require.Equal(t, "/graphql", d.Request.Path)
}

func TestNilSafety(t *testing.T) {
	var d *Data
	require.Nil(t, d.HeaderValues("X"))
	require.Nil(t, d.ParamValues("x"))
	_, ok := d.CookieValue("x")
	require.False(t, ok)

	empty := &Data{}
	require.Nil(t, empty.ParamValues("x"))
	_, ok = empty.CookieValue("x")
	require.False(t, ok)
}

func TestHeaderCookieResolver(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Cookie", "session=abc123; theme=dark")
	d := FromHTTP(r)

	v, ok := d.CookieValue("session")
	require.True(t, ok)
	require.Equal(t, "abc123", v)

	v, ok = d.CookieValue("theme")
	require.True(t, ok)
	require.Equal(t, "dark", v)

	_, ok = d.CookieValue("missing")
	require.False(t, ok)
}

func TestTransportKindString(t *testing.T) {
	require.Equal(t, "traditional", TransportTraditional.String())
	require.Equal(t, "reactive", TransportReactive.String())
}
