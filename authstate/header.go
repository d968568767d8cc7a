package authstate

import (
	"net/http"
	"sync"
)

// HeaderSetter receives the authorization header value after every
// derivation. An empty value clears the header.
type HeaderSetter interface {
	SetAuthorization(value string)
}

// HeaderSetterFunc adapts a function into a HeaderSetter.
type HeaderSetterFunc func(value string)

// SetAuthorization implements HeaderSetter.
func (f HeaderSetterFunc) SetAuthorization(value string) {
	if f != nil {
		f(value)
	}
}

type nopHeaderSetter struct{}

func (nopHeaderSetter) SetAuthorization(string) {}

// HeaderTransport is an http.RoundTripper that adds the current
// authorization header to outgoing requests that do not set one.
type HeaderTransport struct {
	Base http.RoundTripper

	mu    sync.RWMutex
	value string
}

var _ HeaderSetter = (*HeaderTransport)(nil)

// NewHeaderTransport wraps base, or http.DefaultTransport when base is nil.
func NewHeaderTransport(base http.RoundTripper) *HeaderTransport {
	return &HeaderTransport{Base: base}
}

// SetAuthorization implements HeaderSetter.
func (t *HeaderTransport) SetAuthorization(value string) {
	t.mu.Lock()
	t.value = value
	t.mu.Unlock()
}

// Authorization returns the header value currently applied.
func (t *HeaderTransport) Authorization() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.value
}

// RoundTrip implements http.RoundTripper.
func (t *HeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	value := t.Authorization()
	if value == "" || req.Header.Get("Authorization") != "" {
		return base.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", value)
	return base.RoundTrip(clone)
}

// Client returns an http.Client using the transport.
func (t *HeaderTransport) Client() *http.Client {
	return &http.Client{Transport: t}
}
