package stripepay

import (
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// defaultHTTPTimeout matches the stripe-go default client.
const defaultHTTPTimeout = 80 * time.Second

// traceTransport forwards the caller span as a W3C traceparent header so
// Stripe request logs can be joined with ours.
type traceTransport struct {
	base http.RoundTripper
}

func (t traceTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	sc := trace.SpanFromContext(req.Context()).SpanContext()
	if !sc.IsValid() || req.Header.Get("Traceparent") != "" {
		return base.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	clone.Header.Set("Traceparent", fmt.Sprintf("00-%s-%s-%s", sc.TraceID(), sc.SpanID(), sc.TraceFlags()))
	return base.RoundTrip(clone)
}

func tracedClient(client *http.Client) *http.Client {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	traced := *client
	traced.Transport = traceTransport{base: client.Transport}
	return &traced
}
