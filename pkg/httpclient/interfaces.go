package httpclient

import (
	"context"
	"net/http"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// Request describes a single outbound call. Body is sent as-is when it is a
// []byte or string and JSON-encoded otherwise.
type Request struct {
	Method  string
	URL     string
	Body    any
	Query   map[string]string
	Headers map[string]string
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}
