package openapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/openapi-it/openapi-client-go/pkg/httpclient"
)

// ErrorKind classifies a failed call.
type ErrorKind string

const (
	// KindClient covers non-2xx replies below 500.
	KindClient ErrorKind = "client_error"
	// KindServer covers 5xx replies.
	KindServer ErrorKind = "server_error"
	// KindNetwork covers DNS, TLS, timeout and cancellation failures where no
	// usable response was received.
	KindNetwork ErrorKind = "network_error"
)

// Error is returned by every client operation that did not produce a 2xx reply.
type Error struct {
	Kind       ErrorKind
	Op         string
	Method     string
	URL        string
	StatusCode int
	// Body holds the full response text; it is empty for network errors.
	Body string
	Err  error
}

func (e *Error) Error() string {
	if e.Kind == KindNetwork {
		return fmt.Sprintf("openapi %s: %s %s: %v", e.Op, e.Method, e.URL, e.Err)
	}
	msg := fmt.Sprintf("openapi %s: %s %s: status %d", e.Op, e.Method, e.URL, e.StatusCode)
	if snippet := httpclient.Snippet([]byte(e.Body)); snippet != "" {
		msg += ": " + snippet
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Temporary reports whether the failure may succeed if repeated later.
// The client never repeats calls itself.
func (e *Error) Temporary() bool {
	return e.Kind == KindNetwork || e.Kind == KindServer || e.StatusCode == http.StatusTooManyRequests
}

func newStatusError(op, method, url string, status int, body []byte) *Error {
	kind := KindClient
	if status >= http.StatusInternalServerError {
		kind = KindServer
	}
	return &Error{
		Kind:       kind,
		Op:         op,
		Method:     method,
		URL:        url,
		StatusCode: status,
		Body:       string(body),
	}
}

func newNetworkError(op, method, url string, err error) *Error {
	return &Error{Kind: KindNetwork, Op: op, Method: method, URL: url, Err: err}
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the ErrorKind of err, or "" if err is not an *Error.
func KindOf(err error) ErrorKind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return ""
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if e, ok := AsError(err); ok {
		return e.StatusCode
	}
	return 0
}

// IsNotFound reports whether err carries a 404 reply.
func IsNotFound(err error) bool { return StatusCode(err) == http.StatusNotFound }

// IsUnauthorized reports whether err carries a 401 reply, usually bad credentials.
func IsUnauthorized(err error) bool { return StatusCode(err) == http.StatusUnauthorized }

// IsForbidden reports whether err carries a 403 reply, usually a missing scope.
func IsForbidden(err error) bool { return StatusCode(err) == http.StatusForbidden }

// ConfigError reports a client that could not be constructed.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("openapi config: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ErrInvalidMethod is matched by every *MethodError.
var ErrInvalidMethod = errors.New("invalid HTTP method")

// ErrBodyNotAllowed is returned when a payload is given for a method whose
// requests are sent without a body.
var ErrBodyNotAllowed = errors.New("method does not carry a request body")

// MethodError is returned when Request is given a verb outside the HTTP method set.
type MethodError struct {
	Method string
}

func (e *MethodError) Error() string {
	return fmt.Sprintf("invalid HTTP method: %q", e.Method)
}

func (e *MethodError) Is(target error) bool { return target == ErrInvalidMethod }
