package openapi

import (
	"context"
	"fmt"
	"net/url"

	"github.com/openapi-it/openapi-client-go/pkg/httpclient"
)

// Client performs Bearer-authenticated calls against any OpenAPI endpoint.
type Client struct {
	c *caller
}

// NewClient builds a client sending token as a Bearer credential.
// It fails with *ConfigError when token cannot be encoded into a header.
func NewClient(token string, opts ...Option) (*Client, error) {
	o := buildOptions(opts)

	auth := "Bearer " + token
	if err := httpclient.ValidateHeader(headerAuthorization, auth); err != nil {
		return nil, &ConfigError{Field: "token", Err: err}
	}

	c, err := newCaller(auth, o)
	if err != nil {
		return nil, err
	}
	return &Client{c: c}, nil
}

// Request sends method to rawURL with an optional JSON payload and query
// parameters, and returns the response body. A nil payload sends no body.
// HEAD and OPTIONS reject a non-nil payload with ErrBodyNotAllowed.
func (c *Client) Request(ctx context.Context, method, rawURL string, payload any, params map[string]string) (string, error) {
	m, err := ParseMethod(method)
	if err != nil {
		return "", err
	}
	if payload != nil && !carriesBody(m) {
		return "", fmt.Errorf("openapi request: %s: %w", m, ErrBodyNotAllowed)
	}
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return "", fmt.Errorf("openapi request: invalid url %q: %w", rawURL, err)
	}
	return c.c.call(ctx, "request", m, rawURL, payload, params)
}
