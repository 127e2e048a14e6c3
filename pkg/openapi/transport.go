package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/openapi-it/openapi-client-go/pkg/httpclient"
)

const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	contentTypeJSON     = "application/json"
)

// caller is the request path shared by OAuthClient and Client.
type caller struct {
	http httpclient.Client
	log  Logger
}

func newCaller(authHeader string, o options) (*caller, error) {
	if o.transport != nil {
		return &caller{http: o.transport, log: o.log}, nil
	}

	t, err := httpclient.NewRestyClient(httpclient.Options{
		Timeout: o.timeout,
		Headers: map[string]string{
			headerAuthorization: authHeader,
			headerContentType:   contentTypeJSON,
		},
		UserAgent: o.userAgent,
	})
	if err != nil {
		return nil, &ConfigError{Field: "transport", Err: err}
	}
	return &caller{http: t, log: o.log}, nil
}

// call sends one request and maps the outcome onto (body, nil) for 2xx and *Error otherwise.
func (c *caller) call(ctx context.Context, op, method, url string, body any, query map[string]string) (string, error) {
	req := httpclient.Request{
		Method: method,
		URL:    url,
		Query:  query,
	}
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("openapi %s: encode body: %w", op, err)
		}
		req.Body = raw
	}

	c.log.DebugObj("openapi request", "openapi_request", map[string]any{
		"op":     op,
		"method": method,
		"url":    url,
		"query":  query,
	})

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		apiErr := newNetworkError(op, method, url, err)
		c.log.WarnObj("openapi request failed", "openapi_error", map[string]any{
			"op":    op,
			"kind":  apiErr.Kind,
			"error": err.Error(),
		})
		return "", apiErr
	}

	status := resp.StatusCode()
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		apiErr := newStatusError(op, method, url, status, resp.Body())
		c.log.WarnObj("openapi request rejected", "openapi_error", map[string]any{
			"op":     op,
			"kind":   apiErr.Kind,
			"status": status,
		})
		return "", apiErr
	}

	c.log.DebugObj("openapi response", "openapi_response", map[string]any{
		"op":     op,
		"status": status,
		"bytes":  len(resp.Body()),
	})
	return string(resp.Body()), nil
}
