package sinks

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/openapi-it/openapi-client-go/pkg/httpclient"
)

// EventTypeHeader carries Event.Type on webhook deliveries.
const EventTypeHeader = "X-Event-Type"

type httpSink struct {
	name   string
	method string
	url    string
	client httpclient.Client
	log    Logger
}

func openHTTP(_ context.Context, spec Spec, log Logger) (Sink, error) {
	if spec.HTTP == nil {
		return nil, fmt.Errorf("http block is required")
	}
	headers := make(map[string]string, len(spec.HTTP.Headers)+1)
	for k, v := range spec.HTTP.Headers {
		headers[k] = v
	}
	headers["Content-Type"] = "application/json"

	client, err := httpclient.NewRestyClient(httpclient.Options{
		Timeout: time.Duration(spec.HTTP.TimeoutSeconds) * time.Second,
		Headers: headers,
	})
	if err != nil {
		return nil, err
	}
	return newHTTPSink(spec.Name, spec.HTTP.Method, spec.HTTP.URL, client, log), nil
}

func newHTTPSink(name, method, url string, client httpclient.Client, log Logger) *httpSink {
	return &httpSink{name: name, method: method, url: url, client: client, log: orNop(log)}
}

func (h *httpSink) Name() string { return h.name }
func (h *httpSink) Kind() string { return KindHTTP }

// Send delivers the message body; any non-2xx reply is an error quoting the body.
func (h *httpSink) Send(ctx context.Context, msg Message) error {
	resp, err := h.client.Do(ctx, httpclient.Request{
		Method:  h.method,
		URL:     h.url,
		Body:    msg.Body,
		Headers: map[string]string{EventTypeHeader: msg.EventType},
	})
	if err != nil {
		return fmt.Errorf("%s %s: %w", h.method, h.url, err)
	}
	if status := resp.StatusCode(); status < http.StatusOK || status >= http.StatusMultipleChoices {
		return fmt.Errorf("%s %s: status %d: %s", h.method, h.url, status, httpclient.Snippet(resp.Body()))
	}
	h.log.DebugObj("sink delivered event", "sink_delivery", map[string]any{
		"sink":       h.name,
		"kind":       KindHTTP,
		"event_type": msg.EventType,
		"status":     resp.StatusCode(),
	})
	return nil
}
