package sinks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openapi-it/openapi-client-go/pkg/httpclient"
)

func TestHTTPSinkDelivers(t *testing.T) {
	var received Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if got := r.Header.Get("X-Test"); got != "1" {
			t.Errorf("missing configured header, got %q", got)
		}
		if got := r.Header.Get(EventTypeHeader); got != EventTokenCreated {
			t.Errorf("missing event type header, got %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("unexpected content type %q", got)
		}
		if r.Header.Get(httpclient.RequestIDHeader) == "" {
			t.Errorf("missing request id")
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s, err := openHTTP(context.Background(), Spec{
		Name: "hook",
		Kind: KindHTTP,
		HTTP: &HTTPSpec{URL: srv.URL, Method: http.MethodPut, Headers: map[string]string{"X-Test": "1"}, TimeoutSeconds: 2},
	}, nil)
	if err != nil {
		t.Fatalf("openHTTP: %v", err)
	}

	d := NewDispatcher(nil, s)
	if _, err := d.Send(context.Background(), NewEvent(EventTokenCreated, "test", "tok-1", `{"scopes":["GET:a/b"]}`)); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if received.Type != EventTokenCreated || received.Subject != "tok-1" {
		t.Fatalf("server received unexpected event %+v", received)
	}
	if string(received.Payload) != `{"scopes":["GET:a/b"]}` {
		t.Fatalf("payload not embedded as JSON: %s", received.Payload)
	}
}

func TestHTTPSinkErrorQuotesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s, err := openHTTP(context.Background(), Spec{Name: "hook", Kind: KindHTTP, HTTP: &HTTPSpec{URL: srv.URL, Method: http.MethodPost, TimeoutSeconds: 1}}, nil)
	if err != nil {
		t.Fatalf("openHTTP: %v", err)
	}
	err = s.Send(context.Background(), Message{EventType: EventTokenDeleted, Body: []byte(`{}`)})
	if err == nil || !strings.Contains(err.Error(), "status 429") || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected status error with body, got %v", err)
	}
}

func TestHTTPSinkRejectsBadHeaders(t *testing.T) {
	_, err := openHTTP(context.Background(), Spec{
		Name: "hook",
		Kind: KindHTTP,
		HTTP: &HTTPSpec{URL: "https://example.com", Method: http.MethodPost, Headers: map[string]string{"X-Bad": "a\nb"}},
	}, nil)
	if err == nil {
		t.Fatalf("expected header validation error")
	}
}
