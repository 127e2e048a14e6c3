package openapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestParseMethod(t *testing.T) {
	for _, m := range []string{"GET", "get", " Post ", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS", "TRACE", "CONNECT"} {
		got, err := ParseMethod(m)
		if err != nil {
			t.Fatalf("ParseMethod(%q): %v", m, err)
		}
		if got != strings.ToUpper(strings.TrimSpace(m)) {
			t.Fatalf("ParseMethod(%q) = %q", m, got)
		}
	}
	for _, m := range []string{"", "FOO", "GETS", "GET /"} {
		_, err := ParseMethod(m)
		var mErr *MethodError
		if !errors.As(err, &mErr) || !errors.Is(err, ErrInvalidMethod) {
			t.Fatalf("ParseMethod(%q): expected MethodError, got %v", m, err)
		}
	}
}

func TestErrorHelpersFollowWrapping(t *testing.T) {
	base := newStatusError("get_tokens", http.MethodGet, "https://x/token", http.StatusUnauthorized, []byte("denied"))
	wrapped := fmt.Errorf("list tokens: %w", base)

	if !IsUnauthorized(wrapped) {
		t.Fatalf("IsUnauthorized should see through wrapping")
	}
	if IsForbidden(wrapped) || IsNotFound(wrapped) {
		t.Fatalf("unexpected status match")
	}
	if KindOf(wrapped) != KindClient {
		t.Fatalf("unexpected kind %q", KindOf(wrapped))
	}
	if StatusCode(errors.New("plain")) != 0 || KindOf(errors.New("plain")) != "" {
		t.Fatalf("plain errors carry no status")
	}
}

func TestErrorMessageTruncatesBody(t *testing.T) {
	body := strings.Repeat("x", 2000)
	err := newStatusError("request", http.MethodGet, "https://x", http.StatusBadRequest, []byte(body))
	if len(err.Body) != 2000 {
		t.Fatalf("full body must be kept")
	}
	if !strings.HasSuffix(err.Error(), "...") || len(err.Error()) > 700 {
		t.Fatalf("message should be truncated, got %d bytes", len(err.Error()))
	}
}

func TestErrorTemporary(t *testing.T) {
	if newStatusError("op", "GET", "u", http.StatusBadRequest, nil).Temporary() {
		t.Fatalf("400 is not temporary")
	}
	if !newStatusError("op", "GET", "u", http.StatusTooManyRequests, nil).Temporary() {
		t.Fatalf("429 is temporary")
	}
	if !newStatusError("op", "GET", "u", http.StatusInternalServerError, nil).Temporary() {
		t.Fatalf("500 is temporary")
	}
}
