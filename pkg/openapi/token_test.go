package openapi

import (
	"errors"
	"testing"
	"time"
)

func TestParseTokenResponse(t *testing.T) {
	cases := map[string]string{
		"bare":     `{"token":"abc","scopes":["GET:a/b"],"expire":1700000000}`,
		"envelope": `{"success":true,"data":{"token":"abc","scopes":["GET:a/b"],"expire":1700000000}}`,
		"list":     `{"data":[{"token":"abc","scopes":["GET:a/b"],"expire":1700000000}]}`,
	}
	for name, body := range cases {
		tok, err := ParseTokenResponse(body)
		if err != nil {
			t.Fatalf("%s: ParseTokenResponse: %v", name, err)
		}
		if tok.Token != "abc" || len(tok.Scopes) != 1 || tok.Scopes[0] != "GET:a/b" {
			t.Fatalf("%s: unexpected token %+v", name, tok)
		}
		if !tok.ExpiresAt().Equal(time.Unix(1700000000, 0)) {
			t.Fatalf("%s: unexpected expiry %v", name, tok.ExpiresAt())
		}
	}
}

func TestParseTokenResponseErrors(t *testing.T) {
	if _, err := ParseTokenResponse(`not json`); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := ParseTokenResponse(`{"data":{}}`); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
	if !(TokenResponse{}).ExpiresAt().IsZero() {
		t.Fatalf("missing expire should give zero time")
	}
}
