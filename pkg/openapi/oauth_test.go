package openapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	header http.Header
	body   []byte
}

// newRecordingServer answers every call with status/body and records the last request.
func newRecordingServer(t *testing.T, status int, body string) (*httptest.Server, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		rec.method = r.Method
		rec.path = r.URL.EscapedPath()
		rec.query = r.URL.RawQuery
		rec.header = r.Header.Clone()
		rec.body = raw
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func newTestOAuthClient(t *testing.T, baseURL string) *OAuthClient {
	t.Helper()
	client, err := NewOAuthClient("test_user", "test_key", true, WithBaseURL(baseURL))
	if err != nil {
		t.Fatalf("NewOAuthClient: %v", err)
	}
	return client
}

func TestNewOAuthClientSelectsEnvironment(t *testing.T) {
	testClient, err := NewOAuthClient("test_user", "test_key", true)
	if err != nil {
		t.Fatalf("NewOAuthClient test: %v", err)
	}
	if testClient.BaseURL() != TestOAuthURL {
		t.Fatalf("expected %s, got %s", TestOAuthURL, testClient.BaseURL())
	}

	prodClient, err := NewOAuthClient("test_user", "test_key", false)
	if err != nil {
		t.Fatalf("NewOAuthClient production: %v", err)
	}
	if prodClient.BaseURL() != ProductionOAuthURL {
		t.Fatalf("expected %s, got %s", ProductionOAuthURL, prodClient.BaseURL())
	}
}

func TestNewOAuthClientRejectsControlCharacters(t *testing.T) {
	_, err := NewOAuthClient("user\n", "key", true)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if cfgErr.Field != "username" {
		t.Fatalf("expected username field, got %q", cfgErr.Field)
	}

	if _, err := NewOAuthClient("user", "key\x00", true); !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError for apikey, got %v", err)
	}
}

func TestOAuthClientSendsBasicAuthAndJSONHeaders(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, `{"data":[]}`)
	client := newTestOAuthClient(t, srv.URL)

	if _, err := client.GetScopes(context.Background(), false); err != nil {
		t.Fatalf("GetScopes: %v", err)
	}

	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("test_user:test_key"))
	if got := rec.header.Get("Authorization"); got != want {
		t.Fatalf("Authorization = %q, want %q", got, want)
	}
	if got := rec.header.Get("Content-Type"); got != "application/json" {
		t.Fatalf("Content-Type = %q", got)
	}
	if got := rec.header.Get("User-Agent"); got != DefaultUserAgent {
		t.Fatalf("User-Agent = %q", got)
	}
}

func TestGetScopesLimitFlag(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, `{"data":["GET:a/b"]}`)
	client := newTestOAuthClient(t, srv.URL)

	body, err := client.GetScopes(context.Background(), true)
	if err != nil {
		t.Fatalf("GetScopes: %v", err)
	}
	if body != `{"data":["GET:a/b"]}` {
		t.Fatalf("unexpected body %q", body)
	}
	if rec.method != http.MethodGet || rec.path != "/scopes" || rec.query != "limit=1" {
		t.Fatalf("unexpected request %s %s?%s", rec.method, rec.path, rec.query)
	}

	if _, err := client.GetScopes(context.Background(), false); err != nil {
		t.Fatalf("GetScopes: %v", err)
	}
	if rec.query != "limit=0" {
		t.Fatalf("expected limit=0, got %q", rec.query)
	}
}

func TestCreateTokenPostsScopesAndTTL(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, `{"token":"tok-1"}`)
	client := newTestOAuthClient(t, srv.URL)

	body, err := client.CreateToken(context.Background(), []string{"scopes"}, 3600)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	if body != `{"token":"tok-1"}` {
		t.Fatalf("unexpected body %q", body)
	}
	if rec.method != http.MethodPost || rec.path != "/token" {
		t.Fatalf("unexpected request %s %s", rec.method, rec.path)
	}
	if string(rec.body) != `{"scopes":["scopes"],"ttl":3600}` {
		t.Fatalf("unexpected request body %s", rec.body)
	}
}

func TestCreateTokenNilScopesEncodesEmptyList(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, `{}`)
	client := newTestOAuthClient(t, srv.URL)

	if _, err := client.CreateToken(context.Background(), nil, 60); err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	var got CreateTokenRequest
	if err := json.Unmarshal(rec.body, &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.Scopes == nil || len(got.Scopes) != 0 || got.TTL != 60 {
		t.Fatalf("unexpected body %s", rec.body)
	}
}

func TestGetTokensFiltersByScope(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, `{"data":[]}`)
	client := newTestOAuthClient(t, srv.URL)

	if _, err := client.GetTokens(context.Background(), "GET:test.imprese.openapi.it/advance"); err != nil {
		t.Fatalf("GetTokens: %v", err)
	}
	if rec.method != http.MethodGet || rec.path != "/token" {
		t.Fatalf("unexpected request %s %s", rec.method, rec.path)
	}
	if rec.query != "scope=GET%3Atest.imprese.openapi.it%2Fadvance" {
		t.Fatalf("unexpected query %q", rec.query)
	}
}

func TestDeleteTokenUsesPathTemplate(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, `{"success":true}`)
	client := newTestOAuthClient(t, srv.URL)

	if _, err := client.DeleteToken(context.Background(), "abc"); err != nil {
		t.Fatalf("DeleteToken: %v", err)
	}
	if rec.method != http.MethodDelete {
		t.Fatalf("expected DELETE, got %s", rec.method)
	}
	if !strings.HasSuffix(rec.path, "/token/abc") {
		t.Fatalf("unexpected path %q", rec.path)
	}
	if len(rec.body) != 0 {
		t.Fatalf("expected empty body, got %s", rec.body)
	}
}

func TestDeleteTokenEscapesID(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, `{}`)
	client := newTestOAuthClient(t, srv.URL)

	if _, err := client.DeleteToken(context.Background(), "a/b c"); err != nil {
		t.Fatalf("DeleteToken: %v", err)
	}
	if rec.path != "/token/a%2Fb%20c" {
		t.Fatalf("unexpected path %q", rec.path)
	}
}

func TestGetCountersPath(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, `{"data":{}}`)
	client := newTestOAuthClient(t, srv.URL+"/")

	if _, err := client.GetCounters(context.Background(), "day", "2024-01-31"); err != nil {
		t.Fatalf("GetCounters: %v", err)
	}
	if rec.method != http.MethodGet || rec.path != "/counters/day/2024-01-31" || rec.query != "" {
		t.Fatalf("unexpected request %s %s?%s", rec.method, rec.path, rec.query)
	}
}

func TestOAuthClientNon2xxIsError(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusNotFound, `{"message":"token not found"}`)
	client := newTestOAuthClient(t, srv.URL)

	body, err := client.DeleteToken(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error, got body %q", body)
	}
	if body != "" {
		t.Fatalf("expected no body on error, got %q", body)
	}
	apiErr, ok := AsError(err)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.Kind != KindClient || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected error %+v", apiErr)
	}
	if apiErr.Body != `{"message":"token not found"}` {
		t.Fatalf("unexpected error body %q", apiErr.Body)
	}
	if apiErr.Op != "delete_token" {
		t.Fatalf("unexpected op %q", apiErr.Op)
	}
	if !IsNotFound(err) {
		t.Fatalf("IsNotFound should match")
	}
}

func TestOAuthClientServerError(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusBadGateway, "upstream down")
	client := newTestOAuthClient(t, srv.URL)

	_, err := client.GetCounters(context.Background(), "month", "2024-01")
	if KindOf(err) != KindServer {
		t.Fatalf("expected server error kind, got %v", err)
	}
	if !strings.Contains(err.Error(), "upstream down") {
		t.Fatalf("error should carry body snippet: %v", err)
	}
}
