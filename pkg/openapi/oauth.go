package openapi

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"

	"github.com/openapi-it/openapi-client-go/pkg/httpclient"
)

const (
	// ProductionOAuthURL is the OAuth service used when test mode is off.
	ProductionOAuthURL = "https://oauth.openapi.it"
	// TestOAuthURL is the sandbox OAuth service.
	TestOAuthURL = "https://test.oauth.openapi.it"
)

// OAuthClient manages access tokens using Basic credentials.
type OAuthClient struct {
	c    *caller
	base string
}

// CreateTokenRequest is the body posted to /token.
type CreateTokenRequest struct {
	Scopes []string `json:"scopes"`
	TTL    uint64   `json:"ttl"`
}

// NewOAuthClient builds a client for the test or production OAuth service.
// It fails with *ConfigError when the credentials cannot be encoded into a header.
func NewOAuthClient(username, apiKey string, test bool, opts ...Option) (*OAuthClient, error) {
	o := buildOptions(opts)

	if err := httpclient.ValidateHeader(headerAuthorization, username); err != nil {
		return nil, &ConfigError{Field: "username", Err: err}
	}
	if err := httpclient.ValidateHeader(headerAuthorization, apiKey); err != nil {
		return nil, &ConfigError{Field: "apikey", Err: err}
	}

	base := o.baseURL
	if base == "" {
		base = TestOAuthURL
		if !test {
			base = ProductionOAuthURL
		}
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, &ConfigError{Field: "base_url", Err: err}
	}

	c, err := newCaller(basicAuth(username, apiKey), o)
	if err != nil {
		return nil, err
	}
	return &OAuthClient{c: c, base: strings.TrimRight(base, "/")}, nil
}

// BaseURL returns the OAuth service root the client talks to.
func (o *OAuthClient) BaseURL() string { return o.base }

// GetScopes lists the scopes available to the account. With limit set the
// service returns the reduced listing.
func (o *OAuthClient) GetScopes(ctx context.Context, limit bool) (string, error) {
	flag := "0"
	if limit {
		flag = "1"
	}
	return o.c.call(ctx, "get_scopes", http.MethodGet, o.base+"/scopes", nil, map[string]string{"limit": flag})
}

// CreateToken issues a token valid for ttl seconds on the given scopes.
func (o *OAuthClient) CreateToken(ctx context.Context, scopes []string, ttl uint64) (string, error) {
	if scopes == nil {
		scopes = []string{}
	}
	body := CreateTokenRequest{Scopes: scopes, TTL: ttl}
	return o.c.call(ctx, "create_token", http.MethodPost, o.base+"/token", body, nil)
}

// GetTokens lists existing tokens granting scope.
func (o *OAuthClient) GetTokens(ctx context.Context, scope string) (string, error) {
	return o.c.call(ctx, "get_tokens", http.MethodGet, o.base+"/token", nil, map[string]string{"scope": scope})
}

// DeleteToken revokes the token with the given id.
func (o *OAuthClient) DeleteToken(ctx context.Context, id string) (string, error) {
	return o.c.call(ctx, "delete_token", http.MethodDelete, o.base+"/token/"+url.PathEscape(id), nil, nil)
}

// GetCounters returns usage counters for period ("day", "month", ...) at date.
func (o *OAuthClient) GetCounters(ctx context.Context, period, date string) (string, error) {
	u := o.base + "/counters/" + url.PathEscape(period) + "/" + url.PathEscape(date)
	return o.c.call(ctx, "get_counters", http.MethodGet, u, nil, nil)
}

func basicAuth(username, apiKey string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+apiKey))
}
