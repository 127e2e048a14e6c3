package openapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNoToken is returned by ParseTokenResponse when the body carries no token.
var ErrNoToken = errors.New("response contains no token")

// TokenResponse is the useful part of a create-token reply.
type TokenResponse struct {
	Token  string   `json:"token"`
	Scopes []string `json:"scopes,omitempty"`
	// Expire is a unix timestamp in seconds; zero when the service omits it.
	Expire int64 `json:"expire,omitempty"`
}

// ExpiresAt converts Expire to a time, or returns the zero time.
func (t TokenResponse) ExpiresAt() time.Time {
	if t.Expire <= 0 {
		return time.Time{}
	}
	return time.Unix(t.Expire, 0).UTC()
}

// ParseTokenResponse decodes the body returned by CreateToken. Both the bare
// form {"token": ...} and the enveloped form {"data": {"token": ...}} are accepted.
func ParseTokenResponse(body string) (TokenResponse, error) {
	var envelope struct {
		TokenResponse
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		return TokenResponse{}, fmt.Errorf("decode token response: %w", err)
	}
	if envelope.Token != "" {
		return envelope.TokenResponse, nil
	}
	if len(envelope.Data) > 0 {
		var data TokenResponse
		if err := json.Unmarshal(envelope.Data, &data); err == nil && data.Token != "" {
			return data, nil
		}
		var list []TokenResponse
		if err := json.Unmarshal(envelope.Data, &list); err == nil && len(list) > 0 && list[0].Token != "" {
			return list[0], nil
		}
	}
	return TokenResponse{}, ErrNoToken
}
