package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openapi-it/openapi-client-go/internal/domain"
	"github.com/openapi-it/openapi-client-go/pkg/openapi"
	"github.com/openapi-it/openapi-client-go/pkg/profiles"
	"github.com/openapi-it/openapi-client-go/pkg/sinks"
)

// CreateTokenInput selects scopes and lifetime for a new token. Scopes from
// Profile and Scopes are combined; TTL overrides the profile lifetime when non-zero.
type CreateTokenInput struct {
	Profile string
	Scopes  []string
	TTL     uint64
}

// Scopes lists the scopes available to the account.
func (s *Session) Scopes(ctx context.Context, limit bool) (string, error) {
	oc, err := s.OAuth()
	if err != nil {
		return "", err
	}
	return oc.GetScopes(ctx, limit)
}

// CreateToken issues a token, records it in the ledger and emits token.created.
func (s *Session) CreateToken(ctx context.Context, in CreateTokenInput) (string, error) {
	scopes, ttl, err := s.resolveTokenRequest(in)
	if err != nil {
		return "", err
	}

	oc, err := s.OAuth()
	if err != nil {
		return "", err
	}
	body, err := oc.CreateToken(ctx, scopes, ttl)
	if err != nil {
		return "", err
	}

	tok, err := openapi.ParseTokenResponse(body)
	if err != nil {
		s.log.WarnObj("token response not recorded", "ledger_skip", map[string]any{"error": err.Error()})
		return body, nil
	}

	now := s.now().UTC()
	rec := domain.TokenRecord{
		ID:          tok.Token,
		Scopes:      scopes,
		TTLSeconds:  ttl,
		Profile:     in.Profile,
		Environment: s.Environment(),
		CreatedAt:   now,
		ExpiresAt:   tok.ExpiresAt(),
	}
	if len(tok.Scopes) > 0 {
		rec.Scopes = tok.Scopes
	}
	if rec.ExpiresAt.IsZero() {
		rec.ExpiresAt = now.Add(time.Duration(ttl) * time.Second)
	}
	if err := s.store.SaveToken(rec); err != nil {
		s.log.ErrorObj("ledger save failed", "ledger_error", map[string]any{"error": err.Error()})
	}

	s.log.InfoObj("token created", "token_meta", map[string]any{
		"fingerprint": fingerprint(rec.ID),
		"scopes":      rec.Scopes,
		"expires_at":  rec.ExpiresAt,
	})
	_ = s.publish(ctx, sinks.NewEvent(sinks.EventTokenCreated, s.Environment(), fingerprint(rec.ID), mustJSON(map[string]any{
		"scopes":      rec.Scopes,
		"ttl_seconds": rec.TTLSeconds,
		"profile":     rec.Profile,
		"expires_at":  rec.ExpiresAt,
	})))
	return body, nil
}

func (s *Session) resolveTokenRequest(in CreateTokenInput) ([]string, uint64, error) {
	var scopes []string
	ttl := in.TTL

	if in.Profile != "" {
		p, ok := s.profiles.ByID(in.Profile)
		if !ok {
			return nil, 0, fmt.Errorf("unknown profile %q", in.Profile)
		}
		scopes = append(scopes, p.Scopes...)
		if ttl == 0 {
			ttl = p.TTLSeconds
		}
	}
	scopes = append(scopes, in.Scopes...)

	if len(scopes) == 0 {
		return nil, 0, errors.New("at least one scope or a profile is required")
	}
	for _, sc := range scopes {
		if _, err := openapi.ParseScope(sc); err != nil {
			return nil, 0, err
		}
	}
	if ttl == 0 {
		ttl = profiles.DefaultTTLSeconds
	}
	if ttl > profiles.MaxTTLSeconds {
		return nil, 0, fmt.Errorf("ttl %d exceeds the maximum of %d seconds", ttl, profiles.MaxTTLSeconds)
	}
	return dedupe(scopes), ttl, nil
}

// Tokens lists server-side tokens granting scope.
func (s *Session) Tokens(ctx context.Context, scope string) (string, error) {
	oc, err := s.OAuth()
	if err != nil {
		return "", err
	}
	return oc.GetTokens(ctx, scope)
}

// DeleteToken revokes id on the server, drops it from the ledger and emits token.deleted.
func (s *Session) DeleteToken(ctx context.Context, id string) (string, error) {
	oc, err := s.OAuth()
	if err != nil {
		return "", err
	}
	body, err := oc.DeleteToken(ctx, id)
	if err != nil {
		return "", err
	}

	if _, err := s.store.DeleteToken(id); err != nil {
		s.log.ErrorObj("ledger delete failed", "ledger_error", map[string]any{"error": err.Error()})
	}
	s.log.InfoObj("token deleted", "token_meta", map[string]any{"fingerprint": fingerprint(id)})
	_ = s.publish(ctx, sinks.NewEvent(sinks.EventTokenDeleted, s.Environment(), fingerprint(id), ""))
	return body, nil
}

// LocalTokens lists unexpired tokens recorded by this machine.
func (s *Session) LocalTokens() ([]domain.TokenRecord, error) {
	return s.store.ActiveTokens()
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
