package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/openapi-it/openapi-client-go/internal/config"
	"github.com/openapi-it/openapi-client-go/internal/logger"
	"github.com/openapi-it/openapi-client-go/internal/storage"
	"github.com/openapi-it/openapi-client-go/pkg/openapi"
	"github.com/openapi-it/openapi-client-go/pkg/profiles"
	"github.com/openapi-it/openapi-client-go/pkg/sinks"
)

// ErrNoSinks is returned when an export is requested but no sink is enabled.
var ErrNoSinks = errors.New("no enabled sinks configured")

// Session wires configuration, the OpenAPI clients, the token ledger, token
// profiles and event sinks for one CLI invocation.
type Session struct {
	cfg      *config.Config
	log      logger.Logger
	store    storage.Store
	profiles *profiles.Registry
	dispatch *sinks.Dispatcher
	now      func() time.Time

	mu    sync.Mutex
	oauth *openapi.OAuthClient
	api   *openapi.Client
}

// NewSession loads profiles and sinks, opens the ledger and returns a ready session.
// Clients are created on first use so commands only need the credentials they use.
func NewSession(ctx context.Context, cfg *config.Config, log logger.Logger) (*Session, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	profileReg, err := profiles.LoadOptional(cfg.ProfilesFile)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	profileIDs := make([]string, 0)
	for _, p := range profileReg.All() {
		profileIDs = append(profileIDs, p.ID)
	}
	log.DebugObj("profiles loaded", "profiles_meta", map[string]any{
		"file": cfg.ProfilesFile,
		"ids":  profileIDs,
	})

	sinkFile, err := sinks.ReadFile(cfg.SinksFile)
	if err != nil {
		return nil, fmt.Errorf("load sinks: %w", err)
	}
	active := sinkFile.Active()
	dispatcher, err := sinks.Open(ctx, active, log)
	if err != nil {
		return nil, fmt.Errorf("open sinks: %w", err)
	}
	sinkSummaries := make([]map[string]string, 0, len(active))
	for _, s := range active {
		sinkSummaries = append(sinkSummaries, map[string]string{"name": s.Name, "kind": s.Kind})
	}
	log.DebugObj("sinks loaded", "sinks_meta", map[string]any{
		"file":  cfg.SinksFile,
		"count": len(sinkSummaries),
		"sinks": sinkSummaries,
	})

	store, err := storage.NewStore(cfg.LedgerType, cfg.LedgerPath, storage.Options{
		CleanupInterval: cfg.LedgerCleanupInterval,
	})
	if err != nil {
		_ = dispatcher.Close()
		return nil, fmt.Errorf("init ledger: %w", err)
	}

	return &Session{
		cfg:      cfg,
		log:      log,
		store:    store,
		profiles: profileReg,
		dispatch: dispatcher,
		now:      time.Now,
	}, nil
}

// Close releases the ledger and sink connections.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if err := s.dispatch.Close(); err != nil {
		errs = append(errs, err)
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close ledger: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Environment names the OAuth environment the session targets.
func (s *Session) Environment() string {
	if s.cfg.TestMode {
		return "test"
	}
	return "production"
}

// Profiles exposes the loaded token profiles.
func (s *Session) Profiles() []profiles.Profile { return s.profiles.All() }

// OAuth returns the Basic-auth client, building it on first use.
func (s *Session) OAuth() (*openapi.OAuthClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.oauth != nil {
		return s.oauth, nil
	}
	if err := s.cfg.RequireOAuth(); err != nil {
		return nil, err
	}

	opts := []openapi.Option{
		openapi.WithTimeout(s.cfg.HTTPTimeout),
		openapi.WithLogger(s.log),
	}
	if s.cfg.OAuthURL != "" {
		opts = append(opts, openapi.WithBaseURL(s.cfg.OAuthURL))
	}
	c, err := openapi.NewOAuthClient(s.cfg.Username, s.cfg.APIKey, s.cfg.TestMode, opts...)
	if err != nil {
		return nil, err
	}
	s.oauth = c
	return c, nil
}

// API returns the Bearer client, building it on first use.
func (s *Session) API() (*openapi.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.api != nil {
		return s.api, nil
	}
	if err := s.cfg.RequireToken(); err != nil {
		return nil, err
	}
	c, err := openapi.NewClient(s.cfg.Token, openapi.WithTimeout(s.cfg.HTTPTimeout), openapi.WithLogger(s.log))
	if err != nil {
		return nil, err
	}
	s.api = c
	return c, nil
}

// publish sends evt to every sink. Failures are logged and returned.
func (s *Session) publish(ctx context.Context, evt sinks.Event) error {
	if s.dispatch.Len() == 0 {
		return nil
	}
	n, err := s.dispatch.Send(ctx, evt)
	if err != nil {
		s.log.ErrorObj("event publish failed", "publish_error", map[string]any{
			"event_type": evt.Type,
			"delivered":  n,
			"error":      err.Error(),
		})
		return err
	}
	s.log.InfoObj("event published", "publish_meta", map[string]any{
		"event_type": evt.Type,
		"delivered":  n,
	})
	return nil
}

// fingerprint identifies a token in logs and events without revealing it.
func fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:6])
}

func mustJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}
