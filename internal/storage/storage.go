package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/openapi-it/openapi-client-go/internal/domain"
)

// Package storage keeps a local ledger of tokens issued from this machine.

// Store persists token records until they expire.
type Store interface {
	Close() error
	SaveToken(rec domain.TokenRecord) error
	DeleteToken(id string) (bool, error)
	ActiveTokens() ([]domain.TokenRecord, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	CleanupInterval time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

const defaultCleanupInterval = time.Hour

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                                { return nil }
func (noopStore) SaveToken(domain.TokenRecord) error          { return nil }
func (noopStore) DeleteToken(string) (bool, error)            { return false, nil }
func (noopStore) ActiveTokens() ([]domain.TokenRecord, error) { return nil, nil }
