package domain

import "time"

// TokenRecord describes a token issued through this tool.
type TokenRecord struct {
	ID          string    `json:"id"`
	Scopes      []string  `json:"scopes"`
	TTLSeconds  uint64    `json:"ttl_seconds"`
	Profile     string    `json:"profile,omitempty"`
	Environment string    `json:"environment"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the record is past its expiry at now.
func (r TokenRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}
