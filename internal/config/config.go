package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultEnvFile is read before the environment; values already set in the environment win.
const DefaultEnvFile = "configs/.env"

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	Username string `mapstructure:"openapi_username"`
	APIKey   string `mapstructure:"openapi_apikey"`
	Token    string `mapstructure:"openapi_token"`
	TestMode bool   `mapstructure:"openapi_test"`
	OAuthURL string `mapstructure:"openapi_oauth_url"`

	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`

	LedgerType            string        `mapstructure:"ledger_type"`
	LedgerPath            string        `mapstructure:"ledger_path"`
	LedgerCleanupSeconds  int64         `mapstructure:"ledger_cleanup_interval_seconds"`
	LedgerCleanupInterval time.Duration `mapstructure:"-"`

	ProfilesFile string `mapstructure:"profiles_file"`
	SinksFile    string `mapstructure:"sinks_file"`
}

var (
	ErrMissingCredentials = errors.New("OPENAPI_USERNAME and OPENAPI_APIKEY must be set")
	ErrMissingToken       = errors.New("OPENAPI_TOKEN must be set")
)

// LoadFrom reads envFile into the environment, then builds the configuration
// from defaults and environment variables. A missing envFile is not an error.
func LoadFrom(envFile string) (*Config, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	v := viper.New()

	v.SetDefault("app_name", "openapi-client")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("openapi_username", "")
	v.SetDefault("openapi_apikey", "")
	v.SetDefault("openapi_token", "")
	v.SetDefault("openapi_test", true)
	v.SetDefault("openapi_oauth_url", "")
	v.SetDefault("http_timeout_seconds", 30)
	v.SetDefault("ledger_type", "bbolt")
	v.SetDefault("ledger_path", "./data/tokens.db")
	v.SetDefault("ledger_cleanup_interval_seconds", int64(time.Hour/time.Second))
	v.SetDefault("profiles_file", "./configs/profiles.yaml")
	v.SetDefault("sinks_file", "./configs/sinks.yaml")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.HTTPTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.LedgerCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid ledger_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.LedgerCleanupInterval = time.Duration(cfg.LedgerCleanupSeconds) * time.Second

	return &cfg, nil
}

// RequireOAuth checks that Basic credentials are present.
func (c *Config) RequireOAuth() error {
	if c.Username == "" || c.APIKey == "" {
		return ErrMissingCredentials
	}
	return nil
}

// RequireToken checks that a Bearer token is present.
func (c *Config) RequireToken() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	return nil
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	c.APIKey = redact(c.APIKey)
	c.Token = redact(c.Token)
	return c
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}
