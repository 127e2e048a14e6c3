package openapi

import (
	"time"

	"github.com/openapi-it/openapi-client-go/pkg/httpclient"
)

// Version is reported in the default User-Agent.
const Version = "0.1.0"

const (
	// DefaultTimeout bounds each call unless overridden with WithTimeout.
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "openapi-client-go/" + Version
)

type options struct {
	timeout   time.Duration
	baseURL   string
	userAgent string
	log       Logger
	transport httpclient.Client
}

// Option customizes a client at construction time.
type Option func(*options)

// WithTimeout sets the per-call timeout of the built-in transport. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithBaseURL replaces the OAuth service base URL. It has no effect on Client,
// whose calls always carry a full URL.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithLogger attaches a structured logger. Calls are logged at debug level and
// failures at warn level.
func WithLogger(log Logger) Option {
	return func(o *options) { o.log = log }
}

// WithTransport makes the client send through t instead of building its own
// resty transport. Authentication headers are then the caller's concern.
func WithTransport(t httpclient.Client) Option {
	return func(o *options) { o.transport = t }
}

func buildOptions(opts []Option) options {
	o := options{
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	o.log = ensureLogger(o.log)
	return o
}
