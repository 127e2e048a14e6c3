package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// RequestIDHeader carries a per-request identifier for server-side correlation.
const RequestIDHeader = "X-Request-ID"

// Options configures a RestyClient.
type Options struct {
	Timeout time.Duration
	// Headers are sent with every request. They are validated up front so a
	// malformed credential fails at construction rather than on first use.
	Headers   map[string]string
	UserAgent string
}

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a RestyClient with default headers applied to every call.
func NewRestyClient(opts Options) (*RestyClient, error) {
	if err := ValidateHeaders(opts.Headers); err != nil {
		return nil, err
	}
	if opts.UserAgent != "" {
		if err := ValidateHeader("User-Agent", opts.UserAgent); err != nil {
			return nil, err
		}
	}

	c := newRestyBaseClient(opts.Timeout)
	if len(opts.Headers) > 0 {
		c.SetHeaders(opts.Headers)
	}
	if opts.UserAgent != "" {
		c.SetHeader("User-Agent", opts.UserAgent)
	}
	c.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if r.Header.Get(RequestIDHeader) == "" {
			r.SetHeader(RequestIDHeader, uuid.NewString())
		}
		return nil
	})
	return &RestyClient{client: c}, nil
}

// newRestyBaseClient creates a resty.Client with the given timeout. GET bodies
// are sent as given; resty drops them otherwise.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New().SetAllowGetMethodPayload(true)
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return c
}

// Do performs the request and returns the response regardless of status code.
// Only transport failures (DNS, TLS, timeouts, cancellation) produce an error.
func (r *RestyClient) Do(ctx context.Context, req Request) (Response, error) {
	rr := r.client.R().SetContext(ctx)
	if req.Body != nil {
		rr.SetBody(req.Body)
	}
	if len(req.Query) > 0 {
		rr.SetQueryParams(req.Query)
	}
	if len(req.Headers) > 0 {
		rr.SetHeaders(req.Headers)
	}
	resp, err := rr.Execute(req.Method, req.URL)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }
