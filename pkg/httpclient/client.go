package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/giantswarm/spotauth/pkg/oauth"
)

// DefaultTimeout is the default timeout for API requests.
const DefaultTimeout = 30 * time.Second

// Client issues authenticated requests against the Web API.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	baseURL   string
	timeout   time.Duration
	transport http.RoundTripper
}

// WithBaseURL sets the URL that relative request paths are resolved against.
func WithBaseURL(u string) Option {
	return func(o *clientOptions) {
		o.baseURL = u
	}
}

// WithTimeout sets the overall timeout of a request including its retry.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithBaseTransport sets the transport beneath the authenticating layer.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) {
		o.transport = rt
	}
}

// New creates a Client that authenticates through source.
func New(source TokenSource, opts ...Option) (*Client, error) {
	if source == nil {
		return nil, errNoTokenSource
	}

	o := clientOptions{
		baseURL: oauth.SpotifyAPIURL,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Client{
		baseURL: strings.TrimRight(o.baseURL, "/"),
		http: &http.Client{
			Transport: NewTransport(source, o.transport),
			Timeout:   o.timeout,
		},
	}, nil
}

// HTTPClient returns the underlying *http.Client for use with other libraries.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Do sends req. Authentication failures are returned as *AuthError, which
// errors.As finds through the *url.Error wrapper of net/http.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.http.Do(req)
}

// NewRequest builds a request for path, which is resolved against the base
// URL unless it is absolute.
func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		target = c.baseURL + "/" + strings.TrimLeft(path, "/")
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// GetJSON sends a GET for path and decodes a 2xx JSON response into out.
// Other statuses yield a *StatusError.
func (c *Client) GetJSON(ctx context.Context, path string, out interface{}) error {
	req, err := c.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyReadBytes))
		return newStatusError(resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
