package appliance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netsmith/pkg/buildinfo"
	"github.com/matzehuels/netsmith/pkg/errors"
	"github.com/matzehuels/netsmith/pkg/httputil"
	"github.com/matzehuels/netsmith/pkg/observability"
)

// DefaultTimeout bounds every request made by a Client.
const DefaultTimeout = 10 * time.Second

// Item is one entry of a listing: the entity id it was keyed by and its
// loosely typed fields. Numeric fields are json.Number values.
type Item struct {
	EID    string
	Fields map[string]any
}

// Response is the decoded body of a command response.
type Response map[string]any

// Client talks to one appliance. It is safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
	host    string
	headers map[string]string
	backoff httputil.Backoff
	logger  *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHeaders sets headers sent with every request.
func WithHeaders(h map[string]string) Option {
	return func(c *Client) { c.headers = h }
}

// WithBackoff sets the retry policy for listings.
func WithBackoff(b httputil.Backoff) Option {
	return func(c *Client) { c.backoff = b }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for the appliance at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse appliance URL")
	}
	c := &Client{
		http:    &http.Client{Timeout: DefaultTimeout},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		host:    u.Host,
		backoff: httputil.DefaultBackoff,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the appliance URL the client was created with.
func (c *Client) BaseURL() string { return c.baseURL }

// List fetches path, restricted to fields, and returns the items found under
// element in the order the appliance reported them.
func (c *Client) List(ctx context.Context, path, element string, fields ...string) ([]Item, error) {
	target := c.baseURL + path
	if len(fields) > 0 {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		target += sep + "fields=" + strings.Join(fields, ",")
	}

	var items []Item
	err := httputil.Retry(ctx, c.backoff, func() error {
		body, err := c.do(ctx, http.MethodGet, target, path, nil)
		if err != nil {
			return err
		}
		items, err = decodeListing(body, element)
		return err
	})
	if err != nil {
		return nil, err
	}
	c.logger.Debug("listed", "path", path, "element", element, "count", len(items))
	return items, nil
}

// Post sends payload as JSON to path. A non-2xx status or a non-empty
// "errors" list in the response is reported as a REMOTE_OPERATION error.
func (c *Client) Post(ctx context.Context, path string, payload any) (Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "encode payload for %s", path)
	}

	body, err := c.do(ctx, http.MethodPost, c.baseURL+path, path, data)
	if err != nil {
		// Commands are not idempotent; never surface them as retryable.
		if re, ok := err.(*httputil.RetryableError); ok {
			err = re.Err
		}
		return nil, err
	}

	resp := Response{}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, errors.Wrap(errors.ErrCodeRemoteOperation, err, "decode response from %s", path)
		}
	}
	if msgs := responseErrors(resp); len(msgs) > 0 {
		return resp, errors.New(errors.ErrCodeRemoteOperation, "%s: %s", path, strings.Join(msgs, "; "))
	}
	c.logger.Debug("posted", "path", path)
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, target, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request for %s", path)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, method, c.host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, c.host, path, err)
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "%s %s", method, path)
		}
		return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "%s %s", method, path))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, method, c.host, path, resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read %s", path))
	}
	if err := checkStatus(resp.StatusCode, method, path, body); err != nil {
		return nil, err
	}
	return body, nil
}

func checkStatus(code int, method, path string, body []byte) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound && method == http.MethodGet:
		return errors.New(errors.ErrCodeNotFound, "%s: status %d", path, code)
	case code >= 500:
		return httputil.Retryable(errors.New(errors.ErrCodeNetwork, "%s: status %d", path, code))
	default:
		return errors.New(errors.ErrCodeRemoteOperation, "%s: status %d: %s", path, code, snippet(body))
	}
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

// responseErrors extracts the appliance's "errors" list, if any.
func responseErrors(resp Response) []string {
	raw, ok := resp["errors"]
	if !ok {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		if s, ok := raw.(string); ok && s != "" {
			return []string{s}
		}
		return nil
	}
	msgs := make([]string, 0, len(list))
	for _, v := range list {
		msgs = append(msgs, fmt.Sprint(v))
	}
	return msgs
}
