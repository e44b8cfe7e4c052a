// Package forge implements the GitHub-compatible REST client used by the
// collectors. One call per URL; pagination belongs to the caller.
package forge

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultTimeout bounds every forge request.
const DefaultTimeout = 10 * time.Second

const rateLimitResetHeader = "X-RateLimit-Reset"

// Client performs authenticated requests against a forge REST API.
// Transient failures are logged and surfaced as nil results so that
// callers can treat them as end-of-pagination.
type Client struct {
	token   string
	apiBase string
	rawBase string
	http    *http.Client
	logger  *slog.Logger
	sleep   func(time.Duration)
	now     func() time.Time
}

// Option is a functional option for Client.
type Option func(*Client)

// WithAPIBase overrides the REST API base URL.
func WithAPIBase(base string) Option {
	return func(c *Client) { c.apiBase = base }
}

// WithRawBase overrides the raw-content base URL.
func WithRawBase(base string) Option {
	return func(c *Client) { c.rawBase = base }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithSleep overrides the rate-limit sleep function (tests).
func WithSleep(fn func(time.Duration)) Option {
	return func(c *Client) { c.sleep = fn }
}

// WithNow overrides the clock used for rate-limit waits (tests).
func WithNow(fn func() time.Time) Option {
	return func(c *Client) { c.now = fn }
}

// NewClient creates a forge client authenticated with the given token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:   token,
		apiBase: "https://api.github.com",
		rawBase: "https://raw.githubusercontent.com",
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  slog.Default(),
		sleep:   time.Sleep,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs a GET against rawURL with optional query parameters and
// returns the response body. A rate-limited response (403 with a reset
// header) is waited out and retried; any other non-2xx status, network
// error, or timeout is logged and yields nil.
func (c *Client) Get(ctx context.Context, rawURL string, params map[string]string) []byte {
	for {
		body, retry := c.once(ctx, rawURL, params)
		if !retry {
			return body
		}
	}
}

// GetJSON performs a GET and decodes the JSON body into v. It returns
// false when the request failed or the body did not decode.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params map[string]string, v any) bool {
	body := c.Get(ctx, rawURL, params)
	if body == nil {
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		c.logger.Error("forge response decode failed", "url", rawURL, "error", err)
		return false
	}
	return true
}

// once issues a single request. The second return value requests a retry
// after a rate-limit wait.
func (c *Client) once(ctx context.Context, rawURL string, params map[string]string) ([]byte, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		c.logger.Error("forge request build failed", "url", rawURL, "error", err)
		return nil, false
	}
	if len(params) > 0 {
		q := req.URL.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("forge network error", "url", rawURL, "error", err)
		return nil, false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusForbidden && resp.Header.Get(rateLimitResetHeader) != "" {
		c.waitForRateLimit(resp.Header.Get(rateLimitResetHeader))
		return nil, true
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("forge body read failed", "url", rawURL, "error", err)
		return nil, false
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("forge API error",
			"url", rawURL,
			"status", resp.StatusCode,
			"body", truncate(string(body), 512),
		)
		return nil, false
	}

	return body, false
}

// waitForRateLimit sleeps until one second past the advertised reset time.
func (c *Client) waitForRateLimit(reset string) {
	resetUnix, err := strconv.ParseInt(reset, 10, 64)
	if err != nil {
		resetUnix = c.now().Unix()
	}
	wait := time.Unix(resetUnix, 0).Sub(c.now())
	if wait < 0 {
		wait = 0
	}
	wait += time.Second
	c.logger.Warn("forge rate limit reached", "wait", wait)
	c.sleep(wait)
}

// pageParams returns the standard pagination query parameters.
func pageParams(page int, extra map[string]string) map[string]string {
	params := map[string]string{
		"per_page": "100",
		"page":     strconv.Itoa(page),
	}
	for k, v := range extra {
		params[k] = v
	}
	return params
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// joinURL concatenates a base URL and a path.
func joinURL(base, path string) string {
	u, err := url.JoinPath(base, path)
	if err != nil {
		return base + path
	}
	return u
}
