package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spotcat/spotcat/internal/shared"
	"golang.org/x/time/rate"
)

const spotifyBaseURL = "https://api.spotify.com/v1"

// ErrorKind classifies an API failure into the retry policy it receives.
type ErrorKind int

const (
	// KindRateLimited is a 429; retried after the hinted or backed-off wait.
	KindRateLimited ErrorKind = iota
	// KindAuthFailed is a 401; terminal, aborts the run.
	KindAuthFailed
	// KindNotFound is a 404; terminal, treated as "no data" by fetchers.
	KindNotFound
	// KindForbidden is a 403; terminal.
	KindForbidden
	// KindTransient covers 5xx and network timeouts; retried with backoff.
	KindTransient
	// KindUnexpected is any other status; retried once, then terminal.
	KindUnexpected
)

// APIError is the typed outcome of a failed request. Callers never see raw
// transport errors, only these.
type APIError struct {
	Kind       ErrorKind
	Status     int
	Endpoint   string
	RetryAfter time.Duration // nonzero only when the provider sent a Retry-After hint
	Err        error         // underlying transport error, if any
}

func (e *APIError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("spotify: %s: %v", e.Endpoint, e.Err)
	case e.Kind == KindRateLimited && e.RetryAfter > 0:
		return fmt.Sprintf("spotify: %s: status %d (retry after %s)", e.Endpoint, e.Status, e.RetryAfter)
	default:
		return fmt.Sprintf("spotify: %s: status %d", e.Endpoint, e.Status)
	}
}

// Unwrap maps the error onto the shared sentinels so callers can use
// [errors.Is] without importing the HTTP layer's taxonomy.
func (e *APIError) Unwrap() error {
	switch e.Kind {
	case KindRateLimited:
		return shared.ErrRateLimited
	case KindAuthFailed:
		return shared.ErrAuthFailed
	case KindNotFound:
		return shared.ErrNotFound
	case KindForbidden:
		return shared.ErrForbidden
	default:
		return shared.ErrTransient
	}
}

// Client is a Spotify Web API client scoped to a single run. It is
// constructed once with a bearer token and injected into every operation;
// there is no module-level instance.
type Client struct {
	baseURL     string
	token       string
	httpClient  *http.Client
	limiter     *rate.Limiter
	backoff     Backoff
	maxAttempts int
	batchDelay  time.Duration
	logger      *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used by tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBackoff overrides the retry backoff configuration.
func WithBackoff(b Backoff) Option {
	return func(c *Client) { c.backoff = b }
}

// WithMaxAttempts overrides the retry ceiling.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithMinInterval sets the global minimum time between outbound requests.
// Zero disables throttling.
func WithMinInterval(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithBatchDelay sets the pause between batch chunks and result pages.
func WithBatchDelay(d time.Duration) Option {
	return func(c *Client) { c.batchDelay = d }
}

// WithLogger attaches a logger for retry and batch diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Client authenticated with the given bearer token. The
// token is a prerequisite dependency; the client does not refresh it.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		baseURL:     spotifyBaseURL,
		token:       token,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		limiter:     rate.NewLimiter(rate.Every(defaultMinInterval), 1),
		backoff:     DefaultBackoff(),
		maxAttempts: defaultMaxAttempts,
		batchDelay:  defaultBatchDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	return c
}

// get performs a GET against an API endpoint, decoding the 200 body into out.
// Every call passes through the retry engine.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	u := c.baseURL + "/" + strings.TrimPrefix(endpoint, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return c.getURL(ctx, u, out)
}

// getURL is like get but accepts a fully-formed URL, as returned by the
// provider's "next page" cursors. Relative endpoints are resolved against the
// configured base URL.
func (c *Client) getURL(ctx context.Context, rawURL string, out any) error {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = c.baseURL + "/" + strings.TrimPrefix(rawURL, "/")
	}
	return c.withRetry(ctx, rawURL, func() error {
		return c.doGet(ctx, rawURL, out)
	})
}

// doGet performs one HTTP round trip and maps the response onto the typed
// error taxonomy.
func (c *Client) doGet(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Kind: KindTransient, Endpoint: rawURL, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &APIError{Kind: KindTransient, Status: resp.StatusCode, Endpoint: rawURL, Err: fmt.Errorf("failed to decode response: %w", err)}
		}
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return &APIError{Kind: KindRateLimited, Status: resp.StatusCode, Endpoint: rawURL, RetryAfter: retryAfter(resp)}
	case resp.StatusCode == http.StatusUnauthorized:
		return &APIError{Kind: KindAuthFailed, Status: resp.StatusCode, Endpoint: rawURL}
	case resp.StatusCode == http.StatusNotFound:
		return &APIError{Kind: KindNotFound, Status: resp.StatusCode, Endpoint: rawURL}
	case resp.StatusCode == http.StatusForbidden:
		return &APIError{Kind: KindForbidden, Status: resp.StatusCode, Endpoint: rawURL}
	case resp.StatusCode >= 500:
		return &APIError{Kind: KindTransient, Status: resp.StatusCode, Endpoint: rawURL}
	default:
		return &APIError{Kind: KindUnexpected, Status: resp.StatusCode, Endpoint: rawURL}
	}
}

// retryAfter parses the Retry-After hint in seconds, if present.
func retryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// withRetry executes fn under the global throttle with up to maxAttempts
// tries. Rate-limit hints are honored up to the backoff ceiling; auth
// failures, 404s and 403s return immediately; unexpected statuses get one
// retry. Exhaustion surfaces as [shared.ErrRateLimitExceeded] carrying the
// last underlying error. Backoff state never leaks across calls.
func (c *Client) withRetry(ctx context.Context, desc string, fn func() error) error {
	var lastErr error
	unexpectedRetried := false

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			return err
		}

		switch apiErr.Kind {
		case KindAuthFailed, KindNotFound, KindForbidden:
			return err
		case KindRateLimited:
			if apiErr.RetryAfter > 0 {
				wait := min(apiErr.RetryAfter, maxBackoffDelay)
				c.logger.Warn("rate limit hit, honoring retry-after", "wait", wait, "attempt", attempt+1, "max", c.maxAttempts)
				if !sleep(ctx, wait) {
					return ctx.Err()
				}
				continue
			}
			c.logger.Warn("rate limit hit, backing off", "attempt", attempt+1, "max", c.maxAttempts)
		case KindUnexpected:
			if unexpectedRetried {
				return err
			}
			unexpectedRetried = true
			c.logger.Warn("unexpected status, retrying once", "status", apiErr.Status, "endpoint", desc)
		case KindTransient:
			c.logger.Debug("transient failure, retrying", "attempt", attempt+1, "endpoint", desc)
		}

		if attempt < c.maxAttempts-1 {
			if !sleep(ctx, c.backoff.Delay(attempt)) {
				return ctx.Err()
			}
		}
	}

	return fmt.Errorf("%w: %d attempts (%s): %v", shared.ErrRateLimitExceeded, c.maxAttempts, desc, lastErr)
}
