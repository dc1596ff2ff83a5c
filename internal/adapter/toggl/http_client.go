package toggl

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.track.toggl.com"

	// DefaultTimeout bounds every single attempt, not the whole retry chain.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the number of attempts after the first one.
	DefaultMaxRetries = 3

	defaultBackoff = 500 * time.Millisecond

	// Toggl answers "api_token" in the password slot with token auth.
	tokenPassword = "api_token"

	maxResponseSize = 10 * 1024 * 1024
)

// ErrClosed is returned for requests issued after Close.
var ErrClosed = errors.New("toggl: client closed")

// retryStatuses are the statuses Toggl uses for transient failures. 402 is
// what the reports API sends when the hourly quota is exhausted.
var retryStatuses = map[int]bool{
	http.StatusPaymentRequired:     true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Client talks to the Toggl Track API v9 and the Reports API v3.
type Client struct {
	baseURL    string
	apiToken   string
	http       *http.Client
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
	closed     atomic.Bool
	log        *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithBackoff sets the delay before the first retry; later retries double it.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// WithMaxRetries sets how many times a transient failure is retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithRateLimit paces attempts. Use rate.Inf to disable pacing.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(limit, burst) }
}

func NewClient(baseURL, apiToken string, log *slog.Logger, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	c := &Client{
		baseURL:  baseURL,
		apiToken: apiToken,
		http: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: transport,
		},
		// Toggl documents roughly one request per second per token.
		limiter:    rate.NewLimiter(rate.Every(time.Second), 3),
		maxRetries: DefaultMaxRetries,
		backoff:    defaultBackoff,
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases idle connections. It is safe to call more than once.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.http.CloseIdleConnections()
	c.log.Debug("toggl client closed")
	return nil
}

// TokenPreview returns a redacted form of a token that is safe to log.
func TokenPreview(token string) string {
	if len(token) > 8 {
		return token[:4] + "..." + token[len(token)-4:]
	}
	return "***"
}

// do performs one logical request and returns the raw JSON body, nil when
// the response had none. Transient statuses are retried with exponential
// backoff; every failure comes back as *Error.
func (c *Client) do(ctx context.Context, method, path string, body any, query url.Values) (json.RawMessage, error) {
	raw, _, err := c.exchange(ctx, method, path, body, query)
	return raw, err
}

// exchange is do that also hands back the headers of the successful response.
func (c *Client) exchange(ctx context.Context, method, path string, body any, query url.Values) (json.RawMessage, http.Header, error) {
	if c.closed.Load() {
		return nil, nil, &Error{Kind: KindConnection, Method: method, Endpoint: path, Err: ErrClosed}
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, nil, &Error{Kind: KindUnexpected, Method: method, Endpoint: path, Err: err}
	}
	u = u.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	var payload []byte
	if body != nil {
		if payload, err = json.Marshal(body); err != nil {
			return nil, nil, &Error{Kind: KindUnexpected, Method: method, Endpoint: path, Err: err}
		}
	}

	c.log.Debug("toggl request",
		slog.String("method", method),
		slog.String("endpoint", path),
		slog.String("query", u.RawQuery),
		slog.String("token", TokenPreview(c.apiToken)),
	)

	retryable := method == http.MethodGet || method == http.MethodPost
	delay := c.backoff
	for attempt := 0; ; attempt++ {
		raw, header, status, err := c.attempt(ctx, method, u.String(), payload)
		if err == nil {
			return raw, header, nil
		}
		var apiErr *Error
		if !errors.As(err, &apiErr) {
			apiErr = &Error{Kind: KindUnexpected, Err: err}
		}
		apiErr.Method, apiErr.Endpoint = method, path

		if !retryable || !retryStatuses[status] || attempt >= c.maxRetries {
			c.logFailure(apiErr)
			return nil, nil, apiErr
		}
		c.log.Debug("toggl transient failure, retrying",
			slog.Int("status", status),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", delay),
		)
		select {
		case <-ctx.Done():
			apiErr = &Error{Kind: KindConnection, Method: method, Endpoint: path, Err: ctx.Err()}
			c.logFailure(apiErr)
			return nil, nil, apiErr
		case <-time.After(delay):
		}
		delay *= 2
	}
}

// attempt issues a single HTTP exchange. The returned status is 0 when no
// response was received.
func (c *Client) attempt(ctx context.Context, method, rawURL string, payload []byte) (json.RawMessage, http.Header, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, 0, &Error{Kind: KindConnection, Err: err}
	}
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, nil, 0, &Error{Kind: KindUnexpected, Err: err}
	}
	// Basic auth: token:api_token
	auth := base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s:%s", c.apiToken, tokenPassword)))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, 0, &Error{Kind: classify(err), Err: err}
	}
	defer resp.Body.Close()
	c.log.Debug("toggl response", slog.Int("status", resp.StatusCode))

	status := resp.StatusCode
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, nil, status, &Error{Kind: classify(err), StatusCode: status, Err: err}
	}
	if status < 200 || status > 299 {
		return nil, nil, status, &Error{Kind: KindHTTP, StatusCode: status, Body: truncate(string(data), 512)}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, resp.Header, status, nil
	}
	if !json.Valid(data) {
		return nil, nil, status, &Error{Kind: KindUnexpected, StatusCode: status, Err: errors.New("response is not valid JSON")}
	}
	return json.RawMessage(data), resp.Header, status, nil
}

func (c *Client) logFailure(err *Error) {
	switch {
	case err.IsAuth():
		c.log.Error("toggl authentication failed: token is invalid or has no access",
			slog.String("endpoint", err.Endpoint),
			slog.Int("status", err.StatusCode),
			slog.String("token", TokenPreview(c.apiToken)),
			slog.String("response", err.Body),
		)
	case err.Kind == KindHTTP:
		c.log.Error("toggl http error",
			slog.String("endpoint", err.Endpoint),
			slog.Int("status", err.StatusCode),
			slog.String("response", err.Body),
		)
	default:
		c.log.Error("toggl request failed",
			slog.String("endpoint", err.Endpoint),
			slog.String("kind", err.Kind.String()),
			slog.String("error", err.Error()),
		)
	}
}

func classify(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	return KindConnection
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
