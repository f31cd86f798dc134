// Package api is the HTTP client of the census REST service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/mark3labs/census/internal/logger"
)

// DefaultTimeout bounds every request when no HTTP client is supplied.
const DefaultTimeout = 30 * time.Second

// ErrUnauthorized is matched by errors caused by a 401 response.
var ErrUnauthorized = errors.New("unauthorized")

// Error wraps non-2xx responses and enveloped failures.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status=%d: %s", e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// TokenSource supplies the bearer token for each request.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// Client talks to the census REST service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	// ReadAttempts is the number of tries for GET requests. Writes are
	// sent exactly once.
	ReadAttempts uint
	Tokens       TokenSource
	// OnUnauthorized runs whenever the service answers 401.
	OnUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.Timeout = d }
}

func WithReadAttempts(n uint) Option {
	return func(c *Client) { c.ReadAttempts = n }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.Tokens = ts }
}

func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.OnUnauthorized = fn }
}

// New creates a client with sane defaults.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL:      baseURL,
		Timeout:      DefaultTimeout,
		ReadAttempts: 3,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	return c
}

type envelope struct {
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message"`
	Status    int             `json:"status"`
	Timestamp string          `json:"timestamp"`
}

// get performs a GET with retries on transient failures.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	attempts := c.ReadAttempts
	if attempts == 0 {
		attempts = 1
	}
	return retry.Do(
		func() error {
			return c.do(ctx, http.MethodGet, endpoint, nil, out, true)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			logger.Debug("Retrying GET %s (attempt %d): %v", endpoint, n+1, err)
		}),
	)
}

// retryable reports transport failures and 5xx responses.
func retryable(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// do sends one request. With enveloped set the body is unwrapped from
// {data, message, status, timestamp} before decoding into out.
func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any, enveloped bool) error {
	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: c.Timeout}
	}
	u := c.base() + "/" + strings.TrimLeft(endpoint, "/")

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, u, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Tokens != nil {
		if tok := c.Tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	logger.Debug("%s %s", method, u)
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		logger.Warn("%s %s: unauthorized, clearing session", method, endpoint)
		if c.OnUnauthorized != nil {
			c.OnUnauthorized()
		}
		return &Error{StatusCode: resp.StatusCode, Message: messageOf(raw)}
	}
	if resp.StatusCode >= 300 {
		return &Error{StatusCode: resp.StatusCode, Message: messageOf(raw)}
	}

	if !enveloped {
		if out == nil || len(raw) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decoding response envelope: %w", err)
	}
	if env.Status >= 400 {
		return &Error{StatusCode: env.Status, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding response data: %w", err)
	}
	return nil
}

// messageOf extracts a human readable message from an error body.
func messageOf(raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Message != "" {
		return env.Message
	}
	return strings.TrimSpace(string(raw))
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}

func formPath(id string, rest ...string) string {
	parts := append([]string{"forms", url.PathEscape(id)}, rest...)
	return strings.Join(parts, "/")
}
