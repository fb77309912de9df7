// Package transport provides the shared HTTP plumbing for provider clients:
// API-key authentication, per-vendor rate limiting, and a circuit breaker
// that stops hammering a vendor that keeps failing.
package transport

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/fintail/fintail/pkg/errors"
)

// DefaultHTTPTimeout bounds a single provider request when the caller's
// context carries no deadline of its own.
const DefaultHTTPTimeout = 15 * time.Second

// Client provides HTTP client functionality with authentication, rate
// limiting, and circuit breaking for one provider.
type Client struct {
	provider string
	http     *http.Client
	auth     Authenticator
	apiKey   string
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
}

// Config describes how to construct a transport client.
type Config struct {
	// Provider names the vendor, used in errors and breaker state.
	Provider string

	// Auth applies the API key to requests. Nil means no authentication.
	Auth Authenticator

	// APIKey is the vendor credential. Empty skips authentication.
	APIKey string

	// Timeout bounds each request. Zero uses DefaultHTTPTimeout.
	Timeout time.Duration

	// RequestsPerSecond throttles outbound calls. Zero disables throttling.
	RequestsPerSecond float64
}

// New creates a new transport client for a provider.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultHTTPTimeout
	}

	auth := cfg.Auth
	if auth == nil {
		auth = &NoAuth{}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    cfg.Provider,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		provider: cfg.Provider,
		http:     &http.Client{Timeout: timeout},
		auth:     auth,
		apiKey:   cfg.APIKey,
		limiter:  limiter,
		breaker:  breaker,
	}
}

// GetJSON performs an authenticated GET request and decodes the JSON response
// body into out. Failures are classified into provider failure kinds.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.NewProviderError(c.provider, errors.FailureMalformedResponse, "decoding response body", err)
	}
	return nil
}

// get performs the rate-limited, breaker-guarded request and returns the body.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.classify(err, 0)
		}
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.do(ctx, url)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, errors.NewProviderError(c.provider, errors.FailureRateLimited, "circuit breaker open", err)
		}
		return nil, err
	}
	return result.([]byte), nil
}

// do issues one HTTP GET and maps the outcome to the error taxonomy.
func (c *Client) do(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewProviderError(c.provider, errors.FailureUnknown, "creating request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "fintail/1.0")

	if c.apiKey != "" {
		c.auth.Apply(req, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.classify(err, 0)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewProviderError(c.provider, errors.FailureMalformedResponse, "reading response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.classify(nil, resp.StatusCode)
	}

	return body, nil
}

// classify maps transport-level failures and HTTP status codes to the
// provider failure taxonomy.
func (c *Client) classify(err error, statusCode int) error {
	switch {
	case err != nil && (stderrors.Is(err, context.DeadlineExceeded) || isTimeout(err)):
		return errors.NewProviderError(c.provider, errors.FailureTimeout, "request deadline exceeded", err)
	case err != nil && stderrors.Is(err, context.Canceled):
		return errors.NewProviderError(c.provider, errors.FailureTimeout, "request canceled", err)
	case err != nil:
		return errors.NewProviderError(c.provider, errors.FailureUnknown, err.Error(), err)
	case statusCode == http.StatusTooManyRequests:
		return &errors.ProviderError{Provider: c.provider, Kind: errors.FailureRateLimited, StatusCode: statusCode, Message: "rate limit exceeded"}
	case statusCode == http.StatusNotFound || statusCode == http.StatusBadRequest:
		return &errors.ProviderError{Provider: c.provider, Kind: errors.FailureInvalidSymbol, StatusCode: statusCode, Message: "symbol not recognized"}
	default:
		return &errors.ProviderError{Provider: c.provider, Kind: errors.FailureUnknown, StatusCode: statusCode, Message: http.StatusText(statusCode)}
	}
}

// isTimeout reports whether err is a net-level timeout (http.Client wraps
// deadline errors in *url.Error with Timeout()).
func isTimeout(err error) bool {
	t, ok := err.(interface{ Timeout() bool })
	return ok && t.Timeout()
}
