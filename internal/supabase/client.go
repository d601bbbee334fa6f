// Package supabase is a small client for a hosted PostgREST row API and its
// GoTrue-style auth endpoints.
package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"trading-journal-go/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxRetries = 3

// ErrTransport wraps failures that never produced an HTTP response.
var ErrTransport = errors.New("backend unreachable")

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend returned %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// Temporary reports whether repeating the request may succeed.
func (e *APIError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// IsUnavailable reports whether err means the backend could not be reached or
// was temporarily unable to serve the request.
func IsUnavailable(err error) bool {
	if errors.Is(err, ErrTransport) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Temporary()
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client talks to the hosted backend. All requests carry the project API key.
type Client struct {
	client  *resty.Client
	apiKey  string
	logger  *zap.Logger
	limiter *rate.Limiter
	backoff func(attempt int) time.Duration
}

// NewClient creates a backend client from the backend config section.
func NewClient(cfg *config.Backend, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")).
		SetHeader("apikey", cfg.APIKey).
		SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	burst := cfg.RateLimitBurst
	if burst < 1 {
		burst = 1
	}

	logger.Info("Using hosted backend", zap.String("url", cfg.URL))

	return &Client{
		client:  client,
		apiKey:  cfg.APIKey,
		logger:  logger,
		limiter: rate.NewLimiter(limit, burst),
		backoff: exponentialBackoff,
	}
}

// exponentialBackoff waits 1s, 2s, 4s...
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * time.Second
}

// newRequest returns a request bound to ctx. An empty token falls back to the
// anonymous API key as bearer.
func (c *Client) newRequest(ctx context.Context, accessToken string) *resty.Request {
	if accessToken == "" {
		accessToken = c.apiKey
	}
	return c.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken)
}

// doRequest executes req under the rate limiter. Only idempotent requests are
// retried, on transport errors, 429 and 5xx.
func (c *Client) doRequest(ctx context.Context, method, path string, req *resty.Request, idempotent bool) (*resty.Response, error) {
	attempts := 1
	if idempotent {
		attempts = maxRetries
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+path))
		resp, err := req.Execute(method, path)
		if err == nil && !resp.IsError() {
			return resp, nil
		}

		var retryAfter time.Duration
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%w: %v", ErrTransport, err)
		} else {
			apiErr := newAPIError(resp)
			lastErr = apiErr
			if !apiErr.Temporary() {
				return nil, apiErr
			}
			if seconds, perr := strconv.Atoi(resp.Header().Get("Retry-After")); perr == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}

		if i == attempts-1 {
			break
		}
		if retryAfter == 0 {
			retryAfter = c.backoff(i)
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(lastErr),
		)

		select {
		case <-time.After(retryAfter):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if attempts > 1 {
		return nil, fmt.Errorf("request failed after %d attempts: %w", attempts, lastErr)
	}
	return nil, lastErr
}

// errorBody covers both the PostgREST and the auth error shapes.
type errorBody struct {
	Code        any    `json:"code"`
	ErrorCode   string `json:"error_code"`
	Error       string `json:"error"`
	Message     string `json:"message"`
	Msg         string `json:"msg"`
	Description string `json:"error_description"`
}

func newAPIError(resp *resty.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode()}

	var body errorBody
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		apiErr.Message = strings.TrimSpace(resp.String())
		if apiErr.Message == "" {
			apiErr.Message = resp.Status()
		}
		return apiErr
	}

	switch {
	case body.ErrorCode != "":
		apiErr.Code = body.ErrorCode
	case body.Error != "":
		apiErr.Code = body.Error
	default:
		if s, ok := body.Code.(string); ok {
			apiErr.Code = s
		}
	}
	for _, m := range []string{body.Message, body.Msg, body.Description, body.Error} {
		if m != "" {
			apiErr.Message = m
			break
		}
	}
	return apiErr
}
