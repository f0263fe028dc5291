package transport

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"slices"
	"strconv"
	"time"

	pkgerrors "github.com/tombee/awsdeck/pkg/errors"
)

// RetryConfig configures retry behavior for transport operations.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts, including the first (default: 3)
	MaxAttempts int

	// InitialBackoff is the initial backoff duration (default: 500ms)
	InitialBackoff time.Duration

	// MaxBackoff is the maximum backoff duration (default: 20s)
	MaxBackoff time.Duration

	// BackoffFactor is the exponential backoff multiplier (default: 2.0)
	BackoffFactor float64

	// RetryableErrors lists HTTP status codes that are retried.
	// Default: [408, 429, 500, 502, 503, 504]
	RetryableErrors []int
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:     3,
		InitialBackoff:  500 * time.Millisecond,
		MaxBackoff:      20 * time.Second,
		BackoffFactor:   2.0,
		RetryableErrors: []int{408, 429, 500, 502, 503, 504},
	}
}

// NoRetry returns a configuration that performs a single attempt.
func NoRetry() *RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.MaxAttempts = 1
	return cfg
}

// Validate checks if the retry configuration is valid.
func (c *RetryConfig) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.InitialBackoff < 0 {
		return fmt.Errorf("initial_backoff must be non-negative, got %v", c.InitialBackoff)
	}
	if c.MaxBackoff < c.InitialBackoff {
		return fmt.Errorf("max_backoff (%v) must be >= initial_backoff (%v)", c.MaxBackoff, c.InitialBackoff)
	}
	if c.BackoffFactor < 1.0 {
		return fmt.Errorf("backoff_factor must be >= 1.0, got %f", c.BackoffFactor)
	}
	return nil
}

// IsRetryable returns true if the given status code should be retried.
func (c *RetryConfig) IsRetryable(statusCode int) bool {
	return slices.Contains(c.RetryableErrors, statusCode)
}

// ExecuteFunc executes a single request attempt.
type ExecuteFunc func(ctx context.Context) (*Response, error)

// Execute runs fn with retry logic: exponential backoff with jitter,
// honouring Retry-After.
//
// Retry behavior:
//   - Retries on retryable status codes (408, 429, 5xx)
//   - Retries on throttling and timeout errors whatever their status
//     (AWS JSON services throttle with 400)
//   - Retries on connection errors
//   - Stops immediately on context cancellation
func Execute(ctx context.Context, config *RetryConfig, fn ExecuteFunc) (*Response, error) {
	if config == nil {
		config = DefaultRetryConfig()
	}

	var lastErr error
	var resp *Response

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		resp, lastErr = fn(ctx)
		if lastErr == nil {
			if resp.Metadata == nil {
				resp.Metadata = make(map[string]any)
			}
			resp.Metadata[MetadataRetryCount] = attempt - 1
			return resp, nil
		}

		shouldRetry, retryAfter := shouldRetryError(lastErr, config)
		if attempt >= config.MaxAttempts || !shouldRetry {
			return nil, lastErr
		}

		if ctx.Err() != nil {
			return nil, &TransportError{
				Type:    ErrorTypeCancelled,
				Message: "request cancelled before retry",
				Cause:   ctx.Err(),
			}
		}

		delay := calculateBackoff(config, attempt, retryAfter)
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, &TransportError{
				Type:    ErrorTypeCancelled,
				Message: "request cancelled during retry backoff",
				Cause:   ctx.Err(),
			}
		}
	}

	return nil, lastErr
}

// shouldRetryError determines if an error should be retried and extracts
// Retry-After if present.
func shouldRetryError(err error, config *RetryConfig) (bool, time.Duration) {
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		return false, 0
	}
	if !pkgerrors.IsRetryable(err) {
		return false, 0
	}

	var retryAfter time.Duration
	if transportErr.StatusCode == 429 || transportErr.StatusCode == 503 {
		retryAfter = extractRetryAfter(transportErr)
	}

	switch {
	case transportErr.StatusCode == 0:
		return true, 0
	case transportErr.Type == ErrorTypeRateLimit, transportErr.Type == ErrorTypeTimeout:
		return true, retryAfter
	case config.IsRetryable(transportErr.StatusCode):
		return true, retryAfter
	}
	return false, 0
}

// calculateBackoff calculates the backoff delay for a retry attempt.
//
// Formula: delay = min(InitialBackoff * BackoffFactor^(attempt-1), MaxBackoff) + jitter
// Jitter: random [0ms, 100ms]
func calculateBackoff(config *RetryConfig, attempt int, retryAfter time.Duration) time.Duration {
	baseDelay := float64(config.InitialBackoff) * math.Pow(config.BackoffFactor, float64(attempt-1))
	if baseDelay > float64(config.MaxBackoff) {
		baseDelay = float64(config.MaxBackoff)
	}
	delay := time.Duration(baseDelay)

	// Retry-After wins when longer, still capped at MaxBackoff.
	if retryAfter > 0 {
		if retryAfter > delay {
			delay = retryAfter
		}
		if delay > config.MaxBackoff {
			delay = config.MaxBackoff
		}
	}

	jitter := time.Duration(rand.Int64N(101)) * time.Millisecond
	return delay + jitter
}

// extractRetryAfter reads the Retry-After value from error metadata.
// Supports delta-seconds ("120") and HTTP-date formats. Returns 0 if
// absent or invalid.
func extractRetryAfter(err *TransportError) time.Duration {
	raw, ok := err.Metadata[MetadataRetryAfter].(string)
	if !ok {
		return 0
	}

	if seconds, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(seconds) * time.Second
	}

	retryTime, parseErr := http.ParseTime(raw)
	if parseErr != nil {
		return 0
	}
	if delay := time.Until(retryTime); delay > 0 {
		return delay
	}
	return 0
}
