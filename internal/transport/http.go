package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds a whole request, including reading the body.
	DefaultTimeout = 30 * time.Second

	// DefaultConnectTimeout bounds dialing and the TLS handshake.
	DefaultConnectTimeout = 10 * time.Second
)

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	// Timeout is the request timeout (default: 30s)
	Timeout time.Duration

	// ConnectTimeout bounds dialing and the TLS handshake (default: 10s)
	ConnectTimeout time.Duration

	// CABundle is a PEM file of extra trusted roots. See CABundleFromEnv.
	CABundle string

	// UserAgent is sent with every request.
	UserAgent string

	// Retry configures retry behavior (optional, uses defaults if nil)
	Retry *RetryConfig

	// Logger receives per-attempt diagnostics (optional)
	Logger *slog.Logger
}

// Validate checks if the configuration is valid.
func (c *HTTPConfig) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative, got %v", c.Timeout)
	}
	if c.ConnectTimeout < 0 {
		return fmt.Errorf("connect timeout must be non-negative, got %v", c.ConnectTimeout)
	}
	if c.Retry != nil {
		if err := c.Retry.Validate(); err != nil {
			return fmt.Errorf("invalid retry configuration: %w", err)
		}
	}
	return nil
}

// HTTPTransport implements Transport over net/http.
type HTTPTransport struct {
	config      *HTTPConfig
	client      *http.Client
	retry       *RetryConfig
	logger      *slog.Logger
	rateLimiter RateLimiter
}

// NewHTTPTransport creates an HTTP transport.
func NewHTTPTransport(cfg *HTTPConfig) (*HTTPTransport, error) {
	if cfg == nil {
		cfg = &HTTPConfig{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout == 0 {
		connectTimeout = DefaultConnectTimeout
	}

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if cfg.CABundle != "" {
		pool, err := loadCertPool(cfg.CABundle)
		if err != nil {
			return nil, err
		}
		tlsConfig.RootCAs = pool
	}

	retry := cfg.Retry
	if retry == nil {
		retry = DefaultRetryConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := &http.Client{
		Timeout: timeout,
		// A signature covers the host, so a redirect is returned as an
		// error rather than followed.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			DialContext: (&net.Dialer{
				Timeout:   connectTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   connectTimeout,
			ResponseHeaderTimeout: timeout,
			ExpectContinueTimeout: 1 * time.Second,
			TLSClientConfig:       tlsConfig,
		},
	}

	return &HTTPTransport{
		config: cfg,
		client: client,
		retry:  retry,
		logger: logger,
	}, nil
}

// Name returns "http".
func (t *HTTPTransport) Name() string {
	return "http"
}

// SetRateLimiter configures rate limiting for this transport.
func (t *HTTPTransport) SetRateLimiter(limiter RateLimiter) {
	t.rateLimiter = limiter
}

// Execute sends the request, retrying retryable failures.
func (t *HTTPTransport) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		return nil, &TransportError{
			Type:    ErrorTypeInvalidReq,
			Message: fmt.Sprintf("invalid request: %s", err.Error()),
			Cause:   err,
		}
	}

	return Execute(ctx, t.retry, func(ctx context.Context) (*Response, error) {
		return t.executeOnce(ctx, req)
	})
}

// executeOnce executes a single HTTP request without retry logic.
func (t *HTTPTransport) executeOnce(ctx context.Context, req *Request) (*Response, error) {
	if t.rateLimiter != nil {
		if err := t.rateLimiter.Wait(ctx); err != nil {
			return nil, &TransportError{
				Type:    ErrorTypeCancelled,
				Message: "rate limit wait cancelled",
				Cause:   err,
			}
		}
	}

	httpReq, err := t.buildHTTPRequest(ctx, req)
	if err != nil {
		return nil, &TransportError{
			Type:    ErrorTypeInvalidReq,
			Message: fmt.Sprintf("failed to build HTTP request: %s", err.Error()),
			Cause:   err,
		}
	}

	start := time.Now()
	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, classifyHTTPError(ctx, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &TransportError{
			Type:      ErrorTypeConnection,
			Message:   fmt.Sprintf("failed to read response body: %s", err.Error()),
			Retryable: true,
			Cause:     err,
		}
	}

	requestID := httpResp.Header.Get("X-Amzn-Requestid")
	if requestID == "" {
		requestID = httpResp.Header.Get("X-Amz-Request-Id")
	}

	t.logger.Debug("http request completed",
		slog.String("method", req.Method),
		slog.String("host", httpReq.URL.Host),
		slog.Int("status", httpResp.StatusCode),
		slog.String("request_id", requestID),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	if !successStatus(httpResp.StatusCode) {
		err := parseAWSError(httpResp.StatusCode, body, httpResp.Header)
		var te *TransportError
		if errors.As(err, &te) {
			if te.Metadata == nil {
				te.Metadata = make(map[string]any)
			}
			if retryAfter := httpResp.Header.Get("Retry-After"); retryAfter != "" {
				te.Metadata[MetadataRetryAfter] = retryAfter
			}
		}
		return nil, err
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
		Metadata: map[string]any{
			MetadataAWSRequestID: requestID,
		},
	}, nil
}

func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("request is nil")
	}
	if req.Method == "" {
		return fmt.Errorf("method is required")
	}

	validMethods := map[string]bool{
		"GET": true, "POST": true, "PUT": true, "DELETE": true,
		"PATCH": true, "HEAD": true, "OPTIONS": true,
	}
	if !validMethods[req.Method] {
		return fmt.Errorf("invalid HTTP method: %q", req.Method)
	}

	if req.URL == "" {
		return fmt.Errorf("URL is required")
	}
	u, err := url.Parse(req.URL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	return nil
}

// buildHTTPRequest constructs an http.Request. Signed headers are copied
// verbatim.
func (t *HTTPTransport) buildHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	var bodyReader io.Reader
	if req.Body != nil {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return nil, err
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if t.config.UserAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", t.config.UserAgent)
	}
	return httpReq, nil
}

// classifyHTTPError classifies HTTP client errors into TransportError types.
func classifyHTTPError(ctx context.Context, err error) *TransportError {
	if errors.Is(err, context.Canceled) || ctx.Err() == context.Canceled {
		return &TransportError{
			Type:    ErrorTypeCancelled,
			Message: "request cancelled",
			Cause:   err,
		}
	}

	if isTimeoutError(err) {
		return &TransportError{
			Type:      ErrorTypeTimeout,
			Message:   "request timeout",
			Retryable: ctx.Err() == nil,
			Cause:     err,
		}
	}

	if isConnectionError(err) {
		return &TransportError{
			Type:      ErrorTypeConnection,
			Message:   fmt.Sprintf("connection error: %s", sanitizeAWSError(err.Error())),
			Retryable: true,
			Cause:     err,
		}
	}

	return &TransportError{
		Type:      ErrorTypeConnection,
		Message:   fmt.Sprintf("HTTP error: %s", sanitizeAWSError(err.Error())),
		Retryable: true,
		Cause:     err,
	}
}

// isTimeoutError checks if an error is a timeout error.
func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isConnectionError checks if an error is a connection error.
func isConnectionError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	errMsg := strings.ToLower(err.Error())
	for _, keyword := range []string{
		"connection refused",
		"connection reset",
		"no such host",
		"network unreachable",
		"eof",
	} {
		if strings.Contains(errMsg, keyword) {
			return true
		}
	}
	return false
}
