// Package transport sends signed AWS requests over HTTP.
//
// The transport is the only component that performs network I/O. It owns
// connection pooling, TLS trust (custom CA bundles), rate limiting and
// retry with backoff. Requests arrive already signed; the transport never
// alters signed headers or the body.
package transport

import (
	"context"
	"net/http"
)

// Transport executes signed requests.
type Transport interface {
	// Execute sends a request and returns a response.
	// The context controls cancellation and deadlines.
	// Returns *TransportError on failure, including non-2xx responses.
	Execute(ctx context.Context, req *Request) (*Response, error)

	// Name returns the transport identifier.
	Name() string

	// SetRateLimiter configures rate limiting for this transport.
	// Rate limiting occurs before each attempt.
	SetRateLimiter(limiter RateLimiter)
}

// Request is a signed wire request.
type Request struct {
	// Method is the HTTP method. Required.
	Method string

	// URL is the full request URL. Required.
	URL string

	// Headers are request headers, including the signature.
	Headers map[string]string

	// Body is the request body. May be nil.
	Body []byte

	// Metadata carries values for logging (service, action).
	Metadata map[string]any
}

// Response is a raw wire response.
type Response struct {
	StatusCode int
	Headers    map[string][]string
	Body       []byte

	// Metadata contains transport data such as the AWS request id and
	// retry count.
	Metadata map[string]any
}

// ContentType returns the response Content-Type header.
func (r *Response) ContentType() string {
	return http.Header(r.Headers).Get("Content-Type")
}

// RequestID returns the AWS request id recorded for the response.
func (r *Response) RequestID() string {
	if id, ok := r.Metadata[MetadataAWSRequestID].(string); ok {
		return id
	}
	return ""
}

// Standard metadata keys
const (
	// MetadataAWSRequestID is the x-amzn-RequestId (or x-amz-request-id) value
	MetadataAWSRequestID = "aws_request_id"

	// MetadataRetryCount is the number of retries performed for this request
	MetadataRetryCount = "retry_count"

	// MetadataRetryAfter is the raw Retry-After header of a failed response
	MetadataRetryAfter = "retry_after"
)

// RateLimiter blocks until a request is allowed.
type RateLimiter interface {
	// Wait blocks until a request is allowed under the rate limit.
	// Returns an error if the context is cancelled first.
	Wait(ctx context.Context) error
}
