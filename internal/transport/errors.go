package transport

import (
	"fmt"
	"net/http"
)

// ErrorType classifies transport errors for routing and retry decisions.
type ErrorType string

const (
	// ErrorTypeConnection indicates network or DNS errors
	ErrorTypeConnection ErrorType = "connection"

	// ErrorTypeTimeout indicates request timeout or deadline exceeded
	ErrorTypeTimeout ErrorType = "timeout"

	// ErrorTypeAuth indicates authentication failure (401, 403, bad signature)
	ErrorTypeAuth ErrorType = "auth"

	// ErrorTypeRateLimit indicates throttling (429, ThrottlingException)
	ErrorTypeRateLimit ErrorType = "rate_limit"

	// ErrorTypeServer indicates server errors (5xx)
	ErrorTypeServer ErrorType = "server"

	// ErrorTypeClient indicates client errors (4xx, non-retryable)
	ErrorTypeClient ErrorType = "client"

	// ErrorTypeNotFound indicates the addressed resource does not exist
	ErrorTypeNotFound ErrorType = "not_found"

	// ErrorTypeInvalidReq indicates request validation error (invalid method, URL, etc.)
	ErrorTypeInvalidReq ErrorType = "invalid_request"

	// ErrorTypeCancelled indicates context was cancelled
	ErrorTypeCancelled ErrorType = "cancelled"
)

// TransportError is the structured error returned by every transport
// failure.
type TransportError struct {
	// Type classifies the error for routing and retry decisions
	Type ErrorType

	// StatusCode is the HTTP status code, zero for network errors
	StatusCode int

	// Code is the AWS error code (AccessDenied, ThrottlingException)
	Code string

	// Message is safe to log and display; access keys are redacted
	Message string

	// RequestID is the AWS request id, for support requests
	RequestID string

	// Retryable indicates whether the error is retryable
	Retryable bool

	// Cause is the underlying error
	Cause error

	// Metadata contains debugging details for structured logging
	Metadata map[string]any
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns true if the error should be retried.
func (e *TransportError) IsRetryable() bool {
	return e.Retryable
}

// ErrorType implements pkg/errors.ErrorClassifier.
func (e *TransportError) ErrorType() string {
	return string(e.Type)
}

// IsStatusCode returns true if the error has the given HTTP status code.
func (e *TransportError) IsStatusCode(code int) bool {
	return e.StatusCode == code
}

// IsType returns true if the error is of the given type.
func (e *TransportError) IsType(t ErrorType) bool {
	return e.Type == t
}

// IsUserVisible implements pkg/errors.UserVisibleError.
func (e *TransportError) IsUserVisible() bool { return true }

// UserMessage implements pkg/errors.UserVisibleError.
func (e *TransportError) UserMessage() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%s (request id %s)", e.Message, e.RequestID)
	}
	return e.Message
}

// Suggestion implements pkg/errors.UserVisibleError.
func (e *TransportError) Suggestion() string {
	switch e.Type {
	case ErrorTypeAuth:
		return "Check your credentials with 'awsdeck whoami' or choose another profile with --profile"
	case ErrorTypeRateLimit:
		return "The service is throttling requests; lower rate_limit in the config file or retry later"
	case ErrorTypeConnection, ErrorTypeTimeout:
		return "Check network access to the AWS endpoint, or --endpoint-url if you set one"
	case ErrorTypeNotFound:
		return "The resource may have been deleted; list the resources again to refresh"
	}
	if e.Code == "PermanentRedirect" {
		return "The bucket lives in another region; pass that region with --region"
	}
	return ""
}

// ErrorFromResponse converts a non-2xx response into a *TransportError.
// It returns nil for a nil or 2xx response.
func ErrorFromResponse(resp *Response) error {
	if resp == nil || successStatus(resp.StatusCode) {
		return nil
	}
	return parseAWSError(resp.StatusCode, resp.Body, http.Header(resp.Headers))
}

func successStatus(code int) bool {
	return code >= 200 && code < 300
}
