package dispatch

import (
	"errors"
	"fmt"

	pkgerrors "github.com/tombee/awsdeck/pkg/errors"
)

// Dispatch-time lookup and contract errors. Each is returned wrapped in
// an *Error.
var (
	ErrUnknownResource     = errors.New("unknown resource")
	ErrUnknownAction       = errors.New("unknown action")
	ErrNoDescribeConfig    = errors.New("resource has no describe configuration")
	ErrMissingResponseRoot = errors.New("response root not found")
	ErrUnknownService      = errors.New("unknown service")
)

// Operation names used in errors, logs and metrics.
const (
	OpList     = "list"
	OpDescribe = "describe"
	OpAction   = "action"
)

// Error records the operation and resource a dispatch failure belongs to.
type Error struct {
	Op       string
	Resource string
	Err      error
}

func (e *Error) Error() string {
	if e.Resource == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Resource, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsUserVisible implements pkg/errors.UserVisibleError. Wrapped
// transport, signing and parse errors answer for themselves.
func (e *Error) IsUserVisible() bool {
	if inner, ok := e.inner(); ok {
		return inner.IsUserVisible()
	}
	return e.suggestion() != ""
}

// UserMessage implements pkg/errors.UserVisibleError.
func (e *Error) UserMessage() string {
	if inner, ok := e.inner(); ok {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Resource, inner.UserMessage())
	}
	return e.Error()
}

// Suggestion implements pkg/errors.UserVisibleError.
func (e *Error) Suggestion() string {
	if inner, ok := e.inner(); ok {
		return inner.Suggestion()
	}
	return e.suggestion()
}

func (e *Error) inner() (pkgerrors.UserVisibleError, bool) {
	var inner pkgerrors.UserVisibleError
	if errors.As(e.Err, &inner) {
		return inner, true
	}
	return nil, false
}

func (e *Error) suggestion() string {
	switch {
	case errors.Is(e.Err, ErrUnknownResource):
		return "Run 'awsdeck resources' to see the available resource names"
	case errors.Is(e.Err, ErrUnknownAction):
		return fmt.Sprintf("Run 'awsdeck resources %s' to see its actions", e.Resource)
	case errors.Is(e.Err, ErrNoDescribeConfig):
		return "Use 'awsdeck list' instead; this resource cannot be described individually"
	case errors.Is(e.Err, ErrMissingResponseRoot):
		return "The resource definition's response_path does not match the API response; check it with --log-level trace"
	case errors.Is(e.Err, ErrUnknownService):
		return "The resource definition names a service awsdeck has no metadata for"
	}
	return ""
}

// ErrorType implements pkg/errors.ErrorClassifier. Wrapped errors keep
// their own classification.
func (e *Error) ErrorType() string {
	switch {
	case errors.Is(e.Err, ErrUnknownResource), errors.Is(e.Err, ErrUnknownAction):
		return "not_found"
	case errors.Is(e.Err, ErrNoDescribeConfig), errors.Is(e.Err, ErrUnknownService):
		return "validation"
	case errors.Is(e.Err, ErrMissingResponseRoot):
		return "protocol"
	}
	var classified pkgerrors.ErrorClassifier
	if errors.As(e.Err, &classified) {
		return classified.ErrorType()
	}
	return "dispatch"
}

// IsRetryable implements pkg/errors.ErrorClassifier.
func (e *Error) IsRetryable() bool {
	var classified pkgerrors.ErrorClassifier
	if errors.As(e.Err, &classified) {
		return classified.IsRetryable()
	}
	return false
}

func newError(op, resource string, err error) *Error {
	return &Error{Op: op, Resource: resource, Err: err}
}
