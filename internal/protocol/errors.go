package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed indicates a body that is not valid for the dialect.
	ErrMalformed = errors.New("malformed response body")

	// ErrEmpty indicates an empty body where a document was expected.
	ErrEmpty = errors.New("empty response body")
)

// ParseError describes a response body that could not be decoded.
type ParseError struct {
	// Protocol is the dialect that attempted the parse.
	Protocol string

	// Kind is ErrMalformed or ErrEmpty.
	Kind error

	// Cause is the underlying decoder error, if any.
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Protocol, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Protocol, e.Kind)
}

// Unwrap exposes both the kind sentinel and the decoder cause.
func (e *ParseError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// ErrorType implements pkg/errors.ErrorClassifier.
func (e *ParseError) ErrorType() string {
	return "parse"
}

// IsRetryable implements pkg/errors.ErrorClassifier.
func (e *ParseError) IsRetryable() bool {
	return false
}

func malformed(protocol string, cause error) error {
	return &ParseError{Protocol: protocol, Kind: ErrMalformed, Cause: cause}
}

func empty(protocol string) error {
	return &ParseError{Protocol: protocol, Kind: ErrEmpty}
}
