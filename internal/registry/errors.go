package registry

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedDefinition marks a definition with missing or mistyped
	// fields.
	ErrMalformedDefinition = errors.New("malformed resource definition")

	// ErrDuplicateResourceName marks two definitions sharing a name.
	ErrDuplicateResourceName = errors.New("duplicate resource name")
)

// DefinitionError describes why a load was rejected. Err is one of the
// package sentinels; Cause carries the decoder or validator error, if any.
type DefinitionError struct {
	Source   string
	Resource string
	Field    string
	Reason   string
	Err      error
	Cause    error
}

// Error implements the error interface.
func (e *DefinitionError) Error() string {
	var b strings.Builder
	if e.Source != "" {
		b.WriteString(e.Source)
		b.WriteString(": ")
	}
	if e.Resource != "" {
		fmt.Fprintf(&b, "resource %q: ", e.Resource)
	}
	if e.Field != "" {
		b.WriteString(e.Field)
		b.WriteString(": ")
	}
	b.WriteString(e.Reason)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap exposes both the sentinel and the cause to errors.Is and errors.As.
func (e *DefinitionError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// IsUserVisible implements pkg/errors.UserVisibleError.
func (e *DefinitionError) IsUserVisible() bool { return true }

// UserMessage implements pkg/errors.UserVisibleError.
func (e *DefinitionError) UserMessage() string { return e.Error() }

// Suggestion implements pkg/errors.UserVisibleError.
func (e *DefinitionError) Suggestion() string {
	if errors.Is(e.Err, ErrDuplicateResourceName) {
		return "Rename one of the resources or remove the duplicate definition file"
	}
	return "Fix the resource definition file and retry"
}

func malformed(source, resource, field, reason string, cause error) *DefinitionError {
	return &DefinitionError{
		Source:   source,
		Resource: resource,
		Field:    field,
		Reason:   reason,
		Err:      ErrMalformedDefinition,
		Cause:    cause,
	}
}
