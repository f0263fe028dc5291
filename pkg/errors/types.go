// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	"fmt"
	"time"
)

// ValidationError represents invalid user input: a bad flag value, a
// malformed argument or a request refused by the current mode.
type ValidationError struct {
	// Field identifies which input failed validation
	Field string

	// Message is the human-readable error description
	Message string

	// Hint provides actionable guidance for fixing the error
	Hint string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) IsUserVisible() bool { return true }
func (e *ValidationError) UserMessage() string { return e.Error() }
func (e *ValidationError) Suggestion() string  { return e.Hint }
func (e *ValidationError) ErrorType() string   { return "validation" }
func (e *ValidationError) IsRetryable() bool   { return false }

// NotFoundError represents a named thing that does not exist locally,
// such as a resource definition or a credentials profile. Missing AWS
// resources are reported by the service itself.
type NotFoundError struct {
	// Resource is the kind of thing (e.g., "resource", "profile", "action")
	Resource string

	// ID is the identifier that was not found
	ID string

	// Hint provides actionable guidance for resolution
	Hint string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsUserVisible() bool { return true }
func (e *NotFoundError) UserMessage() string { return e.Error() }
func (e *NotFoundError) Suggestion() string  { return e.Hint }
func (e *NotFoundError) ErrorType() string   { return "not_found" }
func (e *NotFoundError) IsRetryable() bool   { return false }

// CredentialsError represents a failure to resolve or verify AWS
// credentials for a profile.
type CredentialsError struct {
	// Profile is the shared-config profile in use, empty for the default chain
	Profile string

	// Message is the human-readable error message
	Message string

	// Hint provides actionable guidance for resolution
	Hint string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *CredentialsError) Error() string {
	msg := "credentials error"
	if e.Profile != "" {
		msg = fmt.Sprintf("credentials error for profile %s", e.Profile)
	}
	msg = fmt.Sprintf("%s: %s", msg, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CredentialsError) Unwrap() error {
	return e.Cause
}

func (e *CredentialsError) IsUserVisible() bool { return true }
func (e *CredentialsError) UserMessage() string { return e.Error() }
func (e *CredentialsError) ErrorType() string   { return "auth" }
func (e *CredentialsError) IsRetryable() bool   { return false }

// Suggestion implements UserVisibleError.
func (e *CredentialsError) Suggestion() string {
	if e.Hint != "" {
		return e.Hint
	}
	if e.Profile != "" {
		return fmt.Sprintf("Check the [%s] section of ~/.aws/credentials, or run 'aws sso login --profile %s'", e.Profile, e.Profile)
	}
	return "Set AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY, or select a profile with --profile"
}

// ConfigError represents configuration problems.
// Use this for settings file errors, missing settings, or invalid values.
type ConfigError struct {
	// Key is the configuration key that has the problem (e.g., "region", "rate_limit")
	Key string

	// Reason explains what's wrong with the configuration
	Reason string

	// Cause is the underlying error (e.g., file read error, parse error)
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

func (e *ConfigError) IsUserVisible() bool { return true }
func (e *ConfigError) UserMessage() string { return e.Error() }
func (e *ConfigError) ErrorType() string   { return "config" }
func (e *ConfigError) IsRetryable() bool   { return false }

// Suggestion implements UserVisibleError.
func (e *ConfigError) Suggestion() string {
	return "Fix or remove the settings file; run 'awsdeck version' to see its path"
}

// TimeoutError represents operation timeouts.
// Use this when a command exceeds its configured timeout.
type TimeoutError struct {
	// Operation describes what timed out (e.g., "list s3_buckets")
	Operation string

	// Duration is how long the operation ran before timing out
	Duration time.Duration

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s operation timed out after %v", e.Operation, e.Duration)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

func (e *TimeoutError) IsUserVisible() bool { return true }
func (e *TimeoutError) UserMessage() string { return e.Error() }
func (e *TimeoutError) ErrorType() string   { return "timeout" }
func (e *TimeoutError) IsRetryable() bool   { return true }

// Suggestion implements UserVisibleError.
func (e *TimeoutError) Suggestion() string {
	return "Raise the limit with --timeout, or narrow the request with --max-pages"
}
