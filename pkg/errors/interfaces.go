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

// UserVisibleError is implemented by errors the CLI prints as they are,
// with a hint on the following line. transport.TransportError and the
// types in this package implement it.
type UserVisibleError interface {
	error

	// IsUserVisible reports whether UserMessage is safe to print. Errors
	// wrapping raw AWS responses return false when the body is all they
	// have.
	IsUserVisible() bool

	// UserMessage is a one-line description without request ids or stack
	// detail.
	UserMessage() string

	// Suggestion is the next thing to try, or "".
	Suggestion() string
}

// ErrorClassifier is implemented by errors that carry a category. The CLI
// maps categories to exit codes and the transport uses retryability.
type ErrorClassifier interface {
	error

	// ErrorType is one of "validation", "not_found", "auth", "config",
	// "timeout", "rate_limit", "server", "client" and so on.
	ErrorType() string

	IsRetryable() bool
}
