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

package shared

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	pkgerrors "github.com/tombee/awsdeck/pkg/errors"
)

// Exit codes
const (
	ExitSuccess         = 0
	ExitExecutionFailed = 1
	ExitUsage           = 2
	ExitNotFound        = 3
	ExitAuth            = 4
	ExitInterrupted     = 130
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewUsageError creates an error for invalid arguments or a refused mode
func NewUsageError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitUsage, Message: msg, Cause: cause}
}

// NewExecutionError creates an error for failed AWS calls
func NewExecutionError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitExecutionFailed, Message: msg, Cause: cause}
}

// ExitCode maps err to a process exit code. An *ExitError keeps its own
// code; other errors are mapped by their classification.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}

	errorType, _ := pkgerrors.Classify(err)
	switch errorType {
	case "validation", "invalid_request", "config":
		return ExitUsage
	case "not_found":
		return ExitNotFound
	case "auth":
		return ExitAuth
	}
	return ExitExecutionFailed
}

// PrintError writes err and any suggestion to w. In JSON mode it writes a
// JSON error envelope instead.
func PrintError(w io.Writer, command string, err error) {
	msg, suggestion := pkgerrors.UserFacing(err)

	if GetJSON() {
		errorType, retryable := pkgerrors.Classify(err)
		_ = EmitJSONError(w, command, []JSONError{{
			Code:       errorType,
			Message:    msg,
			Suggestion: suggestion,
			Retryable:  retryable,
		}})
		return
	}

	fmt.Fprintln(w, RenderError("Error: "+msg))
	if suggestion != "" {
		fmt.Fprintf(w, "\n%s %s\n", RenderLabel("Suggestion:"), suggestion)
	}
}

// HandleExitError prints err and exits with the matching code
func HandleExitError(command string, err error) {
	if err == nil {
		return
	}
	PrintError(os.Stderr, command, err)
	os.Exit(ExitCode(err))
}
