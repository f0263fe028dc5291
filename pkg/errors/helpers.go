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

import "errors"

// Is is errors.Is, re-exported so callers importing this package under the
// name "errors" keep the standard helpers.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As; see Is.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Classify returns the type and retryability of the first ErrorClassifier
// in err's tree. Unclassified errors report "internal" and false.
func Classify(err error) (errorType string, retryable bool) {
	var classified ErrorClassifier
	if errors.As(err, &classified) {
		return classified.ErrorType(), classified.IsRetryable()
	}
	return "internal", false
}

// IsRetryable reports whether err's classification allows another attempt.
func IsRetryable(err error) bool {
	_, retryable := Classify(err)
	return retryable
}

// UserFacing returns the message and suggestion of the first
// UserVisibleError in err's tree that wants to be shown. Otherwise it
// returns err's own message and no suggestion.
func UserFacing(err error) (message, suggestion string) {
	var visible UserVisibleError
	if errors.As(err, &visible) && visible.IsUserVisible() {
		return visible.UserMessage(), visible.Suggestion()
	}
	return err.Error(), ""
}
