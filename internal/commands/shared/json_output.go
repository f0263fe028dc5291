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
	"encoding/json"
	"io"
)

// JSONVersion is the envelope version. It changes only when a field is
// removed or changes meaning.
const JSONVersion = "1.0"

// JSONResponse is the base envelope for all JSON output
type JSONResponse struct {
	Version string `json:"@version"`
	Command string `json:"command"`
	Success bool   `json:"success"`
}

// JSONError represents a structured error with code, message and suggestion
type JSONError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`

	// Retryable is set when running the command again may succeed, as
	// with throttling or timeouts.
	Retryable bool `json:"retryable,omitempty"`
}

// NewJSONResponse returns a successful envelope for command.
func NewJSONResponse(command string) JSONResponse {
	return JSONResponse{Version: JSONVersion, Command: command, Success: true}
}

// EmitJSON writes response as indented JSON.
func EmitJSON(w io.Writer, response any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// EmitJSONError writes a failed envelope carrying errs.
func EmitJSONError(w io.Writer, command string, errs []JSONError) error {
	type errorResponse struct {
		JSONResponse
		Errors []JSONError `json:"errors"`
	}

	resp := errorResponse{JSONResponse: NewJSONResponse(command), Errors: errs}
	resp.Success = false
	return EmitJSON(w, resp)
}
