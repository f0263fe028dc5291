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
	"bytes"
	"encoding/json"
	"testing"
)

func TestEmitJSON(t *testing.T) {
	type listResponse struct {
		JSONResponse
		Resource string `json:"resource"`
		Count    int    `json:"count"`
	}

	var buf bytes.Buffer
	resp := listResponse{JSONResponse: NewJSONResponse("list"), Resource: "ec2:instances", Count: 2}
	if err := EmitJSON(&buf, resp); err != nil {
		t.Fatalf("EmitJSON() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got["@version"] != "1.0" || got["command"] != "list" || got["success"] != true {
		t.Errorf("unexpected envelope: %v", got)
	}
	if got["resource"] != "ec2:instances" || got["count"] != float64(2) {
		t.Errorf("embedded fields not flattened: %v", got)
	}
	if !bytes.Contains(buf.Bytes(), []byte("\n  \"")) {
		t.Error("expected indented output")
	}
}

func TestEmitJSONError(t *testing.T) {
	var buf bytes.Buffer
	err := EmitJSONError(&buf, "action", []JSONError{
		{Code: "validation", Message: "actions are disabled in read-only mode"},
	})
	if err != nil {
		t.Fatalf("EmitJSONError() error = %v", err)
	}

	var got struct {
		Success bool        `json:"success"`
		Errors  []JSONError `json:"errors"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Success {
		t.Error("success should be false")
	}
	if len(got.Errors) != 1 || got.Errors[0].Code != "validation" {
		t.Errorf("unexpected errors: %+v", got.Errors)
	}
	if bytes.Contains(buf.Bytes(), []byte("suggestion")) {
		t.Error("empty suggestion should be omitted")
	}
}
