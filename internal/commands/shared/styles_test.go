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
	"testing"
)

func TestColorFor(t *testing.T) {
	tests := []struct {
		name     string
		colorMap string
		value    string
		want     string
	}{
		{name: "unknown map", colorMap: "nope", value: "running", want: "running"},
		{name: "empty map name", colorMap: "", value: "running", want: "running"},
		{name: "unmapped value", colorMap: "instance_state", value: "rebooting", want: "rebooting"},
		{name: "mapped instance state", colorMap: "instance_state", value: "running", want: StatusOK.Render("running")},
		{name: "case insensitive", colorMap: "volume_state", value: "In-Use", want: StatusOK.Render("In-Use")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ColorFor(tt.colorMap, tt.value); got != tt.want {
				t.Errorf("ColorFor(%q, %q) = %q, want %q", tt.colorMap, tt.value, got, tt.want)
			}
		})
	}
}

func TestRenderHelpers(t *testing.T) {
	if got := RenderOK("done"); got != StatusOK.Render(SymbolOK)+" done" {
		t.Errorf("RenderOK() = %q", got)
	}
	if got := RenderStatus(false, "FAIL"); got != StatusError.Render("[FAIL]") {
		t.Errorf("RenderStatus() = %q", got)
	}
}
