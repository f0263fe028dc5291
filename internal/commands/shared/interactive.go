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
	"io"
	"os"

	"golang.org/x/term"
)

// IsNonInteractive reports whether prompts must be skipped. Indicators in
// priority order: AWSDECK_NON_INTERACTIVE=true, a CI environment, stdin
// not being a TTY.
func IsNonInteractive() bool {
	if os.Getenv("AWSDECK_NON_INTERACTIVE") == "true" {
		return true
	}
	if isCIEnvironment() {
		return true
	}
	return !isTerminal(os.Stdin)
}

// IsColorOutput reports whether f should receive ANSI styling. NO_COLOR,
// TERM=dumb and JSON output all disable it.
func IsColorOutput(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	if GetJSON() {
		return false
	}
	return isTerminal(f)
}

// UseColor reports whether styled output should be written to w. Only
// terminals get color.
func UseColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && IsColorOutput(f)
}

func isCIEnvironment() bool {
	ciVars := []string{
		"CI",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"CIRCLECI",
		"JENKINS_HOME",
	}

	for _, envVar := range ciVars {
		value := os.Getenv(envVar)
		if value == "true" || value == "1" {
			return true
		}
		// JENKINS_HOME holds a path
		if envVar == "JENKINS_HOME" && value != "" {
			return true
		}
	}
	return false
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
