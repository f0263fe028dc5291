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

package cli

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/tombee/awsdeck/internal/commands/shared"
)

func newHelpTestRoot(t *testing.T) *cobra.Command {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := NewRootCommand()
	list := &cobra.Command{
		Use:         "list <resource>",
		Short:       "List resource instances",
		Example:     "  awsdeck list ec2:instances",
		Annotations: map[string]string{"group": "browse"},
		RunE:        func(cmd *cobra.Command, args []string) error { return nil },
	}
	list.Flags().Int("max-pages", 0, "Stop after this many pages")
	list.Flags().String("service", "", "Filter by service")
	_ = list.MarkFlagRequired("service")
	root.AddCommand(list)
	root.AddCommand(&cobra.Command{Use: "secret", Hidden: true, Run: func(*cobra.Command, []string) {}})
	root.SetHelpCommand(NewHelpCommand(root))
	return root
}

func runHelp(t *testing.T, args ...string) HelpResponse {
	t.Helper()
	root := newHelpTestRoot(t)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(append([]string{"help"}, args...))
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var resp HelpResponse
	if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	return resp
}

func TestHelpAllCommandsJSON(t *testing.T) {
	resp := runHelp(t, "--json")

	if resp.Version != "1.0" || !resp.Success || resp.Command != nil {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	if !strings.HasPrefix(resp.DocsURL, docsBaseURL) {
		t.Errorf("DocsURL = %q", resp.DocsURL)
	}

	names := map[string]bool{}
	for _, c := range resp.Commands {
		names[c.Name] = true
	}
	if !names["list"] {
		t.Errorf("list missing from %v", names)
	}
	if names["secret"] {
		t.Error("hidden command listed")
	}

	if len(resp.ExitCodes) == 0 || resp.ExitCodes[0].Code != 0 {
		t.Errorf("ExitCodes = %+v", resp.ExitCodes)
	}
	if !slices.Contains(resp.Resources, "dynamodb-tables") {
		t.Errorf("Resources = %v, want the bundled definitions", resp.Resources)
	}

	globals := map[string]bool{}
	for _, f := range resp.GlobalFlags {
		globals[f.Name] = true
	}
	for _, want := range []string{"profile", "region", "endpoint-url", "readonly", "json", "timeout"} {
		if !globals[want] {
			t.Errorf("global flag %q missing", want)
		}
	}
}

func TestHelpOneCommandJSON(t *testing.T) {
	resp := runHelp(t, "list", "--json")

	if resp.Command == nil {
		t.Fatal("expected command metadata")
	}
	if resp.Command.Name != "list" || resp.Command.Group != "browse" {
		t.Errorf("unexpected metadata: %+v", resp.Command)
	}
	if resp.Command.Examples == "" {
		t.Error("expected examples")
	}
	if resp.Command.Usage != "awsdeck list <resource> [flags]" {
		t.Errorf("Usage = %q", resp.Command.Usage)
	}

	required := map[string]bool{}
	for _, f := range resp.Command.Flags {
		required[f.Name] = f.Required
	}
	if !required["service"] || required["max-pages"] {
		t.Errorf("required flags = %v", required)
	}
}

func TestHelpHumanOutput(t *testing.T) {
	root := newHelpTestRoot(t)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"help", "list"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	out := buf.String()
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Error("expected human output, got JSON")
	}
	if !strings.Contains(out, "List resource instances") {
		t.Errorf("missing short description in %q", out)
	}
}

func TestHelpUnknownCommand(t *testing.T) {
	root := newHelpTestRoot(t)
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"help", "nope", "--json"})
	err := root.Execute()
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if code := shared.ExitCode(err); code != shared.ExitNotFound {
		t.Errorf("ExitCode = %d, want %d", code, shared.ExitNotFound)
	}
}
