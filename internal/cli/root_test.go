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
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	pkgerrors "github.com/tombee/awsdeck/pkg/errors"
)

func newTestRoot(t *testing.T, run func(cmd *cobra.Command, args []string) error) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("AWSDECK_DEBUG", "")
	t.Setenv("AWSDECK_LOG_LEVEL", "")

	root := NewRootCommand()
	root.AddCommand(&cobra.Command{Use: "probe", RunE: run})
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root, stdout, stderr
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	if cmd.Use != "awsdeck" {
		t.Errorf("expected use 'awsdeck', got %q", cmd.Use)
	}
	if cmd.Short == "" || cmd.Long == "" {
		t.Error("expected descriptions to be set")
	}
	if !cmd.SilenceErrors || !cmd.SilenceUsage {
		t.Error("root command must leave error printing to HandleExitError")
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"profile", "region", "endpoint-url", "readonly", "json", "log-level", "trace", "metrics", "timeout", "config"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("%s flag not registered", name)
		}
	}
	if f := cmd.PersistentFlags().ShorthandLookup("r"); f == nil || f.Name != "region" {
		t.Error("-r should be the region shorthand")
	}
}

func TestSetVersion(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2026-01-05")
	t.Cleanup(func() { SetVersion("dev", "unknown", "unknown") })

	v, c, b := GetVersion()
	if v != "1.2.3" || c != "abc123" || b != "2026-01-05" {
		t.Errorf("GetVersion() = %q, %q, %q", v, c, b)
	}
}

func TestTimeoutDeadline(t *testing.T) {
	var remaining time.Duration
	root, _, _ := newTestRoot(t, func(cmd *cobra.Command, args []string) error {
		deadline, ok := cmd.Context().Deadline()
		if !ok {
			t.Fatal("expected a deadline")
		}
		remaining = time.Until(deadline)
		return nil
	})
	root.SetArgs([]string{"probe", "--timeout", "90s"})

	if err := Execute(root); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if remaining <= 0 || remaining > 90*time.Second {
		t.Errorf("remaining = %v, want within 90s", remaining)
	}
}

func TestTimeoutBecomesTimeoutError(t *testing.T) {
	root, _, _ := newTestRoot(t, func(cmd *cobra.Command, args []string) error {
		<-cmd.Context().Done()
		return cmd.Context().Err()
	})
	root.SetArgs([]string{"probe", "--timeout", "10ms"})

	err := Execute(root)
	var timeoutErr *pkgerrors.TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected *TimeoutError, got %T: %v", err, err)
	}
	if timeoutErr.Operation != "probe" || timeoutErr.Duration != 10*time.Millisecond {
		t.Errorf("unexpected timeout error: %+v", timeoutErr)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("cause should be kept")
	}
}

func TestSetupValidation(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		field string
	}{
		{name: "unknown log level", args: []string{"probe", "--log-level", "loud"}, field: "log-level"},
		{name: "negative timeout", args: []string{"probe", "--timeout", "-1s"}, field: "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ran := false
			root, _, _ := newTestRoot(t, func(cmd *cobra.Command, args []string) error {
				ran = true
				return nil
			})
			root.SetArgs(tt.args)

			err := Execute(root)
			var valErr *pkgerrors.ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if valErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", valErr.Field, tt.field)
			}
			if ran {
				t.Error("command should not run")
			}
		})
	}
}

func TestMetricsFlag(t *testing.T) {
	root, _, stderr := newTestRoot(t, func(cmd *cobra.Command, args []string) error { return nil })
	root.SetArgs([]string{"probe", "--metrics"})

	if err := Execute(root); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.Contains(stderr.String(), "go_goroutines") {
		t.Error("metrics output should be limited to awsdeck metrics")
	}
}

func TestConsoleTrace(t *testing.T) {
	root, _, _ := newTestRoot(t, func(cmd *cobra.Command, args []string) error { return nil })
	root.SetArgs([]string{"probe", "--trace", "console"})

	if err := Execute(root); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if current.provider != nil {
		t.Error("trace provider should be shut down after Execute")
	}
}

func TestTraceConfig(t *testing.T) {
	cfg := traceConfig("console", nil)
	if cfg.Exporter != "console" || cfg.Endpoint != "" {
		t.Errorf("console config = %+v", cfg)
	}
	cfg = traceConfig("http://localhost:4318", nil)
	if cfg.Exporter != "otlp-http" || cfg.Endpoint != "http://localhost:4318" {
		t.Errorf("otlp config = %+v", cfg)
	}
	cfg = traceConfig("grpc://localhost:4317", nil)
	if cfg.Exporter != "otlp" || cfg.Endpoint != "http://localhost:4317" {
		t.Errorf("grpc config = %+v", cfg)
	}
	cfg = traceConfig("grpcs://collector:4317", nil)
	if cfg.Exporter != "otlp" || cfg.Endpoint != "https://collector:4317" {
		t.Errorf("grpcs config = %+v", cfg)
	}
}
