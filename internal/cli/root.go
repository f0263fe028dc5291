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
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tombee/awsdeck/internal/commands/shared"
	"github.com/tombee/awsdeck/internal/config"
	"github.com/tombee/awsdeck/internal/log"
	"github.com/tombee/awsdeck/internal/tracing"
	pkgerrors "github.com/tombee/awsdeck/pkg/errors"
)

const shutdownTimeout = 5 * time.Second

// session holds what the persistent pre-run sets up for one execution.
type session struct {
	mu       sync.Mutex
	command  string
	timeout  time.Duration
	cancel   context.CancelFunc
	provider *tracing.Provider
}

var current = &session{}

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return shared.GetVersion()
}

// NewRootCommand creates the root Cobra command for awsdeck
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "awsdeck",
		Short: "awsdeck - browse AWS resources from the terminal",
		Long: `awsdeck lists, describes and acts on AWS resources using declarative
resource definitions. Definitions ship with the binary; more can be added
with definition_dirs in the settings file.

Run 'awsdeck resources' to see what can be browsed.
Run 'awsdeck whoami' to check which account your credentials reach.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: current.setup,
	}

	shared.RegisterFlags(cmd.PersistentFlags())
	return cmd
}

// Execute runs root, releases what the run set up and normalizes the
// returned error. Interrupts cancel the command context.
func Execute(root *cobra.Command) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := root.ExecuteContext(ctx)
	current.finish(root.ErrOrStderr())
	return current.translate(err)
}

// HandleExitError handles exit errors with proper exit codes
func HandleExitError(err error) {
	shared.HandleExitError(current.commandName(), err)
}

func (s *session) setup(cmd *cobra.Command, args []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.command = strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()+" ")

	logCfg := log.FromEnv()
	logCfg.Output = cmd.ErrOrStderr()
	if level := shared.GetLogLevel(); level != "" {
		if _, err := log.ParseLevel(level); err != nil {
			return &pkgerrors.ValidationError{
				Field:   "log-level",
				Message: fmt.Sprintf("unknown level %q", level),
				Hint:    "Use one of " + strings.Join(log.LevelNames, ", "),
			}
		}
		logCfg.Level = strings.ToLower(level)
	}
	logger := log.New(logCfg)
	shared.SetLogger(logger)

	if target := shared.GetTrace(); target != "" {
		provider, err := tracing.NewProvider(cmd.Context(), traceConfig(target, cmd.ErrOrStderr()))
		if err != nil {
			return &pkgerrors.ValidationError{Field: "trace", Message: err.Error()}
		}
		s.provider = provider
	}

	timeout := shared.GetTimeout()
	if timeout < 0 {
		return &pkgerrors.ValidationError{Field: "timeout", Message: "must not be negative"}
	}
	if timeout == 0 {
		timeout = config.DefaultTimeout
		if settings, _, err := shared.LoadSettings(); err == nil && settings.Timeout > 0 {
			timeout = settings.Timeout
		}
	}
	s.timeout = timeout

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	s.cancel = cancel
	cmd.SetContext(ctx)

	logger.Debug("command started",
		log.String("command", s.command),
		log.String("timeout", timeout.String()))
	return nil
}

// traceConfig maps the --trace value to an exporter: "console" prints
// spans to w, grpc:// and grpcs:// URLs use OTLP over gRPC, anything else
// is an OTLP HTTP endpoint.
func traceConfig(target string, w io.Writer) tracing.Config {
	v, _, _ := shared.GetVersion()
	cfg := tracing.Config{
		Enabled:        true,
		ServiceName:    "awsdeck",
		ServiceVersion: v,
		Writer:         w,
		Sampling:       tracing.SamplingConfig{Enabled: true, Rate: 1.0},
	}
	switch {
	case target == tracing.ExporterConsole:
		cfg.Exporter = tracing.ExporterConsole
	case strings.HasPrefix(target, "grpc://"):
		cfg.Exporter = tracing.ExporterOTLP
		cfg.Endpoint = "http://" + strings.TrimPrefix(target, "grpc://")
	case strings.HasPrefix(target, "grpcs://"):
		cfg.Exporter = tracing.ExporterOTLP
		cfg.Endpoint = "https://" + strings.TrimPrefix(target, "grpcs://")
	default:
		cfg.Exporter = tracing.ExporterOTLPHTTP
		cfg.Endpoint = target
	}
	return cfg
}

func (s *session) finish(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.provider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := s.provider.Shutdown(ctx); err != nil {
			shared.Logger().Warn("failed to flush spans", log.Error(err))
		}
		cancel()
		s.provider = nil
	}
	if shared.GetMetrics() {
		if err := tracing.WriteMetrics(w, prometheus.DefaultGatherer, "awsdeck_"); err != nil {
			shared.Logger().Warn("failed to write metrics", log.Error(err))
		}
	}
}

// translate turns an expired command deadline into a *TimeoutError unless
// a lower layer already classified it.
func (s *session) translate(err error) error {
	if err == nil || !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errorType, _ := pkgerrors.Classify(err); errorType == "timeout" {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return &pkgerrors.TimeoutError{Operation: s.command, Duration: s.timeout, Cause: err}
}

func (s *session) commandName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.command
}
