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

// Package log builds the slog loggers used across awsdeck and defines the
// attribute keys its records share.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format represents the log output format.
type Format string

const (
	// FormatJSON outputs logs in JSON format for machine parsing.
	FormatJSON Format = "json"
	// FormatText outputs logs in human-readable text format.
	FormatText Format = "text"
)

// LevelTrace sits below Debug and carries request and response bodies.
const LevelTrace = slog.Level(-8)

// Attribute keys shared by every component.
const (
	ResourceKey      = "resource"
	ServiceKey       = "service"
	RegionKey        = "region"
	ActionKey        = "action"
	DurationKey      = "duration_ms"
	EventKey         = "event"
	CorrelationIDKey = "correlation_id"
)

// levels maps level names to slog levels. "warning" is accepted as an
// alias.
var levels = map[string]slog.Level{
	"trace":   LevelTrace,
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// LevelNames lists the accepted level names, most verbose first.
var LevelNames = []string{"trace", "debug", "info", "warn", "error"}

// Config holds the logging configuration.
type Config struct {
	// Level is one of LevelNames. Unknown names fall back to warn.
	Level string

	// Format is text unless set to json.
	Format Format

	// Output defaults to os.Stderr.
	Output io.Writer

	// AddSource adds file:line to each record.
	AddSource bool
}

// DefaultConfig returns a Config suited to an interactive CLI: quiet text
// output on stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:  "warn",
		Format: FormatText,
		Output: os.Stderr,
	}
}

// FromEnv starts from DefaultConfig and applies, in order of precedence:
//
//	AWSDECK_DEBUG=1|true     debug level with source locations
//	AWSDECK_LOG_LEVEL        level name
//	LOG_LEVEL                level name
//	LOG_FORMAT               text or json
//	LOG_SOURCE=1             source locations
func FromEnv() *Config {
	cfg := DefaultConfig()

	switch os.Getenv("AWSDECK_DEBUG") {
	case "1", "true":
		cfg.Level = "debug"
		cfg.AddSource = true
	case "":
		for _, key := range []string{"AWSDECK_LOG_LEVEL", "LOG_LEVEL"} {
			if level := os.Getenv(key); level != "" {
				cfg.Level = strings.ToLower(level)
				break
			}
		}
	}

	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Format = Format(strings.ToLower(format))
	}
	if os.Getenv("LOG_SOURCE") == "1" {
		cfg.AddSource = true
	}
	return cfg
}

// New creates a logger from cfg. A nil cfg means DefaultConfig.
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{
		Level:       level,
		AddSource:   cfg.AddSource,
		ReplaceAttr: renameTrace,
	}
	if cfg.Format == FormatJSON {
		return slog.New(slog.NewJSONHandler(output, opts))
	}
	return slog.New(slog.NewTextHandler(output, opts))
}

// renameTrace prints LevelTrace as TRACE instead of DEBUG-4.
func renameTrace(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if level, ok := a.Value.Any().(slog.Level); ok && level == LevelTrace {
			a.Value = slog.StringValue("TRACE")
		}
	}
	return a
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel resolves a level name, case-insensitively.
func ParseLevel(name string) (slog.Level, error) {
	level, ok := levels[strings.ToLower(name)]
	if !ok {
		return slog.LevelWarn, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

// WithComponent returns a new logger with a component name field.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}

func String(key, value string) slog.Attr { return slog.String(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func Bool(key string, value bool) slog.Attr { return slog.Bool(key, value) }

func Error(err error) slog.Attr { return slog.Any("error", err) }

// SanitizeAccessKey masks an AWS access key id, keeping the four-letter
// type prefix (AKIA, ASIA) and the last four characters.
func SanitizeAccessKey(key string) string {
	if len(key) <= 8 {
		return "[REDACTED]"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// Trace logs at LevelTrace. Callers pass bodies, so the level check comes
// before any attribute is built by the handler.
func Trace(logger *slog.Logger, msg string, attrs ...slog.Attr) {
	ctx := context.Background()
	if !logger.Enabled(ctx, LevelTrace) {
		return
	}
	logger.LogAttrs(ctx, LevelTrace, msg, attrs...)
}
