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

package log

import (
	"context"
	"log/slog"
	"time"
)

// Call describes one AWS API call for logging purposes.
type Call struct {
	// Operation is the dispatcher operation (list, describe, action).
	Operation string

	// Resource is the resource definition name.
	Resource string

	// Service is the AWS service identifier.
	Service string

	// Region is the region the call is routed to.
	Region string

	// Action is the AWS API action (DescribeInstances, ListTables).
	Action string

	// CorrelationID ties together every call of one dispatch, such as
	// the pages of a list.
	CorrelationID string
}

// CallResult describes the outcome of a Call.
type CallResult struct {
	// Err is the failure, if any.
	Err error

	// DurationMs is the duration of the call in milliseconds.
	DurationMs int64

	// Metadata contains additional attributes (page, status, request_id).
	Metadata map[string]any
}

func (c *Call) attrs() []any {
	attrs := []any{
		"operation", c.Operation,
		ResourceKey, c.Resource,
		ServiceKey, c.Service,
		RegionKey, c.Region,
		ActionKey, c.Action,
	}
	if c.CorrelationID != "" {
		attrs = append(attrs, CorrelationIDKey, c.CorrelationID)
	}
	return attrs
}

// LogCallStart logs an outgoing AWS call at debug level.
func LogCallStart(logger *slog.Logger, call *Call) {
	attrs := append([]any{EventKey, "aws_call"}, call.attrs()...)
	logger.Debug("aws call started", attrs...)
}

// LogCallEnd logs a finished AWS call. Failures log at warn.
func LogCallEnd(logger *slog.Logger, call *Call, result *CallResult) {
	attrs := append([]any{EventKey, "aws_call_done"}, call.attrs()...)
	attrs = append(attrs, DurationKey, result.DurationMs)
	for k, v := range result.Metadata {
		attrs = append(attrs, k, v)
	}

	if result.Err != nil {
		attrs = append(attrs, "error", result.Err.Error())
		logger.Log(context.Background(), slog.LevelWarn, "aws call failed", attrs...)
		return
	}
	logger.Debug("aws call completed", attrs...)
}

// CallMiddleware wraps AWS calls with start and end logging.
type CallMiddleware struct {
	logger *slog.Logger
}

// NewCallMiddleware creates a new call logging middleware.
func NewCallMiddleware(logger *slog.Logger) *CallMiddleware {
	return &CallMiddleware{logger: logger}
}

// Handle runs fn, logging the call before and after. Metadata returned by
// fn is attached to the completion record even when fn fails.
func (m *CallMiddleware) Handle(call *Call, fn func() (map[string]any, error)) error {
	start := time.Now()
	LogCallStart(m.logger, call)

	metadata, err := fn()

	LogCallEnd(m.logger, call, &CallResult{
		Err:        err,
		DurationMs: time.Since(start).Milliseconds(),
		Metadata:   metadata,
	})
	return err
}
