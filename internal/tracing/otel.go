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

package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const defaultBatchInterval = time.Second

// Provider owns the SDK tracer provider installed for a command.
type Provider struct {
	tp *sdktrace.TracerProvider
}

// NewProvider creates a tracer provider from cfg and installs it as the
// global provider. Extra options are appended after the configured
// exporter and sampler.
func NewProvider(ctx context.Context, cfg Config, opts ...sdktrace.TracerProviderOption) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// An empty schema URL avoids conflicts when merging with the default
	// resource.
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	allOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(NewSampler(cfg.Sampling)),
	}

	exporter, err := CreateExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if exporter != nil {
		interval := cfg.BatchInterval
		if interval <= 0 {
			interval = defaultBatchInterval
		}
		allOpts = append(allOpts, sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(interval)))
	}
	allOpts = append(allOpts, opts...)

	tp := sdktrace.NewTracerProvider(allOpts...)
	otel.SetTracerProvider(tp)

	return &Provider{tp: tp}, nil
}

// Tracer returns a tracer for the given instrumentation scope.
func (p *Provider) Tracer(name string) trace.Tracer {
	return p.tp.Tracer(name)
}

// Shutdown flushes any pending spans and releases resources.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.tp.Shutdown(ctx)
}

// ForceFlush exports all pending spans synchronously.
func (p *Provider) ForceFlush(ctx context.Context) error {
	return p.tp.ForceFlush(ctx)
}
