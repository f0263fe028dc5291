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

/*
Package tracing wires OpenTelemetry tracing and Prometheus metric output
for awsdeck.

The dispatcher starts one client span per AWS call through the global
tracer provider. Tracing is off unless a command is run with --trace, in
which case a Provider is installed that exports spans to the console or an
OTLP collector.

# Quick Start

	provider, err := tracing.NewProvider(ctx, tracing.Config{
	    Enabled:        true,
	    ServiceName:    "awsdeck",
	    ServiceVersion: version,
	    Exporter:       tracing.ExporterConsole,
	    Writer:         os.Stderr,
	})
	if err != nil {
	    return err
	}
	defer provider.Shutdown(ctx)

Metrics recorded by the dispatcher can be written in the Prometheus text
format with WriteMetrics.
*/
package tracing
