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
	"fmt"
	"io"
	"time"
)

// Exporter types.
const (
	ExporterConsole  = "console"
	ExporterOTLP     = "otlp"
	ExporterOTLPHTTP = "otlp-http"
	ExporterNone     = "none"
)

// Config holds tracing configuration.
type Config struct {
	// Enabled controls whether tracing is active.
	Enabled bool

	// ServiceName identifies this process in traces.
	ServiceName string

	// ServiceVersion is the application version.
	ServiceVersion string

	// Exporter is one of console, otlp, otlp-http or none.
	Exporter string

	// Endpoint is the OTLP receiver URL for the otlp exporters.
	Endpoint string

	// Writer receives console spans (default: stderr).
	Writer io.Writer

	// Sampling configures trace sampling.
	Sampling SamplingConfig

	// BatchInterval is how often to flush spans (default: 1s).
	BatchInterval time.Duration
}

// SamplingConfig controls which traces are recorded.
type SamplingConfig struct {
	// Enabled activates sampling (default: false - sample all).
	Enabled bool

	// Rate is the fraction of traces to sample (0.0 - 1.0).
	Rate float64

	// AlwaysSampleErrors samples all spans that start with an error
	// attribute.
	AlwaysSampleErrors bool
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Exporter {
	case ExporterConsole, ExporterNone, "":
	case ExporterOTLP, ExporterOTLPHTTP:
		if c.Endpoint == "" {
			return fmt.Errorf("exporter %s requires an endpoint", c.Exporter)
		}
	default:
		return fmt.Errorf("unknown exporter type: %s", c.Exporter)
	}
	if c.Sampling.Rate < 0 || c.Sampling.Rate > 1 {
		return fmt.Errorf("sampling rate must be between 0 and 1, got %v", c.Sampling.Rate)
	}
	return nil
}
