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
	"time"

	"github.com/spf13/pflag"
)

// Global flag values - set by root command
var (
	profileFlag  string
	regionFlag   string
	endpointFlag string
	readOnlyFlag bool
	jsonFlag     bool
	logLevelFlag string
	traceFlag    string
	metricsFlag  bool
	timeoutFlag  time.Duration
	configFlag   string

	// Build-time version information
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// RegisterFlags binds the global flags to fs. Called by the root command.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&profileFlag, "profile", "p", "", "AWS profile (default: AWS_PROFILE, then the saved profile)")
	fs.StringVarP(&regionFlag, "region", "r", "", "AWS region (default: AWS_REGION, then the saved region)")
	fs.StringVar(&endpointFlag, "endpoint-url", "", "Send every request to this endpoint (LocalStack, VPC endpoints)")
	fs.BoolVar(&readOnlyFlag, "readonly", false, "Refuse to run actions")
	fs.BoolVar(&jsonFlag, "json", false, "Output in JSON format")
	fs.StringVar(&logLevelFlag, "log-level", "", "Log level: trace, debug, info, warn, error")
	fs.StringVar(&traceFlag, "trace", "", "Export spans: console, an OTLP HTTP URL, or grpc://host:port")
	fs.BoolVar(&metricsFlag, "metrics", false, "Print call metrics to stderr on exit")
	fs.DurationVar(&timeoutFlag, "timeout", 0, "Limit for the whole command (default: settings timeout, 5m)")
	fs.StringVar(&configFlag, "config", "", "Path to settings file (default: ~/.awsdeck/config.yaml)")
}

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	version = v
	commit = c
	buildDate = b
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return version, commit, buildDate
}

// GetProfile returns the --profile value
func GetProfile() string {
	return profileFlag
}

// GetRegion returns the --region value
func GetRegion() string {
	return regionFlag
}

// GetEndpointURL returns the --endpoint-url value
func GetEndpointURL() string {
	return endpointFlag
}

// GetReadOnly returns the --readonly value
func GetReadOnly() bool {
	return readOnlyFlag
}

// GetJSON returns the JSON output flag value
func GetJSON() bool {
	return jsonFlag
}

// GetLogLevel returns the --log-level value
func GetLogLevel() string {
	return logLevelFlag
}

// GetTrace returns the --trace value
func GetTrace() string {
	return traceFlag
}

// GetMetrics returns the --metrics value
func GetMetrics() bool {
	return metricsFlag
}

// GetTimeout returns the --timeout value
func GetTimeout() time.Duration {
	return timeoutFlag
}

// GetConfigPath returns the settings file path
func GetConfigPath() string {
	return configFlag
}

// ResetFlagsForTest restores every global flag to its zero value.
func ResetFlagsForTest() {
	profileFlag, regionFlag, endpointFlag = "", "", ""
	readOnlyFlag, jsonFlag, metricsFlag = false, false, false
	logLevelFlag, traceFlag, configFlag = "", "", ""
	timeoutFlag = 0
}

