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
Package cli provides the root command and shared setup for the awsdeck CLI.

This package creates the main Cobra command tree and handles global concerns
like version information, persistent flags, logging, tracing, the command
deadline and exit codes. Individual commands are implemented in the
internal/commands subpackages.

# Command Tree

	awsdeck
	├── resources     List resource types from the registry
	├── list          List instances of a resource
	├── describe      Show one resource instance
	├── action        Run a resource action
	├── profiles      List or select AWS profiles
	├── regions       List or select regions
	├── whoami        Show the caller identity
	├── completion    Generate shell completion
	├── version       Show version
	└── help          Show help

# Usage

From main.go:

	cli.SetVersion(version, commit, date)
	rootCmd := cli.NewRootCommand()
	// ... add commands ...
	if err := cli.Execute(rootCmd); err != nil {
	    cli.HandleExitError(err)
	}

# Global Flags

	--profile, -p    AWS profile
	--region, -r     AWS region
	--endpoint-url   Endpoint override (LocalStack, VPC endpoints)
	--readonly       Refuse to run actions
	--json           Output in JSON format
	--log-level      trace, debug, info, warn, error
	--trace          console, an OTLP HTTP URL, or grpc://host:port
	--metrics        Print call metrics to stderr on exit
	--timeout        Deadline for the whole command
	--config         Path to the settings file

# Error Handling

Errors are mapped to exit codes by internal/commands/shared:

  - Exit 0: Success
  - Exit 1: AWS call or other execution failure
  - Exit 2: Invalid usage, settings or read-only refusal
  - Exit 3: Unknown resource, action or instance
  - Exit 4: Credentials rejected or missing
  - Exit 130: Interrupted
*/
package cli
