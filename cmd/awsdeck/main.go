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

package main

import (
	"github.com/tombee/awsdeck/internal/cli"
	"github.com/tombee/awsdeck/internal/commands/action"
	"github.com/tombee/awsdeck/internal/commands/browse"
	"github.com/tombee/awsdeck/internal/commands/completion"
	"github.com/tombee/awsdeck/internal/commands/resources"
	"github.com/tombee/awsdeck/internal/commands/session"
	versioncmd "github.com/tombee/awsdeck/internal/commands/version"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildDate)

	rootCmd := cli.NewRootCommand()

	// Browse commands
	rootCmd.AddCommand(resources.NewCommand())
	rootCmd.AddCommand(browse.NewListCommand())
	rootCmd.AddCommand(browse.NewDescribeCommand())
	rootCmd.AddCommand(action.NewCommand())

	// Session commands
	rootCmd.AddCommand(session.NewProfilesCommand())
	rootCmd.AddCommand(session.NewRegionsCommand())
	rootCmd.AddCommand(session.NewWhoamiCommand())

	rootCmd.AddCommand(completion.NewCommand())
	rootCmd.AddCommand(versioncmd.NewVersionCommand())

	// Custom help command with JSON support
	rootCmd.SetHelpCommand(cli.NewHelpCommand(rootCmd))

	if err := cli.Execute(rootCmd); err != nil {
		cli.HandleExitError(err)
	}
}
