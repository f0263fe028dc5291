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
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tombee/awsdeck/internal/commands/shared"
	pkgerrors "github.com/tombee/awsdeck/pkg/errors"
)

const docsBaseURL = "https://github.com/tombee/awsdeck"

// CommandMetadata describes one command for 'help --json'.
type CommandMetadata struct {
	Name        string         `json:"name"`
	Short       string         `json:"short"`
	Long        string         `json:"long,omitempty"`
	Usage       string         `json:"usage"`
	Flags       []FlagMetadata `json:"flags,omitempty"`
	Examples    string         `json:"examples,omitempty"`
	Subcommands []string       `json:"subcommands,omitempty"`
	Group       string         `json:"group,omitempty"`
	Aliases     []string       `json:"aliases,omitempty"`
}

// FlagMetadata describes one flag.
type FlagMetadata struct {
	Name      string `json:"name"`
	Shorthand string `json:"shorthand,omitempty"`
	Usage     string `json:"usage"`
	Default   string `json:"default,omitempty"`
	Required  bool   `json:"required"`
}

// ExitCodeMetadata documents one process exit code.
type ExitCodeMetadata struct {
	Code    int    `json:"code"`
	Meaning string `json:"meaning"`
}

// HelpResponse is the JSON output of 'help'. The full listing also carries
// the exit codes and the loaded resource names, so scripts can discover
// what to pass to list, describe and action.
type HelpResponse struct {
	shared.JSONResponse
	Commands    []CommandMetadata  `json:"commands,omitempty"`
	Command     *CommandMetadata   `json:"command,omitempty"`
	GlobalFlags []FlagMetadata     `json:"global_flags,omitempty"`
	ExitCodes   []ExitCodeMetadata `json:"exit_codes,omitempty"`
	Resources   []string           `json:"resources,omitempty"`
	DocsURL     string             `json:"docs_url"`
}

var exitCodes = []ExitCodeMetadata{
	{shared.ExitSuccess, "success"},
	{shared.ExitExecutionFailed, "the command or an AWS call failed"},
	{shared.ExitUsage, "invalid arguments, flags or settings"},
	{shared.ExitNotFound, "unknown resource, action, profile or instance"},
	{shared.ExitAuth, "credentials missing, expired or denied"},
	{shared.ExitInterrupted, "interrupted"},
}

// NewHelpCommand creates the help command
func NewHelpCommand(rootCmd *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "help [command]",
		Short: "Help about any command",
		Long: `Help provides detailed information about commands and their usage.

Run 'awsdeck help' to see all available commands.
Run 'awsdeck help <command>' to see detailed help for a specific command.
Use --json for machine-readable output.`,
		Annotations: map[string]string{"group": "meta"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := rootCmd
			if len(args) > 0 {
				found, rest, err := rootCmd.Find(args)
				if err != nil || found == rootCmd || len(rest) > 0 {
					return &pkgerrors.NotFoundError{
						Resource: "command",
						ID:       args[0],
						Hint:     "Run 'awsdeck help' to see all commands",
					}
				}
				target = found
			}

			if !shared.GetJSON() {
				return target.Help()
			}

			resp := HelpResponse{
				GlobalFlags: flagMetadata(rootCmd.PersistentFlags()),
				DocsURL:     docsBaseURL + "#usage",
			}
			if target == rootCmd {
				resp.JSONResponse = shared.NewJSONResponse("help")
				resp.Commands = []CommandMetadata{}
				for _, c := range rootCmd.Commands() {
					if !c.Hidden {
						resp.Commands = append(resp.Commands, commandMetadata(c))
					}
				}
				resp.ExitCodes = exitCodes
				resp.Resources = resourceNames()
			} else {
				resp.JSONResponse = shared.NewJSONResponse("help " + target.Name())
				meta := commandMetadata(target)
				resp.Command = &meta
			}
			return shared.EmitJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func commandMetadata(cmd *cobra.Command) CommandMetadata {
	meta := CommandMetadata{
		Name:     cmd.Name(),
		Short:    cmd.Short,
		Long:     cmd.Long,
		Usage:    cmd.UseLine(),
		Examples: cmd.Example,
		Aliases:  cmd.Aliases,
		Group:    cmd.Annotations["group"],
		Flags:    flagMetadata(cmd.LocalNonPersistentFlags()),
	}
	for _, sub := range cmd.Commands() {
		if !sub.Hidden {
			meta.Subcommands = append(meta.Subcommands, sub.Name())
		}
	}
	return meta
}

func flagMetadata(fs *pflag.FlagSet) []FlagMetadata {
	var flags []FlagMetadata
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		required := f.Annotations[cobra.BashCompOneRequiredFlag]
		flags = append(flags, FlagMetadata{
			Name:      f.Name,
			Shorthand: f.Shorthand,
			Usage:     f.Usage,
			Default:   f.DefValue,
			Required:  len(required) > 0 && required[0] == "true",
		})
	})
	return flags
}

// resourceNames lists the loaded resource definitions. Broken settings or
// definition files leave the list out rather than failing help.
func resourceNames() []string {
	settings, _, err := shared.LoadSettings()
	if err != nil {
		return nil
	}
	reg, err := shared.LoadRegistry(settings)
	if err != nil {
		return nil
	}
	return reg.Names()
}
