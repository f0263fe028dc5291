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

package completion

import (
	"io"
	"slices"

	"github.com/spf13/cobra"
)

// generators writes a completion script for root, with or without
// descriptions. Zsh always includes them unless disabled.
var generators = map[string]func(root *cobra.Command, w io.Writer, descriptions bool) error{
	"bash": func(root *cobra.Command, w io.Writer, desc bool) error {
		return root.GenBashCompletionV2(w, desc)
	},
	"zsh": func(root *cobra.Command, w io.Writer, desc bool) error {
		if desc {
			return root.GenZshCompletion(w)
		}
		return root.GenZshCompletionNoDesc(w)
	},
	"fish": func(root *cobra.Command, w io.Writer, desc bool) error {
		return root.GenFishCompletion(w, desc)
	},
	"powershell": func(root *cobra.Command, w io.Writer, desc bool) error {
		if desc {
			return root.GenPowerShellCompletionWithDesc(w)
		}
		return root.GenPowerShellCompletion(w)
	},
}

// Shells lists the supported shells, sorted.
func Shells() []string {
	shells := make([]string, 0, len(generators))
	for name := range generators {
		shells = append(shells, name)
	}
	slices.Sort(shells)
	return shells
}

// NewCommand creates the completion command.
func NewCommand() *cobra.Command {
	var noDescriptions bool

	cmd := &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script. Resource names, action ids,
profiles and regions complete dynamically from the loaded definitions and
the shared AWS config files.

Settings files readable by other users are ignored while completing.`,
		Example: `  # bash, current session
  source <(awsdeck completion bash)

  # zsh, every session
  awsdeck completion zsh > "${fpath[1]}/_awsdeck"

  # fish
  awsdeck completion fish > ~/.config/fish/completions/awsdeck.fish

  # PowerShell
  awsdeck completion powershell | Out-String | Invoke-Expression`,
		Annotations:           map[string]string{"group": "meta"},
		DisableFlagsInUseLine: true,
		ValidArgs:             Shells(),
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return generators[args[0]](cmd.Root(), cmd.OutOrStdout(), !noDescriptions)
		},
	}
	cmd.Flags().BoolVar(&noDescriptions, "no-descriptions", false, "Leave descriptions out of completions")
	return cmd
}
