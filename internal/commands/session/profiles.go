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

package session

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/tombee/awsdeck/internal/cli/format"
	"github.com/tombee/awsdeck/internal/commands/completion"
	"github.com/tombee/awsdeck/internal/commands/shared"
	"github.com/tombee/awsdeck/internal/config"
	"github.com/tombee/awsdeck/internal/credentials"
	pkgerrors "github.com/tombee/awsdeck/pkg/errors"
)

// Profile is one entry of 'profiles --json'.
type Profile struct {
	Name    string `json:"name"`
	Region  string `json:"region,omitempty"`
	Current bool   `json:"current"`
}

// ProfilesResponse is the JSON output of 'profiles'.
type ProfilesResponse struct {
	shared.JSONResponse
	Current  string    `json:"current"`
	Profiles []Profile `json:"profiles"`
}

// NewProfilesCommand creates the profiles command and its 'use' subcommand.
func NewProfilesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List AWS profiles",
		Long: `List the profiles in the shared credentials and config files
(AWS_SHARED_CREDENTIALS_FILE and AWS_CONFIG_FILE are honored). The
current profile is marked with '*'.`,
		Annotations: map[string]string{"group": "session"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listProfiles(cmd)
		},
	}
	cmd.AddCommand(newUseProfileCommand())
	return cmd
}

func listProfiles(cmd *cobra.Command) error {
	settings, _, err := shared.LoadSettings()
	if err != nil {
		return err
	}
	names, err := credentials.Profiles()
	if err != nil {
		return &pkgerrors.ConfigError{Key: "profiles", Reason: "failed to read the shared AWS config files", Cause: err}
	}
	current := currentProfile(settings)

	profiles := make([]Profile, 0, len(names))
	for _, name := range names {
		profiles = append(profiles, Profile{
			Name:    name,
			Region:  profileRegion(name),
			Current: name == current,
		})
	}

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		return shared.EmitJSON(out, ProfilesResponse{
			JSONResponse: shared.NewJSONResponse("profiles"),
			Current:      current,
			Profiles:     profiles,
		})
	}

	color := shared.UseColor(out)
	rows := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, []string{marker(p.Current), p.Name, p.Region})
	}
	return format.Table(out, []format.Column{
		{Header: "", Width: 1},
		{Header: "PROFILE"},
		{Header: "REGION"},
	}, rows, color)
}

func newUseProfileCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "use <profile>",
		Short:             "Make a profile the default",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteProfiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			names, err := credentials.Profiles()
			if err != nil {
				return &pkgerrors.ConfigError{Key: "profiles", Reason: "failed to read the shared AWS config files", Cause: err}
			}
			if !slices.Contains(names, name) {
				return &pkgerrors.NotFoundError{
					Resource: "profile",
					ID:       name,
					Hint:     "Run 'awsdeck profiles' to see the configured profiles",
				}
			}

			_, path, err := shared.LoadSettings()
			if err != nil {
				return err
			}
			if err := shared.Remember(path, func(s *config.Settings) { s.SetProfile(name) }); err != nil {
				return err
			}

			if shared.GetJSON() {
				return shared.EmitJSON(cmd.OutOrStdout(), ProfilesResponse{
					JSONResponse: shared.NewJSONResponse("profiles use"),
					Current:      name,
					Profiles:     []Profile{{Name: name, Region: profileRegion(name), Current: true}},
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK("Using profile "+name))
			return nil
		},
	}
}
