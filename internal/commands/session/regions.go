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

// Region is one entry of 'regions --json'.
type Region struct {
	Name    string `json:"name"`
	Recent  bool   `json:"recent"`
	Current bool   `json:"current"`
}

// RegionsResponse is the JSON output of 'regions'.
type RegionsResponse struct {
	shared.JSONResponse
	Current string   `json:"current"`
	Regions []Region `json:"regions"`
}

// NewRegionsCommand creates the regions command and its 'use' subcommand.
func NewRegionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regions",
		Short: "List regions",
		Long: `List regions, recently used ones first. The current region is
marked with '*'.`,
		Annotations: map[string]string{"group": "session"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRegions(cmd)
		},
	}
	cmd.AddCommand(newUseRegionCommand())
	return cmd
}

// orderRegions puts the current region and recent regions ahead of the
// static list, without duplicates.
func orderRegions(current string, recent []string) []Region {
	var regions []Region
	seen := map[string]bool{}
	add := func(name string, isRecent bool) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		regions = append(regions, Region{Name: name, Recent: isRecent, Current: name == current})
	}

	if !slices.Contains(recent, current) {
		add(current, false)
	}
	for _, r := range recent {
		add(r, true)
	}
	for _, r := range credentials.FallbackRegions() {
		add(r, false)
	}
	return regions
}

func listRegions(cmd *cobra.Command) error {
	settings, _, err := shared.LoadSettings()
	if err != nil {
		return err
	}
	current := currentRegion(settings, currentProfile(settings))
	regions := orderRegions(current, settings.RecentRegions)

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		return shared.EmitJSON(out, RegionsResponse{
			JSONResponse: shared.NewJSONResponse("regions"),
			Current:      current,
			Regions:      regions,
		})
	}

	rows := make([][]string, 0, len(regions))
	for _, r := range regions {
		note := ""
		if r.Recent {
			note = "recent"
		}
		rows = append(rows, []string{marker(r.Current), r.Name, note})
	}
	return format.Table(out, []format.Column{
		{Header: "", Width: 1},
		{Header: "REGION"},
		{Header: "", Style: shared.RenderLabel},
	}, rows, shared.UseColor(out))
}

func newUseRegionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use <region>",
		Short: "Make a region the default",
		Long: `Make a region the default for later commands. Any well-formed
region code is accepted, including regions newer than the built-in list.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteRegions,
		RunE: func(cmd *cobra.Command, args []string) error {
			region := args[0]
			if !credentials.IsValidRegionName(region) {
				return &pkgerrors.ValidationError{
					Field:   "region",
					Message: fmt.Sprintf("%q is not a region code", region),
					Hint:    "Region codes look like us-east-1; run 'awsdeck regions' for a list",
				}
			}

			_, path, err := shared.LoadSettings()
			if err != nil {
				return err
			}
			if err := shared.Remember(path, func(s *config.Settings) { s.SetRegion(region) }); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if shared.GetJSON() {
				return shared.EmitJSON(out, RegionsResponse{
					JSONResponse: shared.NewJSONResponse("regions use"),
					Current:      region,
					Regions:      []Region{{Name: region, Recent: true, Current: true}},
				})
			}
			msg := "Using region " + region
			if !credentials.IsKnownRegion(region) {
				msg += " (not in the built-in region list)"
			}
			fmt.Fprintln(out, shared.RenderOK(msg))
			return nil
		},
	}
}
