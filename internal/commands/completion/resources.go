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
	"slices"

	"github.com/spf13/cobra"

	"github.com/tombee/awsdeck/internal/credentials"
)

// CompleteResourceNames completes the first argument with registry
// resource names, described by their display names.
func CompleteResourceNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		reg, err := LoadRegistryForCompletion()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		var names []string
		for _, name := range reg.Names() {
			def, _ := reg.Lookup(name)
			names = append(names, name+"\t"+def.DisplayName)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
}

// CompleteActionIDs completes the resource name, then the action id of
// that resource.
func CompleteActionIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return CompleteResourceNames(cmd, args, toComplete)
	}
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		if len(args) > 1 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		reg, err := LoadRegistryForCompletion()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		def, ok := reg.Lookup(args[0])
		if !ok {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		var ids []string
		for id := range def.ActionConfigs {
			if action, _, _ := def.FindAction(id); action != nil {
				ids = append(ids, id+"\t"+action.DisplayName)
				continue
			}
			ids = append(ids, id)
		}
		slices.Sort(ids)
		return ids, cobra.ShellCompDirectiveNoFileComp
	})
}

// CompleteServices completes --service values.
func CompleteServices(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		reg, err := LoadRegistryForCompletion()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return reg.Services(), cobra.ShellCompDirectiveNoFileComp
	})
}

// CompleteProfiles completes profile names from the shared AWS files.
func CompleteProfiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		profiles, err := credentials.Profiles()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return profiles, cobra.ShellCompDirectiveNoFileComp
	})
}

// CompleteRegions completes regions, recently used ones first.
func CompleteRegions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		var regions []string
		if settings, err := LoadSettingsForCompletion(); err == nil {
			regions = append(regions, settings.RecentRegions...)
		}
		for _, r := range credentials.FallbackRegions() {
			if !slices.Contains(regions, r) {
				regions = append(regions, r)
			}
		}
		return regions, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveKeepOrder
	})
}
