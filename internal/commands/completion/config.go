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
	"os"

	"github.com/spf13/cobra"

	"github.com/tombee/awsdeck/internal/commands/shared"
	"github.com/tombee/awsdeck/internal/config"
	"github.com/tombee/awsdeck/internal/registry"
)

// CheckFilePermissions reports whether the file at path is private to its
// owner. A missing file counts as private.
func CheckFilePermissions(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return true
	}
	return info.Mode().Perm()&0o077 == 0
}

// LoadSettingsForCompletion loads the settings file, refusing files other
// users can read or write. Definition directories named by such a file
// are not trusted during completion.
func LoadSettingsForCompletion() (*config.Settings, error) {
	path := shared.GetConfigPath()
	if path == "" {
		var err error
		path, err = config.ConfigPath()
		if err != nil {
			return nil, err
		}
	}
	if !CheckFilePermissions(path) {
		return config.Default(), nil
	}
	return config.Load(path)
}

// LoadRegistryForCompletion loads the registry the commands would use.
func LoadRegistryForCompletion() (*registry.Registry, error) {
	settings, err := LoadSettingsForCompletion()
	if err != nil {
		return nil, err
	}
	return shared.LoadRegistry(settings)
}

// SafeCompletionWrapper wraps a completion function with panic recovery.
// Returns empty completion list on panic or error.
func SafeCompletionWrapper(fn func() ([]string, cobra.ShellCompDirective)) (results []string, directive cobra.ShellCompDirective) {
	results = []string{}
	directive = cobra.ShellCompDirectiveNoFileComp

	defer func() {
		if r := recover(); r != nil {
			results = []string{}
			directive = cobra.ShellCompDirectiveNoFileComp
		}
	}()

	results, directive = fn()
	if results == nil {
		return []string{}, cobra.ShellCompDirectiveNoFileComp
	}
	return results, directive
}
