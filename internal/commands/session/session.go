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

// Package session implements the commands that choose and inspect the
// active AWS profile and region.
package session

import (
	"github.com/tombee/awsdeck/internal/commands/shared"
	"github.com/tombee/awsdeck/internal/config"
	"github.com/tombee/awsdeck/internal/credentials"
	"github.com/tombee/awsdeck/internal/log"
)

// currentProfile resolves the profile the other commands would use.
func currentProfile(settings *config.Settings) string {
	if p := shared.GetProfile(); p != "" {
		return p
	}
	return settings.EffectiveProfile()
}

// currentRegion resolves the region the other commands would use without
// loading credentials: flag, environment or settings, the profile's own
// region, then the default.
func currentRegion(settings *config.Settings, profile string) string {
	if r := shared.GetRegion(); r != "" {
		return r
	}
	if r := settings.ExplicitRegion(); r != "" {
		return r
	}
	if r := profileRegion(profile); r != "" {
		return r
	}
	return config.DefaultRegion
}

// profileRegion treats an unreadable shared config file as "no region".
func profileRegion(profile string) string {
	region, err := credentials.ProfileRegion(profile)
	if err != nil {
		shared.Logger().Debug("failed to read profile region", log.String("profile", profile), log.Error(err))
		return ""
	}
	return region
}

func marker(current bool) string {
	if current {
		return "*"
	}
	return ""
}
