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

// Package config holds awsdeck's persisted user settings: the selected
// profile and region, recently used regions, the last viewed resource and
// process-wide knobs such as the endpoint override and rate limit.
//
// Settings never hold credentials. Profiles resolve through the AWS shared
// config files; see internal/credentials.
package config

import (
	"os"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/tombee/awsdeck/pkg/errors"
)

const (
	// DefaultProfile is used when neither AWS_PROFILE nor the settings
	// file names one.
	DefaultProfile = "default"

	// DefaultRegion is used when neither the environment nor the settings
	// file names one.
	DefaultRegion = "us-east-1"

	// MaxRecentRegions bounds the recent region list.
	MaxRecentRegions = 6

	// DefaultTimeout bounds a whole command, including every page of a list.
	DefaultTimeout = 5 * time.Minute
)

// Settings is the persisted user state.
type Settings struct {
	// Profile is the last selected AWS profile
	Profile string `yaml:"profile,omitempty"`

	// Region is the last selected region
	Region string `yaml:"region,omitempty"`

	// LastResource is the resource most recently listed
	LastResource string `yaml:"last_resource,omitempty"`

	// RecentRegions lists recently used regions, most recent first
	RecentRegions []string `yaml:"recent_regions,omitempty" validate:"max=6"`

	// EndpointURL sends every call to one endpoint (LocalStack, VPC endpoints)
	EndpointURL string `yaml:"endpoint_url,omitempty" validate:"omitempty,url"`

	// DefinitionDirs are extra directories of resource definition files
	DefinitionDirs []string `yaml:"definition_dirs,omitempty"`

	// RateLimit caps outgoing requests per second; 0 disables limiting
	RateLimit float64 `yaml:"rate_limit,omitempty" validate:"gte=0"`

	// Timeout bounds each command
	Timeout time.Duration `yaml:"timeout,omitempty" validate:"gte=0"`
}

// Default returns settings with every default applied.
func Default() *Settings {
	s := &Settings{}
	s.applyDefaults()
	return s
}

func (s *Settings) applyDefaults() {
	if s.Timeout == 0 {
		s.Timeout = DefaultTimeout
	}
	if len(s.RecentRegions) > MaxRecentRegions {
		s.RecentRegions = s.RecentRegions[:MaxRecentRegions]
	}
}

// loadFromEnv applies environment overrides that are not profile or
// region selection. Those are resolved by EffectiveProfile and
// EffectiveRegion so that Save never persists them.
func (s *Settings) loadFromEnv() {
	if val := os.Getenv("AWS_ENDPOINT_URL"); val != "" {
		s.EndpointURL = val
	}
}

var validate = newValidator()

// newValidator reports fields by their yaml key.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the settings values.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if pkgerrors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &pkgerrors.ConfigError{
				Key:    fe.Field(),
				Reason: "failed " + fe.Tag() + " check",
				Cause:  err,
			}
		}
		return &pkgerrors.ConfigError{Reason: "invalid settings", Cause: err}
	}
	return nil
}

// SetRegion selects region and moves it to the front of the recent list.
func (s *Settings) SetRegion(region string) {
	if region == "" {
		return
	}
	s.Region = region
	s.RecentRegions = slices.DeleteFunc(s.RecentRegions, func(r string) bool { return r == region })
	s.RecentRegions = slices.Insert(s.RecentRegions, 0, region)
	if len(s.RecentRegions) > MaxRecentRegions {
		s.RecentRegions = s.RecentRegions[:MaxRecentRegions]
	}
}

// SetProfile selects profile.
func (s *Settings) SetProfile(profile string) {
	s.Profile = profile
}

// SetLastResource records the most recently viewed resource.
func (s *Settings) SetLastResource(name string) {
	s.LastResource = name
}

// EffectiveProfile resolves the profile: AWS_PROFILE, then the settings
// file, then "default".
func (s *Settings) EffectiveProfile() string {
	if p := os.Getenv("AWS_PROFILE"); p != "" {
		return p
	}
	if s.Profile != "" {
		return s.Profile
	}
	return DefaultProfile
}

// EffectiveRegion resolves the region: AWS_REGION, then
// AWS_DEFAULT_REGION, then the settings file, then us-east-1.
func (s *Settings) EffectiveRegion() string {
	if r := s.ExplicitRegion(); r != "" {
		return r
	}
	return DefaultRegion
}

// ExplicitRegion is EffectiveRegion without the final default, so callers
// can fall back to the profile's own region first.
func (s *Settings) ExplicitRegion() string {
	for _, key := range []string{"AWS_REGION", "AWS_DEFAULT_REGION"} {
		if r := os.Getenv(key); r != "" {
			return r
		}
	}
	return s.Region
}
