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

package shared_test

import (
	"context"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/awsdeck/internal/commands/commandtest"
	"github.com/tombee/awsdeck/internal/commands/shared"
	"github.com/tombee/awsdeck/internal/config"
)

func parseFlags(t *testing.T, args ...string) {
	t.Helper()
	fs := pflag.NewFlagSet("awsdeck", pflag.ContinueOnError)
	shared.RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
}

func TestNewRuntimeResolution(t *testing.T) {
	tests := []struct {
		name          string
		args          []string
		env           map[string]string
		profileRegion string
		wantProfile   string
		wantRegion    string
	}{
		{
			name:        "defaults",
			wantProfile: "default",
			wantRegion:  "us-east-1",
		},
		{
			name:          "profile region",
			profileRegion: "ap-south-1",
			wantProfile:   "default",
			wantRegion:    "ap-south-1",
		},
		{
			name:          "environment beats profile region",
			env:           map[string]string{"AWS_REGION": "eu-central-1", "AWS_PROFILE": "staging"},
			profileRegion: "ap-south-1",
			wantProfile:   "staging",
			wantRegion:    "eu-central-1",
		},
		{
			name:        "flags beat environment",
			args:        []string{"--region", "eu-west-1", "--profile", "prod"},
			env:         map[string]string{"AWS_REGION": "eu-central-1", "AWS_PROFILE": "staging"},
			wantProfile: "prod",
			wantRegion:  "eu-west-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds := &commandtest.Credentials{RegionName: tt.profileRegion}
			commandtest.Install(t, creds, commandtest.NewTransport())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			parseFlags(t, tt.args...)

			rt, err := shared.NewRuntime(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantProfile, rt.Profile)
			assert.Equal(t, tt.wantRegion, rt.Region)
			assert.NotNil(t, rt.Dispatcher)
			assert.Greater(t, rt.Registry.Len(), 0)
		})
	}
}

func TestNewRuntimeEndpoint(t *testing.T) {
	commandtest.Install(t, &commandtest.Credentials{}, commandtest.NewTransport())
	t.Setenv("AWS_ENDPOINT_URL", "http://localhost:4566")

	rt, err := shared.NewRuntime(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4566", rt.Endpoint)

	parseFlags(t, "--endpoint-url", "http://localhost:9000")
	rt, err = shared.NewRuntime(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", rt.Endpoint)
}

func TestNewRuntimeSavedRegion(t *testing.T) {
	path := commandtest.Install(t, &commandtest.Credentials{}, commandtest.NewTransport())
	require.NoError(t, config.Save(path, &config.Settings{Region: "us-west-2"}))

	rt, err := shared.NewRuntime(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "us-west-2", rt.Region)
	assert.Equal(t, path, rt.SettingsPath)
}

func TestRemember(t *testing.T) {
	path := commandtest.Install(t, &commandtest.Credentials{}, commandtest.NewTransport())

	rt, err := shared.NewRuntime(context.Background())
	require.NoError(t, err)
	rt.Remember(func(s *config.Settings) {
		s.SetRegion("eu-north-1")
		s.SetLastResource("ec2:instances")
	})

	saved, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "eu-north-1", saved.Region)
	assert.Equal(t, []string{"eu-north-1"}, saved.RecentRegions)
	assert.Equal(t, "ec2:instances", saved.LastResource)
}
