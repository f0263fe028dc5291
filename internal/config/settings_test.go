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

package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"testing"
	"time"

	pkgerrors "github.com/tombee/awsdeck/pkg/errors"
)

func TestSettingsFile_LockReleased(t *testing.T) {
	sf, err := NewSettingsFile(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("NewSettingsFile() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := sf.Update(func(s *Settings) { s.SetProfile("dev") }); err != nil {
			t.Fatalf("Update() #%d error = %v", i, err)
		}
	}
	if _, err := os.Stat(sf.Path() + ".lock"); err != nil {
		t.Errorf("lock file missing: %v", err)
	}
}

func TestSettingsFile_ConcurrentAccess(t *testing.T) {
	settingsPath := filepath.Join(t.TempDir(), "config.yaml")

	holder, err := NewSettingsFile(settingsPath)
	if err != nil {
		t.Fatalf("NewSettingsFile() error = %v", err)
	}
	waiter, err := NewSettingsFile(settingsPath)
	if err != nil {
		t.Fatalf("NewSettingsFile() error = %v", err)
	}
	waiter.lockTimeout = 200 * time.Millisecond

	release, err := holder.lock(syscall.LOCK_EX)
	if err != nil {
		t.Fatalf("lock() error = %v", err)
	}

	if _, err := waiter.Read(); !errors.Is(err, ErrLockTimeout) {
		t.Errorf("Read() while locked error = %v, want ErrLockTimeout", err)
	}
	if err := waiter.Update(func(*Settings) {}); !errors.Is(err, ErrLockTimeout) {
		t.Errorf("Update() while locked error = %v, want ErrLockTimeout", err)
	}

	release()
	if _, err := waiter.Read(); err != nil {
		t.Errorf("Read() after release error = %v", err)
	}
}

func TestSettingsFile_SharedReaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	holder, _ := NewSettingsFile(path)
	reader, _ := NewSettingsFile(path)
	reader.lockTimeout = 200 * time.Millisecond

	release, err := holder.lock(syscall.LOCK_SH)
	if err != nil {
		t.Fatalf("lock() error = %v", err)
	}
	defer release()

	if _, err := reader.Read(); err != nil {
		t.Errorf("Read() alongside another reader error = %v", err)
	}
	if err := reader.Write(Default()); !errors.Is(err, ErrLockTimeout) {
		t.Errorf("Write() alongside a reader error = %v, want ErrLockTimeout", err)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("AWS_ENDPOINT_URL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nested", "config.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if cfg.Profile != "" || cfg.Region != "" || len(cfg.RecentRegions) != 0 {
		t.Errorf("expected empty selections, got %+v", cfg)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Setenv("AWS_ENDPOINT_URL", "")
	path := filepath.Join(t.TempDir(), "config.yaml")

	want := &Settings{
		Profile:        "staging",
		Region:         "eu-west-1",
		LastResource:   "ec2_instances",
		RecentRegions:  []string{"eu-west-1", "us-east-1"},
		EndpointURL:    "http://localhost:4566",
		DefinitionDirs: []string{"/etc/awsdeck/definitions"},
		RateLimit:      5,
		Timeout:        45 * time.Second,
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("settings file mode = %o, want 600", perm)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Profile != want.Profile || got.Region != want.Region || got.LastResource != want.LastResource {
		t.Errorf("selections = %+v, want %+v", got, want)
	}
	if !slices.Equal(got.RecentRegions, want.RecentRegions) {
		t.Errorf("RecentRegions = %v, want %v", got.RecentRegions, want.RecentRegions)
	}
	if got.EndpointURL != want.EndpointURL || got.RateLimit != want.RateLimit || got.Timeout != want.Timeout {
		t.Errorf("knobs = %+v, want %+v", got, want)
	}
	if !slices.Equal(got.DefinitionDirs, want.DefinitionDirs) {
		t.Errorf("DefinitionDirs = %v, want %v", got.DefinitionDirs, want.DefinitionDirs)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantKey string
	}{
		{
			name:    "malformed yaml",
			content: "profile: [unclosed\n",
		},
		{
			name:    "negative rate limit",
			content: "rate_limit: -1\n",
			wantKey: "rate_limit",
		},
		{
			name:    "endpoint is not a url",
			content: "endpoint_url: not a url\n",
			wantKey: "endpoint_url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}

			_, err := Load(path)
			var cfgErr *pkgerrors.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Load() error = %v, want *ConfigError", err)
			}
			if cfgErr.Key != tt.wantKey {
				t.Errorf("ConfigError.Key = %q, want %q", cfgErr.Key, tt.wantKey)
			}
		})
	}
}

func TestLoad_EndpointFromEnv(t *testing.T) {
	t.Setenv("AWS_ENDPOINT_URL", "http://localhost:4566")
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.EndpointURL != "http://localhost:4566" {
		t.Errorf("EndpointURL = %q", cfg.EndpointURL)
	}

	// Update never persists the environment override.
	sf, _ := NewSettingsFile(path)
	if err := sf.Update(func(s *Settings) { s.SetProfile("dev") }); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "localhost") {
		t.Errorf("settings file persisted the env endpoint:\n%s", data)
	}
}

func TestSettingsFile_Update(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	sf, err := NewSettingsFile(path)
	if err != nil {
		t.Fatal(err)
	}

	for _, region := range []string{"us-east-1", "eu-west-1", "us-east-1"} {
		if err := sf.Update(func(s *Settings) { s.SetRegion(region) }); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
	}

	cfg, err := sf.Read()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Region != "us-east-1" {
		t.Errorf("Region = %q, want us-east-1", cfg.Region)
	}
	if want := []string{"us-east-1", "eu-west-1"}; !slices.Equal(cfg.RecentRegions, want) {
		t.Errorf("RecentRegions = %v, want %v", cfg.RecentRegions, want)
	}
}
