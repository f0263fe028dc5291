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
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	pkgerrors "github.com/tombee/awsdeck/pkg/errors"
)

// ErrLockTimeout is returned when another awsdeck process holds the
// settings lock for longer than the lock timeout.
var ErrLockTimeout = errors.New("settings locked by another process")

const (
	defaultLockTimeout = 5 * time.Second
	lockPollInterval   = 50 * time.Millisecond
)

// SettingsFile is the on-disk settings store. Readers take a shared flock
// on a sibling ".lock" file and writers an exclusive one, so a
// read-modify-write in one process never interleaves with another's.
type SettingsFile struct {
	path        string
	lockTimeout time.Duration
}

// NewSettingsFile creates a SettingsFile for path.
// If path is empty, uses ConfigPath.
func NewSettingsFile(path string) (*SettingsFile, error) {
	if path == "" {
		var err error
		if path, err = ConfigPath(); err != nil {
			return nil, fmt.Errorf("failed to get settings path: %w", err)
		}
	}
	return &SettingsFile{path: path, lockTimeout: defaultLockTimeout}, nil
}

// Path returns the settings file path.
func (s *SettingsFile) Path() string {
	return s.path
}

// Read loads the settings under a shared lock. A missing file yields
// defaults; an unreadable or malformed file yields a *errors.ConfigError.
func (s *SettingsFile) Read() (*Settings, error) {
	release, err := s.lock(syscall.LOCK_SH)
	if err != nil {
		return nil, err
	}
	defer release()
	return s.read()
}

// Write replaces the settings under an exclusive lock.
func (s *SettingsFile) Write(cfg *Settings) error {
	release, err := s.lock(syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer release()
	return s.write(cfg)
}

// Update loads the settings, applies fn and saves the result under one
// exclusive lock.
func (s *SettingsFile) Update(fn func(*Settings)) error {
	release, err := s.lock(syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer release()

	cfg, err := s.read()
	if err != nil {
		return err
	}
	fn(cfg)
	return s.write(cfg)
}

// lock polls for the flock until lockTimeout and returns its release.
func (s *SettingsFile) lock(how int) (func(), error) {
	lockPath := s.path + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	deadline := time.Now().Add(s.lockTimeout)
	for {
		err := syscall.Flock(int(f.Fd()), how|syscall.LOCK_NB)
		if err == nil {
			break
		}
		if !errors.Is(err, syscall.EWOULDBLOCK) {
			f.Close()
			return nil, fmt.Errorf("failed to lock %s: %w", lockPath, err)
		}
		if time.Now().After(deadline) {
			f.Close()
			return nil, ErrLockTimeout
		}
		time.Sleep(lockPollInterval)
	}

	return func() {
		_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
		f.Close()
	}, nil
}

func (s *SettingsFile) read() (*Settings, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, &pkgerrors.ConfigError{Reason: "failed to read " + s.path, Cause: err}
	}

	var cfg Settings
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &pkgerrors.ConfigError{Reason: "failed to parse " + s.path, Cause: err}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// write replaces the file through a temporary file and rename.
func (s *SettingsFile) write(cfg *Settings) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}

// Load reads the settings at path and applies environment overrides.
// Settings returned by Load must not be saved back; use
// SettingsFile.Update for read-modify-write.
func Load(path string) (*Settings, error) {
	sf, err := NewSettingsFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := sf.Read()
	if err != nil {
		return nil, err
	}
	cfg.loadFromEnv()
	return cfg, nil
}

// Save writes cfg to path.
func Save(path string, cfg *Settings) error {
	sf, err := NewSettingsFile(path)
	if err != nil {
		return err
	}
	return sf.Write(cfg)
}
