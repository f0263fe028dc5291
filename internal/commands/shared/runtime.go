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

package shared

import (
	"context"
	"log/slog"
	"math"

	"github.com/tombee/awsdeck/internal/config"
	"github.com/tombee/awsdeck/internal/credentials"
	"github.com/tombee/awsdeck/internal/dispatch"
	"github.com/tombee/awsdeck/internal/log"
	"github.com/tombee/awsdeck/internal/registry"
	"github.com/tombee/awsdeck/internal/service"
	"github.com/tombee/awsdeck/internal/transport"
)

// CredentialSource is what commands need from a credentials provider.
type CredentialSource interface {
	dispatch.CredentialsProvider
	Profile() string
	Region() string
	Verify(ctx context.Context) (*credentials.Identity, error)
}

// Factories used by NewRuntime. Tests replace them with fakes.
var (
	NewCredentials = func(ctx context.Context, opts credentials.Options) (CredentialSource, error) {
		p, err := credentials.New(ctx, opts)
		if err != nil {
			return nil, err
		}
		return p, nil
	}

	NewTransport = func(cfg *transport.HTTPConfig) (transport.Transport, error) {
		t, err := transport.NewHTTPTransport(cfg)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
)

var logger = log.Discard()

// SetLogger sets the logger commands use. Called by the root command.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = log.Discard()
	}
	logger = l
}

// Logger returns the command logger.
func Logger() *slog.Logger {
	return logger
}

// Runtime is everything a command needs to reach AWS.
type Runtime struct {
	Settings     *config.Settings
	SettingsPath string
	Logger       *slog.Logger
	Registry     *registry.Registry
	Credentials  CredentialSource
	Dispatcher   *dispatch.Dispatcher

	// Profile, Region and Endpoint are the resolved values for this run.
	Profile  string
	Region   string
	Endpoint string
}

// LoadSettings loads the settings file named by --config, or the default
// path, with environment overrides applied.
func LoadSettings() (*config.Settings, string, error) {
	path := GetConfigPath()
	if path == "" {
		var err error
		path, err = config.ConfigPath()
		if err != nil {
			return nil, "", err
		}
	}
	settings, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return settings, path, nil
}

// LoadRegistry loads the bundled definitions plus the settings'
// definition directories.
func LoadRegistry(settings *config.Settings) (*registry.Registry, error) {
	loader := registry.NewLoader(
		registry.WithCatalog(service.Default()),
		registry.WithLogger(logger),
	)
	return loader.LoadDefault(settings.DefinitionDirs...)
}

// NewRuntime resolves settings, credentials and transport and builds a
// dispatcher.
//
// The profile is --profile, then AWS_PROFILE, then the settings file.
// The region is --region, then AWS_REGION, AWS_DEFAULT_REGION and the
// settings file, then the profile's region, then us-east-1.
func NewRuntime(ctx context.Context) (*Runtime, error) {
	settings, path, err := LoadSettings()
	if err != nil {
		return nil, err
	}
	reg, err := LoadRegistry(settings)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{
		Settings:     settings,
		SettingsPath: path,
		Logger:       logger,
		Registry:     reg,
		Profile:      firstNonEmpty(GetProfile(), settings.EffectiveProfile()),
		Region:       firstNonEmpty(GetRegion(), settings.ExplicitRegion()),
		Endpoint:     firstNonEmpty(GetEndpointURL(), settings.EndpointURL),
	}

	creds, err := NewCredentials(ctx, credentials.Options{
		Profile:  rt.Profile,
		Region:   rt.Region,
		Endpoint: rt.Endpoint,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	rt.Credentials = creds
	rt.Region = firstNonEmpty(rt.Region, creds.Region(), config.DefaultRegion)

	v, _, _ := GetVersion()
	t, err := NewTransport(&transport.HTTPConfig{
		CABundle:  transport.CABundleFromEnv(),
		UserAgent: "awsdeck/" + v,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}
	if settings.RateLimit > 0 {
		burst := max(1, int(math.Ceil(settings.RateLimit)))
		t.SetRateLimiter(transport.NewRateLimiter(settings.RateLimit, burst))
	}

	opts := []dispatch.Option{dispatch.WithLogger(logger)}
	if rt.Endpoint != "" {
		opts = append(opts, dispatch.WithEndpoint(rt.Endpoint))
	}
	rt.Dispatcher = dispatch.New(reg, service.Default(), t, creds, opts...)

	logger.Debug("runtime ready",
		log.String("profile", rt.Profile),
		log.String("region", rt.Region),
		log.String("endpoint", rt.Endpoint),
		log.Int("resources", reg.Len()))
	return rt, nil
}

// Remember applies fn to the stored settings. Failures are logged, not
// returned; a command that reached AWS has already succeeded.
func (rt *Runtime) Remember(fn func(*config.Settings)) {
	if err := Remember(rt.SettingsPath, fn); err != nil {
		rt.Logger.Warn("failed to update settings", log.Error(err))
	}
}

// Remember applies fn to the settings file at path under its lock.
func Remember(path string, fn func(*config.Settings)) error {
	sf, err := config.NewSettingsFile(path)
	if err != nil {
		return err
	}
	return sf.Update(fn)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
