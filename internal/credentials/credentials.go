// Package credentials resolves AWS credentials for a profile through the
// SDK's default chain and lists the profiles and regions a user can pick.
package credentials

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"

	"github.com/tombee/awsdeck/internal/log"
	"github.com/tombee/awsdeck/internal/signer"
	pkgerrors "github.com/tombee/awsdeck/pkg/errors"
)

// loadTimeout bounds shared config loading, which may read files and
// start an SSO or process provider.
const loadTimeout = 10 * time.Second

// maxCacheTTL caps how long retrieved credentials are reused.
const maxCacheTTL = time.Hour

// Options selects the profile and region.
type Options struct {
	// Profile is a shared-config profile. Empty leaves the choice to the
	// default chain (AWS_PROFILE, then "default").
	Profile string

	// Region overrides the profile's region.
	Region string

	// Endpoint overrides the STS endpoint used by Verify.
	Endpoint string

	Logger *slog.Logger
}

// Provider yields signing credentials for one profile. It is safe for
// concurrent use.
type Provider struct {
	profile  string
	endpoint string
	cfg      aws.Config
	logger   *slog.Logger
	now      func() time.Time

	mu     sync.Mutex
	cached aws.Credentials
	expiry time.Time
}

// New loads the shared config for opts.Profile.
func New(ctx context.Context, opts Options) (*Provider, error) {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	// An explicit "default" must still win over AWS_PROFILE.
	if opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, &pkgerrors.CredentialsError{
			Profile: opts.Profile,
			Message: "failed to load AWS configuration",
			Cause:   err,
		}
	}
	return newProvider(opts, cfg), nil
}

// NewFromConfig wraps an already loaded SDK configuration.
func NewFromConfig(cfg aws.Config, opts Options) *Provider {
	if opts.Region != "" {
		cfg.Region = opts.Region
	}
	return newProvider(opts, cfg)
}

func newProvider(opts Options, cfg aws.Config) *Provider {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		profile:  opts.Profile,
		endpoint: opts.Endpoint,
		cfg:      cfg,
		logger:   log.WithComponent(logger, "credentials"),
		now:      time.Now,
	}
}

// Profile returns the profile name the provider was built for.
func (p *Provider) Profile() string {
	return p.profile
}

// Region returns the resolved default region, which may be empty.
func (p *Provider) Region() string {
	return p.cfg.Region
}

// Credentials returns signing credentials, retrieving them when the cached
// set is missing or expired.
func (p *Provider) Credentials(ctx context.Context) (signer.Credentials, error) {
	creds, err := p.retrieve(ctx)
	if err != nil {
		return signer.Credentials{}, err
	}
	return signer.Credentials{
		AccessKeyID:     creds.AccessKeyID,
		SecretAccessKey: creds.SecretAccessKey,
		SessionToken:    creds.SessionToken,
		Region:          p.cfg.Region,
	}, nil
}

func (p *Provider) retrieve(ctx context.Context) (aws.Credentials, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.expiry.IsZero() && p.now().Before(p.expiry) {
		return p.cached, nil
	}

	if p.cfg.Credentials == nil {
		return aws.Credentials{}, &pkgerrors.CredentialsError{
			Profile: p.profile,
			Message: "no credential provider configured",
		}
	}

	creds, err := p.cfg.Credentials.Retrieve(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return aws.Credentials{}, err
		}
		return aws.Credentials{}, &pkgerrors.CredentialsError{
			Profile: p.profile,
			Message: "unable to resolve AWS credentials",
			Cause:   err,
		}
	}

	expiry := p.now().Add(maxCacheTTL)
	if creds.CanExpire && creds.Expires.Before(expiry) {
		expiry = creds.Expires
	}
	p.cached = creds
	p.expiry = expiry

	p.logger.Debug("credentials resolved",
		log.String("access_key", log.SanitizeAccessKey(creds.AccessKeyID)),
		log.String("source", creds.Source),
		log.Bool("temporary", creds.SessionToken != ""))
	return creds, nil
}
