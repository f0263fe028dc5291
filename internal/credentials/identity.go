package credentials

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	pkgerrors "github.com/tombee/awsdeck/pkg/errors"
)

const verifyTimeout = 5 * time.Second

// Identity is the caller identity behind a set of credentials.
type Identity struct {
	Account string `json:"account"`
	ARN     string `json:"arn"`
	UserID  string `json:"user_id"`
	Profile string `json:"profile,omitempty"`
	Region  string `json:"region,omitempty"`
}

// Verify calls STS GetCallerIdentity with the provider's credentials.
func (p *Provider) Verify(ctx context.Context) (*Identity, error) {
	client := sts.NewFromConfig(p.cfg, func(o *sts.Options) {
		if p.endpoint != "" {
			o.BaseEndpoint = aws.String(p.endpoint)
		}
		if o.Region == "" {
			o.Region = "us-east-1"
		}
	})

	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, &pkgerrors.CredentialsError{
			Profile: p.profile,
			Message: "credential verification failed",
			Cause:   err,
		}
	}

	return &Identity{
		Account: aws.ToString(out.Account),
		ARN:     aws.ToString(out.Arn),
		UserID:  aws.ToString(out.UserId),
		Profile: p.profile,
		Region:  p.cfg.Region,
	}, nil
}
