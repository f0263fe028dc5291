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

// Package commandtest provides fakes for exercising commands without AWS.
package commandtest

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/cobra"

	"github.com/tombee/awsdeck/internal/commands/shared"
	"github.com/tombee/awsdeck/internal/credentials"
	"github.com/tombee/awsdeck/internal/log"
	"github.com/tombee/awsdeck/internal/signer"
	"github.com/tombee/awsdeck/internal/transport"
)

// Credentials is a fake shared.CredentialSource.
type Credentials struct {
	ProfileName string
	RegionName  string
	Identity    *credentials.Identity
	Err         error
}

// Credentials implements dispatch.CredentialsProvider.
func (c *Credentials) Credentials(ctx context.Context) (signer.Credentials, error) {
	if c.Err != nil {
		return signer.Credentials{}, c.Err
	}
	return signer.Credentials{
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
		Region:          c.RegionName,
	}, nil
}

func (c *Credentials) Profile() string { return c.ProfileName }
func (c *Credentials) Region() string  { return c.RegionName }

// Verify returns Identity, or Err when set.
func (c *Credentials) Verify(ctx context.Context) (*credentials.Identity, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	if c.Identity == nil {
		return nil, fmt.Errorf("no identity configured")
	}
	id := *c.Identity
	id.Profile = c.ProfileName
	id.Region = c.RegionName
	return &id, nil
}

// Response is a canned reply.
type Response struct {
	Status      int
	Body        string
	ContentType string
}

// Transport replies by AWS action name and records every request.
type Transport struct {
	mu        sync.Mutex
	responses map[string][]Response
	requests  []*transport.Request
}

// NewTransport returns an empty Transport.
func NewTransport() *Transport {
	return &Transport{responses: make(map[string][]Response)}
}

// On queues responses for action. The last response repeats.
func (t *Transport) On(action string, responses ...Response) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.responses[action] = append(t.responses[action], responses...)
	return t
}

// Execute implements transport.Transport.
func (t *Transport) Execute(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.requests = append(t.requests, req)
	action, _ := req.Metadata[log.ActionKey].(string)
	queue := t.responses[action]
	if len(queue) == 0 {
		return nil, &transport.TransportError{Type: transport.ErrorTypeClient, Message: "no response for " + action}
	}
	r := queue[0]
	if len(queue) > 1 {
		t.responses[action] = queue[1:]
	}

	status := r.Status
	if status == 0 {
		status = 200
	}
	contentType := r.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	return &transport.Response{
		StatusCode: status,
		Headers:    map[string][]string{"Content-Type": {contentType}},
		Body:       []byte(r.Body),
		Metadata:   map[string]any{},
	}, nil
}

func (t *Transport) Name() string                               { return "fake" }
func (t *Transport) SetRateLimiter(limiter transport.RateLimiter) {}

// Requests returns the requests sent so far.
func (t *Transport) Requests() []*transport.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*transport.Request(nil), t.requests...)
}

// Install points the command runtime at creds and tr and at a settings
// file in a temp directory, whose path it returns. Everything is restored
// when the test ends.
func Install(t *testing.T, creds *Credentials, tr *Transport) string {
	t.Helper()

	prevCreds, prevTransport, prevConfirm := shared.NewCredentials, shared.NewTransport, shared.DefaultConfirmer
	t.Cleanup(func() {
		shared.NewCredentials, shared.NewTransport, shared.DefaultConfirmer = prevCreds, prevTransport, prevConfirm
		shared.ResetFlagsForTest()
	})

	for _, v := range []string{"AWS_PROFILE", "AWS_REGION", "AWS_DEFAULT_REGION", "AWS_ENDPOINT_URL"} {
		t.Setenv(v, "")
	}
	t.Setenv("NO_COLOR", "1")

	shared.ResetFlagsForTest()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := filepath.Join(dir, "awsdeck", "config.yaml")

	shared.NewCredentials = func(ctx context.Context, opts credentials.Options) (shared.CredentialSource, error) {
		if opts.Profile != "" {
			creds.ProfileName = opts.Profile
		}
		if opts.Region != "" {
			creds.RegionName = opts.Region
		}
		return creds, nil
	}
	shared.NewTransport = func(cfg *transport.HTTPConfig) (transport.Transport, error) {
		return tr, nil
	}
	return path
}

// Run mounts cmd under a bare root carrying the global flags, executes
// args (starting with the command name) and returns what it wrote to
// stdout.
func Run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{
		Use:           "awsdeck",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	shared.RegisterFlags(root.PersistentFlags())
	root.AddCommand(cmd)

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}
