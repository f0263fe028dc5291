// Package signer authenticates outgoing AWS requests with Signature
// Version 4.
//
// Sign is a pure function of its inputs: it keeps no state between calls
// and may be called concurrently.
package signer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"

	"github.com/tombee/awsdeck/internal/protocol"
	"github.com/tombee/awsdeck/internal/service"
)

// ErrSigning matches every *SigningError.
var ErrSigning = errors.New("signing failed")

// Credentials are the inputs to one signed call. They are not retained.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Region          string
}

// Validate reports missing required fields.
func (c Credentials) Validate() error {
	switch {
	case c.AccessKeyID == "":
		return &SigningError{Reason: "access key id is required"}
	case c.SecretAccessKey == "":
		return &SigningError{Reason: "secret access key is required"}
	case c.Region == "":
		return &SigningError{Reason: "region is required"}
	}
	return nil
}

// SignedRequest is a WireRequest carrying authentication headers.
type SignedRequest struct {
	protocol.WireRequest

	// Region is the region in the credential scope.
	Region string

	// SignedAt is the signing timestamp.
	SignedAt time.Time
}

// SigningError reports credentials or a request that could not be signed.
type SigningError struct {
	Reason string
	Cause  error
}

// Error implements the error interface.
func (e *SigningError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("signing failed: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("signing failed: %s", e.Reason)
}

// Unwrap returns the underlying error.
func (e *SigningError) Unwrap() error {
	return e.Cause
}

// Is matches ErrSigning.
func (e *SigningError) Is(target error) bool {
	return target == ErrSigning
}

// IsUserVisible implements pkg/errors.UserVisibleError.
func (e *SigningError) IsUserVisible() bool { return true }

// UserMessage implements pkg/errors.UserVisibleError.
func (e *SigningError) UserMessage() string { return e.Error() }

// Suggestion implements pkg/errors.UserVisibleError.
func (e *SigningError) Suggestion() string {
	return "Check the selected profile with 'awsdeck whoami' or set AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY"
}

// Sign computes SigV4 headers for req. Query-protocol requests are
// canonicalized over their sorted parameters; JSON and REST requests over
// the sorted signed header set and the payload hash. Requests to S3 also
// carry the payload hash in X-Amz-Content-Sha256.
func Sign(ctx context.Context, req *protocol.WireRequest, creds Credentials, svc service.Info, at time.Time) (*SignedRequest, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	region := svc.RegionFor(creds.Region)

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, &SigningError{Reason: "invalid request", Cause: err}
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	payloadHash := PayloadHash(req.Body)
	if svc.SigningName == "s3" {
		httpReq.Header.Set("X-Amz-Content-Sha256", payloadHash)
	}

	awsCreds := aws.Credentials{
		AccessKeyID:     creds.AccessKeyID,
		SecretAccessKey: creds.SecretAccessKey,
		SessionToken:    creds.SessionToken,
	}
	// S3 signs the path as sent; every other service escapes it again.
	signer := v4.NewSigner(func(o *v4.SignerOptions) {
		o.DisableURIPathEscaping = svc.SigningName == "s3"
	})
	if err := signer.SignHTTP(ctx, awsCreds, httpReq, payloadHash, svc.SigningName, region, at.UTC()); err != nil {
		return nil, &SigningError{Reason: "sigv4", Cause: err}
	}

	headers := make(map[string]string, len(httpReq.Header))
	for k := range httpReq.Header {
		headers[k] = httpReq.Header.Get(k)
	}

	return &SignedRequest{
		WireRequest: protocol.WireRequest{
			Method:  req.Method,
			URL:     httpReq.URL.String(),
			Headers: headers,
			Body:    req.Body,
		},
		Region:   region,
		SignedAt: at.UTC(),
	}, nil
}

// PayloadHash returns the hex SHA-256 of body. A nil body hashes as empty.
func PayloadHash(body []byte) string {
	if body == nil {
		body = []byte{}
	}
	hash := sha256.Sum256(body)
	return hex.EncodeToString(hash[:])
}
