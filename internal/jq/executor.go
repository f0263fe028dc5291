// Package jq runs jq queries against parsed API responses.
package jq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/itchyny/gojq"
)

const (
	// DefaultTimeout bounds one query run.
	DefaultTimeout = 5 * time.Second

	// DefaultMaxInputSize is the largest input, as JSON, a query accepts (10MB)
	DefaultMaxInputSize = 10 * 1024 * 1024
)

// ErrInvalidQuery wraps parse and compile failures.
var ErrInvalidQuery = errors.New("invalid jq query")

// Query is a compiled jq expression.
type Query struct {
	expression   string
	code         *gojq.Code
	timeout      time.Duration
	maxInputSize int
}

// Option configures a Query.
type Option func(*Query)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(q *Query) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithMaxInputSize overrides DefaultMaxInputSize.
func WithMaxInputSize(n int) Option {
	return func(q *Query) {
		if n > 0 {
			q.maxInputSize = n
		}
	}
}

// Compile parses and compiles expression.
func Compile(expression string, opts ...Option) (*Query, error) {
	parsed, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	q := &Query{
		expression:   expression,
		code:         code,
		timeout:      DefaultTimeout,
		maxInputSize: DefaultMaxInputSize,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

// String returns the source expression.
func (q *Query) String() string {
	return q.expression
}

// Run evaluates the query against input and collects every emitted value.
// Input is normalized through JSON first, so typed values work as well as
// decoded documents.
func (q *Query) Run(ctx context.Context, input any) ([]any, error) {
	normalized, err := q.normalize(input)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	results := []any{}
	iter := q.code.RunWithContext(ctx, normalized)
	for {
		v, ok := iter.Next()
		if !ok {
			return results, nil
		}
		if err, isErr := v.(error); isErr {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("jq query timed out after %v", q.timeout)
			}
			return nil, fmt.Errorf("jq query failed: %w", err)
		}
		results = append(results, v)
	}
}

func (q *Query) normalize(input any) (any, error) {
	data, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query input: %w", err)
	}
	if len(data) > q.maxInputSize {
		return nil, fmt.Errorf("query input (%d bytes) exceeds maximum (%d bytes)", len(data), q.maxInputSize)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode query input: %w", err)
	}
	return v, nil
}
