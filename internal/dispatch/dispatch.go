// Package dispatch turns resource definitions into AWS calls.
//
// A Dispatcher looks a resource up in the registry, selects the protocol
// handler its configuration names, builds and signs the request, hands it
// to a transport, parses the response and maps every item through the
// resource's field mappings. It holds only immutable configuration, so a
// single Dispatcher serves concurrent calls.
//
// The dispatcher never retries; retry and backoff belong to the transport.
package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/awsdeck/internal/log"
	"github.com/tombee/awsdeck/internal/protocol"
	"github.com/tombee/awsdeck/internal/registry"
	"github.com/tombee/awsdeck/internal/service"
	"github.com/tombee/awsdeck/internal/signer"
	"github.com/tombee/awsdeck/internal/transport"
)

const tracerName = "github.com/tombee/awsdeck/internal/dispatch"

// CredentialsProvider supplies the credentials for each call. The region
// in the returned credentials is used when a call names no region.
type CredentialsProvider interface {
	Credentials(ctx context.Context) (signer.Credentials, error)
}

// CredentialsFunc adapts a function to CredentialsProvider.
type CredentialsFunc func(ctx context.Context) (signer.Credentials, error)

// Credentials calls f.
func (f CredentialsFunc) Credentials(ctx context.Context) (signer.Credentials, error) {
	return f(ctx)
}

// StaticCredentials returns a provider that always yields creds.
func StaticCredentials(creds signer.Credentials) CredentialsProvider {
	return CredentialsFunc(func(context.Context) (signer.Credentials, error) {
		return creds, nil
	})
}

// Record is one mapped resource instance.
type Record struct {
	ID     string            `json:"id"`
	Name   string            `json:"name,omitempty"`
	Fields map[string]string `json:"fields"`

	// Raw is the unmapped item subtree, for detail views.
	Raw any `json:"raw,omitempty"`
}

// Dispatcher executes list, describe and action calls.
type Dispatcher struct {
	registry  *registry.Registry
	catalog   service.Catalog
	transport transport.Transport
	creds     CredentialsProvider

	endpoint string
	now      func() time.Time
	logger   *slog.Logger
	calls    *log.CallMiddleware
	tracer   trace.Tracer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithEndpoint sends every call to url instead of the service's regional
// endpoint. Used for LocalStack and VPC endpoints.
func WithEndpoint(url string) Option {
	return func(d *Dispatcher) {
		d.endpoint = url
	}
}

// WithLogger sets the logger. Calls log at debug, wire bodies at trace.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithTracer sets the tracer used for per-call spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(d *Dispatcher) {
		d.tracer = tracer
	}
}

// WithClock sets the signing clock.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// New creates a Dispatcher.
func New(reg *registry.Registry, catalog service.Catalog, t transport.Transport, creds CredentialsProvider, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry:  reg,
		catalog:   catalog,
		transport: t,
		creds:     creds,
		now:       time.Now,
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = log.WithComponent(d.logger, "dispatch")
	d.calls = log.NewCallMiddleware(d.logger)
	return d
}

// Registry returns the registry the dispatcher resolves names against.
func (d *Dispatcher) Registry() *registry.Registry {
	return d.registry
}

func (d *Dispatcher) lookup(op, name string) (*registry.ResourceDefinition, error) {
	def, ok := d.registry.Lookup(name)
	if !ok {
		return nil, newError(op, name, fmt.Errorf("%w %q", ErrUnknownResource, name))
	}
	return def, nil
}

// call is one request to AWS.
type call struct {
	op            string
	def           *registry.ResourceDefinition
	protocol      string
	action        string
	method        string
	path          string
	params        map[string]any
	region        string
	correlationID string
	page          int

	// allowEmpty accepts an empty 2xx body as a nil tree.
	allowEmpty bool
}

// execute runs the request pipeline for c and returns the parsed response
// tree.
func (d *Dispatcher) execute(ctx context.Context, c *call) (any, error) {
	svc, ok := d.catalog.Lookup(c.def.Service)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownService, c.def.Service)
	}
	handler, err := protocol.For(c.protocol)
	if err != nil {
		return nil, err
	}
	creds, err := d.creds.Credentials(ctx)
	if err != nil {
		return nil, err
	}

	region := c.region
	if region == "" {
		region = creds.Region
	}
	if c.def.IsGlobal && !svc.Global {
		region = service.DefaultGlobalRegion
	}
	creds.Region = region

	endpoint := d.endpoint
	if endpoint == "" {
		endpoint = svc.Endpoint(region)
	}
	op := protocol.Operation{
		Action:   c.action,
		Method:   c.method,
		Path:     c.path,
		Endpoint: endpoint,
		Service:  svc,
	}

	ctx, span := d.tracer.Start(ctx, "aws."+c.def.Service+"."+c.action,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("awsdeck.operation", c.op),
			attribute.String("awsdeck.resource", c.def.Name),
			attribute.String("aws.service", c.def.Service),
			attribute.String("aws.region", region),
			attribute.String("aws.action", c.action),
			attribute.String("awsdeck.correlation_id", c.correlationID),
		),
	)
	defer span.End()

	logCall := &log.Call{
		Operation:     c.op,
		Resource:      c.def.Name,
		Service:       c.def.Service,
		Region:        region,
		Action:        c.action,
		CorrelationID: c.correlationID,
	}

	var tree any
	start := time.Now()
	err = d.calls.Handle(logCall, func() (map[string]any, error) {
		meta := map[string]any{"protocol": c.protocol}
		if c.page > 0 {
			meta["page"] = c.page
		}

		wire := handler.BuildRequest(op, c.params)
		log.Trace(d.logger, "aws request",
			log.String("method", wire.Method),
			log.String("url", wire.URL),
			log.String("body", string(wire.Body)))

		signed, err := signer.Sign(ctx, wire, creds, svc, d.now())
		if err != nil {
			return meta, err
		}

		resp, err := d.transport.Execute(ctx, &transport.Request{
			Method:  signed.Method,
			URL:     signed.URL,
			Headers: signed.Headers,
			Body:    signed.Body,
			Metadata: map[string]any{
				log.ServiceKey: c.def.Service,
				log.ActionKey:  c.action,
			},
		})
		if err != nil {
			return meta, err
		}

		meta["status"] = resp.StatusCode
		if id := resp.RequestID(); id != "" {
			meta["request_id"] = id
			span.SetAttributes(attribute.String("aws.request_id", id))
		}
		log.Trace(d.logger, "aws response",
			log.Int("status", resp.StatusCode),
			log.String("content_type", resp.ContentType()),
			log.String("body", string(resp.Body)))

		if err := transport.ErrorFromResponse(resp); err != nil {
			return meta, err
		}
		if c.allowEmpty && len(bytes.TrimSpace(resp.Body)) == 0 {
			return meta, nil
		}

		tree, err = handler.ParseResponse(resp.Body, resp.ContentType())
		return meta, err
	})
	recordCall(c.def.Name, c.op, time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return tree, nil
}

// toRecord maps one item. The id and name come from the field mapping of
// that name when one exists, otherwise from the item itself.
func toRecord(def *registry.ResourceDefinition, item any) Record {
	fields := def.MapFields(item)
	return Record{
		ID:     identity(fields, item, def.IDField, def.IDPath()),
		Name:   identity(fields, item, def.NameField, def.NamePath()),
		Fields: fields,
		Raw:    item,
	}
}
