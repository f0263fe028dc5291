// Package protocol builds wire requests and parses wire responses for the
// four AWS API dialects: query, json, rest-json and rest-xml.
//
// Each dialect is a stateless Handler selected at runtime by the protocol
// tag declared on an operation. Every handler parses into the same
// value tree (see package value) so field mapping never depends on the
// original wire format.
package protocol

import (
	"fmt"

	"github.com/tombee/awsdeck/internal/service"
)

// Handler is the capability shared by all protocol dialects.
type Handler interface {
	// Protocol returns the dialect tag.
	Protocol() string

	// BuildRequest encodes params for op. It never fails: params that do
	// not fit the operation are a caller contract violation.
	BuildRequest(op Operation, params map[string]any) *WireRequest

	// ParseResponse decodes a response body into a value tree.
	// Returns a *ParseError matching ErrEmpty or ErrMalformed.
	ParseResponse(body []byte, contentType string) (any, error)
}

// Operation is the protocol-neutral description of one API call.
type Operation struct {
	// Action is the API operation name (DescribeInstances, ListFunctions).
	Action string

	// Method is the HTTP method for REST dialects. Defaults to GET.
	Method string

	// Path is the REST path template, e.g. "/2015-03-31/functions/{FunctionName}".
	Path string

	// Endpoint is the base URL requests are sent to.
	Endpoint string

	// Service is the target service's metadata.
	Service service.Info
}

// WireRequest is a fully built, not yet signed HTTP request.
type WireRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// Header returns a header value by exact name.
func (r *WireRequest) Header(name string) string {
	if r.Headers == nil {
		return ""
	}
	return r.Headers[name]
}

var handlers = map[string]Handler{
	service.ProtocolQuery:    queryHandler{},
	service.ProtocolJSON:     jsonHandler{},
	service.ProtocolRESTJSON: restHandler{protocol: service.ProtocolRESTJSON},
	service.ProtocolRESTXML:  restHandler{protocol: service.ProtocolRESTXML},
}

// For returns the handler for a protocol tag.
func For(protocol string) (Handler, error) {
	h, ok := handlers[protocol]
	if !ok {
		return nil, fmt.Errorf("unsupported protocol %q", protocol)
	}
	return h, nil
}

// Supported reports whether a protocol tag names a known dialect.
func Supported(protocol string) bool {
	_, ok := handlers[protocol]
	return ok
}
