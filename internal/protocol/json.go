package protocol

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/tombee/awsdeck/internal/service"
)

// defaultJSONVersion is used when the service metadata names none.
const defaultJSONVersion = "1.1"

// jsonHandler implements the AWS JSON-RPC protocol: a single JSON object
// body, the operation named by the X-Amz-Target header.
type jsonHandler struct{}

func (jsonHandler) Protocol() string {
	return service.ProtocolJSON
}

func (jsonHandler) BuildRequest(op Operation, params map[string]any) *WireRequest {
	version := op.Service.JSONVersion
	if version == "" {
		version = defaultJSONVersion
	}

	return &WireRequest{
		Method: "POST",
		URL:    strings.TrimSuffix(op.Endpoint, "/") + "/",
		Headers: map[string]string{
			"Content-Type": "application/x-amz-json-" + version,
			"X-Amz-Target": op.Service.TargetPrefix + "." + op.Action,
		},
		Body: marshalObject(params),
	}
}

func (jsonHandler) ParseResponse(body []byte, contentType string) (any, error) {
	return parseJSON(service.ProtocolJSON, body)
}

func parseJSON(protocol string, body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, empty(protocol)
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, malformed(protocol, err)
	}
	return v, nil
}

// marshalObject encodes params as a JSON object; nil encodes as {}.
func marshalObject(params map[string]any) []byte {
	if params == nil {
		params = map[string]any{}
	}
	body, err := json.Marshal(params)
	if err != nil {
		// Params come from decoded configuration and value trees, which
		// always marshal.
		return []byte("{}")
	}
	return body
}
