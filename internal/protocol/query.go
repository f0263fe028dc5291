package protocol

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/tombee/awsdeck/internal/service"
	"github.com/tombee/awsdeck/internal/value"
)

// queryHandler implements the AWS query protocol: form-encoded parameters
// with Action and Version, XML responses.
type queryHandler struct{}

func (queryHandler) Protocol() string {
	return service.ProtocolQuery
}

func (queryHandler) BuildRequest(op Operation, params map[string]any) *WireRequest {
	form := url.Values{}
	form.Set("Action", op.Action)
	form.Set("Version", op.Service.APIVersion)
	flattenParams(form, "", params)

	return &WireRequest{
		Method: "POST",
		URL:    strings.TrimSuffix(op.Endpoint, "/") + "/",
		Headers: map[string]string{
			"Content-Type": "application/x-www-form-urlencoded; charset=utf-8",
		},
		// url.Values.Encode sorts by key.
		Body: []byte(form.Encode()),
	}
}

func (queryHandler) ParseResponse(body []byte, contentType string) (any, error) {
	return parseXML(service.ProtocolQuery, body)
}

// flattenParams writes nested params in query-protocol form: mapping keys
// join with ".", sequence entries are numbered from 1.
func flattenParams(form url.Values, prefix string, v any) {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flattenParams(form, joinKey(prefix, k), t[k])
		}
	case []any:
		for i, item := range t {
			flattenParams(form, joinKey(prefix, strconv.Itoa(i+1)), item)
		}
	case []string:
		for i, item := range t {
			form.Set(joinKey(prefix, strconv.Itoa(i+1)), item)
		}
	case nil:
		if prefix != "" {
			form.Set(prefix, "")
		}
	default:
		if prefix != "" {
			form.Set(prefix, value.ToString(t))
		}
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
