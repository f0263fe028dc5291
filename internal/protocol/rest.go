package protocol

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/tombee/awsdeck/internal/service"
	"github.com/tombee/awsdeck/internal/value"
)

// placeholderPattern matches {Name} and greedy {Name+} path labels.
var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_.-]+)(\+?)\}`)

// bodylessMethods send their remaining parameters as a query string.
var bodylessMethods = map[string]bool{
	"GET":    true,
	"HEAD":   true,
	"DELETE": true,
}

// restHandler implements rest-json and rest-xml. The two differ only in
// the body encoding and the response parser.
type restHandler struct {
	protocol string
}

func (h restHandler) Protocol() string {
	return h.protocol
}

func (h restHandler) BuildRequest(op Operation, params map[string]any) *WireRequest {
	method := strings.ToUpper(op.Method)
	if method == "" {
		method = "GET"
	}

	remaining := make(map[string]any, len(params))
	for k, v := range params {
		remaining[k] = v
	}

	path, rawQuery, _ := strings.Cut(op.Path, "?")
	path = substitutePath(path, remaining)
	if path == "" {
		path = "/"
	}

	query, _ := url.ParseQuery(rawQuery)
	req := &WireRequest{
		Method:  method,
		Headers: map[string]string{},
	}

	switch {
	case bodylessMethods[method]:
		addQueryParams(query, remaining)
	case h.protocol == service.ProtocolRESTXML:
		if len(remaining) > 0 {
			req.Body = encodeXML(op.Action, remaining)
			req.Headers["Content-Type"] = "application/xml"
		}
	default:
		req.Body = marshalObject(remaining)
		req.Headers["Content-Type"] = "application/json"
	}

	u := strings.TrimSuffix(op.Endpoint, "/") + path
	if len(query) > 0 {
		// Encode sorts keys; a bare key such as "?versioning" keeps its "=".
		u += "?" + query.Encode()
	}
	req.URL = u
	return req
}

func (h restHandler) ParseResponse(body []byte, contentType string) (any, error) {
	if h.usesXML(contentType) {
		return parseXML(h.protocol, body)
	}
	return parseJSON(h.protocol, body)
}

// usesXML picks the parser. An explicit response content type wins over
// the dialect default so that XML error documents from JSON services and
// vice versa still decode.
func (h restHandler) usesXML(contentType string) bool {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "xml"):
		return true
	case strings.Contains(ct, "json"):
		return false
	default:
		return h.protocol == service.ProtocolRESTXML
	}
}

// substitutePath replaces {Name} labels with escaped parameter values and
// removes the consumed parameters. Labels with no matching parameter are
// left untouched.
func substitutePath(path string, params map[string]any) string {
	return placeholderPattern.ReplaceAllStringFunc(path, func(label string) string {
		m := placeholderPattern.FindStringSubmatch(label)
		name, greedy := m[1], m[2] == "+"
		v, ok := params[name]
		if !ok {
			return label
		}
		delete(params, name)

		s := value.ToString(v)
		if !greedy {
			return url.PathEscape(s)
		}
		segments := strings.Split(s, "/")
		for i, seg := range segments {
			segments[i] = url.PathEscape(seg)
		}
		return strings.Join(segments, "/")
	})
}

func addQueryParams(query url.Values, params map[string]any) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := params[k].(type) {
		case []any:
			for _, item := range v {
				query.Add(k, value.ToString(item))
			}
		case []string:
			for _, item := range v {
				query.Add(k, item)
			}
		default:
			query.Set(k, value.ToString(v))
		}
	}
}
